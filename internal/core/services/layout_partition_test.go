package services

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayoutService(seed int64) *layoutService {
	return &layoutService{rng: rand.New(rand.NewSource(seed))}
}

func TestPartitionAmountUnderCapIsSingleTransfer(t *testing.T) {
	svc := newTestLayoutService(1)

	for _, raw := range []string{"0.01", "9935.00", "350000"} {
		amount := decimal.RequireFromString(raw)
		chunks := svc.partitionAmount(amount)
		require.Len(t, chunks, 1, "amount %s", raw)
		assert.True(t, chunks[0].Equal(amount))
	}
}

func TestPartitionAmountSplitsLargeAmounts(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		svc := newTestLayoutService(seed)
		amount := decimal.RequireFromString("1234567.89")

		chunks := svc.partitionAmount(amount)
		require.Greater(t, len(chunks), 1, "seed %d", seed)

		sum := decimal.Zero
		for i, chunk := range chunks {
			assert.True(t, chunk.IsPositive(), "seed %d chunk %d: %s", seed, i, chunk)
			assert.True(t, chunk.LessThanOrEqual(partitionCap),
				"seed %d chunk %d exceeds cap: %s", seed, i, chunk)
			if i < len(chunks)-1 {
				assert.True(t, chunk.GreaterThanOrEqual(partitionChunkMin),
					"seed %d chunk %d below chunk floor: %s", seed, i, chunk)
				assert.True(t, chunk.LessThanOrEqual(partitionChunkMax),
					"seed %d chunk %d above chunk ceiling: %s", seed, i, chunk)
			}
			sum = sum.Add(chunk)
		}
		assert.True(t, sum.Equal(amount), "seed %d: chunks sum to %s", seed, sum)
	}
}
