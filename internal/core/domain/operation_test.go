package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

func TestOperationStateRankIsMonotonic(t *testing.T) {
	ordered := []domain.OperationState{
		domain.StateAwaitingReceipts,
		domain.StateValidatingReceipts,
		domain.StateAwaitingTitular,
		domain.StateAwaitingClientOK,
		domain.StateDataComplete,
		domain.StateAwaitingSystemCode,
		domain.StatePendingProviderPay,
		domain.StateAwaitingTreasury,
		domain.StateAwaitingProvider,
		domain.StateReadyToDeliver,
		domain.StateCompleted,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s should rank above %s", ordered[i], ordered[i-1])
	}

	assert.Equal(t, -1, domain.StateCancelled.Rank())
	assert.Equal(t, -1, domain.StateRejected.Rank())
	assert.Equal(t, -1, domain.OperationState("DESCONOCIDO").Rank())
}

func TestOperationStateNext(t *testing.T) {
	next, ok := domain.StateAwaitingReceipts.Next()
	require.True(t, ok)
	assert.Equal(t, domain.StateValidatingReceipts, next)

	_, ok = domain.StateCompleted.Next()
	assert.False(t, ok)

	_, ok = domain.StateCancelled.Next()
	assert.False(t, ok)
}

func TestOperationStateCanAdvanceTo(t *testing.T) {
	assert.True(t, domain.StatePendingProviderPay.CanAdvanceTo(domain.StateAwaitingTreasury))

	// No skips, no rewinds, no jumping to terminal side states.
	assert.False(t, domain.StatePendingProviderPay.CanAdvanceTo(domain.StateAwaitingProvider))
	assert.False(t, domain.StateAwaitingTreasury.CanAdvanceTo(domain.StatePendingProviderPay))
	assert.False(t, domain.StateAwaitingTreasury.CanAdvanceTo(domain.StateCancelled))
}

func TestOperationStateIsTerminal(t *testing.T) {
	assert.True(t, domain.StateCompleted.IsTerminal())
	assert.True(t, domain.StateRejected.IsTerminal())
	assert.True(t, domain.StateCancelled.IsTerminal())
	assert.False(t, domain.StateAwaitingReceipts.IsTerminal())
	assert.False(t, domain.StateReadyToDeliver.IsTerminal())
}

func TestOperationIsReadOnly(t *testing.T) {
	webOp := domain.Operation{Origin: domain.OriginWeb, State: domain.StateDataComplete}
	assert.False(t, webOp.IsReadOnly(), "web operations stay editable until terminal")

	botEarly := domain.Operation{Origin: domain.OriginBot, State: domain.StateAwaitingTitular}
	assert.False(t, botEarly.IsReadOnly(), "bot operations are editable before data completes")

	botComplete := domain.Operation{Origin: domain.OriginBot, State: domain.StateDataComplete}
	assert.True(t, botComplete.IsReadOnly(), "bot operations mirror once data completes")

	botLater := domain.Operation{Origin: domain.OriginBot, State: domain.StateAwaitingTreasury}
	assert.True(t, botLater.IsReadOnly())

	terminal := domain.Operation{Origin: domain.OriginWeb, State: domain.StateCancelled}
	assert.True(t, terminal.IsReadOnly())
}

func TestOperationValidReceipts(t *testing.T) {
	now := time.Now()
	op := domain.Operation{
		Receipts: []domain.Receipt{
			{ReceiptID: "a", IsValid: true},
			{ReceiptID: "b", IsValid: false},
			{ReceiptID: "c", IsValid: true, DeletedAt: &now},
		},
	}

	valid := op.ValidReceipts()
	require.Len(t, valid, 1)
	assert.Equal(t, "a", valid[0].ReceiptID)
	assert.True(t, op.HasValidReceipt())

	empty := domain.Operation{Receipts: []domain.Receipt{{IsValid: false}}}
	assert.False(t, empty.HasValidReceipt())
}
