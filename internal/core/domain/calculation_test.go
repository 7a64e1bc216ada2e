package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

func TestNewCalculation(t *testing.T) {
	total := decimal.RequireFromString("10000")
	rate := decimal.RequireFromString("0.65")

	calc := domain.NewCalculation(total, rate, time.Now(), "user-1")

	assert.True(t, calc.ClientCommission.Equal(decimal.RequireFromString("65.00")),
		"commission was %s", calc.ClientCommission)
	assert.True(t, calc.NetCapital.Equal(decimal.RequireFromString("9935.00")),
		"net capital was %s", calc.NetCapital)
	assert.True(t, calc.ProviderCost.Equal(decimal.RequireFromString("37.50")),
		"provider cost was %s", calc.ProviderCost)
	assert.True(t, calc.ProviderRate.Equal(domain.ProviderCostRate))
}

func TestNewCalculationReconstructsTotal(t *testing.T) {
	// Commission + net capital must rebuild the rounded total exactly, for
	// any awkward rate and total.
	cases := []struct{ total, rate string }{
		{"10000", "0.65"},
		{"123456.78", "1.375"},
		{"999999.99", "2.5"},
		{"50000.005", "0.333"},
		{"1", "99"},
	}

	for _, tc := range cases {
		total := decimal.RequireFromString(tc.total)
		rate := decimal.RequireFromString(tc.rate)

		calc := domain.NewCalculation(total, rate, time.Now(), "user-1")

		sum := calc.ClientCommission.Add(calc.NetCapital)
		assert.True(t, sum.Equal(total.Round(2)),
			"total %s rate %s: %s + %s = %s", tc.total, tc.rate, calc.ClientCommission, calc.NetCapital, sum)
	}
}

func TestNewCalculationRoundsToTwoDecimals(t *testing.T) {
	total := decimal.RequireFromString("10000.555")
	rate := decimal.RequireFromString("1.333")

	calc := domain.NewCalculation(total, rate, time.Now(), "user-1")

	assert.True(t, calc.ClientCommission.Exponent() >= -2, "commission exponent %d", calc.ClientCommission.Exponent())
	assert.True(t, calc.Total.Exponent() >= -2)
	assert.True(t, calc.NetCapital.Exponent() >= -2)
}
