package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProviderCostRate is the fixed system-wide settlement-provider cost, in
// percent. It is an internal cost: tracked for accounting, never exposed to
// the client-facing channel and never subtracted from the client's capital.
var ProviderCostRate = decimal.RequireFromString("0.375")

// MinBotCommissionRate is the floor for commission rates supplied by the
// bot onboarding flow, in percent.
var MinBotCommissionRate = decimal.RequireFromString("1.0")

// Calculation is the immutable money snapshot of an operation. It is computed
// at most once; an explicit rate override replaces it wholesale.
type Calculation struct {
	Total            decimal.Decimal `json:"total"`            // sum of valid receipts
	CommissionRate   decimal.Decimal `json:"commissionRate"`   // percent applied
	ClientCommission decimal.Decimal `json:"clientCommission"` // total * rate / 100
	ProviderRate     decimal.Decimal `json:"providerRate"`     // percent, fixed
	ProviderCost     decimal.Decimal `json:"providerCost"`     // total * providerRate / 100
	NetCapital       decimal.Decimal `json:"netCapital"`       // total - clientCommission
	ComputedAt       time.Time       `json:"computedAt"`
	ComputedBy       string          `json:"computedBy"`
}

// NewCalculation computes the money snapshot for a validated receipt total.
// Rounding to two decimals happens once, at the final outputs, so repeated
// intermediate multiplications cannot compound error. Net capital is derived
// from the rounded commission so that commission + capital reconstructs the
// total exactly.
func NewCalculation(total, rate decimal.Decimal, now time.Time, by string) Calculation {
	hundred := decimal.NewFromInt(100)
	commission := total.Mul(rate).Div(hundred).Round(2)
	providerCost := total.Mul(ProviderCostRate).Div(hundred).Round(2)
	return Calculation{
		Total:            total.Round(2),
		CommissionRate:   rate,
		ClientCommission: commission,
		ProviderRate:     ProviderCostRate,
		ProviderCost:     providerCost,
		NetCapital:       total.Round(2).Sub(commission),
		ComputedAt:       now,
		ComputedBy:       by,
	}
}
