package pgsql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// calcColumns maps the nullable calculation column group of the operations
// table. All columns are nil until a calculation exists.
type calcColumns struct {
	total        *decimal.Decimal
	rate         *decimal.Decimal
	commission   *decimal.Decimal
	providerRate *decimal.Decimal
	providerCost *decimal.Decimal
	netCapital   *decimal.Decimal
	at           *time.Time
	by           *string
}

func toCalcColumns(c domain.Calculation) calcColumns {
	return calcColumns{
		total:        &c.Total,
		rate:         &c.CommissionRate,
		commission:   &c.ClientCommission,
		providerRate: &c.ProviderRate,
		providerCost: &c.ProviderCost,
		netCapital:   &c.NetCapital,
		at:           &c.ComputedAt,
		by:           &c.ComputedBy,
	}
}

func (c calcColumns) toDomain() *domain.Calculation {
	if c.total == nil {
		return nil
	}
	calc := &domain.Calculation{
		Total:      *c.total,
		NetCapital: *c.netCapital,
	}
	if c.rate != nil {
		calc.CommissionRate = *c.rate
	}
	if c.commission != nil {
		calc.ClientCommission = *c.commission
	}
	if c.providerRate != nil {
		calc.ProviderRate = *c.providerRate
	}
	if c.providerCost != nil {
		calc.ProviderCost = *c.providerCost
	}
	if c.at != nil {
		calc.ComputedAt = *c.at
	}
	if c.by != nil {
		calc.ComputedBy = *c.by
	}
	return calc
}
