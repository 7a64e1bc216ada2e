package domain

import (
	"fmt"
	"time"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
)

const clabeLength = 18

// DepositAccount is one bank destination published to clients for deposits.
// At most one account is active at any time; accounts are never deleted,
// only deactivated, so the full rotation history is preserved.
type DepositAccount struct {
	AccountID       string     `json:"accountID"`
	Bank            string     `json:"bank"`
	CLABE           string     `json:"clabe"`
	BeneficiaryName string     `json:"beneficiaryName"` // legal entity receiving deposits
	Active          bool       `json:"active"`
	ActivatedAt     *time.Time `json:"activatedAt,omitempty"`
	AuditFields
}

// ValidateCLABE requires exactly eighteen numeric digits.
func ValidateCLABE(clabe string) error {
	if len(clabe) != clabeLength {
		return fmt.Errorf("%w: la CLABE debe tener exactamente %d dígitos", apperrors.ErrValidation, clabeLength)
	}
	for _, r := range clabe {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: la CLABE debe ser numérica", apperrors.ErrValidation)
		}
	}
	return nil
}
