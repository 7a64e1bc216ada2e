package domain

import (
	"fmt"
	"strings"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
)

const nationalIDLength = 10

// FrequentBeneficiary is a saved recipient identity tied to a client for
// fast reuse during titular capture. Names are stored upper-cased.
type FrequentBeneficiary struct {
	BeneficiaryID string `json:"beneficiaryID"`
	ClientID      string `json:"clientID"`
	Name          string `json:"name"`
	NationalID    string `json:"nationalID"` // IDMEX, 10 digits
	AuditFields
}

// ValidateBeneficiaryName requires a full name of at least three
// whitespace-separated tokens (given name plus two surnames).
func ValidateBeneficiaryName(name string) error {
	if len(strings.Fields(name)) < 3 {
		return fmt.Errorf("%w: el nombre debe incluir nombre y dos apellidos", apperrors.ErrValidation)
	}
	return nil
}

// ValidateNationalID requires exactly ten numeric digits.
func ValidateNationalID(id string) error {
	if len(id) != nationalIDLength {
		return fmt.Errorf("%w: el IDMEX debe tener exactamente %d dígitos", apperrors.ErrValidation, nationalIDLength)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: el IDMEX debe ser numérico", apperrors.ErrValidation)
		}
	}
	return nil
}

// NormalizeBeneficiaryName upper-cases and collapses whitespace.
func NormalizeBeneficiaryName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
