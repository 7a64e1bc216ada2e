package dto

import (
	"time"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// CreateDepositAccountRequest registers a new deposit destination account.
type CreateDepositAccountRequest struct {
	Bank            string `json:"banco" binding:"required"`
	CLABE           string `json:"clabe" binding:"required"`
	BeneficiaryName string `json:"beneficiario" binding:"required"`
	// Activate immediately swaps this account in as the published one.
	Activate bool `json:"activar"`
}

// DepositAccountResponse mirrors domain.DepositAccount.
type DepositAccountResponse struct {
	AccountID       string     `json:"cuentaID"`
	Bank            string     `json:"banco"`
	CLABE           string     `json:"clabe"`
	BeneficiaryName string     `json:"beneficiario"`
	Active          bool       `json:"activa"`
	ActivatedAt     *time.Time `json:"fechaActivacion,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ToDepositAccountResponse converts one account.
func ToDepositAccountResponse(a *domain.DepositAccount) DepositAccountResponse {
	return DepositAccountResponse{
		AccountID:       a.AccountID,
		Bank:            a.Bank,
		CLABE:           a.CLABE,
		BeneficiaryName: a.BeneficiaryName,
		Active:          a.Active,
		ActivatedAt:     a.ActivatedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// ToListDepositAccountResponse converts a slice of accounts.
func ToListDepositAccountResponse(list []domain.DepositAccount) []DepositAccountResponse {
	res := make([]DepositAccountResponse, len(list))
	for i := range list {
		res[i] = ToDepositAccountResponse(&list[i])
	}
	return res
}
