package dto

import (
	"time"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// CreateBeneficiaryRequest registers a frequent beneficiary for a client.
type CreateBeneficiaryRequest struct {
	ClientID   string `json:"clienteID" binding:"required"`
	Name       string `json:"nombre" binding:"required"`
	NationalID string `json:"idmex" binding:"required"`
}

// UpdateBeneficiaryRequest changes a frequent beneficiary's fields.
type UpdateBeneficiaryRequest struct {
	Name       *string `json:"nombre"`
	NationalID *string `json:"idmex"`
}

// BeneficiaryResponse mirrors domain.FrequentBeneficiary.
type BeneficiaryResponse struct {
	BeneficiaryID string    `json:"beneficiarioID"`
	ClientID      string    `json:"clienteID"`
	Name          string    `json:"nombre"`
	NationalID    string    `json:"idmex"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToBeneficiaryResponse converts one beneficiary.
func ToBeneficiaryResponse(b *domain.FrequentBeneficiary) BeneficiaryResponse {
	return BeneficiaryResponse{
		BeneficiaryID: b.BeneficiaryID,
		ClientID:      b.ClientID,
		Name:          b.Name,
		NationalID:    b.NationalID,
		CreatedAt:     b.CreatedAt,
	}
}

// ToListBeneficiaryResponse converts a slice of beneficiaries.
func ToListBeneficiaryResponse(list []domain.FrequentBeneficiary) []BeneficiaryResponse {
	res := make([]BeneficiaryResponse, len(list))
	for i := range list {
		res[i] = ToBeneficiaryResponse(&list[i])
	}
	return res
}
