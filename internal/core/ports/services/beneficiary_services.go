package services

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

// BeneficiarySvcFacade manages the frequent-beneficiary convenience records.
type BeneficiarySvcFacade interface {
	CreateBeneficiary(ctx context.Context, req dto.CreateBeneficiaryRequest, creatorUserID string) (*domain.FrequentBeneficiary, error)
	ListBeneficiaries(ctx context.Context, clientID string) ([]domain.FrequentBeneficiary, error)
	UpdateBeneficiary(ctx context.Context, beneficiaryID string, req dto.UpdateBeneficiaryRequest, updaterUserID string) (*domain.FrequentBeneficiary, error)
	DeleteBeneficiary(ctx context.Context, beneficiaryID string) error
}
