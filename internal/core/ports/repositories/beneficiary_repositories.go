package repositories

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// BeneficiaryRepository defines persistence for frequent beneficiaries.
// Deletion is a hard delete: these are convenience records, not audit data.
type BeneficiaryRepository interface {
	SaveBeneficiary(ctx context.Context, b domain.FrequentBeneficiary) error
	FindBeneficiaryByID(ctx context.Context, beneficiaryID string) (*domain.FrequentBeneficiary, error)
	ListBeneficiariesByClient(ctx context.Context, clientID string) ([]domain.FrequentBeneficiary, error)
	UpdateBeneficiary(ctx context.Context, b domain.FrequentBeneficiary) error
	DeleteBeneficiary(ctx context.Context, beneficiaryID string) error
}
