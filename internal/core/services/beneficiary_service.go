package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

// beneficiaryService manages frequent-beneficiary records per client.
type beneficiaryService struct {
	beneficiaryRepo portsrepo.BeneficiaryRepository
	clientRepo      portsrepo.ClientReader
}

// NewBeneficiaryService creates a new BeneficiaryService.
func NewBeneficiaryService(beneficiaryRepo portsrepo.BeneficiaryRepository, clientRepo portsrepo.ClientReader) portssvc.BeneficiarySvcFacade {
	return &beneficiaryService{beneficiaryRepo: beneficiaryRepo, clientRepo: clientRepo}
}

var _ portssvc.BeneficiarySvcFacade = (*beneficiaryService)(nil)

func (s *beneficiaryService) CreateBeneficiary(ctx context.Context, req dto.CreateBeneficiaryRequest, creatorUserID string) (*domain.FrequentBeneficiary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := domain.ValidateBeneficiaryName(req.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateNationalID(req.NationalID); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindClientByID(ctx, req.ClientID); err != nil {
		return nil, err
	}

	now := time.Now()
	b := domain.FrequentBeneficiary{
		BeneficiaryID: uuid.NewString(),
		ClientID:      req.ClientID,
		Name:          domain.NormalizeBeneficiaryName(req.Name),
		NationalID:    req.NationalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.beneficiaryRepo.SaveBeneficiary(ctx, b); err != nil {
		logger.Error("Failed to save beneficiary", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Frequent beneficiary created", slog.String("beneficiary_id", b.BeneficiaryID), slog.String("client_id", b.ClientID))
	return &b, nil
}

func (s *beneficiaryService) ListBeneficiaries(ctx context.Context, clientID string) ([]domain.FrequentBeneficiary, error) {
	return s.beneficiaryRepo.ListBeneficiariesByClient(ctx, clientID)
}

func (s *beneficiaryService) UpdateBeneficiary(ctx context.Context, beneficiaryID string, req dto.UpdateBeneficiaryRequest, updaterUserID string) (*domain.FrequentBeneficiary, error) {
	b, err := s.beneficiaryRepo.FindBeneficiaryByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := domain.ValidateBeneficiaryName(*req.Name); err != nil {
			return nil, err
		}
		b.Name = domain.NormalizeBeneficiaryName(*req.Name)
	}
	if req.NationalID != nil {
		if err := domain.ValidateNationalID(*req.NationalID); err != nil {
			return nil, err
		}
		b.NationalID = *req.NationalID
	}
	b.LastUpdatedAt = time.Now()
	b.LastUpdatedBy = updaterUserID

	if err := s.beneficiaryRepo.UpdateBeneficiary(ctx, *b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *beneficiaryService) DeleteBeneficiary(ctx context.Context, beneficiaryID string) error {
	return s.beneficiaryRepo.DeleteBeneficiary(ctx, beneficiaryID)
}
