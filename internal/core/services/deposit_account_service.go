package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

// depositAccountService manages the published deposit destination account.
// The active-account swap itself is transactional inside the repository;
// this layer owns input validation and logging.
type depositAccountService struct {
	accountRepo portsrepo.DepositAccountRepository
}

// NewDepositAccountService creates a new DepositAccountService.
func NewDepositAccountService(accountRepo portsrepo.DepositAccountRepository) portssvc.DepositAccountSvcFacade {
	return &depositAccountService{accountRepo: accountRepo}
}

var _ portssvc.DepositAccountSvcFacade = (*depositAccountService)(nil)

func (s *depositAccountService) CreateAccount(ctx context.Context, req dto.CreateDepositAccountRequest, creatorUserID string) (*domain.DepositAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := domain.ValidateCLABE(req.CLABE); err != nil {
		return nil, err
	}
	if req.Bank == "" || req.BeneficiaryName == "" {
		return nil, fmt.Errorf("%w: banco y beneficiario son obligatorios", apperrors.ErrValidation)
	}

	now := time.Now()
	account := domain.DepositAccount{
		AccountID:       uuid.NewString(),
		Bank:            req.Bank,
		CLABE:           req.CLABE,
		BeneficiaryName: req.BeneficiaryName,
		Active:          req.Activate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if req.Activate {
		account.ActivatedAt = &now
	}

	if err := s.accountRepo.SaveAccount(ctx, account, req.Activate); err != nil {
		logger.Error("Failed to save deposit account", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Deposit account created",
		slog.String("account_id", account.AccountID),
		slog.String("bank", account.Bank),
		slog.Bool("active", account.Active))
	return &account, nil
}

func (s *depositAccountService) ActivateAccount(ctx context.Context, accountID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.ActivateAccount(ctx, accountID, userID); err != nil {
		logger.Error("Failed to activate deposit account", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return err
	}

	logger.Info("Deposit account activated", slog.String("account_id", accountID))
	return nil
}

func (s *depositAccountService) GetActiveAccount(ctx context.Context) (*domain.DepositAccount, error) {
	return s.accountRepo.FindActiveAccount(ctx)
}

func (s *depositAccountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.DepositAccount, error) {
	return s.accountRepo.ListAccounts(ctx, includeInactive)
}
