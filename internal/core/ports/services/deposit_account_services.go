package services

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

// DepositAccountSvcFacade manages the published deposit destination account.
type DepositAccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateDepositAccountRequest, creatorUserID string) (*domain.DepositAccount, error)
	ActivateAccount(ctx context.Context, accountID, userID string) error
	GetActiveAccount(ctx context.Context) (*domain.DepositAccount, error)
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.DepositAccount, error)
}
