package repositories

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// DepositAccountRepository defines persistence for deposit bank accounts.
//
// Activation is transactional: deactivating the previously active row and
// activating the new one happen in one database transaction, so a concurrent
// reader never observes zero or two active accounts.
type DepositAccountRepository interface {
	// SaveAccount persists a new account. When activate is true the swap
	// with the currently active account happens in the same transaction.
	SaveAccount(ctx context.Context, account domain.DepositAccount, activate bool) error

	// ActivateAccount makes an existing historical account the active one,
	// deactivating the previous active account in the same transaction.
	ActivateAccount(ctx context.Context, accountID string, activatedBy string) error

	// FindActiveAccount returns the single active account, or
	// apperrors.ErrNotFound when none is configured yet.
	FindActiveAccount(ctx context.Context) (*domain.DepositAccount, error)

	FindAccountByID(ctx context.Context, accountID string) (*domain.DepositAccount, error)

	// ListAccounts returns the account history, newest first.
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.DepositAccount, error)
}
