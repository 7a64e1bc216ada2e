package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
)

type PgxDepositAccountRepository struct {
	BaseRepository
}

func newPgxDepositAccountRepository(pool *pgxpool.Pool) portsrepo.DepositAccountRepository {
	return &PgxDepositAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DepositAccountRepository = (*PgxDepositAccountRepository)(nil)

const depositAccountColumns = `
	account_id, bank, clabe, beneficiary_name, active, activated_at,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveAccount inserts the account. When activate is set, the currently active
// account is deactivated inside the same transaction so the partial unique
// index on (active) never sees two active rows.
func (r *PgxDepositAccountRepository) SaveAccount(ctx context.Context, account domain.DepositAccount, activate bool) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if activate {
		if err := deactivateCurrent(ctx, tx, account.CreatedBy); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO deposit_accounts (` + depositAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, query,
		account.AccountID,
		account.Bank,
		account.CLABE,
		account.BeneficiaryName,
		activate,
		account.ActivatedAt,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save deposit account %s: %w", account.AccountID, err)
	}
	return tx.Commit(ctx)
}

func (r *PgxDepositAccountRepository) ActivateAccount(ctx context.Context, accountID, activatedBy string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := deactivateCurrent(ctx, tx, activatedBy); err != nil {
		return err
	}

	query := `
		UPDATE deposit_accounts
		SET active = TRUE, activated_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE account_id = $3;
	`
	tag, err := tx.Exec(ctx, query, time.Now(), activatedBy, accountID)
	if err != nil {
		return fmt.Errorf("failed to activate deposit account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return tx.Commit(ctx)
}

func deactivateCurrent(ctx context.Context, tx pgx.Tx, updatedBy string) error {
	query := `
		UPDATE deposit_accounts
		SET active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE active;
	`
	if _, err := tx.Exec(ctx, query, time.Now(), updatedBy); err != nil {
		return fmt.Errorf("failed to deactivate current deposit account: %w", err)
	}
	return nil
}

func (r *PgxDepositAccountRepository) FindActiveAccount(ctx context.Context) (*domain.DepositAccount, error) {
	query := `SELECT ` + depositAccountColumns + ` FROM deposit_accounts WHERE active;`
	return r.findOne(ctx, query)
}

func (r *PgxDepositAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.DepositAccount, error) {
	query := `SELECT ` + depositAccountColumns + ` FROM deposit_accounts WHERE account_id = $1;`
	return r.findOne(ctx, query, accountID)
}

func (r *PgxDepositAccountRepository) findOne(ctx context.Context, query string, args ...any) (*domain.DepositAccount, error) {
	account, err := scanDepositAccount(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deposit account: %w", err)
	}
	return account, nil
}

func (r *PgxDepositAccountRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.DepositAccount, error) {
	query := `SELECT ` + depositAccountColumns + ` FROM deposit_accounts WHERE active OR $1 ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposit accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.DepositAccount{}
	for rows.Next() {
		account, err := scanDepositAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deposit accounts: %w", err)
	}
	return accounts, nil
}

func scanDepositAccount(row pgx.Row) (*domain.DepositAccount, error) {
	var account domain.DepositAccount
	err := row.Scan(
		&account.AccountID, &account.Bank, &account.CLABE, &account.BeneficiaryName,
		&account.Active, &account.ActivatedAt,
		&account.CreatedAt, &account.CreatedBy, &account.LastUpdatedAt, &account.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
