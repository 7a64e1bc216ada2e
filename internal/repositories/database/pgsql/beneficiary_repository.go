package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
)

type PgxBeneficiaryRepository struct {
	BaseRepository
}

func newPgxBeneficiaryRepository(pool *pgxpool.Pool) portsrepo.BeneficiaryRepository {
	return &PgxBeneficiaryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BeneficiaryRepository = (*PgxBeneficiaryRepository)(nil)

const beneficiaryColumns = `
	beneficiary_id, client_id, name, national_id,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxBeneficiaryRepository) SaveBeneficiary(ctx context.Context, b domain.FrequentBeneficiary) error {
	query := `
		INSERT INTO frequent_beneficiaries (` + beneficiaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		b.BeneficiaryID, b.ClientID, b.Name, b.NationalID,
		b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save beneficiary %s: %w", b.BeneficiaryID, err)
	}
	return nil
}

func (r *PgxBeneficiaryRepository) FindBeneficiaryByID(ctx context.Context, beneficiaryID string) (*domain.FrequentBeneficiary, error) {
	query := `SELECT ` + beneficiaryColumns + ` FROM frequent_beneficiaries WHERE beneficiary_id = $1;`

	var b domain.FrequentBeneficiary
	err := r.Pool.QueryRow(ctx, query, beneficiaryID).Scan(
		&b.BeneficiaryID, &b.ClientID, &b.Name, &b.NationalID,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find beneficiary %s: %w", beneficiaryID, err)
	}
	return &b, nil
}

func (r *PgxBeneficiaryRepository) ListBeneficiariesByClient(ctx context.Context, clientID string) ([]domain.FrequentBeneficiary, error) {
	query := `SELECT ` + beneficiaryColumns + ` FROM frequent_beneficiaries WHERE client_id = $1 ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer rows.Close()

	beneficiaries := []domain.FrequentBeneficiary{}
	for rows.Next() {
		var b domain.FrequentBeneficiary
		err := rows.Scan(
			&b.BeneficiaryID, &b.ClientID, &b.Name, &b.NationalID,
			&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}
		beneficiaries = append(beneficiaries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read beneficiaries: %w", err)
	}
	return beneficiaries, nil
}

func (r *PgxBeneficiaryRepository) UpdateBeneficiary(ctx context.Context, b domain.FrequentBeneficiary) error {
	query := `
		UPDATE frequent_beneficiaries
		SET name = $1, national_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE beneficiary_id = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, b.Name, b.NationalID, b.LastUpdatedAt, b.LastUpdatedBy, b.BeneficiaryID)
	if err != nil {
		return fmt.Errorf("failed to update beneficiary %s: %w", b.BeneficiaryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBeneficiaryRepository) DeleteBeneficiary(ctx context.Context, beneficiaryID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM frequent_beneficiaries WHERE beneficiary_id = $1;`, beneficiaryID)
	if err != nil {
		return fmt.Errorf("failed to delete beneficiary %s: %w", beneficiaryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
