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

type PgxOperationRepository struct {
	BaseRepository
}

func newPgxOperationRepository(pool *pgxpool.Pool) portsrepo.OperationRepositoryFacade {
	return &PgxOperationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OperationRepositoryFacade = (*PgxOperationRepository)(nil)

const operationColumns = `
	operation_id, folio, client_id, client_name, origin, commission_rate, state,
	titular_full_name, titular_national_id, titular_unit_count, titular_captured_at, titular_captured_by,
	calc_total, calc_commission_rate, calc_client_commission, calc_provider_rate, calc_provider_cost, calc_net_capital, calc_computed_at, calc_computed_by,
	mbcontrol_code, layout_generated_at, layout_dispatched_at, layout_file_ref,
	version, created_at, created_by, last_updated_at, last_updated_by`

// SaveOperation inserts the operation row and assigns its folio from the
// folio sequence inside the same statement.
func (r *PgxOperationRepository) SaveOperation(ctx context.Context, op domain.Operation) (string, error) {
	query := `
		INSERT INTO operations (
			operation_id, folio, client_id, client_name, origin, commission_rate, state,
			version, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, 'NC-' || lpad(nextval('operation_folio_seq')::text, 6, '0'), $2, $3, $4, $5, $6, 1, $7, $8, $9, $10)
		RETURNING folio;
	`
	var folio string
	err := r.Pool.QueryRow(ctx, query,
		op.OperationID,
		op.ClientID,
		op.ClientName,
		string(op.Origin),
		op.CommissionRate,
		string(op.State),
		op.CreatedAt,
		op.CreatedBy,
		op.LastUpdatedAt,
		op.LastUpdatedBy,
	).Scan(&folio)
	if err != nil {
		return "", fmt.Errorf("failed to save operation %s: %w", op.OperationID, err)
	}

	for _, change := range op.StateHistory {
		if err := r.AppendStateChange(ctx, op.OperationID, change); err != nil {
			return "", err
		}
	}
	return folio, nil
}

// UpdateOperation writes the mutable aggregate columns with an optimistic
// version check. A version miss leaves the row untouched and surfaces as
// apperrors.ErrConflict.
func (r *PgxOperationRepository) UpdateOperation(ctx context.Context, op domain.Operation, expectedVersion int64) error {
	query := `
		UPDATE operations SET
			commission_rate = $1,
			state = $2,
			titular_full_name = $3,
			titular_national_id = $4,
			titular_unit_count = $5,
			titular_captured_at = $6,
			titular_captured_by = $7,
			calc_total = $8,
			calc_commission_rate = $9,
			calc_client_commission = $10,
			calc_provider_rate = $11,
			calc_provider_cost = $12,
			calc_net_capital = $13,
			calc_computed_at = $14,
			calc_computed_by = $15,
			mbcontrol_code = $16,
			layout_generated_at = $17,
			layout_dispatched_at = $18,
			layout_file_ref = $19,
			version = version + 1,
			last_updated_at = $20,
			last_updated_by = $21
		WHERE operation_id = $22 AND version = $23;
	`

	var (
		titularName, titularID, titularBy *string
		titularUnits                      *int
		titularAt                         *time.Time
	)
	if t := op.Titular; t != nil {
		titularName, titularID, titularBy = &t.FullName, &t.NationalID, &t.CapturedBy
		titularUnits, titularAt = &t.UnitCount, &t.CapturedAt
	}

	var calc calcColumns
	if op.Calculation != nil {
		calc = toCalcColumns(*op.Calculation)
	}

	var code *string
	if op.MBControlCode != "" {
		code = &op.MBControlCode
	}
	var fileRef *string
	if op.LayoutFileRef != "" {
		fileRef = &op.LayoutFileRef
	}

	tag, err := r.Pool.Exec(ctx, query,
		op.CommissionRate,
		string(op.State),
		titularName, titularID, titularUnits, titularAt, titularBy,
		calc.total, calc.rate, calc.commission, calc.providerRate, calc.providerCost, calc.netCapital, calc.at, calc.by,
		code,
		op.LayoutGeneratedAt,
		op.LayoutDispatchedAt,
		fileRef,
		op.LastUpdatedAt,
		op.LastUpdatedBy,
		op.OperationID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update operation %s: %w", op.OperationID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or the version moved. Distinguish so the
		// caller can report conflict instead of not-found.
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM operations WHERE operation_id = $1)`, op.OperationID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check operation existence: %w", err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("operation %s version %d: %w", op.OperationID, expectedVersion, apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE operation_id = $1;`

	op, err := scanOperation(r.Pool.QueryRow(ctx, query, operationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find operation %s: %w", operationID, err)
	}

	if err := r.loadReceipts(ctx, op); err != nil {
		return nil, err
	}
	if err := r.loadStateHistory(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

func (r *PgxOperationRepository) ListOperations(ctx context.Context, limit, offset int) ([]domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	return r.listOperations(ctx, query, limit, offset)
}

func (r *PgxOperationRepository) ListOperationsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE client_id = $3 ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	return r.listOperations(ctx, query, limit, offset, clientID)
}

func (r *PgxOperationRepository) listOperations(ctx context.Context, query string, limit, offset int, extra ...any) ([]domain.Operation, error) {
	args := append([]any{limit, offset}, extra...)
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}

	// List views carry receipts and history too: the aggregate is small and
	// the web client renders the receipt count inline.
	for i := range ops {
		if err := r.loadReceipts(ctx, &ops[i]); err != nil {
			return nil, err
		}
		if err := r.loadStateHistory(ctx, &ops[i]); err != nil {
			return nil, err
		}
	}
	if ops == nil {
		ops = []domain.Operation{}
	}
	return ops, nil
}

// TrackingKeyInUse checks valid, non-deleted receipts of live operations.
// Cancelled and rejected operations release their tracking keys.
func (r *PgxOperationRepository) TrackingKeyInUse(ctx context.Context, trackingKey string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM receipts rc
			JOIN operations o ON o.operation_id = rc.operation_id
			WHERE rc.tracking_key = $1
			  AND rc.is_valid
			  AND rc.deleted_at IS NULL
			  AND o.state NOT IN ($2, $3)
		);
	`
	var inUse bool
	err := r.Pool.QueryRow(ctx, query, trackingKey,
		string(domain.StateCancelled), string(domain.StateRejected)).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("failed to check tracking key: %w", err)
	}
	return inUse, nil
}

func (r *PgxOperationRepository) ListPendingLayoutDispatch(ctx context.Context) ([]domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations
		WHERE mbcontrol_code IS NOT NULL
		  AND layout_dispatched_at IS NULL
		  AND state NOT IN ($1, $2)
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.StateCancelled), string(domain.StateRejected))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending layouts: %w", err)
	}
	defer rows.Close()

	var ops []domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending layouts: %w", err)
	}
	for i := range ops {
		if err := r.loadReceipts(ctx, &ops[i]); err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func (r *PgxOperationRepository) AppendReceipt(ctx context.Context, receipt domain.Receipt) error {
	query := `
		INSERT INTO receipts (
			receipt_id, operation_id, filename, file_ref,
			amount, deposit_date, issuing_bank, destination_account, beneficiary_name, tracking_key, origin_account,
			is_valid, validation_message, uploaded_at, uploaded_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		receipt.ReceiptID,
		receipt.OperationID,
		receipt.Filename,
		receipt.FileRef,
		receipt.Amount,
		receipt.DepositDate,
		nullableString(receipt.IssuingBank),
		nullableString(receipt.DestinationAccount),
		nullableString(receipt.BeneficiaryName),
		nullableString(receipt.TrackingKey),
		nullableString(receipt.OriginAccount),
		receipt.IsValid,
		receipt.ValidationMessage,
		receipt.UploadedAt,
		receipt.UploadedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt %s: %w", receipt.ReceiptID, err)
	}
	return nil
}

func (r *PgxOperationRepository) SoftDeleteReceipt(ctx context.Context, operationID, receiptID, deletedBy string, now time.Time) error {
	query := `
		UPDATE receipts SET deleted_at = $1, deleted_by = $2
		WHERE receipt_id = $3 AND operation_id = $4 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query, now, deletedBy, receiptID, operationID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt %s: %w", receiptID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxOperationRepository) AppendStateChange(ctx context.Context, operationID string, change domain.StateChange) error {
	query := `
		INSERT INTO operation_state_history (operation_id, state, changed_at, changed_by, notes)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query, operationID, string(change.State), change.At, change.By, nullableString(change.Notes))
	if err != nil {
		return fmt.Errorf("failed to append state history for %s: %w", operationID, err)
	}
	return nil
}

func (r *PgxOperationRepository) loadReceipts(ctx context.Context, op *domain.Operation) error {
	query := `
		SELECT receipt_id, operation_id, filename, file_ref,
			amount, deposit_date, issuing_bank, destination_account, beneficiary_name, tracking_key, origin_account,
			is_valid, validation_message, uploaded_at, uploaded_by, deleted_at, deleted_by
		FROM receipts
		WHERE operation_id = $1
		ORDER BY uploaded_at;
	`
	rows, err := r.Pool.Query(ctx, query, op.OperationID)
	if err != nil {
		return fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		var rc domain.Receipt
		var issuingBank, destination, beneficiary, trackingKey, origin, deletedBy *string
		err := rows.Scan(
			&rc.ReceiptID, &rc.OperationID, &rc.Filename, &rc.FileRef,
			&rc.Amount, &rc.DepositDate, &issuingBank, &destination, &beneficiary, &trackingKey, &origin,
			&rc.IsValid, &rc.ValidationMessage, &rc.UploadedAt, &rc.UploadedBy, &rc.DeletedAt, &deletedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to scan receipt: %w", err)
		}
		rc.IssuingBank = deref(issuingBank)
		rc.DestinationAccount = deref(destination)
		rc.BeneficiaryName = deref(beneficiary)
		rc.TrackingKey = deref(trackingKey)
		rc.OriginAccount = deref(origin)
		rc.DeletedBy = deref(deletedBy)
		receipts = append(receipts, rc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read receipts: %w", err)
	}
	op.Receipts = receipts
	return nil
}

func (r *PgxOperationRepository) loadStateHistory(ctx context.Context, op *domain.Operation) error {
	query := `
		SELECT state, changed_at, changed_by, notes
		FROM operation_state_history
		WHERE operation_id = $1
		ORDER BY changed_at, id;
	`
	rows, err := r.Pool.Query(ctx, query, op.OperationID)
	if err != nil {
		return fmt.Errorf("failed to query state history: %w", err)
	}
	defer rows.Close()

	history := []domain.StateChange{}
	for rows.Next() {
		var change domain.StateChange
		var state string
		var notes *string
		if err := rows.Scan(&state, &change.At, &change.By, &notes); err != nil {
			return fmt.Errorf("failed to scan state change: %w", err)
		}
		change.State = domain.OperationState(state)
		change.Notes = deref(notes)
		history = append(history, change)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read state history: %w", err)
	}
	op.StateHistory = history
	return nil
}

// scanOperation reads one row of operationColumns into a domain.Operation.
func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var op domain.Operation
	var origin, state string
	var titularName, titularID, titularBy *string
	var titularUnits *int
	var titularAt *time.Time
	var calc calcColumns
	var code, fileRef *string

	err := row.Scan(
		&op.OperationID, &op.Folio, &op.ClientID, &op.ClientName, &origin, &op.CommissionRate, &state,
		&titularName, &titularID, &titularUnits, &titularAt, &titularBy,
		&calc.total, &calc.rate, &calc.commission, &calc.providerRate, &calc.providerCost, &calc.netCapital, &calc.at, &calc.by,
		&code, &op.LayoutGeneratedAt, &op.LayoutDispatchedAt, &fileRef,
		&op.Version, &op.CreatedAt, &op.CreatedBy, &op.LastUpdatedAt, &op.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	op.Origin = domain.OriginChannel(origin)
	op.State = domain.OperationState(state)
	op.MBControlCode = deref(code)
	op.LayoutFileRef = deref(fileRef)

	if titularName != nil {
		op.Titular = &domain.Titular{
			FullName:   *titularName,
			NationalID: deref(titularID),
			CapturedBy: deref(titularBy),
		}
		if titularUnits != nil {
			op.Titular.UnitCount = *titularUnits
		}
		if titularAt != nil {
			op.Titular.CapturedAt = *titularAt
		}
	}
	op.Calculation = calc.toDomain()
	return &op, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
