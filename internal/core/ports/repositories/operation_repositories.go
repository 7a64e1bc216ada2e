package repositories

import (
	"context"
	"time"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// OperationReader defines read operations for the operation aggregate.
type OperationReader interface {
	// FindOperationByID retrieves an operation with its receipts, titular,
	// calculation and state history.
	FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error)

	// ListOperations retrieves a paginated list, newest first.
	ListOperations(ctx context.Context, limit int, offset int) ([]domain.Operation, error)

	// ListOperationsByClient retrieves the operations of one client, newest first.
	ListOperationsByClient(ctx context.Context, clientID string, limit int, offset int) ([]domain.Operation, error)

	// TrackingKeyInUse reports whether a receipt tracking key is already
	// held by a valid, non-deleted receipt anywhere in the system. Receipts
	// of cancelled or rejected operations do not count: their deposits were
	// never consumed.
	TrackingKeyInUse(ctx context.Context, trackingKey string) (bool, error)

	// ListPendingLayoutDispatch returns operations with an assigned
	// MBControl code whose layout is not yet generated or not yet
	// delivered to treasury.
	ListPendingLayoutDispatch(ctx context.Context) ([]domain.Operation, error)
}

// OperationWriter defines write operations for the operation aggregate.
type OperationWriter interface {
	// SaveOperation persists a new operation and assigns its folio from the
	// folio sequence.
	SaveOperation(ctx context.Context, op domain.Operation) (folio string, err error)

	// UpdateOperation persists aggregate changes with an optimistic version
	// check. It returns apperrors.ErrConflict when expectedVersion no longer
	// matches the stored row, leaving the row untouched.
	UpdateOperation(ctx context.Context, op domain.Operation, expectedVersion int64) error

	// AppendReceipt stores a new receipt row for the operation.
	AppendReceipt(ctx context.Context, receipt domain.Receipt) error

	// SoftDeleteReceipt marks one receipt as deleted without reordering the
	// remaining ones.
	SoftDeleteReceipt(ctx context.Context, operationID, receiptID, deletedBy string, now time.Time) error

	// AppendStateChange records one state-history entry.
	AppendStateChange(ctx context.Context, operationID string, change domain.StateChange) error
}

// OperationRepositoryFacade combines all operation repository interfaces.
type OperationRepositoryFacade interface {
	OperationReader
	OperationWriter
}
