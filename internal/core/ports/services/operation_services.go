package services

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// OperationReaderSvc exposes read access to operations.
type OperationReaderSvc interface {
	GetOperationByID(ctx context.Context, operationID string) (*domain.Operation, error)
	ListOperations(ctx context.Context, limit, offset int) ([]domain.Operation, error)
	ListOperationsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Operation, error)
}

// ReceiptIntakeSvc is the receipt validator: upload, OCR extraction,
// rule validation and soft deletion.
type ReceiptIntakeSvc interface {
	// SubmitReceipt ingests one uploaded file (image, PDF or a ZIP of
	// images) and returns the stored receipts including validity verdicts.
	// A ZIP yields one receipt per entry.
	SubmitReceipt(ctx context.Context, operationID string, data []byte, filename string, uploadedBy string) ([]domain.Receipt, error)

	// DeleteReceipt soft-deletes one receipt by its stable id.
	DeleteReceipt(ctx context.Context, operationID, receiptID, deletedBy string) error
}

// OperationLifecycleSvc owns the operation state machine.
type OperationLifecycleSvc interface {
	CreateOperation(ctx context.Context, req dto.CreateOperationRequest, creatorUserID string) (*domain.Operation, error)

	// CloseIntake signals "done uploading" and moves the operation from
	// VALIDANDO_COMPROBANTES to ESPERANDO_TITULAR.
	CloseIntake(ctx context.Context, operationID, userID string) (*domain.Operation, error)

	// SetTitular captures the recipient once; it implicitly closes intake
	// when receipts are still being validated.
	SetTitular(ctx context.Context, operationID string, req dto.SetTitularRequest, userID string) (*domain.Operation, error)

	// Calculate computes the money snapshot. overrideRate, when non-nil,
	// replaces an existing snapshot; otherwise recalculation is rejected.
	Calculate(ctx context.Context, operationID string, overrideRate *decimal.Decimal, userID string) (*domain.Operation, error)

	// Confirm records the client/staff confirmation of the calculation.
	Confirm(ctx context.Context, operationID, userID string) (*domain.Operation, error)

	// RegisterMBControlCode sets the externally assigned code exactly once
	// and triggers layout generation for the operation.
	RegisterMBControlCode(ctx context.Context, operationID, code, userID string) (*domain.Operation, error)

	// Advance performs a manual single-step forward transition
	// (PENDIENTE_PAGO_PROVEEDOR onward).
	Advance(ctx context.Context, operationID, userID, notes string) (*domain.Operation, error)

	Cancel(ctx context.Context, operationID, userID, notes string) (*domain.Operation, error)
	Reject(ctx context.Context, operationID, userID, notes string) (*domain.Operation, error)
}

// OperationSvcFacade combines every operation-facing service interface.
type OperationSvcFacade interface {
	OperationReaderSvc
	ReceiptIntakeSvc
	OperationLifecycleSvc
}
