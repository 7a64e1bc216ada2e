package services

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// ReceiptExtractor is the external OCR capability. Implementations must
// honor the context deadline; the core distinguishes extraction failure
// (retryable dependency error) from a receipt that fails validation.
type ReceiptExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (domain.ExtractedFields, error)
}

// FileStore persists raw receipt files and returns an opaque reference.
type FileStore interface {
	Save(ctx context.Context, operationID, filename string, data []byte) (ref string, err error)
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Mailer delivers a generated layout workbook to treasury.
type Mailer interface {
	SendWithAttachment(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error
}

// LayoutSvc generates and dispatches the SPEI disbursement layout for an
// operation. Generation is exactly-once per operation id; dispatch is
// retried by the scheduler until it succeeds, and retries are idempotent.
type LayoutSvc interface {
	GenerateForOperation(ctx context.Context, operationID string) error
	DispatchPending(ctx context.Context) error
}
