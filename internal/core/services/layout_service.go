package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

var (
	ErrLayoutNotReady     = errors.New("operation is not ready for layout generation")
	ErrLayoutAlreadyBuilt = errors.New("layout already generated for this operation")
)

// Disbursement rows are capped per SPEI transfer. Amounts above the cap are
// split into random-sized chunks so sibling transfers do not share a size.
var (
	partitionCap      = decimal.NewFromInt(350000)
	partitionChunkMin = decimal.NewFromInt(300000)
	partitionChunkMax = decimal.RequireFromString("349999.99")
)

// layoutService builds the SPEI disbursement workbook for a coded operation
// and mails it to treasury. Generation happens once per operation; delivery
// is retried by the scheduler until the dispatch timestamp is set.
type layoutService struct {
	opRepo       portsrepo.OperationRepositoryFacade
	files        portssvc.FileStore
	mailer       portssvc.Mailer
	treasuryAddr string
	rng          *rand.Rand
}

// NewLayoutService creates a new LayoutService.
func NewLayoutService(opRepo portsrepo.OperationRepositoryFacade, files portssvc.FileStore, mailer portssvc.Mailer, treasuryAddr string) portssvc.LayoutSvc {
	return &layoutService{
		opRepo:       opRepo,
		files:        files,
		mailer:       mailer,
		treasuryAddr: treasuryAddr,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var _ portssvc.LayoutSvc = (*layoutService)(nil)

func (s *layoutService) GenerateForOperation(ctx context.Context, operationID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return err
	}
	if op.LayoutGeneratedAt != nil {
		return ErrLayoutAlreadyBuilt
	}
	if op.MBControlCode == "" || op.Calculation == nil || op.Titular == nil {
		return ErrLayoutNotReady
	}

	workbook, err := s.buildWorkbook(op)
	if err != nil {
		return fmt.Errorf("failed to build layout workbook: %w", err)
	}

	ref, err := s.files.Save(ctx, op.OperationID, layoutFilename(op), workbook)
	if err != nil {
		return fmt.Errorf("failed to store layout workbook: %w", err)
	}

	now := time.Now()
	loaded := op.Version
	op.LayoutGeneratedAt = &now
	op.LayoutFileRef = ref
	op.LastUpdatedAt = now
	op.LastUpdatedBy = systemActor
	if err := s.opRepo.UpdateOperation(ctx, *op, loaded); err != nil {
		return err
	}
	op.Version = loaded + 1

	logger.Info("Layout generated",
		slog.String("operation_id", op.OperationID),
		slog.String("folio", op.Folio))

	// Dispatch immediately; a failure here leaves the operation for the
	// scheduler, which retries everything generated-but-undelivered.
	if err := s.dispatch(ctx, op); err != nil {
		logger.Warn("Layout dispatch failed, scheduler will retry",
			slog.String("operation_id", op.OperationID),
			slog.String("error", err.Error()))
	}
	return nil
}

func (s *layoutService) DispatchPending(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	pending, err := s.opRepo.ListPendingLayoutDispatch(ctx)
	if err != nil {
		return err
	}

	var failed int
	for i := range pending {
		op := &pending[i]
		if op.LayoutGeneratedAt == nil {
			if err := s.GenerateForOperation(ctx, op.OperationID); err != nil {
				logger.Warn("Deferred layout generation failed",
					slog.String("operation_id", op.OperationID),
					slog.String("error", err.Error()))
				failed++
			}
			continue
		}
		if err := s.dispatch(ctx, op); err != nil {
			logger.Warn("Layout dispatch retry failed",
				slog.String("operation_id", op.OperationID),
				slog.String("error", err.Error()))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("layout dispatch: %d of %d pending operations failed", failed, len(pending))
	}
	return nil
}

func (s *layoutService) dispatch(ctx context.Context, op *domain.Operation) error {
	if op.LayoutDispatchedAt != nil {
		return nil
	}

	workbook, err := s.files.Load(ctx, op.LayoutFileRef)
	if err != nil {
		return fmt.Errorf("failed to load layout workbook: %w", err)
	}

	subject := fmt.Sprintf("Layout de dispersión %s", op.Folio)
	body := fmt.Sprintf(
		"Se adjunta el layout de dispersión de la operación %s (clave %s) por un capital neto de %s.",
		op.Folio, op.MBControlCode, op.Calculation.NetCapital.StringFixed(2))
	if err := s.mailer.SendWithAttachment(ctx, s.treasuryAddr, subject, body, layoutFilename(op), workbook); err != nil {
		return err
	}

	now := time.Now()
	loaded := op.Version
	op.LayoutDispatchedAt = &now
	op.LastUpdatedAt = now
	op.LastUpdatedBy = systemActor
	if err := s.opRepo.UpdateOperation(ctx, *op, loaded); err != nil {
		return err
	}
	op.Version = loaded + 1

	middleware.GetLoggerFromCtx(ctx).Info("Layout dispatched",
		slog.String("operation_id", op.OperationID),
		slog.String("folio", op.Folio),
		slog.String("treasury", s.treasuryAddr))
	return nil
}

func layoutFilename(op *domain.Operation) string {
	return fmt.Sprintf("layout_%s.xlsx", op.Folio)
}

// buildWorkbook renders the treasury layout: one row per SPEI transfer with
// the beneficiary CLABE placeholder, titular name, payment concept and amount.
func (s *layoutService) buildWorkbook(op *domain.Operation) ([]byte, error) {
	chunks := s.partitionAmount(op.Calculation.NetCapital)
	concept := fmt.Sprintf("PAGO NETCASH %s CLAVE %s", op.Folio, op.MBControlCode)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Layout"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Clabe", "Titular", "Concepto", "Monto"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, amount := range chunks {
		row := i + 2
		values := []interface{}{
			"",
			op.Titular.FullName,
			concept,
			amount.InexactFloat64(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// partitionAmount splits an amount into transfer-sized chunks. Amounts at or
// under the cap ship as a single transfer; larger ones are carved into random
// chunks between the partition bounds, with the remainder last.
func (s *layoutService) partitionAmount(amount decimal.Decimal) []decimal.Decimal {
	if amount.LessThanOrEqual(partitionCap) {
		return []decimal.Decimal{amount}
	}

	span := partitionChunkMax.Sub(partitionChunkMin)
	var chunks []decimal.Decimal
	remaining := amount
	for remaining.GreaterThan(partitionCap) {
		offset := decimal.NewFromFloat(s.rng.Float64()).Mul(span).Round(2)
		chunk := partitionChunkMin.Add(offset)
		chunks = append(chunks, chunk)
		remaining = remaining.Sub(chunk)
	}
	if remaining.IsPositive() {
		chunks = append(chunks, remaining)
	}
	return chunks
}
