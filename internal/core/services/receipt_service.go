package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

var (
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds the upload size limit")
	ErrOcrExtractionFailed  = errors.New("receipt extraction failed, try again")
	ErrEmptyArchive         = errors.New("ZIP archive contains no receipt files")
	ErrExtractorUnavailable = errors.New("receipt extraction is not configured")
)

// zipExtractWorkers bounds concurrent OCR calls when unpacking an archive.
const zipExtractWorkers = 4

var receiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

func (s *operationService) SubmitReceipt(ctx context.Context, operationID string, data []byte, filename, uploadedBy string) ([]domain.Receipt, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if int64(len(data)) > s.maxUpload {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".zip" && !receiptExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	if s.extractor == nil || s.files == nil {
		return nil, ErrExtractorUnavailable
	}

	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.State.IsTerminal() {
		return nil, ErrOperationTerminal
	}
	if op.IsReadOnly() {
		return nil, ErrOperationReadOnly
	}
	if op.State != domain.StateAwaitingReceipts && op.State != domain.StateValidatingReceipts {
		return nil, ErrOperationClosed
	}

	type entry struct {
		name string
		data []byte
	}
	var entries []entry
	if ext == ".zip" {
		unpacked, err := unpackReceiptArchive(data)
		if err != nil {
			return nil, err
		}
		for _, u := range unpacked {
			entries = append(entries, entry{name: u.name, data: u.data})
		}
	} else {
		entries = []entry{{name: filename, data: data}}
	}

	// OCR every entry before persisting anything: a single extraction
	// failure aborts the whole upload so the client can retry it as a unit.
	extracted := make([]domain.ExtractedFields, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(zipExtractWorkers)
	for i := range entries {
		g.Go(func() error {
			fields, err := s.extractor.Extract(gctx, entries[i].data, entries[i].name)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrOcrExtractionFailed, entries[i].name, err)
			}
			extracted[i] = fields
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Receipt extraction failed", slog.String("operation_id", operationID), slog.String("error", err.Error()))
		return nil, err
	}

	receipts := make([]domain.Receipt, 0, len(entries))
	now := time.Now()
	for i, e := range entries {
		ref, err := s.files.Save(ctx, operationID, e.name, e.data)
		if err != nil {
			return nil, fmt.Errorf("failed to store receipt file: %w", err)
		}

		fields := extracted[i]
		receipt := domain.Receipt{
			ReceiptID:          uuid.NewString(),
			OperationID:        operationID,
			Filename:           e.name,
			FileRef:            ref,
			Amount:             fields.Amount,
			DepositDate:        fields.DepositDate,
			IssuingBank:        fields.IssuingBank,
			DestinationAccount: fields.DestinationAccount,
			BeneficiaryName:    fields.BeneficiaryName,
			TrackingKey:        fields.TrackingKey,
			OriginAccount:      fields.OriginAccount,
			UploadedAt:         now,
			UploadedBy:         uploadedBy,
		}
		receipt.IsValid, receipt.ValidationMessage = s.validateReceipt(ctx, op, fields)

		if err := s.opRepo.AppendReceipt(ctx, receipt); err != nil {
			return nil, err
		}
		op.Receipts = append(op.Receipts, receipt)
		receipts = append(receipts, receipt)
	}

	// The first upload, valid or not, opens the validation phase.
	if op.State == domain.StateAwaitingReceipts {
		loaded := op.Version
		s.transition(op, domain.StateValidatingReceipts, uploadedBy, "primer comprobante recibido")
		if err := s.persist(ctx, op, loaded, 1); err != nil {
			return nil, err
		}
	}

	logger.Info("Receipts submitted",
		slog.String("operation_id", operationID),
		slog.Int("count", len(receipts)))
	return receipts, nil
}

// validateReceipt applies the validation rules in order and reports the first
// failure. Order: positive amount, destination matches the active deposit
// account, tracking key unused, required fields present.
func (s *operationService) validateReceipt(ctx context.Context, op *domain.Operation, fields domain.ExtractedFields) (bool, string) {
	if !fields.Amount.IsPositive() {
		return false, "el monto extraído no es mayor a cero"
	}

	active, err := s.accountRepo.FindActiveAccount(ctx)
	if err != nil {
		return false, "no hay cuenta de depósito activa para verificar el destino"
	}
	if fields.DestinationAccount != active.CLABE {
		return false, fmt.Sprintf("la cuenta destino %s no coincide con la cuenta activa", fields.DestinationAccount)
	}

	if fields.TrackingKey == "" {
		return false, "no se extrajo clave de rastreo"
	}
	inUse, err := s.opRepo.TrackingKeyInUse(ctx, fields.TrackingKey)
	if err != nil {
		return false, "no fue posible verificar la clave de rastreo"
	}
	if !inUse {
		// Receipts of this same upload batch are not persisted yet, so a
		// duplicate inside the batch is caught against the aggregate.
		for _, existing := range op.ValidReceipts() {
			if existing.TrackingKey == fields.TrackingKey {
				inUse = true
				break
			}
		}
	}
	if inUse {
		return false, fmt.Sprintf("la clave de rastreo %s ya fue utilizada", fields.TrackingKey)
	}

	if fields.DepositDate == nil || fields.IssuingBank == "" || fields.BeneficiaryName == "" {
		return false, "faltan campos obligatorios en el comprobante (fecha, banco o beneficiario)"
	}
	return true, "comprobante válido"
}

func (s *operationService) DeleteReceipt(ctx context.Context, operationID, receiptID, deletedBy string) error {
	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return err
	}
	if op.State.IsTerminal() {
		return ErrOperationTerminal
	}
	if op.IsReadOnly() {
		return ErrOperationReadOnly
	}

	found := false
	for _, r := range op.Receipts {
		if r.ReceiptID == receiptID && r.DeletedAt == nil {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: comprobante %s", apperrors.ErrNotFound, receiptID)
	}

	if err := s.opRepo.SoftDeleteReceipt(ctx, operationID, receiptID, deletedBy, time.Now()); err != nil {
		return err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Receipt deleted",
		slog.String("operation_id", operationID),
		slog.String("receipt_id", receiptID))
	return nil
}

type archiveEntry struct {
	name string
	data []byte
}

// unpackReceiptArchive reads a ZIP upload and returns its receipt files.
// Directories, hidden files and unsupported extensions are skipped; nested
// archives are rejected.
func unpackReceiptArchive(data []byte) ([]archiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: archivo ZIP ilegible", apperrors.ErrValidation)
	}

	var entries []archiveEntry
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		base := filepath.Base(f.Name)
		if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "__MACOSX") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(base))
		if ext == ".zip" {
			return nil, fmt.Errorf("%w: ZIP anidado no soportado", apperrors.ErrValidation)
		}
		if !receiptExtensions[ext] {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", base, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", base, err)
		}
		entries = append(entries, archiveEntry{name: base, data: content})
	}

	if len(entries) == 0 {
		return nil, ErrEmptyArchive
	}
	return entries, nil
}
