package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

var (
	ErrClientNotActive       = errors.New("client is not active")
	ErrOperationTerminal     = errors.New("operation is in a terminal state")
	ErrOperationReadOnly     = errors.New("operation is read-only (mirrored mode)")
	ErrOperationClosed       = errors.New("operation no longer accepts receipts")
	ErrInvalidTransition     = errors.New("state transition not allowed")
	ErrTitularAlreadySet     = errors.New("titular already captured for this operation")
	ErrTitularRequired       = errors.New("titular must be captured before calculating")
	ErrNoValidReceipts       = errors.New("operation has no valid receipts")
	ErrCalculationExists     = errors.New("calculation already exists; an explicit rate override is required to replace it")
	ErrCalculationRequired   = errors.New("calculation must exist before confirmation")
	ErrMissingCommissionRate = errors.New("no commission rate available; the client default is pending")
	ErrCodeAlreadyAssigned   = errors.New("MBControl code already assigned")
)

const systemActor = "sistema"

// operationService owns the operation aggregate: creation, the state
// machine, titular capture, calculation and code registration. The receipt
// intake methods live in receipt_service.go on the same struct.
type operationService struct {
	opRepo      portsrepo.OperationRepositoryFacade
	clientRepo  portsrepo.ClientReader
	accountRepo portsrepo.DepositAccountRepository
	extractor   portssvc.ReceiptExtractor
	files       portssvc.FileStore
	layout      portssvc.LayoutSvc
	maxUpload   int64
}

// OperationServiceOption configures optional dependencies.
type OperationServiceOption func(*operationService)

// WithReceiptExtractor wires the external OCR capability.
func WithReceiptExtractor(e portssvc.ReceiptExtractor) OperationServiceOption {
	return func(s *operationService) { s.extractor = e }
}

// WithFileStore wires raw receipt file persistence.
func WithFileStore(f portssvc.FileStore) OperationServiceOption {
	return func(s *operationService) { s.files = f }
}

// WithLayoutService wires the disbursement-layout trigger.
func WithLayoutService(l portssvc.LayoutSvc) OperationServiceOption {
	return func(s *operationService) { s.layout = l }
}

// WithMaxUploadBytes overrides the receipt upload size ceiling.
func WithMaxUploadBytes(n int64) OperationServiceOption {
	return func(s *operationService) { s.maxUpload = n }
}

// NewOperationService creates a new OperationService.
func NewOperationService(
	opRepo portsrepo.OperationRepositoryFacade,
	clientRepo portsrepo.ClientReader,
	accountRepo portsrepo.DepositAccountRepository,
	options ...OperationServiceOption,
) portssvc.OperationSvcFacade {
	svc := &operationService{
		opRepo:      opRepo,
		clientRepo:  clientRepo,
		accountRepo: accountRepo,
		maxUpload:   10 << 20,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.OperationSvcFacade = (*operationService)(nil)

func (s *operationService) CreateOperation(ctx context.Context, req dto.CreateOperationRequest, creatorUserID string) (*domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	client, err := s.clientRepo.FindClientByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.CanOperate() {
		return nil, fmt.Errorf("%w: estado %s", ErrClientNotActive, client.Status)
	}

	// Commission is resolved at creation: per-operation override wins,
	// otherwise the client default. A missing rate is tolerated here and
	// rejected at calculation time.
	rate := decimal.Decimal{}
	switch {
	case req.CommissionRate != nil:
		if req.CommissionRate.IsNegative() {
			return nil, fmt.Errorf("%w: la comisión no puede ser negativa", apperrors.ErrValidation)
		}
		rate = *req.CommissionRate
	case client.DefaultCommissionRate != nil:
		rate = *client.DefaultCommissionRate
	}

	origin := req.Origin
	if origin == "" {
		origin = domain.OriginWeb
	}

	now := time.Now()
	op := domain.Operation{
		OperationID:    uuid.NewString(),
		ClientID:       client.ClientID,
		ClientName:     client.Name,
		Origin:         origin,
		CommissionRate: rate,
		State:          domain.StateAwaitingReceipts,
		StateHistory: []domain.StateChange{{
			State: domain.StateAwaitingReceipts,
			At:    now,
			By:    creatorUserID,
			Notes: "creación",
		}},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	folio, err := s.opRepo.SaveOperation(ctx, op)
	if err != nil {
		logger.Error("Failed to save operation", slog.String("error", err.Error()))
		return nil, err
	}
	op.Folio = folio

	logger.Info("Operation created",
		slog.String("operation_id", op.OperationID),
		slog.String("folio", op.Folio),
		slog.String("client_id", op.ClientID))
	return &op, nil
}

func (s *operationService) GetOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	return s.opRepo.FindOperationByID(ctx, operationID)
}

func (s *operationService) ListOperations(ctx context.Context, limit, offset int) ([]domain.Operation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.opRepo.ListOperations(ctx, limit, offset)
}

func (s *operationService) ListOperationsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Operation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.opRepo.ListOperationsByClient(ctx, clientID, limit, offset)
}

// transition moves op forward and records the history entry. The caller is
// responsible for having validated the transition; this only mutates the
// in-memory aggregate.
func (s *operationService) transition(op *domain.Operation, to domain.OperationState, by, notes string) {
	now := time.Now()
	op.State = to
	op.StateHistory = append(op.StateHistory, domain.StateChange{State: to, At: now, By: by, Notes: notes})
	op.LastUpdatedAt = now
	op.LastUpdatedBy = by
}

// persist writes the aggregate with the version it was loaded at and appends
// any state-history entries added since then.
func (s *operationService) persist(ctx context.Context, op *domain.Operation, loadedVersion int64, newChanges int) error {
	if err := s.opRepo.UpdateOperation(ctx, *op, loadedVersion); err != nil {
		return err
	}
	for _, change := range op.StateHistory[len(op.StateHistory)-newChanges:] {
		if err := s.opRepo.AppendStateChange(ctx, op.OperationID, change); err != nil {
			return err
		}
	}
	op.Version = loadedVersion + 1
	return nil
}

func (s *operationService) CloseIntake(ctx context.Context, operationID, userID string) (*domain.Operation, error) {
	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.State.IsTerminal() {
		return nil, ErrOperationTerminal
	}
	if op.State != domain.StateValidatingReceipts {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, op.State, domain.StateAwaitingTitular)
	}
	if !op.HasValidReceipt() {
		return nil, ErrNoValidReceipts
	}

	loaded := op.Version
	s.transition(op, domain.StateAwaitingTitular, userID, "captura de comprobantes cerrada")
	if err := s.persist(ctx, op, loaded, 1); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *operationService) SetTitular(ctx context.Context, operationID string, req dto.SetTitularRequest, userID string) (*domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := domain.ValidateBeneficiaryName(req.FullName); err != nil {
		return nil, err
	}
	if err := domain.ValidateNationalID(req.NationalID); err != nil {
		return nil, err
	}
	if req.UnitCount < 1 {
		return nil, fmt.Errorf("%w: la cantidad de ligas debe ser al menos 1", apperrors.ErrValidation)
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
	if op.Titular != nil {
		return nil, ErrTitularAlreadySet
	}
	if !op.HasValidReceipt() {
		return nil, ErrNoValidReceipts
	}

	loaded := op.Version
	changes := 0

	// Titular capture on an open intake is itself evidence that intake is
	// complete, so the close-intake transition happens implicitly here.
	if op.State == domain.StateValidatingReceipts {
		s.transition(op, domain.StateAwaitingTitular, userID, "captura cerrada por registro de titular")
		changes++
	}
	if op.State != domain.StateAwaitingTitular {
		return nil, fmt.Errorf("%w: titular no se puede registrar en estado %s", ErrInvalidTransition, op.State)
	}

	now := time.Now()
	op.Titular = &domain.Titular{
		FullName:   domain.NormalizeBeneficiaryName(req.FullName),
		NationalID: req.NationalID,
		UnitCount:  req.UnitCount,
		CapturedAt: now,
		CapturedBy: userID,
	}
	op.LastUpdatedAt = now
	op.LastUpdatedBy = userID

	if err := s.persist(ctx, op, loaded, changes); err != nil {
		return nil, err
	}

	logger.Info("Titular captured", slog.String("operation_id", op.OperationID))
	return op, nil
}

func (s *operationService) Calculate(ctx context.Context, operationID string, overrideRate *decimal.Decimal, userID string) (*domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

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
	if op.Titular == nil {
		return nil, ErrTitularRequired
	}
	if op.Calculation != nil && overrideRate == nil {
		return nil, ErrCalculationExists
	}

	rate := op.CommissionRate
	if overrideRate != nil {
		if overrideRate.IsNegative() {
			return nil, fmt.Errorf("%w: la comisión no puede ser negativa", apperrors.ErrValidation)
		}
		rate = *overrideRate
	}
	if rate.IsZero() {
		return nil, ErrMissingCommissionRate
	}

	total := decimal.Zero
	for _, r := range op.ValidReceipts() {
		total = total.Add(r.Amount)
	}
	if total.IsZero() {
		return nil, ErrNoValidReceipts
	}

	calc := domain.NewCalculation(total, rate, time.Now(), userID)
	loaded := op.Version
	changes := 0

	op.Calculation = &calc
	op.CommissionRate = rate
	if op.State == domain.StateAwaitingTitular {
		s.transition(op, domain.StateAwaitingClientOK, userID, "cálculo generado")
		changes++
	}

	if err := s.persist(ctx, op, loaded, changes); err != nil {
		return nil, err
	}

	logger.Info("Calculation computed",
		slog.String("operation_id", op.OperationID),
		slog.String("total", calc.Total.String()),
		slog.String("net_capital", calc.NetCapital.String()))
	return op, nil
}

func (s *operationService) Confirm(ctx context.Context, operationID, userID string) (*domain.Operation, error) {
	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.State.IsTerminal() {
		return nil, ErrOperationTerminal
	}
	if op.State != domain.StateAwaitingClientOK {
		return nil, fmt.Errorf("%w: confirmación no permitida en estado %s", ErrInvalidTransition, op.State)
	}
	if op.Calculation == nil {
		return nil, ErrCalculationRequired
	}

	loaded := op.Version
	s.transition(op, domain.StateDataComplete, userID, "confirmado")
	if err := s.persist(ctx, op, loaded, 1); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *operationService) RegisterMBControlCode(ctx context.Context, operationID, code, userID string) (*domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if code == "" {
		return nil, fmt.Errorf("%w: la clave MBControl es obligatoria", apperrors.ErrValidation)
	}

	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.State.IsTerminal() {
		return nil, ErrOperationTerminal
	}
	if op.MBControlCode != "" {
		return nil, ErrCodeAlreadyAssigned
	}
	if op.State != domain.StateDataComplete {
		return nil, fmt.Errorf("%w: la clave solo se registra con datos completos (estado %s)", ErrInvalidTransition, op.State)
	}

	loaded := op.Version
	op.MBControlCode = code
	s.transition(op, domain.StateAwaitingSystemCode, userID, "clave MBControl registrada")
	s.transition(op, domain.StatePendingProviderPay, systemActor, "orden interna generada")

	if err := s.persist(ctx, op, loaded, 2); err != nil {
		return nil, err
	}

	logger.Info("MBControl code registered",
		slog.String("operation_id", op.OperationID),
		slog.String("code", code))

	// Layout generation is triggered once per operation. The call is
	// best-effort here: the layout service keeps its own idempotency guard
	// and the scheduler retries anything left pending.
	if s.layout != nil {
		if err := s.layout.GenerateForOperation(ctx, op.OperationID); err != nil {
			logger.Warn("Layout generation deferred to scheduler", slog.String("operation_id", op.OperationID), slog.String("error", err.Error()))
		}
	}
	return op, nil
}

func (s *operationService) Advance(ctx context.Context, operationID, userID, notes string) (*domain.Operation, error) {
	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.State.IsTerminal() {
		return nil, ErrOperationTerminal
	}

	// Manual advances cover the staff-driven tail of the happy path. The
	// earlier transitions each have a dedicated action with its own guards.
	if op.State.Rank() < domain.StatePendingProviderPay.Rank() {
		return nil, fmt.Errorf("%w: avance manual no permitido en estado %s", ErrInvalidTransition, op.State)
	}
	next, ok := op.State.Next()
	if !ok {
		return nil, fmt.Errorf("%w: no hay estado siguiente desde %s", ErrInvalidTransition, op.State)
	}

	loaded := op.Version
	s.transition(op, next, userID, notes)
	if err := s.persist(ctx, op, loaded, 1); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *operationService) Cancel(ctx context.Context, operationID, userID, notes string) (*domain.Operation, error) {
	return s.terminate(ctx, operationID, domain.StateCancelled, userID, notes)
}

func (s *operationService) Reject(ctx context.Context, operationID, userID, notes string) (*domain.Operation, error) {
	return s.terminate(ctx, operationID, domain.StateRejected, userID, notes)
}

func (s *operationService) terminate(ctx context.Context, operationID string, to domain.OperationState, userID, notes string) (*domain.Operation, error) {
	op, err := s.opRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.State.IsTerminal() {
		return nil, ErrOperationTerminal
	}

	loaded := op.Version
	s.transition(op, to, userID, notes)
	if err := s.persist(ctx, op, loaded, 1); err != nil {
		return nil, err
	}

	middleware.GetLoggerFromCtx(ctx).Info("Operation terminated",
		slog.String("operation_id", op.OperationID),
		slog.String("state", string(to)))
	return op, nil
}
