package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/core/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

type OperationServiceTestSuite struct {
	suite.Suite
	ctx             context.Context
	mockOpRepo      *MockOperationRepository
	mockClientRepo  *MockClientRepository
	mockAccountRepo *MockDepositAccountRepository
	mockLayout      *MockLayoutService
	service         portssvc.OperationSvcFacade
}

func (s *OperationServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockOpRepo = new(MockOperationRepository)
	s.mockClientRepo = new(MockClientRepository)
	s.mockAccountRepo = new(MockDepositAccountRepository)
	s.mockLayout = new(MockLayoutService)
	s.service = services.NewOperationService(
		s.mockOpRepo,
		s.mockClientRepo,
		s.mockAccountRepo,
		services.WithLayoutService(s.mockLayout),
	)
}

func activeClient() *domain.Client {
	rate := decimal.RequireFromString("0.65")
	return &domain.Client{
		ClientID:              "client-1",
		Name:                  "Comercial del Norte",
		Status:                domain.ClientActive,
		DefaultCommissionRate: &rate,
	}
}

func validReceipt(amount string) domain.Receipt {
	now := time.Now()
	return domain.Receipt{
		ReceiptID:   "rcpt-1",
		Amount:      decimal.RequireFromString(amount),
		DepositDate: &now,
		IssuingBank: "BBVA",
		TrackingKey: "MBAN01002301230000000001",
		IsValid:     true,
	}
}

func operationAt(state domain.OperationState) *domain.Operation {
	return &domain.Operation{
		OperationID:    "op-1",
		Folio:          "NC-000007",
		ClientID:       "client-1",
		Origin:         domain.OriginWeb,
		CommissionRate: decimal.RequireFromString("0.65"),
		State:          state,
		Version:        3,
	}
}

func (s *OperationServiceTestSuite) TestCreateOperationSuccess() {
	s.mockClientRepo.On("FindClientByID", s.ctx, "client-1").Return(activeClient(), nil).Once()
	s.mockOpRepo.On("SaveOperation", s.ctx, mock.MatchedBy(func(op domain.Operation) bool {
		return op.ClientID == "client-1" &&
			op.State == domain.StateAwaitingReceipts &&
			op.CommissionRate.Equal(decimal.RequireFromString("0.65")) &&
			len(op.StateHistory) == 1
	})).Return("NC-000042", nil).Once()

	op, err := s.service.CreateOperation(s.ctx, dto.CreateOperationRequest{ClientID: "client-1"}, "user-1")

	s.Require().NoError(err)
	s.Equal("NC-000042", op.Folio)
	s.Equal(domain.StateAwaitingReceipts, op.State)
	s.Equal(domain.OriginWeb, op.Origin)
	s.mockOpRepo.AssertExpectations(s.T())
	s.mockClientRepo.AssertExpectations(s.T())
}

func (s *OperationServiceTestSuite) TestCreateOperationOverrideRateWins() {
	override := decimal.RequireFromString("1.25")
	s.mockClientRepo.On("FindClientByID", s.ctx, "client-1").Return(activeClient(), nil).Once()
	s.mockOpRepo.On("SaveOperation", s.ctx, mock.MatchedBy(func(op domain.Operation) bool {
		return op.CommissionRate.Equal(override)
	})).Return("NC-000043", nil).Once()

	_, err := s.service.CreateOperation(s.ctx, dto.CreateOperationRequest{
		ClientID:       "client-1",
		CommissionRate: &override,
	}, "user-1")

	s.Require().NoError(err)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *OperationServiceTestSuite) TestCreateOperationInactiveClient() {
	client := activeClient()
	client.Status = domain.ClientInactive
	s.mockClientRepo.On("FindClientByID", s.ctx, "client-1").Return(client, nil).Once()

	_, err := s.service.CreateOperation(s.ctx, dto.CreateOperationRequest{ClientID: "client-1"}, "user-1")

	s.ErrorIs(err, services.ErrClientNotActive)
	s.mockOpRepo.AssertNotCalled(s.T(), "SaveOperation", mock.Anything, mock.Anything)
}

func (s *OperationServiceTestSuite) TestSetTitularClosesIntakeImplicitly() {
	op := operationAt(domain.StateValidatingReceipts)
	op.Receipts = []domain.Receipt{validReceipt("10000")}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.MatchedBy(func(updated domain.Operation) bool {
		return updated.State == domain.StateAwaitingTitular && updated.Titular != nil
	}), int64(3)).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.MatchedBy(func(c domain.StateChange) bool {
		return c.State == domain.StateAwaitingTitular
	})).Return(nil).Once()

	updated, err := s.service.SetTitular(s.ctx, "op-1", dto.SetTitularRequest{
		FullName:   "juan pérez garcía",
		NationalID: "1234567890",
		UnitCount:  2,
	}, "user-1")

	s.Require().NoError(err)
	s.Equal(domain.StateAwaitingTitular, updated.State)
	s.Equal("JUAN PÉREZ GARCÍA", updated.Titular.FullName)
	s.Equal(int64(4), updated.Version)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *OperationServiceTestSuite) TestSetTitularOnlyOnce() {
	op := operationAt(domain.StateAwaitingTitular)
	op.Receipts = []domain.Receipt{validReceipt("10000")}
	op.Titular = &domain.Titular{FullName: "MARÍA LÓPEZ HERNÁNDEZ", NationalID: "0987654321", UnitCount: 1}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.SetTitular(s.ctx, "op-1", dto.SetTitularRequest{
		FullName:   "Juan Pérez García",
		NationalID: "1234567890",
		UnitCount:  1,
	}, "user-1")

	s.ErrorIs(err, services.ErrTitularAlreadySet)
	s.mockOpRepo.AssertNotCalled(s.T(), "UpdateOperation", mock.Anything, mock.Anything, mock.Anything)
}

func (s *OperationServiceTestSuite) TestSetTitularRejectedOnMirroredBotOperation() {
	op := operationAt(domain.StateDataComplete)
	op.Origin = domain.OriginBot
	op.Receipts = []domain.Receipt{validReceipt("10000")}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.SetTitular(s.ctx, "op-1", dto.SetTitularRequest{
		FullName:   "Juan Pérez García",
		NationalID: "1234567890",
		UnitCount:  1,
	}, "user-1")

	s.ErrorIs(err, services.ErrOperationReadOnly)
}

func (s *OperationServiceTestSuite) TestCalculateRequiresTitular() {
	op := operationAt(domain.StateAwaitingTitular)
	op.Receipts = []domain.Receipt{validReceipt("10000")}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.Calculate(s.ctx, "op-1", nil, "user-1")

	s.ErrorIs(err, services.ErrTitularRequired)
}

func (s *OperationServiceTestSuite) TestCalculateRequiresCommissionRate() {
	op := operationAt(domain.StateAwaitingTitular)
	op.CommissionRate = decimal.Zero
	op.Receipts = []domain.Receipt{validReceipt("10000")}
	op.Titular = &domain.Titular{FullName: "JUAN PÉREZ GARCÍA", NationalID: "1234567890", UnitCount: 1}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.Calculate(s.ctx, "op-1", nil, "user-1")

	s.ErrorIs(err, services.ErrMissingCommissionRate)
}

func (s *OperationServiceTestSuite) TestCalculateSuccess() {
	op := operationAt(domain.StateAwaitingTitular)
	op.Receipts = []domain.Receipt{validReceipt("10000")}
	op.Titular = &domain.Titular{FullName: "JUAN PÉREZ GARCÍA", NationalID: "1234567890", UnitCount: 1}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.MatchedBy(func(updated domain.Operation) bool {
		return updated.State == domain.StateAwaitingClientOK && updated.Calculation != nil
	}), int64(3)).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.Anything).Return(nil).Once()

	updated, err := s.service.Calculate(s.ctx, "op-1", nil, "user-1")

	s.Require().NoError(err)
	s.Equal(domain.StateAwaitingClientOK, updated.State)
	s.True(updated.Calculation.ClientCommission.Equal(decimal.RequireFromString("65.00")),
		"commission was %s", updated.Calculation.ClientCommission)
	s.True(updated.Calculation.NetCapital.Equal(decimal.RequireFromString("9935.00")),
		"net capital was %s", updated.Calculation.NetCapital)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *OperationServiceTestSuite) TestCalculateRejectsRepeatWithoutOverride() {
	op := operationAt(domain.StateAwaitingClientOK)
	op.Receipts = []domain.Receipt{validReceipt("10000")}
	op.Titular = &domain.Titular{FullName: "JUAN PÉREZ GARCÍA", NationalID: "1234567890", UnitCount: 1}
	calc := domain.NewCalculation(decimal.RequireFromString("10000"), decimal.RequireFromString("0.65"), time.Now(), "user-1")
	op.Calculation = &calc

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.Calculate(s.ctx, "op-1", nil, "user-1")

	s.ErrorIs(err, services.ErrCalculationExists)
}

func (s *OperationServiceTestSuite) TestConfirmSurfacesVersionConflict() {
	op := operationAt(domain.StateAwaitingClientOK)
	calc := domain.NewCalculation(decimal.RequireFromString("10000"), decimal.RequireFromString("0.65"), time.Now(), "user-1")
	op.Calculation = &calc

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.Anything, int64(3)).
		Return(apperrors.ErrConflict).Once()

	_, err := s.service.Confirm(s.ctx, "op-1", "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockOpRepo.AssertNotCalled(s.T(), "AppendStateChange", mock.Anything, mock.Anything, mock.Anything)
}

func (s *OperationServiceTestSuite) TestRegisterMBControlCodeDoubleTransition() {
	op := operationAt(domain.StateDataComplete)
	op.Titular = &domain.Titular{FullName: "JUAN PÉREZ GARCÍA", NationalID: "1234567890", UnitCount: 1}
	calc := domain.NewCalculation(decimal.RequireFromString("10000"), decimal.RequireFromString("0.65"), time.Now(), "user-1")
	op.Calculation = &calc

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.MatchedBy(func(updated domain.Operation) bool {
		return updated.State == domain.StatePendingProviderPay && updated.MBControlCode == "MB-9912"
	}), int64(3)).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.MatchedBy(func(c domain.StateChange) bool {
		return c.State == domain.StateAwaitingSystemCode
	})).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.MatchedBy(func(c domain.StateChange) bool {
		return c.State == domain.StatePendingProviderPay && c.By == "sistema"
	})).Return(nil).Once()
	s.mockLayout.On("GenerateForOperation", s.ctx, "op-1").Return(nil).Once()

	updated, err := s.service.RegisterMBControlCode(s.ctx, "op-1", "MB-9912", "user-1")

	s.Require().NoError(err)
	s.Equal(domain.StatePendingProviderPay, updated.State)
	s.mockOpRepo.AssertExpectations(s.T())
	s.mockLayout.AssertExpectations(s.T())
}

func (s *OperationServiceTestSuite) TestRegisterMBControlCodeOnlyOnce() {
	op := operationAt(domain.StatePendingProviderPay)
	op.MBControlCode = "MB-9912"

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.RegisterMBControlCode(s.ctx, "op-1", "MB-0001", "user-1")

	s.ErrorIs(err, services.ErrCodeAlreadyAssigned)
	s.mockLayout.AssertNotCalled(s.T(), "GenerateForOperation", mock.Anything, mock.Anything)
}

func (s *OperationServiceTestSuite) TestAdvanceRejectedBeforeProviderPay() {
	op := operationAt(domain.StateAwaitingClientOK)

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.Advance(s.ctx, "op-1", "user-1", "")

	s.ErrorIs(err, services.ErrInvalidTransition)
}

func (s *OperationServiceTestSuite) TestAdvanceSingleStep() {
	op := operationAt(domain.StatePendingProviderPay)

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.MatchedBy(func(updated domain.Operation) bool {
		return updated.State == domain.StateAwaitingTreasury
	}), int64(3)).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.Anything).Return(nil).Once()

	updated, err := s.service.Advance(s.ctx, "op-1", "user-1", "pago enviado")

	s.Require().NoError(err)
	s.Equal(domain.StateAwaitingTreasury, updated.State)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *OperationServiceTestSuite) TestCancelRejectedOnTerminalOperation() {
	op := operationAt(domain.StateCompleted)

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.Cancel(s.ctx, "op-1", "user-1", "ya no aplica")

	s.ErrorIs(err, services.ErrOperationTerminal)
}

func (s *OperationServiceTestSuite) TestRejectRecordsNotes() {
	op := operationAt(domain.StateValidatingReceipts)

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.MatchedBy(func(updated domain.Operation) bool {
		return updated.State == domain.StateRejected
	}), int64(3)).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.MatchedBy(func(c domain.StateChange) bool {
		return c.State == domain.StateRejected && c.Notes == "comprobantes ilegibles"
	})).Return(nil).Once()

	updated, err := s.service.Reject(s.ctx, "op-1", "user-1", "comprobantes ilegibles")

	s.Require().NoError(err)
	s.Equal(domain.StateRejected, updated.State)
	s.mockOpRepo.AssertExpectations(s.T())
}

func TestOperationService(t *testing.T) {
	suite.Run(t, new(OperationServiceTestSuite))
}
