package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// --- Mock OperationRepository ---

type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) ListOperations(ctx context.Context, limit, offset int) ([]domain.Operation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) ListOperationsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Operation, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) TrackingKeyInUse(ctx context.Context, trackingKey string) (bool, error) {
	args := m.Called(ctx, trackingKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperationRepository) ListPendingLayoutDispatch(ctx context.Context) ([]domain.Operation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) SaveOperation(ctx context.Context, op domain.Operation) (string, error) {
	args := m.Called(ctx, op)
	return args.String(0), args.Error(1)
}

func (m *MockOperationRepository) UpdateOperation(ctx context.Context, op domain.Operation, expectedVersion int64) error {
	args := m.Called(ctx, op, expectedVersion)
	return args.Error(0)
}

func (m *MockOperationRepository) AppendReceipt(ctx context.Context, receipt domain.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockOperationRepository) SoftDeleteReceipt(ctx context.Context, operationID, receiptID, deletedBy string, now time.Time) error {
	args := m.Called(ctx, operationID, receiptID, deletedBy, now)
	return args.Error(0)
}

func (m *MockOperationRepository) AppendStateChange(ctx context.Context, operationID string, change domain.StateChange) error {
	args := m.Called(ctx, operationID, change)
	return args.Error(0)
}

// --- Mock ClientRepository ---

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) FindClientByBotChatID(ctx context.Context, chatID string) (*domain.Client, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientRepository) ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

// --- Mock DepositAccountRepository ---

type MockDepositAccountRepository struct {
	mock.Mock
}

func (m *MockDepositAccountRepository) SaveAccount(ctx context.Context, account domain.DepositAccount, activate bool) error {
	args := m.Called(ctx, account, activate)
	return args.Error(0)
}

func (m *MockDepositAccountRepository) ActivateAccount(ctx context.Context, accountID, activatedBy string) error {
	args := m.Called(ctx, accountID, activatedBy)
	return args.Error(0)
}

func (m *MockDepositAccountRepository) FindActiveAccount(ctx context.Context) (*domain.DepositAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositAccount), args.Error(1)
}

func (m *MockDepositAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.DepositAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositAccount), args.Error(1)
}

func (m *MockDepositAccountRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.DepositAccount, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DepositAccount), args.Error(1)
}

// --- Mock BeneficiaryRepository ---

type MockBeneficiaryRepository struct {
	mock.Mock
}

func (m *MockBeneficiaryRepository) SaveBeneficiary(ctx context.Context, b domain.FrequentBeneficiary) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) FindBeneficiaryByID(ctx context.Context, beneficiaryID string) (*domain.FrequentBeneficiary, error) {
	args := m.Called(ctx, beneficiaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FrequentBeneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) ListBeneficiariesByClient(ctx context.Context, clientID string) ([]domain.FrequentBeneficiary, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FrequentBeneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) UpdateBeneficiary(ctx context.Context, b domain.FrequentBeneficiary) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) DeleteBeneficiary(ctx context.Context, beneficiaryID string) error {
	args := m.Called(ctx, beneficiaryID)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock external capabilities ---

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, filename string) (domain.ExtractedFields, error) {
	args := m.Called(ctx, data, filename)
	return args.Get(0).(domain.ExtractedFields), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Save(ctx context.Context, operationID, filename string, data []byte) (string, error) {
	args := m.Called(ctx, operationID, filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Load(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWithAttachment(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error {
	args := m.Called(ctx, to, subject, body, attachmentName, attachment)
	return args.Error(0)
}

type MockLayoutService struct {
	mock.Mock
}

func (m *MockLayoutService) GenerateForOperation(ctx context.Context, operationID string) error {
	args := m.Called(ctx, operationID)
	return args.Error(0)
}

func (m *MockLayoutService) DispatchPending(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
