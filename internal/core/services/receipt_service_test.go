package services_test

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/core/services"
)

const activeCLABE = "012180001234567895"

type ReceiptServiceTestSuite struct {
	suite.Suite
	ctx             context.Context
	mockOpRepo      *MockOperationRepository
	mockClientRepo  *MockClientRepository
	mockAccountRepo *MockDepositAccountRepository
	mockExtractor   *MockExtractor
	mockFiles       *MockFileStore
	service         portssvc.OperationSvcFacade
}

func (s *ReceiptServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockOpRepo = new(MockOperationRepository)
	s.mockClientRepo = new(MockClientRepository)
	s.mockAccountRepo = new(MockDepositAccountRepository)
	s.mockExtractor = new(MockExtractor)
	s.mockFiles = new(MockFileStore)
	s.service = services.NewOperationService(
		s.mockOpRepo,
		s.mockClientRepo,
		s.mockAccountRepo,
		services.WithReceiptExtractor(s.mockExtractor),
		services.WithFileStore(s.mockFiles),
	)
}

func extractedFields(trackingKey string) domain.ExtractedFields {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return domain.ExtractedFields{
		Amount:             decimal.RequireFromString("12500.50"),
		DepositDate:        &date,
		IssuingBank:        "BBVA",
		DestinationAccount: activeCLABE,
		BeneficiaryName:    "MB COMERCIALIZADORA SA DE CV",
		TrackingKey:        trackingKey,
	}
}

func (s *ReceiptServiceTestSuite) expectActiveAccount() {
	s.mockAccountRepo.On("FindActiveAccount", s.ctx).
		Return(&domain.DepositAccount{AccountID: "acct-1", CLABE: activeCLABE, Active: true}, nil)
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptFirstUploadOpensValidation() {
	op := operationAt(domain.StateAwaitingReceipts)
	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockExtractor.On("Extract", mock.Anything, mock.Anything, "deposito.jpg").
		Return(extractedFields("MBAN01002603100000000001"), nil).Once()
	s.expectActiveAccount()
	s.mockOpRepo.On("TrackingKeyInUse", s.ctx, "MBAN01002603100000000001").Return(false, nil).Once()
	s.mockFiles.On("Save", s.ctx, "op-1", "deposito.jpg", mock.Anything).Return("op-1/ab12_deposito.jpg", nil).Once()
	s.mockOpRepo.On("AppendReceipt", s.ctx, mock.MatchedBy(func(r domain.Receipt) bool {
		return r.IsValid && r.OperationID == "op-1"
	})).Return(nil).Once()
	s.mockOpRepo.On("UpdateOperation", s.ctx, mock.MatchedBy(func(updated domain.Operation) bool {
		return updated.State == domain.StateValidatingReceipts
	}), int64(3)).Return(nil).Once()
	s.mockOpRepo.On("AppendStateChange", s.ctx, "op-1", mock.Anything).Return(nil).Once()

	receipts, err := s.service.SubmitReceipt(s.ctx, "op-1", []byte("jpegbytes"), "deposito.jpg", "user-1")

	s.Require().NoError(err)
	s.Require().Len(receipts, 1)
	s.True(receipts[0].IsValid)
	s.Equal("comprobante válido", receipts[0].ValidationMessage)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptDuplicateTrackingKeyPersistsInvalid() {
	op := operationAt(domain.StateValidatingReceipts)
	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockExtractor.On("Extract", mock.Anything, mock.Anything, "deposito.jpg").
		Return(extractedFields("MBAN01002603100000000099"), nil).Once()
	s.expectActiveAccount()
	s.mockOpRepo.On("TrackingKeyInUse", s.ctx, "MBAN01002603100000000099").Return(true, nil).Once()
	s.mockFiles.On("Save", s.ctx, "op-1", "deposito.jpg", mock.Anything).Return("op-1/cd34_deposito.jpg", nil).Once()
	s.mockOpRepo.On("AppendReceipt", s.ctx, mock.MatchedBy(func(r domain.Receipt) bool {
		return !r.IsValid
	})).Return(nil).Once()

	receipts, err := s.service.SubmitReceipt(s.ctx, "op-1", []byte("jpegbytes"), "deposito.jpg", "user-1")

	s.Require().NoError(err)
	s.Require().Len(receipts, 1)
	s.False(receipts[0].IsValid)
	s.Contains(receipts[0].ValidationMessage, "ya fue utilizada")
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptWrongDestinationPersistsInvalid() {
	op := operationAt(domain.StateValidatingReceipts)
	fields := extractedFields("MBAN01002603100000000002")
	fields.DestinationAccount = "646180111122223334"

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockExtractor.On("Extract", mock.Anything, mock.Anything, "deposito.pdf").Return(fields, nil).Once()
	s.expectActiveAccount()
	s.mockFiles.On("Save", s.ctx, "op-1", "deposito.pdf", mock.Anything).Return("op-1/ef56_deposito.pdf", nil).Once()
	s.mockOpRepo.On("AppendReceipt", s.ctx, mock.Anything).Return(nil).Once()

	receipts, err := s.service.SubmitReceipt(s.ctx, "op-1", []byte("pdfbytes"), "deposito.pdf", "user-1")

	s.Require().NoError(err)
	s.False(receipts[0].IsValid)
	s.Contains(receipts[0].ValidationMessage, "no coincide con la cuenta activa")
	s.mockOpRepo.AssertNotCalled(s.T(), "TrackingKeyInUse", mock.Anything, mock.Anything)
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptUnsupportedExtension() {
	_, err := s.service.SubmitReceipt(s.ctx, "op-1", []byte("bytes"), "deposito.docx", "user-1")

	s.ErrorIs(err, services.ErrUnsupportedFileType)
	s.mockOpRepo.AssertNotCalled(s.T(), "FindOperationByID", mock.Anything, mock.Anything)
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptOverSizeLimit() {
	small := services.NewOperationService(
		s.mockOpRepo,
		s.mockClientRepo,
		s.mockAccountRepo,
		services.WithReceiptExtractor(s.mockExtractor),
		services.WithFileStore(s.mockFiles),
		services.WithMaxUploadBytes(4),
	)

	_, err := small.SubmitReceipt(s.ctx, "op-1", []byte("12345"), "deposito.jpg", "user-1")

	s.ErrorIs(err, services.ErrFileTooLarge)
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptExtractionFailureAbortsUpload() {
	op := operationAt(domain.StateValidatingReceipts)
	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockExtractor.On("Extract", mock.Anything, mock.Anything, "deposito.jpg").
		Return(domain.ExtractedFields{}, assert.AnError).Once()

	_, err := s.service.SubmitReceipt(s.ctx, "op-1", []byte("jpegbytes"), "deposito.jpg", "user-1")

	s.ErrorIs(err, services.ErrOcrExtractionFailed)
	s.mockFiles.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockOpRepo.AssertNotCalled(s.T(), "AppendReceipt", mock.Anything, mock.Anything)
}

func (s *ReceiptServiceTestSuite) TestSubmitReceiptRejectedWhenIntakeClosed() {
	op := operationAt(domain.StateAwaitingClientOK)
	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.SubmitReceipt(s.ctx, "op-1", []byte("jpegbytes"), "deposito.jpg", "user-1")

	s.ErrorIs(err, services.ErrOperationClosed)
}

func (s *ReceiptServiceTestSuite) TestSubmitZipArchive() {
	archive := buildZip(s.T(), map[string][]byte{
		"comprobante_1.jpg": []byte("img1"),
		"comprobante_2.png": []byte("img2"),
		"__MACOSX/._ghost":  []byte("junk"),
		"carpeta/notas.txt": []byte("skip"),
		".oculto.jpg":       []byte("skip"),
	})

	op := operationAt(domain.StateValidatingReceipts)
	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockExtractor.On("Extract", mock.Anything, mock.Anything, "comprobante_1.jpg").
		Return(extractedFields("MBAN01002603100000000011"), nil).Once()
	s.mockExtractor.On("Extract", mock.Anything, mock.Anything, "comprobante_2.png").
		Return(extractedFields("MBAN01002603100000000012"), nil).Once()
	s.expectActiveAccount()
	s.mockOpRepo.On("TrackingKeyInUse", s.ctx, mock.Anything).Return(false, nil).Twice()
	s.mockFiles.On("Save", s.ctx, "op-1", mock.Anything, mock.Anything).Return("op-1/ref", nil).Twice()
	s.mockOpRepo.On("AppendReceipt", s.ctx, mock.Anything).Return(nil).Twice()

	receipts, err := s.service.SubmitReceipt(s.ctx, "op-1", archive, "comprobantes.zip", "user-1")

	s.Require().NoError(err)
	s.Len(receipts, 2)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *ReceiptServiceTestSuite) TestSubmitZipWithoutReceiptsRejected() {
	archive := buildZip(s.T(), map[string][]byte{
		"notas.txt": []byte("skip"),
	})

	op := operationAt(domain.StateValidatingReceipts)
	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	_, err := s.service.SubmitReceipt(s.ctx, "op-1", archive, "comprobantes.zip", "user-1")

	s.ErrorIs(err, services.ErrEmptyArchive)
}

func (s *ReceiptServiceTestSuite) TestDeleteReceiptSoftDeletes() {
	op := operationAt(domain.StateValidatingReceipts)
	op.Receipts = []domain.Receipt{{ReceiptID: "rcpt-1", OperationID: "op-1", IsValid: true}}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()
	s.mockOpRepo.On("SoftDeleteReceipt", s.ctx, "op-1", "rcpt-1", "user-1", mock.Anything).Return(nil).Once()

	err := s.service.DeleteReceipt(s.ctx, "op-1", "rcpt-1", "user-1")

	s.Require().NoError(err)
	s.mockOpRepo.AssertExpectations(s.T())
}

func (s *ReceiptServiceTestSuite) TestDeleteReceiptAlreadyDeleted() {
	now := time.Now()
	op := operationAt(domain.StateValidatingReceipts)
	op.Receipts = []domain.Receipt{{ReceiptID: "rcpt-1", OperationID: "op-1", DeletedAt: &now}}

	s.mockOpRepo.On("FindOperationByID", s.ctx, "op-1").Return(op, nil).Once()

	err := s.service.DeleteReceipt(s.ctx, "op-1", "rcpt-1", "user-1")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockOpRepo.AssertNotCalled(s.T(), "SoftDeleteReceipt",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestReceiptService(t *testing.T) {
	suite.Run(t, new(ReceiptServiceTestSuite))
}
