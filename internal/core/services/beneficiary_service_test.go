package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/core/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

type BeneficiaryServiceTestSuite struct {
	suite.Suite
	ctx                 context.Context
	mockBeneficiaryRepo *MockBeneficiaryRepository
	mockClientRepo      *MockClientRepository
	service             portssvc.BeneficiarySvcFacade
}

func (s *BeneficiaryServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockBeneficiaryRepo = new(MockBeneficiaryRepository)
	s.mockClientRepo = new(MockClientRepository)
	s.service = services.NewBeneficiaryService(s.mockBeneficiaryRepo, s.mockClientRepo)
}

func (s *BeneficiaryServiceTestSuite) TestCreateBeneficiaryNormalizesName() {
	s.mockClientRepo.On("FindClientByID", s.ctx, "client-1").Return(activeClient(), nil).Once()
	s.mockBeneficiaryRepo.On("SaveBeneficiary", s.ctx, mock.MatchedBy(func(b domain.FrequentBeneficiary) bool {
		return b.Name == "JUAN PÉREZ GARCÍA" && b.ClientID == "client-1"
	})).Return(nil).Once()

	b, err := s.service.CreateBeneficiary(s.ctx, dto.CreateBeneficiaryRequest{
		ClientID:   "client-1",
		Name:       "  juan   pérez  garcía ",
		NationalID: "1234567890",
	}, "user-1")

	s.Require().NoError(err)
	s.Equal("JUAN PÉREZ GARCÍA", b.Name)
	s.mockBeneficiaryRepo.AssertExpectations(s.T())
}

func (s *BeneficiaryServiceTestSuite) TestCreateBeneficiaryRejectsShortName() {
	_, err := s.service.CreateBeneficiary(s.ctx, dto.CreateBeneficiaryRequest{
		ClientID:   "client-1",
		Name:       "Juan Pérez",
		NationalID: "1234567890",
	}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockClientRepo.AssertNotCalled(s.T(), "FindClientByID", mock.Anything, mock.Anything)
}

func (s *BeneficiaryServiceTestSuite) TestCreateBeneficiaryRejectsBadNationalID() {
	_, err := s.service.CreateBeneficiary(s.ctx, dto.CreateBeneficiaryRequest{
		ClientID:   "client-1",
		Name:       "Juan Pérez García",
		NationalID: "12345",
	}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockBeneficiaryRepo.AssertNotCalled(s.T(), "SaveBeneficiary", mock.Anything, mock.Anything)
}

func (s *BeneficiaryServiceTestSuite) TestCreateBeneficiaryUnknownClient() {
	s.mockClientRepo.On("FindClientByID", s.ctx, "client-404").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.CreateBeneficiary(s.ctx, dto.CreateBeneficiaryRequest{
		ClientID:   "client-404",
		Name:       "Juan Pérez García",
		NationalID: "1234567890",
	}, "user-1")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BeneficiaryServiceTestSuite) TestUpdateBeneficiaryPartialChange() {
	existing := &domain.FrequentBeneficiary{
		BeneficiaryID: "ben-1",
		ClientID:      "client-1",
		Name:          "JUAN PÉREZ GARCÍA",
		NationalID:    "1234567890",
	}
	newName := "pedro ramírez solís"

	s.mockBeneficiaryRepo.On("FindBeneficiaryByID", s.ctx, "ben-1").Return(existing, nil).Once()
	s.mockBeneficiaryRepo.On("UpdateBeneficiary", s.ctx, mock.MatchedBy(func(b domain.FrequentBeneficiary) bool {
		return b.Name == "PEDRO RAMÍREZ SOLÍS" && b.NationalID == "1234567890"
	})).Return(nil).Once()

	updated, err := s.service.UpdateBeneficiary(s.ctx, "ben-1", dto.UpdateBeneficiaryRequest{Name: &newName}, "user-1")

	s.Require().NoError(err)
	s.Equal("PEDRO RAMÍREZ SOLÍS", updated.Name)
	s.mockBeneficiaryRepo.AssertExpectations(s.T())
}

func TestBeneficiaryService(t *testing.T) {
	suite.Run(t, new(BeneficiaryServiceTestSuite))
}
