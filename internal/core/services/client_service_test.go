package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/core/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

type ClientServiceTestSuite struct {
	suite.Suite
	ctx            context.Context
	mockClientRepo *MockClientRepository
	service        portssvc.ClientSvcFacade
}

func (s *ClientServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockClientRepo = new(MockClientRepository)
	s.service = services.NewClientService(s.mockClientRepo)
}

func (s *ClientServiceTestSuite) TestCreateClientDefaultsToPendingValidation() {
	s.mockClientRepo.On("SaveClient", s.ctx, mock.MatchedBy(func(c domain.Client) bool {
		return c.Status == domain.ClientPendingValidation && c.DefaultCommissionRate == nil
	})).Return(nil).Once()

	client, err := s.service.CreateClient(s.ctx, dto.CreateClientRequest{
		Name:          "Comercial del Norte",
		Phone:         "5512345678",
		CountryPrefix: "+52",
		OwnerCode:     "MB01",
	}, "user-1")

	s.Require().NoError(err)
	s.Equal(domain.ClientPendingValidation, client.Status)
	s.Nil(client.DefaultCommissionRate)
	s.mockClientRepo.AssertExpectations(s.T())
}

func (s *ClientServiceTestSuite) TestCreateBotClientRequiresCommission() {
	_, err := s.service.CreateClient(s.ctx, dto.CreateClientRequest{
		Name:          "Comercial del Norte",
		Phone:         "5512345678",
		CountryPrefix: "+52",
		OwnerCode:     "MB01",
		BotChatID:     "chat-777",
	}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockClientRepo.AssertNotCalled(s.T(), "SaveClient", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestCreateBotClientEnforcesCommissionFloor() {
	low := decimal.RequireFromString("0.5")

	_, err := s.service.CreateClient(s.ctx, dto.CreateClientRequest{
		Name:           "Comercial del Norte",
		Phone:          "5512345678",
		CountryPrefix:  "+52",
		OwnerCode:      "MB01",
		BotChatID:      "chat-777",
		CommissionRate: &low,
	}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ClientServiceTestSuite) TestCreateBotClientAtFloorSucceeds() {
	rate := domain.MinBotCommissionRate

	s.mockClientRepo.On("SaveClient", s.ctx, mock.MatchedBy(func(c domain.Client) bool {
		return c.BotChatID == "chat-777" && c.DefaultCommissionRate.Equal(rate)
	})).Return(nil).Once()

	_, err := s.service.CreateClient(s.ctx, dto.CreateClientRequest{
		Name:           "Comercial del Norte",
		Phone:          "5512345678",
		CountryPrefix:  "+52",
		OwnerCode:      "MB01",
		BotChatID:      "chat-777",
		CommissionRate: &rate,
	}, "user-1")

	s.Require().NoError(err)
	s.mockClientRepo.AssertExpectations(s.T())
}

func (s *ClientServiceTestSuite) TestUpdateClientRejectsNegativeCommission() {
	negative := decimal.RequireFromString("-1")
	s.mockClientRepo.On("FindClientByID", s.ctx, "client-1").Return(activeClient(), nil).Once()

	_, err := s.service.UpdateClient(s.ctx, "client-1", dto.UpdateClientRequest{CommissionRate: &negative}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockClientRepo.AssertNotCalled(s.T(), "UpdateClient", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestGetClientByBotChatID() {
	s.mockClientRepo.On("FindClientByBotChatID", s.ctx, "chat-777").Return(activeClient(), nil).Once()

	client, err := s.service.GetClientByBotChatID(s.ctx, "chat-777")

	s.Require().NoError(err)
	s.Equal("client-1", client.ClientID)
}

func TestClientService(t *testing.T) {
	suite.Run(t, new(ClientServiceTestSuite))
}
