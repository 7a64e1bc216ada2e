package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
	"github.com/mbco-platform/netcash-backend/internal/dto"
	"github.com/mbco-platform/netcash-backend/internal/middleware"
)

// clientService provides client management operations.
type clientService struct {
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientService creates a new ClientService.
func NewClientService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo}
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest, creatorUserID string) (*domain.Client, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	status := req.Status
	if status == "" {
		status = domain.ClientPendingValidation
	}

	// Bot-linked clients must come in with a commission at or above the
	// onboarding floor; staff-captured clients may leave it pending.
	if req.BotChatID != "" {
		if req.CommissionRate == nil {
			return nil, fmt.Errorf("%w: la comisión es obligatoria para clientes vinculados por bot", apperrors.ErrValidation)
		}
		if req.CommissionRate.LessThan(domain.MinBotCommissionRate) {
			return nil, fmt.Errorf("%w: la comisión mínima para vinculación por bot es %s%%", apperrors.ErrValidation, domain.MinBotCommissionRate)
		}
	}
	if req.CommissionRate != nil && req.CommissionRate.IsNegative() {
		return nil, fmt.Errorf("%w: la comisión no puede ser negativa", apperrors.ErrValidation)
	}

	now := time.Now()
	client := domain.Client{
		ClientID:              uuid.NewString(),
		Name:                  req.Name,
		Phone:                 req.Phone,
		CountryPrefix:         req.CountryPrefix,
		Email:                 req.Email,
		TaxID:                 req.TaxID,
		BotChatID:             req.BotChatID,
		DefaultCommissionRate: req.CommissionRate,
		OwnerCode:             req.OwnerCode,
		Status:                status,
		Notes:                 req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		logger.Error("Failed to save client", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Client created", slog.String("client_id", client.ClientID))
	return &client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find client", slog.String("client_id", clientID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) GetClientByBotChatID(ctx context.Context, chatID string) (*domain.Client, error) {
	return s.clientRepo.FindClientByBotChatID(ctx, chatID)
}

func (s *clientService) SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.clientRepo.SearchClients(ctx, query, limit)
}

func (s *clientService) ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.clientRepo.ListClients(ctx, limit, offset)
}

func (s *clientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, updaterUserID string) (*domain.Client, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.CommissionRate != nil {
		if req.CommissionRate.IsNegative() {
			return nil, fmt.Errorf("%w: la comisión no puede ser negativa", apperrors.ErrValidation)
		}
		client.DefaultCommissionRate = req.CommissionRate
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	client.LastUpdatedAt = time.Now()
	client.LastUpdatedBy = updaterUserID

	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		logger.Error("Failed to update client", slog.String("client_id", clientID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Client updated", slog.String("client_id", clientID))
	return client, nil
}
