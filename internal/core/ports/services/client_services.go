package services

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/mbco-platform/netcash-backend/internal/dto"
)

// ClientSvcFacade manages the counterparties placing operations.
type ClientSvcFacade interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest, creatorUserID string) (*domain.Client, error)
	GetClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// GetClientByBotChatID resolves the client linked to a messaging-bot
	// chat, used by the bot-view endpoints.
	GetClientByBotChatID(ctx context.Context, chatID string) (*domain.Client, error)
	SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error)
	UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, updaterUserID string) (*domain.Client, error)
}
