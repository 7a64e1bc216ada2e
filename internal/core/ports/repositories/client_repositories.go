package repositories

import (
	"context"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
)

// ClientReader defines read operations for client data.
type ClientReader interface {
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindClientByBotChatID resolves the client linked to a messaging-bot
	// chat, used by the bot-view projections.
	FindClientByBotChatID(ctx context.Context, chatID string) (*domain.Client, error)

	// SearchClients performs a case-insensitive substring search across
	// name, email and phone.
	SearchClients(ctx context.Context, query string, limit int) ([]domain.Client, error)

	ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error)
}

// ClientWriter defines write operations for client data.
type ClientWriter interface {
	SaveClient(ctx context.Context, client domain.Client) error
	UpdateClient(ctx context.Context, client domain.Client) error
}

// ClientRepositoryFacade combines all client repository interfaces.
type ClientRepositoryFacade interface {
	ClientReader
	ClientWriter
}
