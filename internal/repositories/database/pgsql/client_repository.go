package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbco-platform/netcash-backend/internal/apperrors"
	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	portsrepo "github.com/mbco-platform/netcash-backend/internal/core/ports/repositories"
)

type PgxClientRepository struct {
	BaseRepository
}

func newPgxClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

const clientColumns = `
	client_id, name, phone, country_prefix, email, bot_chat_id, tax_id,
	default_commission_rate, owner_code, status, notes,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		client.ClientID,
		client.Name,
		client.Phone,
		client.CountryPrefix,
		nullableString(client.Email),
		nullableString(client.BotChatID),
		nullableString(client.TaxID),
		client.DefaultCommissionRate,
		client.OwnerCode,
		string(client.Status),
		nullableString(client.Notes),
		client.CreatedAt,
		client.CreatedBy,
		client.LastUpdatedAt,
		client.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("client %s: %w", client.Phone, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save client %s: %w", client.ClientID, err)
	}
	return nil
}

func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	query := `
		UPDATE clients SET
			name = $1, phone = $2, country_prefix = $3, email = $4, bot_chat_id = $5, tax_id = $6,
			default_commission_rate = $7, owner_code = $8, status = $9, notes = $10,
			last_updated_at = $11, last_updated_by = $12
		WHERE client_id = $13;
	`
	tag, err := r.Pool.Exec(ctx, query,
		client.Name,
		client.Phone,
		client.CountryPrefix,
		nullableString(client.Email),
		nullableString(client.BotChatID),
		nullableString(client.TaxID),
		client.DefaultCommissionRate,
		client.OwnerCode,
		string(client.Status),
		nullableString(client.Notes),
		client.LastUpdatedAt,
		client.LastUpdatedBy,
		client.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client %s: %w", client.ClientID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1;`
	return r.findOne(ctx, query, clientID)
}

func (r *PgxClientRepository) FindClientByBotChatID(ctx context.Context, chatID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE bot_chat_id = $1;`
	return r.findOne(ctx, query, chatID)
}

func (r *PgxClientRepository) findOne(ctx context.Context, query string, arg any) (*domain.Client, error) {
	client, err := scanClient(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

func (r *PgxClientRepository) SearchClients(ctx context.Context, search string, limit int) ([]domain.Client, error) {
	query := `
		SELECT ` + clientColumns + ` FROM clients
		WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1
		ORDER BY name
		LIMIT $2;
	`
	return r.list(ctx, query, "%"+search+"%", limit)
}

func (r *PgxClientRepository) ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	return r.list(ctx, query, limit, offset)
}

func (r *PgxClientRepository) list(ctx context.Context, query string, args ...any) ([]domain.Client, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}
	return clients, nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var client domain.Client
	var email, botChatID, taxID, notes *string
	var status string

	err := row.Scan(
		&client.ClientID, &client.Name, &client.Phone, &client.CountryPrefix,
		&email, &botChatID, &taxID,
		&client.DefaultCommissionRate, &client.OwnerCode, &status, &notes,
		&client.CreatedAt, &client.CreatedBy, &client.LastUpdatedAt, &client.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	client.Email = deref(email)
	client.BotChatID = deref(botChatID)
	client.TaxID = deref(taxID)
	client.Notes = deref(notes)
	client.Status = domain.ClientStatus(status)
	return &client, nil
}
