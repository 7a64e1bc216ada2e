package dto

import (
	"time"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateClientRequest defines the data needed to register a new client.
type CreateClientRequest struct {
	Name          string           `json:"nombre" binding:"required"`
	Phone         string           `json:"telefono" binding:"required"`
	CountryPrefix string           `json:"prefijo" binding:"required"`
	Email         string           `json:"email" binding:"omitempty,email"`
	TaxID         string           `json:"rfc"`
	BotChatID     string           `json:"botChatID"`
	// CommissionRate is the default commission in percent. Nil means
	// "pending": staff must set it before calculations can use it.
	CommissionRate *decimal.Decimal    `json:"comisionPorcentaje"`
	OwnerCode      string              `json:"codigoDueno" binding:"required"`
	Status         domain.ClientStatus `json:"estado" binding:"omitempty,oneof=PENDIENTE_VALIDACION ACTIVO INACTIVO"`
	Notes          string              `json:"notas"`
}

// UpdateClientRequest defines the fields staff may change on a client.
// Pointers distinguish "not provided" from zero values.
type UpdateClientRequest struct {
	Name           *string              `json:"nombre"`
	Phone          *string              `json:"telefono"`
	Email          *string              `json:"email" binding:"omitempty,email"`
	CommissionRate *decimal.Decimal     `json:"comisionPorcentaje"`
	Status         *domain.ClientStatus `json:"estado" binding:"omitempty,oneof=PENDIENTE_VALIDACION ACTIVO INACTIVO"`
	Notes          *string              `json:"notas"`
}

// ClientResponse mirrors domain.Client for API consumers.
type ClientResponse struct {
	ClientID       string              `json:"clientID"`
	Name           string              `json:"nombre"`
	Phone          string              `json:"telefono"`
	CountryPrefix  string              `json:"prefijo"`
	Email          string              `json:"email,omitempty"`
	TaxID          string              `json:"rfc,omitempty"`
	BotChatID      string              `json:"botChatID,omitempty"`
	CommissionRate *decimal.Decimal    `json:"comisionPorcentaje,omitempty"`
	OwnerCode      string              `json:"codigoDueno"`
	Status         domain.ClientStatus `json:"estado"`
	Notes          string              `json:"notas,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// ToClientResponse converts a domain.Client to its API representation.
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:       c.ClientID,
		Name:           c.Name,
		Phone:          c.Phone,
		CountryPrefix:  c.CountryPrefix,
		Email:          c.Email,
		TaxID:          c.TaxID,
		BotChatID:      c.BotChatID,
		CommissionRate: c.DefaultCommissionRate,
		OwnerCode:      c.OwnerCode,
		Status:         c.Status,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
	}
}

// ToListClientResponse converts a slice of clients.
func ToListClientResponse(clients []domain.Client) []ClientResponse {
	res := make([]ClientResponse, len(clients))
	for i := range clients {
		res[i] = ToClientResponse(&clients[i])
	}
	return res
}

// ListClientsParams defines query parameters for listing clients.
type ListClientsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
