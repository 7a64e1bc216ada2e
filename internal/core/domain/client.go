package domain

import "github.com/shopspring/decimal"

// ClientStatus is the lifecycle status of a client. Clients are never hard
// deleted; the status is toggled instead.
type ClientStatus string

const (
	ClientPendingValidation ClientStatus = "PENDIENTE_VALIDACION"
	ClientActive            ClientStatus = "ACTIVO"
	ClientInactive          ClientStatus = "INACTIVO"
)

// Client is a counterparty that places NetCash operations.
type Client struct {
	ClientID      string       `json:"clientID"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone"`
	CountryPrefix string       `json:"countryPrefix"`
	Email         string       `json:"email,omitempty"`
	BotChatID     string       `json:"botChatID,omitempty"` // messaging-bot identity, when linked
	TaxID         string       `json:"taxID,omitempty"`     // RFC, optional

	// DefaultCommissionRate is nil while pending: staff must set it before
	// any calculation that relies on the client default.
	DefaultCommissionRate *decimal.Decimal `json:"defaultCommissionRate,omitempty"`

	OwnerCode string       `json:"ownerCode"` // owning staff member code
	Status    ClientStatus `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	AuditFields
}

// CanOperate reports whether new operations may be created for the client.
func (c *Client) CanOperate() bool {
	return c.Status == ClientActive
}
