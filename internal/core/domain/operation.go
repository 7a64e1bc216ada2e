package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationState is the lifecycle state of a NetCash operation. The wire
// values are the Spanish names the rest of the platform already speaks.
type OperationState string

const (
	StateAwaitingReceipts    OperationState = "ESPERANDO_COMPROBANTES"
	StateValidatingReceipts  OperationState = "VALIDANDO_COMPROBANTES"
	StateAwaitingTitular     OperationState = "ESPERANDO_TITULAR"
	StateAwaitingClientOK    OperationState = "ESPERANDO_CONFIRMACION_CLIENTE"
	StateDataComplete        OperationState = "DATOS_COMPLETOS"
	StateAwaitingSystemCode  OperationState = "ESPERANDO_CLAVE_SISTEMA"
	StatePendingProviderPay  OperationState = "PENDIENTE_PAGO_PROVEEDOR"
	StateAwaitingTreasury    OperationState = "ESPERANDO_TESORERIA"
	StateAwaitingProvider    OperationState = "ESPERANDO_PROVEEDOR"
	StateReadyToDeliver      OperationState = "LISTA_PARA_ENTREGA"
	StateCompleted           OperationState = "COMPLETADO"
	StateRejected            OperationState = "RECHAZADA"
	StateCancelled           OperationState = "CANCELADA"
)

// happyPath is the canonical forward ordering of non-terminal states.
var happyPath = []OperationState{
	StateAwaitingReceipts,
	StateValidatingReceipts,
	StateAwaitingTitular,
	StateAwaitingClientOK,
	StateDataComplete,
	StateAwaitingSystemCode,
	StatePendingProviderPay,
	StateAwaitingTreasury,
	StateAwaitingProvider,
	StateReadyToDeliver,
	StateCompleted,
}

// Rank returns the position of s on the happy path, or -1 for the terminal
// side states RECHAZADA / CANCELADA and unknown values.
func (s OperationState) Rank() int {
	for i, st := range happyPath {
		if st == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no further mutation of the operation is allowed.
func (s OperationState) IsTerminal() bool {
	return s == StateCompleted || s == StateRejected || s == StateCancelled
}

// Next returns the state immediately after s on the happy path.
// ok is false when s is the last forward state or a terminal side state.
func (s OperationState) Next() (OperationState, bool) {
	r := s.Rank()
	if r < 0 || r+1 >= len(happyPath) {
		return s, false
	}
	return happyPath[r+1], true
}

// CanAdvanceTo reports whether a forward transition s -> next is legal.
// Only single steps along the happy path are allowed; rewinds never are.
func (s OperationState) CanAdvanceTo(next OperationState) bool {
	n, ok := s.Next()
	return ok && n == next
}

// OriginChannel identifies the intake channel that created an operation.
type OriginChannel string

const (
	OriginWeb OriginChannel = "web"
	OriginBot OriginChannel = "bot"
)

// Titular is the declared recipient of the disbursed funds. It is settable
// at most once per operation.
type Titular struct {
	FullName   string    `json:"fullName"`
	NationalID string    `json:"nationalID"` // IDMEX, 10 digits
	UnitCount  int       `json:"unitCount"`  // number of payment links requested
	CapturedAt time.Time `json:"capturedAt"`
	CapturedBy string    `json:"capturedBy"`
}

// StateChange is one entry of an operation's append-only state history.
type StateChange struct {
	State OperationState `json:"state"`
	At    time.Time      `json:"at"`
	By    string         `json:"by"` // user id or "sistema"
	Notes string         `json:"notes,omitempty"`
}

// Operation is the central aggregate: one client-initiated cash-settlement
// transaction tracked from intake to delivery.
type Operation struct {
	OperationID    string          `json:"operationID"`
	Folio          string          `json:"folio"` // NC-000001, assigned at creation
	ClientID       string          `json:"clientID"`
	ClientName     string          `json:"clientName"`
	Origin         OriginChannel   `json:"origin"`
	CommissionRate decimal.Decimal `json:"commissionRate"` // percent, resolved at creation
	State          OperationState  `json:"state"`
	Receipts       []Receipt       `json:"receipts"`
	Titular        *Titular        `json:"titular,omitempty"`
	Calculation    *Calculation    `json:"calculation,omitempty"`
	MBControlCode  string          `json:"mbcontrolCode,omitempty"` // externally assigned, one-time
	StateHistory   []StateChange   `json:"stateHistory"`

	// Layout bookkeeping; all nil/empty until the MBControl code is registered.
	LayoutGeneratedAt  *time.Time `json:"layoutGeneratedAt,omitempty"`
	LayoutDispatchedAt *time.Time `json:"layoutDispatchedAt,omitempty"`
	LayoutFileRef      string     `json:"-"` // storage path of the generated workbook

	// Version is the optimistic concurrency token. Every mutating write
	// checks and increments it; a miss surfaces as a conflict.
	Version int64 `json:"-"`

	AuditFields
}

// IsReadOnly reports whether the operation is in mirrored mode: data captured
// through the bot channel is locked against edits once the operation is
// DATOS_COMPLETOS or beyond. Terminal states are read-only for every channel.
func (o *Operation) IsReadOnly() bool {
	if o.State.IsTerminal() {
		return true
	}
	if o.Origin != OriginBot {
		return false
	}
	return o.State.Rank() >= StateDataComplete.Rank()
}

// ValidReceipts returns the non-deleted receipts that passed validation.
func (o *Operation) ValidReceipts() []Receipt {
	out := make([]Receipt, 0, len(o.Receipts))
	for _, r := range o.Receipts {
		if r.IsValid && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	return out
}

// HasValidReceipt reports whether at least one valid receipt exists.
func (o *Operation) HasValidReceipt() bool {
	return len(o.ValidReceipts()) > 0
}
