package dto

import (
	"time"

	"github.com/mbco-platform/netcash-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateOperationRequest starts a new operation for an active client.
type CreateOperationRequest struct {
	ClientID string               `json:"clienteID" binding:"required"`
	Origin   domain.OriginChannel `json:"canal" binding:"omitempty,oneof=web bot"`
	// CommissionRate overrides the client default for this operation only.
	CommissionRate *decimal.Decimal `json:"comisionPorcentaje"`
}

// SetTitularRequest captures the recipient of the disbursed funds.
type SetTitularRequest struct {
	FullName   string `json:"nombreCompleto" binding:"required"`
	NationalID string `json:"idmex" binding:"required"`
	UnitCount  int    `json:"cantidadLigas" binding:"required,min=1"`
}

// RegisterCodeRequest carries the externally assigned MBControl code.
type RegisterCodeRequest struct {
	Code string `json:"claveMBControl" binding:"required"`
}

// TransitionRequest carries the optional notes of a manual state action.
type TransitionRequest struct {
	Notes string `json:"notas"`
}

// ReceiptResponse mirrors a receipt for API consumers.
type ReceiptResponse struct {
	ReceiptID          string          `json:"receiptID"`
	Filename           string          `json:"nombreArchivo"`
	Amount             decimal.Decimal `json:"monto"`
	DepositDate        *time.Time      `json:"fechaDeposito,omitempty"`
	IssuingBank        string          `json:"bancoEmisor,omitempty"`
	DestinationAccount string          `json:"cuentaDestino,omitempty"`
	BeneficiaryName    string          `json:"beneficiario,omitempty"`
	TrackingKey        string          `json:"claveRastreo,omitempty"`
	OriginAccount      string          `json:"cuentaOrigen,omitempty"`
	IsValid            bool            `json:"esValido"`
	ValidationMessage  string          `json:"mensajeValidacion"`
	UploadedAt         time.Time       `json:"subidoEn"`
}

// CalculationResponse mirrors the full money snapshot for staff consumers.
type CalculationResponse struct {
	Total            decimal.Decimal `json:"montoDepositado"`
	CommissionRate   decimal.Decimal `json:"comisionPorcentaje"`
	ClientCommission decimal.Decimal `json:"comisionCobrada"`
	ProviderRate     decimal.Decimal `json:"costoProveedorPorcentaje"`
	ProviderCost     decimal.Decimal `json:"costoProveedor"`
	NetCapital       decimal.Decimal `json:"capitalNeto"`
	ComputedAt       time.Time       `json:"calculadoEn"`
}

// ClientCalculationResponse is the client-facing money snapshot. The provider
// cost is internal accounting and never crosses this boundary.
type ClientCalculationResponse struct {
	Total            decimal.Decimal `json:"montoDepositado"`
	CommissionRate   decimal.Decimal `json:"comisionPorcentaje"`
	ClientCommission decimal.Decimal `json:"comisionCobrada"`
	NetCapital       decimal.Decimal `json:"capitalNeto"`
	ComputedAt       time.Time       `json:"calculadoEn"`
}

// TitularResponse mirrors the captured titular.
type TitularResponse struct {
	FullName   string    `json:"nombreCompleto"`
	NationalID string    `json:"idmex"`
	UnitCount  int       `json:"cantidadLigas"`
	CapturedAt time.Time `json:"capturadoEn"`
}

// StateChangeResponse is one state-history entry.
type StateChangeResponse struct {
	State domain.OperationState `json:"estado"`
	At    time.Time             `json:"en"`
	By    string                `json:"por"`
	Notes string                `json:"notas,omitempty"`
}

// OperationResponse is the staff-facing projection of an operation.
type OperationResponse struct {
	OperationID    string                `json:"operationID"`
	Folio          string                `json:"folio"`
	ClientID       string                `json:"clienteID"`
	ClientName     string                `json:"clienteNombre"`
	Origin         domain.OriginChannel  `json:"canal"`
	CommissionRate decimal.Decimal       `json:"comisionPorcentaje"`
	State          domain.OperationState `json:"estado"`
	Receipts       []ReceiptResponse     `json:"comprobantes"`
	Titular        *TitularResponse      `json:"titular,omitempty"`
	Calculation    *CalculationResponse  `json:"calculo,omitempty"`
	MBControlCode  string                `json:"claveMBControl,omitempty"`
	StateHistory   []StateChangeResponse `json:"historicoEstados"`
	ReadOnly       bool                  `json:"soloLectura"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// ToReceiptResponse converts one receipt.
func ToReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ReceiptID:          r.ReceiptID,
		Filename:           r.Filename,
		Amount:             r.Amount,
		DepositDate:        r.DepositDate,
		IssuingBank:        r.IssuingBank,
		DestinationAccount: r.DestinationAccount,
		BeneficiaryName:    r.BeneficiaryName,
		TrackingKey:        r.TrackingKey,
		OriginAccount:      r.OriginAccount,
		IsValid:            r.IsValid,
		ValidationMessage:  r.ValidationMessage,
		UploadedAt:         r.UploadedAt,
	}
}

// ToOperationResponse converts an operation aggregate for staff consumers.
// Soft-deleted receipts are omitted.
func ToOperationResponse(op *domain.Operation) OperationResponse {
	receipts := make([]ReceiptResponse, 0, len(op.Receipts))
	for i := range op.Receipts {
		if op.Receipts[i].DeletedAt != nil {
			continue
		}
		receipts = append(receipts, ToReceiptResponse(&op.Receipts[i]))
	}

	history := make([]StateChangeResponse, len(op.StateHistory))
	for i, h := range op.StateHistory {
		history[i] = StateChangeResponse{State: h.State, At: h.At, By: h.By, Notes: h.Notes}
	}

	resp := OperationResponse{
		OperationID:    op.OperationID,
		Folio:          op.Folio,
		ClientID:       op.ClientID,
		ClientName:     op.ClientName,
		Origin:         op.Origin,
		CommissionRate: op.CommissionRate,
		State:          op.State,
		Receipts:       receipts,
		MBControlCode:  op.MBControlCode,
		StateHistory:   history,
		ReadOnly:       op.IsReadOnly(),
		CreatedAt:      op.CreatedAt,
	}
	if op.Titular != nil {
		resp.Titular = &TitularResponse{
			FullName:   op.Titular.FullName,
			NationalID: op.Titular.NationalID,
			UnitCount:  op.Titular.UnitCount,
			CapturedAt: op.Titular.CapturedAt,
		}
	}
	if op.Calculation != nil {
		c := op.Calculation
		resp.Calculation = &CalculationResponse{
			Total:            c.Total,
			CommissionRate:   c.CommissionRate,
			ClientCommission: c.ClientCommission,
			ProviderRate:     c.ProviderRate,
			ProviderCost:     c.ProviderCost,
			NetCapital:       c.NetCapital,
			ComputedAt:       c.ComputedAt,
		}
	}
	return resp
}

// ToListOperationResponse converts a slice of operations.
func ToListOperationResponse(ops []domain.Operation) []OperationResponse {
	res := make([]OperationResponse, len(ops))
	for i := range ops {
		res[i] = ToOperationResponse(&ops[i])
	}
	return res
}

// SolicitudResponse is the client-facing (messaging-bot) projection.
type SolicitudResponse struct {
	OperationID string                     `json:"solicitudID"`
	Folio       string                     `json:"folio"`
	State       domain.OperationState      `json:"estado"`
	Receipts    []ReceiptResponse          `json:"comprobantes"`
	Titular     *TitularResponse           `json:"titular,omitempty"`
	Calculation *ClientCalculationResponse `json:"calculo,omitempty"`
	CreatedAt   time.Time                  `json:"createdAt"`
}

// ToSolicitudResponse builds the bot-view projection of an operation.
func ToSolicitudResponse(op *domain.Operation) SolicitudResponse {
	full := ToOperationResponse(op)
	resp := SolicitudResponse{
		OperationID: full.OperationID,
		Folio:       full.Folio,
		State:       full.State,
		Receipts:    full.Receipts,
		Titular:     full.Titular,
		CreatedAt:   full.CreatedAt,
	}
	if c := op.Calculation; c != nil {
		resp.Calculation = &ClientCalculationResponse{
			Total:            c.Total,
			CommissionRate:   c.CommissionRate,
			ClientCommission: c.ClientCommission,
			NetCapital:       c.NetCapital,
			ComputedAt:       c.ComputedAt,
		}
	}
	return resp
}

// ListOperationsParams defines query parameters for listing operations.
type ListOperationsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
