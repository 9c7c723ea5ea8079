package ledger

import (
	"strings"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of payment dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidInput, "dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

// RegisterPaymentRequest registers an installment or disbursement
type RegisterPaymentRequest struct {
	ClientID   uuid.UUID            `json:"clienteId" binding:"required"`
	HouseID    uuid.UUID            `json:"viviendaId" binding:"required"`
	Source     client.FundingSource `json:"fuente" binding:"required,fuente"`
	Amount     decimal.Decimal      `json:"monto" binding:"required"`
	PaidOn     string               `json:"fechaPago" binding:"required"`
	Method     string               `json:"metodoPago" binding:"required,max=60"`
	Notes      string               `json:"observacion" binding:"max=500"`
	ReceiptURL string               `json:"urlComprobante" binding:"omitempty,url"`
	Actor      string               `json:"-"`
}

// CreditDisbursementRequest books the outstanding credit amount
type CreditDisbursementRequest struct {
	ClientID   uuid.UUID `json:"clienteId" binding:"required"`
	HouseID    uuid.UUID `json:"viviendaId" binding:"required"`
	PaidOn     string    `json:"fechaPago" binding:"required"`
	Method     string    `json:"metodoPago" binding:"required,max=60"`
	Notes      string    `json:"observacion" binding:"max=500"`
	ReceiptURL string    `json:"urlComprobante" binding:"omitempty,url"`
	Actor      string    `json:"-"`
}

// UpdatePaymentRequest edits an active payment
type UpdatePaymentRequest struct {
	Amount     decimal.Decimal `json:"monto" binding:"required"`
	PaidOn     string          `json:"fechaPago" binding:"required"`
	Method     string          `json:"metodoPago" binding:"required,max=60"`
	Notes      string          `json:"observacion" binding:"max=500"`
	ReceiptURL string          `json:"urlComprobante" binding:"omitempty,url"`
	Actor      string          `json:"-"`
}

// VoidPaymentRequest voids an active payment
type VoidPaymentRequest struct {
	Reason string `json:"motivo" binding:"required,max=500"`
	Actor  string `json:"-"`
}

// CondonationRequest forgives part of a house balance
type CondonationRequest struct {
	ClientID       uuid.UUID            `json:"clienteId" binding:"required"`
	HouseID        uuid.UUID            `json:"viviendaId" binding:"required"`
	Source         client.FundingSource `json:"fuente" binding:"required,fuente"`
	Amount         decimal.Decimal      `json:"monto" binding:"required"`
	Reason         string               `json:"motivo" binding:"required,max=500"`
	SupportURL     string               `json:"urlSoporte" binding:"omitempty,url"`
	OriginalSource string               `json:"fuenteOriginal" binding:"max=80"`
	Actor          string               `json:"-"`
}

// PaymentListFilter narrows payment listings
type PaymentListFilter struct {
	ClientID      *uuid.UUID `form:"-"`
	HouseID       *uuid.UUID `form:"-"`
	Source        string     `form:"fuente" binding:"omitempty,fuente"`
	IncludeVoided bool       `form:"incluirAnulados"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size" binding:"omitempty,max=200"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse is the JSON shape of a payment
type PaymentResponse struct {
	ID             uuid.UUID            `json:"id"`
	Sequence       int64                `json:"consecutivo"`
	ClientID       uuid.UUID            `json:"clienteId"`
	HouseID        uuid.UUID            `json:"viviendaId"`
	ProjectID      uuid.UUID            `json:"proyectoId"`
	Source         client.FundingSource `json:"fuente"`
	Amount         decimal.Decimal      `json:"monto"`
	PaidOn         string               `json:"fechaPago"`
	Method         string               `json:"metodoPago"`
	Notes          string               `json:"observacion,omitempty"`
	ReceiptURL     string               `json:"urlComprobante,omitempty"`
	Status         ledger.PaymentStatus `json:"estadoProceso"`
	VoidReason     string               `json:"motivoAnulacion,omitempty"`
	VoidedBy       string               `json:"anuladoPor,omitempty"`
	VoidedAt       *time.Time           `json:"fechaAnulacion,omitempty"`
	IsCondonation  bool                 `json:"isCondonacion"`
	OriginalSource string               `json:"fuenteOriginal,omitempty"`
	RegisteredBy   string               `json:"registradoPor,omitempty"`
	CreatedAt      time.Time            `json:"timestampCreacion"`
	Version        int                  `json:"version"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		Sequence:       p.Sequence,
		ClientID:       p.ClientID,
		HouseID:        p.HouseID,
		ProjectID:      p.ProjectID,
		Source:         p.Source,
		Amount:         p.Amount,
		PaidOn:         p.PaidOn.Format(DateLayout),
		Method:         p.Method,
		Notes:          p.Notes,
		ReceiptURL:     p.ReceiptURL,
		Status:         p.Status,
		VoidReason:     p.VoidReason,
		VoidedBy:       p.VoidedBy,
		VoidedAt:       p.VoidedAt,
		IsCondonation:  p.IsCondonation,
		OriginalSource: p.OriginalSource,
		RegisteredBy:   p.RegisteredBy,
		CreatedAt:      p.CreatedAt,
		Version:        p.Version,
	}
}

// PaymentResult is returned by every ledger write. It carries the display
// data used for audit text, captured inside the transaction.
type PaymentResult struct {
	Payment         PaymentResponse `json:"abono"`
	ClientName      string          `json:"clienteNombre"`
	HouseLabel      string          `json:"viviendaNombre"`
	ProjectName     string          `json:"proyectoNombre,omitempty"`
	AmountText      string          `json:"montoFormateado"`
	PreviousAmount  decimal.Decimal `json:"montoAnterior"`
	HouseTotalPaid  decimal.Decimal `json:"totalAbonado"`
	HouseBalance    decimal.Decimal `json:"saldoPendiente"`
	Step            client.StepKey  `json:"paso,omitempty"`
	StepLabel       string          `json:"pasoNombre,omitempty"`
	SourceFullyPaid bool            `json:"fuenteCompleta"`
}

// SourceSummary is the ledger position of one funding source
type SourceSummary struct {
	Source      client.FundingSource `json:"fuente"`
	Label       string               `json:"nombre"`
	Applies     bool                 `json:"aplica"`
	Agreed      decimal.Decimal      `json:"pactado"`
	Paid        decimal.Decimal      `json:"abonado"`
	Outstanding decimal.Decimal      `json:"pendiente"`
}

// ClientLedgerSummary is the per-source summary of a client
type ClientLedgerSummary struct {
	ClientID         uuid.UUID       `json:"clienteId"`
	ClientName       string          `json:"clienteNombre"`
	Sources          []SourceSummary `json:"fuentes"`
	TotalAgreed      decimal.Decimal `json:"totalPactado"`
	TotalPaid        decimal.Decimal `json:"totalAbonado"`
	TotalOutstanding decimal.Decimal `json:"totalPendiente"`
}
