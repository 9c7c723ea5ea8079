package models

import (
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for a payment ("abono")
type PaymentModel struct {
	AggregateModel
	Sequence       int64                `gorm:"column:consecutivo;not null;uniqueIndex:idx_abonos_consecutivo"`
	ClientID       uuid.UUID            `gorm:"column:cliente_id;type:uuid;not null;index:idx_abonos_cliente_fuente,priority:1"`
	HouseID        uuid.UUID            `gorm:"column:vivienda_id;type:uuid;not null;index"`
	ProjectID      uuid.UUID            `gorm:"column:proyecto_id;type:uuid;not null"`
	Source         client.FundingSource `gorm:"column:fuente;type:varchar(30);not null;index:idx_abonos_cliente_fuente,priority:2"`
	Amount         decimal.Decimal      `gorm:"column:monto;type:decimal(18,2);not null"`
	PaidOn         time.Time            `gorm:"column:fecha_pago;not null"`
	Method         string               `gorm:"column:metodo_pago;type:varchar(60);not null"`
	Notes          string               `gorm:"column:observacion;type:text"`
	ReceiptURL     string               `gorm:"column:url_comprobante;type:varchar(500)"`
	Status         ledger.PaymentStatus `gorm:"column:estado_proceso;type:varchar(20);not null;default:'activo';index"`
	VoidReason     string               `gorm:"column:motivo_anulacion;type:text"`
	VoidedBy       string               `gorm:"column:anulado_por;type:varchar(120)"`
	VoidedAt       *time.Time           `gorm:"column:fecha_anulacion"`
	IsCondonation  bool                 `gorm:"column:is_condonacion;not null;default:false"`
	OriginalSource string               `gorm:"column:fuente_original;type:varchar(60)"`
	RegisteredBy   string               `gorm:"column:registrado_por;type:varchar(120)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "abonos"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Sequence:          m.Sequence,
		ClientID:          m.ClientID,
		HouseID:           m.HouseID,
		ProjectID:         m.ProjectID,
		Source:            m.Source,
		Amount:            m.Amount,
		PaidOn:            m.PaidOn.UTC(),
		Method:            m.Method,
		Notes:             m.Notes,
		ReceiptURL:        m.ReceiptURL,
		Status:            m.Status,
		VoidReason:        m.VoidReason,
		VoidedBy:          m.VoidedBy,
		VoidedAt:          m.VoidedAt,
		IsCondonation:     m.IsCondonation,
		OriginalSource:    m.OriginalSource,
		RegisteredBy:      m.RegisteredBy,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Sequence = p.Sequence
	m.ClientID = p.ClientID
	m.HouseID = p.HouseID
	m.ProjectID = p.ProjectID
	m.Source = p.Source
	m.Amount = p.Amount
	m.PaidOn = p.PaidOn
	m.Method = p.Method
	m.Notes = p.Notes
	m.ReceiptURL = p.ReceiptURL
	m.Status = p.Status
	m.VoidReason = p.VoidReason
	m.VoidedBy = p.VoidedBy
	m.VoidedAt = p.VoidedAt
	m.IsCondonation = p.IsCondonation
	m.OriginalSource = p.OriginalSource
	m.RegisteredBy = p.RegisteredBy
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// CounterModel is a named gap-free sequence
type CounterModel struct {
	Name          string `gorm:"column:name;type:varchar(50);primaryKey"`
	CurrentNumber int64  `gorm:"column:current_number;not null;default:0"`
}

// TableName returns the table name for GORM
func (CounterModel) TableName() string {
	return "counters"
}
