package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for a client. Financing and the
// process map are stored as JSON documents.
type ClientModel struct {
	AggregateModel
	FirstName             string        `gorm:"column:nombres;type:varchar(120);not null"`
	LastName              string        `gorm:"column:apellidos;type:varchar(120);not null"`
	DocumentNumber        string        `gorm:"column:cedula;type:varchar(30);not null;uniqueIndex:idx_clientes_cedula"`
	Phone                 string        `gorm:"column:telefono;type:varchar(30)"`
	Email                 string        `gorm:"column:correo;type:varchar(200)"`
	Address               string        `gorm:"column:direccion;type:varchar(255)"`
	ProjectID             uuid.UUID     `gorm:"column:proyecto_id;type:uuid;not null;index"`
	HouseID               *uuid.UUID    `gorm:"column:vivienda_id;type:uuid;index"`
	FinancingJSON         string        `gorm:"column:financiero;type:jsonb;not null"`
	ProcessJSON           string        `gorm:"column:proceso;type:jsonb;not null"`
	Status                client.Status `gorm:"column:status;type:varchar(20);not null;default:'activo';index"`
	PendingRenunciationID *uuid.UUID    `gorm:"column:renuncia_pendiente_id;type:uuid"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clientes"
}

// ToDomain converts the persistence model to a domain Client. A process
// document with unknown step keys is rejected.
func (m *ClientModel) ToDomain() (*client.Client, error) {
	c := &client.Client{
		BaseAggregateRoot: m.ToAggregateRoot(),
		PersonalData: client.PersonalData{
			FirstName:      m.FirstName,
			LastName:       m.LastName,
			DocumentNumber: m.DocumentNumber,
			Phone:          m.Phone,
			Email:          m.Email,
			Address:        m.Address,
		},
		ProjectID:             m.ProjectID,
		HouseID:               m.HouseID,
		Status:                m.Status,
		PendingRenunciationID: m.PendingRenunciationID,
	}
	if m.FinancingJSON != "" {
		if err := json.Unmarshal([]byte(m.FinancingJSON), &c.Financing); err != nil {
			return nil, fmt.Errorf("decode financing of client %s: %w", m.ID, err)
		}
	}
	if m.ProcessJSON != "" {
		if err := json.Unmarshal([]byte(m.ProcessJSON), &c.Process); err != nil {
			return nil, fmt.Errorf("decode process of client %s: %w", m.ID, err)
		}
	}
	if c.Process == nil {
		c.Process = make(client.Process)
	}
	return c, nil
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(c *client.Client) error {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.DocumentNumber = c.DocumentNumber
	m.Phone = c.Phone
	m.Email = c.Email
	m.Address = c.Address
	m.ProjectID = c.ProjectID
	m.HouseID = c.HouseID
	m.Status = c.Status
	m.PendingRenunciationID = c.PendingRenunciationID

	financing, err := json.Marshal(c.Financing)
	if err != nil {
		return fmt.Errorf("encode financing: %w", err)
	}
	m.FinancingJSON = string(financing)

	process := c.Process
	if process == nil {
		process = make(client.Process)
	}
	raw, err := json.Marshal(process)
	if err != nil {
		return fmt.Errorf("encode process: %w", err)
	}
	m.ProcessJSON = string(raw)
	return nil
}

// RenunciationModel is the persistence model for a renunciation
type RenunciationModel struct {
	AggregateModel
	ClientID         uuid.UUID                 `gorm:"column:cliente_id;type:uuid;not null;index"`
	HouseID          uuid.UUID                 `gorm:"column:vivienda_id;type:uuid;not null"`
	ProjectID        uuid.UUID                 `gorm:"column:proyecto_id;type:uuid;not null"`
	ClientName       string                    `gorm:"column:cliente_nombre;type:varchar(250)"`
	HouseLabel       string                    `gorm:"column:vivienda_info;type:varchar(120)"`
	TotalPaid        decimal.Decimal           `gorm:"column:total_abonado;type:decimal(18,2);not null;default:0"`
	Penalty          decimal.Decimal           `gorm:"column:penalidad;type:decimal(18,2);not null;default:0"`
	Refund           decimal.Decimal           `gorm:"column:total_a_devolver;type:decimal(18,2);not null;default:0"`
	Reason           string                    `gorm:"column:motivo;type:text"`
	Status           client.RenunciationStatus `gorm:"column:estado;type:varchar(20);not null;index"`
	RenouncedAt      time.Time                 `gorm:"column:fecha_renuncia;not null"`
	ClosedAt         *time.Time                `gorm:"column:fecha_cierre"`
	RefundReceiptURL string                    `gorm:"column:url_comprobante_devolucion;type:varchar(500)"`
	RequestedBy      string                    `gorm:"column:solicitado_por;type:varchar(120)"`
	ClosedBy         string                    `gorm:"column:cerrado_por;type:varchar(120)"`
}

// TableName returns the table name for GORM
func (RenunciationModel) TableName() string {
	return "renuncias"
}

// ToDomain converts the persistence model to a domain Renunciation
func (m *RenunciationModel) ToDomain() *client.Renunciation {
	return &client.Renunciation{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		HouseID:           m.HouseID,
		ProjectID:         m.ProjectID,
		ClientName:        m.ClientName,
		HouseLabel:        m.HouseLabel,
		TotalPaid:         m.TotalPaid,
		Penalty:           m.Penalty,
		Refund:            m.Refund,
		Reason:            m.Reason,
		Status:            m.Status,
		RenouncedAt:       m.RenouncedAt,
		ClosedAt:          m.ClosedAt,
		RefundReceiptURL:  m.RefundReceiptURL,
		RequestedBy:       m.RequestedBy,
		ClosedBy:          m.ClosedBy,
	}
}

// FromDomain populates the persistence model from a domain Renunciation
func (m *RenunciationModel) FromDomain(r *client.Renunciation) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ClientID = r.ClientID
	m.HouseID = r.HouseID
	m.ProjectID = r.ProjectID
	m.ClientName = r.ClientName
	m.HouseLabel = r.HouseLabel
	m.TotalPaid = r.TotalPaid
	m.Penalty = r.Penalty
	m.Refund = r.Refund
	m.Reason = r.Reason
	m.Status = r.Status
	m.RenouncedAt = r.RenouncedAt
	m.ClosedAt = r.ClosedAt
	m.RefundReceiptURL = r.RefundReceiptURL
	m.RequestedBy = r.RequestedBy
	m.ClosedBy = r.ClosedBy
}

// RenunciationModelFromDomain creates a new persistence model from a domain Renunciation
func RenunciationModelFromDomain(r *client.Renunciation) *RenunciationModel {
	m := &RenunciationModel{}
	m.FromDomain(r)
	return m
}
