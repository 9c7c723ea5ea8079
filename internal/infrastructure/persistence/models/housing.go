package models

import (
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for a housing project
type ProjectModel struct {
	AggregateModel
	Name        string `gorm:"column:nombre;type:varchar(120);not null;uniqueIndex:idx_proyectos_nombre"`
	Location    string `gorm:"column:ubicacion;type:varchar(200)"`
	Description string `gorm:"column:descripcion;type:text"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "proyectos"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *housing.Project {
	return &housing.Project{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Location:          m.Location,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(p *housing.Project) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Location = p.Location
	m.Description = p.Description
}

// ProjectModelFromDomain creates a new persistence model from a domain Project
func ProjectModelFromDomain(p *housing.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}

// HouseModel is the persistence model for a house ("vivienda")
type HouseModel struct {
	AggregateModel
	ProjectID  uuid.UUID       `gorm:"column:proyecto_id;type:uuid;not null;uniqueIndex:idx_viviendas_ubicacion,priority:1"`
	Block      string          `gorm:"column:manzana;type:varchar(20);not null;uniqueIndex:idx_viviendas_ubicacion,priority:2"`
	Number     string          `gorm:"column:numero_casa;type:varchar(20);not null;uniqueIndex:idx_viviendas_ubicacion,priority:3"`
	BasePrice  decimal.Decimal `gorm:"column:valor_base;type:decimal(18,2);not null;default:0"`
	Discount   decimal.Decimal `gorm:"column:descuento;type:decimal(18,2);not null;default:0"`
	FinalPrice decimal.Decimal `gorm:"column:valor_final;type:decimal(18,2);not null;default:0"`
	TotalPaid  decimal.Decimal `gorm:"column:total_abonado;type:decimal(18,2);not null;default:0"`
	Balance    decimal.Decimal `gorm:"column:saldo_pendiente;type:decimal(18,2);not null;default:0"`
	ClientID   *uuid.UUID      `gorm:"column:cliente_id;type:uuid;index"`
}

// TableName returns the table name for GORM
func (HouseModel) TableName() string {
	return "viviendas"
}

// ToDomain converts the persistence model to a domain House
func (m *HouseModel) ToDomain() *housing.House {
	return &housing.House{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ProjectID:         m.ProjectID,
		Block:             m.Block,
		Number:            m.Number,
		BasePrice:         m.BasePrice,
		Discount:          m.Discount,
		FinalPrice:        m.FinalPrice,
		TotalPaid:         m.TotalPaid,
		Balance:           m.Balance,
		ClientID:          m.ClientID,
	}
}

// FromDomain populates the persistence model from a domain House
func (m *HouseModel) FromDomain(h *housing.House) {
	m.FromDomainAggregateRoot(h.BaseAggregateRoot)
	m.ProjectID = h.ProjectID
	m.Block = h.Block
	m.Number = h.Number
	m.BasePrice = h.BasePrice
	m.Discount = h.Discount
	m.FinalPrice = h.FinalPrice
	m.TotalPaid = h.TotalPaid
	m.Balance = h.Balance
	m.ClientID = h.ClientID
}

// HouseModelFromDomain creates a new persistence model from a domain House
func HouseModelFromDomain(h *housing.House) *HouseModel {
	m := &HouseModel{}
	m.FromDomain(h)
	return m
}
