package housing

import (
	"time"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest creates a project
type CreateProjectRequest struct {
	Name        string `json:"nombre" binding:"required,max=120"`
	Location    string `json:"ubicacion" binding:"max=200"`
	Description string `json:"descripcion" binding:"max=1000"`
}

// RenameProjectRequest renames a project
type RenameProjectRequest struct {
	Name string `json:"nombre" binding:"required,max=120"`
}

// ProjectResponse is the JSON shape of a project
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"nombre"`
	Location    string    `json:"ubicacion,omitempty"`
	Description string    `json:"descripcion,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// ToProjectResponse converts a domain project
func ToProjectResponse(p *housing.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Location:    p.Location,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// CreateHouseRequest creates a house in a project
type CreateHouseRequest struct {
	ProjectID uuid.UUID       `json:"proyectoId" binding:"required"`
	Block     string          `json:"manzana" binding:"required,max=20"`
	Number    string          `json:"numeroCasa" binding:"required,max=20"`
	BasePrice decimal.Decimal `json:"valorBase" binding:"required"`
	Discount  decimal.Decimal `json:"descuento"`
}

// UpdateHousePriceRequest changes the price of a house
type UpdateHousePriceRequest struct {
	BasePrice decimal.Decimal `json:"valorBase" binding:"required"`
	Discount  decimal.Decimal `json:"descuento"`
}

// HouseListFilter narrows house listings
type HouseListFilter struct {
	ProjectID *uuid.UUID `form:"-"`
	Available *bool      `form:"disponible"`
	Search    string     `form:"search"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size" binding:"omitempty,max=200"`
}

// HouseResponse is the JSON shape of a house
type HouseResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProjectID  uuid.UUID       `json:"proyectoId"`
	Block      string          `json:"manzana"`
	Number     string          `json:"numeroCasa"`
	Label      string          `json:"nombre"`
	BasePrice  decimal.Decimal `json:"valorBase"`
	Discount   decimal.Decimal `json:"descuento"`
	FinalPrice decimal.Decimal `json:"valorFinal"`
	TotalPaid  decimal.Decimal `json:"totalAbonado"`
	Balance    decimal.Decimal `json:"saldoPendiente"`
	ClientID   *uuid.UUID      `json:"clienteId"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToHouseResponse converts a domain house
func ToHouseResponse(h *housing.House) HouseResponse {
	return HouseResponse{
		ID:         h.ID,
		ProjectID:  h.ProjectID,
		Block:      h.Block,
		Number:     h.Number,
		Label:      h.Label(),
		BasePrice:  h.BasePrice,
		Discount:   h.Discount,
		FinalPrice: h.FinalPrice,
		TotalPaid:  h.TotalPaid,
		Balance:    h.Balance,
		ClientID:   h.ClientID,
		CreatedAt:  h.CreatedAt,
		UpdatedAt:  h.UpdatedAt,
		Version:    h.Version,
	}
}
