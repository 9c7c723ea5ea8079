package client

import (
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PersonalDataRequest carries a client's contact details
type PersonalDataRequest struct {
	FirstName      string `json:"nombres" binding:"required,max=100"`
	LastName       string `json:"apellidos" binding:"required,max=100"`
	DocumentNumber string `json:"cedula" binding:"required,max=30"`
	Phone          string `json:"telefono" binding:"max=30"`
	Email          string `json:"correo" binding:"omitempty,email"`
	Address        string `json:"direccion" binding:"max=200"`
}

func (r PersonalDataRequest) toDomain() client.PersonalData {
	return client.PersonalData{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		DocumentNumber: r.DocumentNumber,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
	}
}

// OnboardClientRequest creates a client bound to a house
type OnboardClientRequest struct {
	PersonalDataRequest
	ProjectID uuid.UUID        `json:"proyectoId" binding:"required"`
	HouseID   uuid.UUID        `json:"viviendaId" binding:"required"`
	Financing client.Financing `json:"financiero"`
	Actor     string           `json:"-"`
}

// UpdateClientRequest replaces contact details
type UpdateClientRequest struct {
	PersonalDataRequest
	Actor string `json:"-"`
}

// UpdateFinancingRequest replaces the agreed amounts
type UpdateFinancingRequest struct {
	Financing client.Financing `json:"financiero"`
	Actor     string           `json:"-"`
}

// CompleteStepRequest completes a process step by hand
type CompleteStepRequest struct {
	Date string `json:"fecha" binding:"required"`
	// Evidence maps evidence slot id to document URL
	Evidence map[string]string `json:"evidencias"`
	Actor    string            `json:"-"`
}

// ReopenStepRequest reopens a process step
type ReopenStepRequest struct {
	Reason string `json:"motivo" binding:"required,max=500"`
	Actor  string `json:"-"`
}

// ClientListFilter narrows client listings
type ClientListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"estado" binding:"omitempty,oneof=activo renunciado inactivo"`
	ProjectID *uuid.UUID `form:"-"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size" binding:"omitempty,max=200"`
	OrderBy   string     `form:"order_by" binding:"omitempty,oneof=created_at apellidos nombres cedula"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse is the JSON shape of a client
type ClientResponse struct {
	ID                    uuid.UUID         `json:"id"`
	FirstName             string            `json:"nombres"`
	LastName              string            `json:"apellidos"`
	DocumentNumber        string            `json:"cedula"`
	Phone                 string            `json:"telefono,omitempty"`
	Email                 string            `json:"correo,omitempty"`
	Address               string            `json:"direccion,omitempty"`
	ProjectID             uuid.UUID         `json:"proyectoId"`
	HouseID               *uuid.UUID        `json:"viviendaId"`
	Financing             client.Financing  `json:"financiero"`
	Process               client.Process    `json:"proceso"`
	Status                client.Status     `json:"status"`
	StatusView            client.StatusView `json:"estado"`
	PendingRenunciationID *uuid.UUID        `json:"renunciaPendienteId,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	Version               int               `json:"version"`
}

// ToClientResponse converts a domain client
func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:                    c.ID,
		FirstName:             c.FirstName,
		LastName:              c.LastName,
		DocumentNumber:        c.DocumentNumber,
		Phone:                 c.Phone,
		Email:                 c.Email,
		Address:               c.Address,
		ProjectID:             c.ProjectID,
		HouseID:               c.HouseID,
		Financing:             c.Financing,
		Process:               c.Process,
		Status:                c.Status,
		StatusView:            client.DeriveClientStatus(c),
		PendingRenunciationID: c.PendingRenunciationID,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
		Version:               c.Version,
	}
}

// ClientListItem is the compact listing shape
type ClientListItem struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"nombre"`
	DocumentNumber string            `json:"cedula"`
	ProjectID      uuid.UUID         `json:"proyectoId"`
	HouseID        *uuid.UUID        `json:"viviendaId"`
	Status         client.Status     `json:"status"`
	StatusView     client.StatusView `json:"estado"`
}

// CreateRenunciationRequest starts a renunciation
type CreateRenunciationRequest struct {
	ClientID uuid.UUID       `json:"clienteId" binding:"required"`
	Penalty  decimal.Decimal `json:"penalidad"`
	Reason   string          `json:"motivo" binding:"required,max=500"`
	Actor    string          `json:"-"`
}

// CloseRenunciationRequest closes a renunciation once the refund is paid
type CloseRenunciationRequest struct {
	RefundReceiptURL string `json:"urlComprobanteDevolucion" binding:"omitempty,url"`
	Actor            string `json:"-"`
}

// RenunciationListFilter narrows renunciation listings
type RenunciationListFilter struct {
	Status   string     `form:"estado" binding:"omitempty,oneof=pendiente cerrada"`
	ClientID *uuid.UUID `form:"-"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,max=200"`
}

// RenunciationResponse is the JSON shape of a renunciation
type RenunciationResponse struct {
	ID               uuid.UUID                 `json:"id"`
	ClientID         uuid.UUID                 `json:"clienteId"`
	HouseID          uuid.UUID                 `json:"viviendaId"`
	ProjectID        uuid.UUID                 `json:"proyectoId"`
	ClientName       string                    `json:"clienteNombre"`
	HouseLabel       string                    `json:"viviendaNombre"`
	TotalPaid        decimal.Decimal           `json:"totalAbonado"`
	Penalty          decimal.Decimal           `json:"penalidad"`
	Refund           decimal.Decimal           `json:"totalADevolver"`
	Reason           string                    `json:"motivo"`
	Status           client.RenunciationStatus `json:"estado"`
	RenouncedAt      time.Time                 `json:"fechaRenuncia"`
	ClosedAt         *time.Time                `json:"fechaCierre,omitempty"`
	RefundReceiptURL string                    `json:"urlComprobanteDevolucion,omitempty"`
	RequestedBy      string                    `json:"solicitadoPor"`
	ClosedBy         string                    `json:"cerradoPor,omitempty"`
	VoidedPayments   int                       `json:"abonosAnulados,omitempty"`
	Version          int                       `json:"version"`
}

// ToRenunciationResponse converts a domain renunciation
func ToRenunciationResponse(r *client.Renunciation) RenunciationResponse {
	return RenunciationResponse{
		ID:               r.ID,
		ClientID:         r.ClientID,
		HouseID:          r.HouseID,
		ProjectID:        r.ProjectID,
		ClientName:       r.ClientName,
		HouseLabel:       r.HouseLabel,
		TotalPaid:        r.TotalPaid,
		Penalty:          r.Penalty,
		Refund:           r.Refund,
		Reason:           r.Reason,
		Status:           r.Status,
		RenouncedAt:      r.RenouncedAt,
		ClosedAt:         r.ClosedAt,
		RefundReceiptURL: r.RefundReceiptURL,
		RequestedBy:      r.RequestedBy,
		ClosedBy:         r.ClosedBy,
		Version:          r.Version,
	}
}
