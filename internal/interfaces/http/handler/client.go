package handler

import (
	clientapp "github.com/constructora/backend/internal/application/client"
	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientHandler handles client records, their process and their ledger summary
type ClientHandler struct {
	BaseHandler
	clients  *clientapp.ClientService
	process  *clientapp.ProcessService
	payments *ledgerapp.PaymentService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients *clientapp.ClientService, process *clientapp.ProcessService, payments *ledgerapp.PaymentService) *ClientHandler {
	return &ClientHandler{clients: clients, process: process, payments: payments}
}

// Onboard handles POST /clients
func (h *ClientHandler) Onboard(c *gin.Context) {
	var req clientapp.OnboardClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.clients.Onboard(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /clients?search=&estado=&proyectoId=
func (h *ClientHandler) List(c *gin.Context) {
	var filter clientapp.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.ProjectID, ok = h.queryID(c, "proyectoId"); !ok {
		return
	}
	filter.Page, filter.PageSize = dto.Pagination(filter.Page, filter.PageSize)
	items, total, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req clientapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.clients.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateFinancing handles PUT /clients/:id/financing
func (h *ClientHandler) UpdateFinancing(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req clientapp.UpdateFinancingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.process.UpdateFinancing(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Status handles GET /clients/:id/status
func (h *ClientHandler) Status(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.process.GetStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, view)
}

// Summary handles GET /clients/:id/summary
func (h *ClientHandler) Summary(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.payments.ClientSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// CompleteStep handles POST /clients/:id/process/:step/complete
func (h *ClientHandler) CompleteStep(c *gin.Context) {
	id, step, ok := h.stepParams(c)
	if !ok {
		return
	}
	var req clientapp.CompleteStepRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.process.CompleteStep(c.Request.Context(), id, step, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReopenStep handles POST /clients/:id/process/:step/reopen
func (h *ClientHandler) ReopenStep(c *gin.Context) {
	id, step, ok := h.stepParams(c)
	if !ok {
		return
	}
	var req clientapp.ReopenStepRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.process.ReopenStep(c.Request.Context(), id, step, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ClientHandler) stepParams(c *gin.Context) (uuid.UUID, client.StepKey, bool) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return uuid.Nil, "", false
	}
	step := client.StepKey(c.Param("step"))
	if !step.IsValid() {
		h.BadRequest(c, "Unknown process step "+string(step))
		return uuid.Nil, "", false
	}
	return id, step, true
}
