package handler

import (
	clientapp "github.com/constructora/backend/internal/application/client"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RenunciationHandler handles renunciation endpoints
type RenunciationHandler struct {
	BaseHandler
	renunciations *clientapp.RenunciationService
}

// NewRenunciationHandler creates a new RenunciationHandler
func NewRenunciationHandler(renunciations *clientapp.RenunciationService) *RenunciationHandler {
	return &RenunciationHandler{renunciations: renunciations}
}

// Create handles POST /renunciations
func (h *RenunciationHandler) Create(c *gin.Context) {
	var req clientapp.CreateRenunciationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.renunciations.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /renunciations?estado=&clienteId=
func (h *RenunciationHandler) List(c *gin.Context) {
	var filter clientapp.RenunciationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.ClientID, ok = h.queryID(c, "clienteId"); !ok {
		return
	}
	filter.Page, filter.PageSize = dto.Pagination(filter.Page, filter.PageSize)
	items, total, err := h.renunciations.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /renunciations/:id
func (h *RenunciationHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.renunciations.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close handles POST /renunciations/:id/close
func (h *RenunciationHandler) Close(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req clientapp.CloseRenunciationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	resp, err := h.renunciations.Close(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
