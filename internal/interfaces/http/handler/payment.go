package handler

import (
	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles the abono ledger endpoints
type PaymentHandler struct {
	BaseHandler
	payments *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Register handles POST /payments
func (h *PaymentHandler) Register(c *gin.Context) {
	var req ledgerapp.RegisterPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	res, err := h.payments.RegisterPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, res)
}

// List handles GET /payments?clienteId=&viviendaId=&fuente=
func (h *PaymentHandler) List(c *gin.Context) {
	var filter ledgerapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.ClientID, ok = h.queryID(c, "clienteId"); !ok {
		return
	}
	if filter.HouseID, ok = h.queryID(c, "viviendaId"); !ok {
		return
	}
	if filter.ClientID == nil && filter.HouseID == nil {
		h.BadRequest(c, "clienteId or viviendaId is required")
		return
	}
	filter.Page, filter.PageSize = dto.Pagination(filter.Page, filter.PageSize)
	payments, total, err := h.payments.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payment)
}

// Update handles PUT /payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	res, err := h.payments.UpdatePayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, res)
}

// Void handles POST /payments/:id/void
func (h *PaymentHandler) Void(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.VoidPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	res, err := h.payments.VoidPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, res)
}

// RevertVoid handles POST /payments/:id/revert
func (h *PaymentHandler) RevertVoid(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.payments.RevertVoid(c.Request.Context(), id, actor(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, res)
}

// RegisterCreditDisbursement handles POST /disbursements/credit
func (h *PaymentHandler) RegisterCreditDisbursement(c *gin.Context) {
	var req ledgerapp.CreditDisbursementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	res, err := h.payments.RegisterCreditDisbursement(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, res)
}

// Condone handles POST /condonations
func (h *PaymentHandler) Condone(c *gin.Context) {
	var req ledgerapp.CondonationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Actor = actor(c)
	res, err := h.payments.CondoneBalance(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, res)
}
