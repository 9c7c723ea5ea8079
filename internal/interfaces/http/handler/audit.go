package handler

import (
	auditapp "github.com/constructora/backend/internal/application/audit"
	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the audit trail and the notification inbox
type AuditHandler struct {
	BaseHandler
	sink *auditapp.SinkService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(sink *auditapp.SinkService) *AuditHandler {
	return &AuditHandler{sink: sink}
}

// ListAudits handles GET /audits
func (h *AuditHandler) ListAudits(c *gin.Context) {
	var filter auditapp.AuditLogFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.Pagination(filter.Page, filter.PageSize)
	logs, total, err := h.sink.ListAuditLogs(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, logs, total, filter.Page, filter.PageSize)
}

// ListNotifications handles GET /notifications
func (h *AuditHandler) ListNotifications(c *gin.Context) {
	var filter auditapp.NotificationFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.Pagination(filter.Page, filter.PageSize)
	items, total, err := h.sink.ListNotifications(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// MarkNotificationRead handles POST /notifications/:id/read
func (h *AuditHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.sink.MarkNotificationRead(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, n)
}
