package handler

import (
	"context"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reconciler recomputes house totals from the ledger
type Reconciler interface {
	Run(ctx context.Context) (*ledgerapp.ReconciliationReport, error)
}

// AdminHandler serves operator-only maintenance endpoints
type AdminHandler struct {
	BaseHandler
	reconciler Reconciler
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(reconciler Reconciler) *AdminHandler {
	return &AdminHandler{reconciler: reconciler}
}

// Reconcile handles POST /admin/reconcile. The report is returned even
// when houses disagree with their payments.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Run(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	logger.L(c.Request.Context()).Info("Reconciliation requested",
		zap.String("actor", actor(c)),
		zap.Int("checked", report.Checked),
		zap.Int("mismatches", len(report.Mismatches)),
	)
	h.Success(c, report)
}
