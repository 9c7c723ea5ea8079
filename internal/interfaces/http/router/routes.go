package router

import (
	"github.com/constructora/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups the handlers mounted under /api/v1
type Handlers struct {
	System       *handler.SystemHandler
	Projects     *handler.ProjectHandler
	Houses       *handler.HouseHandler
	Clients      *handler.ClientHandler
	Payments     *handler.PaymentHandler
	Renunciation *handler.RenunciationHandler
	Audit        *handler.AuditHandler
	Admin        *handler.AdminHandler
}

// APIRoutes builds the route table. idempotency guards the POSTs that
// write to the ledger.
func APIRoutes(h Handlers, idempotency gin.HandlerFunc) []RouteRegistrar {
	if idempotency == nil {
		idempotency = func(c *gin.Context) { c.Next() }
	}

	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	projects := NewDomainGroup("projects", "/projects")
	projects.POST("", h.Projects.Create)
	projects.GET("", h.Projects.List)
	projects.GET("/:id", h.Projects.GetByID)
	projects.PUT("/:id", h.Projects.Rename)
	projects.DELETE("/:id", h.Projects.Delete)

	houses := NewDomainGroup("houses", "/houses")
	houses.POST("", h.Houses.Create)
	houses.GET("", h.Houses.List)
	houses.GET("/:id", h.Houses.GetByID)
	houses.PUT("/:id", h.Houses.UpdatePrice)
	houses.DELETE("/:id", h.Houses.Delete)

	clients := NewDomainGroup("clients", "/clients")
	clients.POST("", h.Clients.Onboard)
	clients.GET("", h.Clients.List)
	clients.GET("/:id", h.Clients.GetByID)
	clients.PUT("/:id", h.Clients.Update)
	clients.PUT("/:id/financing", h.Clients.UpdateFinancing)
	clients.GET("/:id/status", h.Clients.Status)
	clients.GET("/:id/summary", h.Clients.Summary)
	clients.POST("/:id/process/:step/complete", h.Clients.CompleteStep)
	clients.POST("/:id/process/:step/reopen", h.Clients.ReopenStep)

	payments := NewDomainGroup("payments", "/payments")
	payments.POST("", idempotency, h.Payments.Register)
	payments.GET("", h.Payments.List)
	payments.GET("/:id", h.Payments.GetByID)
	payments.PUT("/:id", h.Payments.Update)
	payments.POST("/:id/void", idempotency, h.Payments.Void)
	payments.POST("/:id/revert", idempotency, h.Payments.RevertVoid)

	disbursements := NewDomainGroup("disbursements", "/disbursements")
	disbursements.POST("/credit", idempotency, h.Payments.RegisterCreditDisbursement)

	condonations := NewDomainGroup("condonations", "/condonations")
	condonations.POST("", idempotency, h.Payments.Condone)

	renunciations := NewDomainGroup("renunciations", "/renunciations")
	renunciations.POST("", idempotency, h.Renunciation.Create)
	renunciations.GET("", h.Renunciation.List)
	renunciations.GET("/:id", h.Renunciation.GetByID)
	renunciations.POST("/:id/close", idempotency, h.Renunciation.Close)

	audit := NewDomainGroup("audit", "")
	audit.GET("/audits", h.Audit.ListAudits)
	audit.GET("/notifications", h.Audit.ListNotifications)
	audit.POST("/notifications/:id/read", h.Audit.MarkNotificationRead)

	admin := NewDomainGroup("admin", "/admin")
	admin.POST("/reconcile", h.Admin.Reconcile)

	return []RouteRegistrar{
		system, projects, houses, clients, payments,
		disbursements, condonations, renunciations, audit, admin,
	}
}
