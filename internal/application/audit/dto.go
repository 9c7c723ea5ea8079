package audit

import (
	"time"

	"github.com/constructora/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// AuditLogFilter narrows audit listings
type AuditLogFilter struct {
	EventType string `form:"tipo"`
	Actor     string `form:"usuario"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size" binding:"omitempty,max=200"`
}

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	UnreadOnly bool `form:"noLeidas"`
	Page       int  `form:"page"`
	PageSize   int  `form:"page_size" binding:"omitempty,max=200"`
}

// AuditLogResponse is the JSON shape of an audit record
type AuditLogResponse struct {
	ID        uuid.UUID      `json:"id"`
	Message   string         `json:"mensaje"`
	Details   map[string]any `json:"detalles,omitempty"`
	Actor     string         `json:"userName"`
	EventType string         `json:"tipo"`
	CreatedAt time.Time      `json:"fecha"`
}

func toAuditLogResponse(l *audit.Log) AuditLogResponse {
	return AuditLogResponse{
		ID:        l.ID,
		Message:   l.Message,
		Details:   l.DetailsCopy(),
		Actor:     l.Actor,
		EventType: l.EventType,
		CreatedAt: l.CreatedAt,
	}
}

// NotificationResponse is the JSON shape of a notification
type NotificationResponse struct {
	ID        uuid.UUID              `json:"id"`
	Type      audit.NotificationType `json:"tipo"`
	Message   string                 `json:"mensaje"`
	Link      string                 `json:"link,omitempty"`
	Read      bool                   `json:"leida"`
	CreatedAt time.Time              `json:"fecha"`
}

func toNotificationResponse(n *audit.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
