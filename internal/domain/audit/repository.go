package audit

import (
	"context"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LogFilter narrows audit listings
type LogFilter struct {
	shared.Filter
	EventType string
	Actor     string
}

// LogRepository stores audit entries. Entries are never updated.
type LogRepository interface {
	Create(ctx context.Context, log *Log) error
	FindAll(ctx context.Context, filter LogFilter) ([]Log, int64, error)
}

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	shared.Filter
	UnreadOnly bool
}

// NotificationRepository stores notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// FindByID returns nil when the notification does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindAll(ctx context.Context, filter NotificationFilter) ([]Notification, int64, error)
	Save(ctx context.Context, n *Notification) error
}

// Sink receives audit records and notifications after a transaction
// commits. Callers log and discard its errors.
type Sink interface {
	CreateAuditLog(ctx context.Context, message string, details map[string]any, actor, eventType string) error
	CreateNotification(ctx context.Context, t NotificationType, message, link string) error
}

// Mailer forwards notifications outside the system
type Mailer interface {
	SendNotification(ctx context.Context, n *Notification) error
}
