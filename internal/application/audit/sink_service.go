package audit

import (
	"context"
	"fmt"

	"github.com/constructora/backend/internal/domain/audit"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SinkService stores audit records and notifications
type SinkService struct {
	logs          audit.LogRepository
	notifications audit.NotificationRepository
	mailer        audit.Mailer
	logger        *zap.Logger
}

// NewSinkService creates a SinkService
func NewSinkService(logs audit.LogRepository, notifications audit.NotificationRepository, logger *zap.Logger) *SinkService {
	return &SinkService{logs: logs, notifications: notifications, logger: logger}
}

// WithMailer forwards every stored notification through mailer
func (s *SinkService) WithMailer(mailer audit.Mailer) *SinkService {
	s.mailer = mailer
	return s
}

// CreateAuditLog appends an audit record
func (s *SinkService) CreateAuditLog(ctx context.Context, message string, details map[string]any, actor, eventType string) error {
	l, err := audit.NewLog(message, details, actor, eventType)
	if err != nil {
		return err
	}
	if err := s.logs.Create(ctx, l); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// CreateNotification stores a notification and mails it when a mailer is set.
// Mail failures are logged only.
func (s *SinkService) CreateNotification(ctx context.Context, t audit.NotificationType, message, link string) error {
	n, err := audit.NewNotification(t, message, link)
	if err != nil {
		return err
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	if s.mailer != nil {
		if err := s.mailer.SendNotification(ctx, n); err != nil {
			s.logger.Warn("Failed to mail notification",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ListAuditLogs lists audit records, newest first
func (s *SinkService) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	f := audit.LogFilter{
		Filter:    shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at"}.Normalize(),
		EventType: filter.EventType,
		Actor:     filter.Actor,
	}
	logs, total, err := s.logs.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AuditLogResponse, len(logs))
	for i := range logs {
		out[i] = toAuditLogResponse(&logs[i])
	}
	return out, total, nil
}

// ListNotifications lists notifications, newest first
func (s *SinkService) ListNotifications(ctx context.Context, filter NotificationFilter) ([]NotificationResponse, int64, error) {
	f := audit.NotificationFilter{
		Filter:     shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "created_at"}.Normalize(),
		UnreadOnly: filter.UnreadOnly,
	}
	items, total, err := s.notifications.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]NotificationResponse, len(items))
	for i := range items {
		out[i] = toNotificationResponse(&items[i])
	}
	return out, total, nil
}

// MarkNotificationRead flags a notification as seen
func (s *SinkService) MarkNotificationRead(ctx context.Context, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "notification not found")
	}
	n.MarkRead()
	if err := s.notifications.Save(ctx, n); err != nil {
		return nil, err
	}
	resp := toNotificationResponse(n)
	return &resp, nil
}

var _ audit.Sink = (*SinkService)(nil)
