package audit

import (
	"strings"

	"github.com/constructora/backend/internal/domain/shared"
)

// NotificationType classifies a notification for display
type NotificationType string

const (
	NotificationPayment      NotificationType = "abono"
	NotificationDisbursement NotificationType = "desembolso"
	NotificationVoid         NotificationType = "anulacion"
	NotificationClient       NotificationType = "cliente"
	NotificationRenunciation NotificationType = "renuncia"
	NotificationAlert        NotificationType = "alerta"
)

// IsValid checks if the type is known
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationPayment, NotificationDisbursement, NotificationVoid,
		NotificationClient, NotificationRenunciation, NotificationAlert:
		return true
	}
	return false
}

// Notification is a message shown to back-office users
type Notification struct {
	shared.BaseEntity
	Type    NotificationType
	Message string
	Link    string
	Read    bool
}

// NewNotification creates an unread notification
func NewNotification(t NotificationType, message, link string) (*Notification, error) {
	if !t.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "unknown notification type "+string(t))
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "notification message cannot be empty")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		Type:       t,
		Message:    message,
		Link:       link,
	}, nil
}

// MarkRead flags the notification as seen
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	n.Read = true
	n.Touch()
}
