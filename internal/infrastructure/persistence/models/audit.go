package models

import (
	"encoding/json"

	"github.com/constructora/backend/internal/domain/audit"
)

// AuditLogModel is the persistence model for an audit entry
type AuditLogModel struct {
	BaseModel
	Message     string `gorm:"column:mensaje;type:text;not null"`
	DetailsJSON string `gorm:"column:detalles;type:jsonb"`
	Actor       string `gorm:"column:usuario;type:varchar(120);index"`
	EventType   string `gorm:"column:tipo_evento;type:varchar(60);index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audits"
}

// ToDomain converts the persistence model to a domain Log
func (m *AuditLogModel) ToDomain() *audit.Log {
	l := &audit.Log{
		BaseEntity: m.BaseModel.ToDomain(),
		Message:    m.Message,
		Actor:      m.Actor,
		EventType:  m.EventType,
	}
	if m.DetailsJSON != "" {
		var details map[string]any
		if err := json.Unmarshal([]byte(m.DetailsJSON), &details); err == nil {
			l.Details = details
		}
	}
	return l
}

// FromDomain populates the persistence model from a domain Log
func (m *AuditLogModel) FromDomain(l *audit.Log) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.Message = l.Message
	m.Actor = l.Actor
	m.EventType = l.EventType
	m.DetailsJSON = "{}"
	if len(l.Details) > 0 {
		if raw, err := json.Marshal(l.Details); err == nil {
			m.DetailsJSON = string(raw)
		}
	}
}

// NotificationModel is the persistence model for an in-app notification
type NotificationModel struct {
	BaseModel
	Type    audit.NotificationType `gorm:"column:tipo;type:varchar(20);not null"`
	Message string                 `gorm:"column:mensaje;type:text;not null"`
	Link    string                 `gorm:"column:link;type:varchar(255)"`
	Read    bool                   `gorm:"column:leida;not null;default:false;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *audit.Notification {
	return &audit.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		Type:       m.Type,
		Message:    m.Message,
		Link:       m.Link,
		Read:       m.Read,
	}
}

// FromDomain populates the persistence model from a domain Notification
func (m *NotificationModel) FromDomain(n *audit.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.Type = n.Type
	m.Message = n.Message
	m.Link = n.Link
	m.Read = n.Read
}
