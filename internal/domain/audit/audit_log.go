package audit

import (
	"maps"
	"strings"

	"github.com/constructora/backend/internal/domain/shared"
)

// Log is an append-only record of a committed business action
type Log struct {
	shared.BaseEntity
	Message   string
	Details   map[string]any
	Actor     string
	EventType string
}

// NewLog creates an audit entry. The message is required.
func NewLog(message string, details map[string]any, actor, eventType string) (*Log, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "audit message cannot be empty")
	}
	return &Log{
		BaseEntity: shared.NewBaseEntity(),
		Message:    message,
		Details:    details,
		Actor:      actor,
		EventType:  eventType,
	}, nil
}

// DetailsCopy returns a copy of the details map
func (l *Log) DetailsCopy() map[string]any {
	out := make(map[string]any, len(l.Details))
	maps.Copy(out, l.Details)
	return out
}
