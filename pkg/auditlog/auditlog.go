package auditlog

import (
	"context"
	"time"

	"fieldstock/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink stores or forwards one audit event.
type Sink interface {
	Name() string
	Write(ctx context.Context, event models.AuditLog) error
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

type Auditlog struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewAuditLog(logger *zap.Logger, sinks ...Sink) *Auditlog {
	return &Auditlog{sinks: sinks, logger: logger}
}

// Log builds one event for item and hands it to every sink. Sink failures
// are logged and never returned.
func (a *Auditlog) Log(ctx context.Context, action string, actorID *int64, description string, data map[string]interface{}, item Auditable) models.AuditLog {
	event := item.CreateLogView()
	event.EventID = uuid.NewString()
	event.Action = action
	event.UserID = actorID
	event.Description = description
	event.Data = data
	event.CreatedAt = time.Now().UTC()

	ctx = context.WithoutCancel(ctx)
	for _, sink := range a.sinks {
		if err := sink.Write(ctx, event); err != nil {
			a.logger.Error("Unable to write audit event",
				zap.String("sink", sink.Name()),
				zap.String("event_id", event.EventID),
				zap.String("resource_type", event.ResourceType),
				zap.Int64("resource_id", event.ResourceID),
				zap.Error(err),
			)
			continue
		}
	}

	a.logger.Debug("Audit event emitted",
		zap.String("event_id", event.EventID),
		zap.String("action", action),
		zap.Int64("resource_id", event.ResourceID),
	)

	return event
}
