package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"fieldstock/internal/repository"
	"fieldstock/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// AuditLogRepository is the Postgres audit sink.
type AuditLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AuditLogRepository {
	return &AuditLogRepository{repository: r}
}

func (r *AuditLogRepository) Name() string { return "postgres" }

func (r *AuditLogRepository) Write(ctx context.Context, event models.AuditLog) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	_, err = r.repository.GoquDBWrapper.Insert("audit_logs").
		Rows(goqu.Record{
			"event_id":      event.EventID,
			"resource_id":   event.ResourceID,
			"resource_type": event.ResourceType,
			"action":        event.Action,
			"description":   event.Description,
			"data":          string(dataJSON),
			"user_id":       event.UserID,
			"created_at":    event.CreatedAt,
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

func (r *AuditLogRepository) GetResourceLog(ctx context.Context, id int64, resourceType string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.repository.GoquDBWrapper.
		From("audit_logs").
		Select("id", "event_id", "resource_id", "resource_type", "action", "description", "data", "user_id", "created_at").
		Where(goqu.Ex{
			"resource_id":   id,
			"resource_type": resourceType,
		}).
		Order(goqu.I("id").Asc()).
		ScanStructsContext(ctx, &logs)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	for i := range logs {
		logs[i].LoadFromDB()
	}

	return logs, nil
}
