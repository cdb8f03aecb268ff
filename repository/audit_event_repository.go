package repository

import (
	"context"
	"fmt"

	"raffler/database"
	"raffler/models"
)

const auditEventColumns = `id, actor_alias_id, action, target_type, target_id, metadata, created_at`

// AuditEventRepository implements the service.AuditEventRepository interface.
// The audit trail is append-only: there are no update or delete operations.
type AuditEventRepository struct {
	q queryable
}

// NewAuditEventRepository creates a new audit event repository
func NewAuditEventRepository(db *database.DB) *AuditEventRepository {
	return &AuditEventRepository{q: db.Pool}
}

// newAuditEventRepositoryWithTx creates a new audit event repository with a transaction
func newAuditEventRepositoryWithTx(tx queryable) *AuditEventRepository {
	return &AuditEventRepository{q: tx}
}

// Record appends an audit event. When called through a unit of work the event
// commits or rolls back together with the mutation it describes.
func (r *AuditEventRepository) Record(ctx context.Context, event *models.AuditEvent) error {
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	query := `
		INSERT INTO audit_events (actor_alias_id, action, target_type, target_id, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		event.ActorAliasID,
		event.Action,
		event.TargetType,
		event.TargetID,
		event.Metadata,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}

// ListByTarget returns events for a target, newest first
func (r *AuditEventRepository) ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]*models.AuditEvent, error) {
	query := `
		SELECT ` + auditEventColumns + `
		FROM audit_events
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	return r.queryEvents(ctx, query, targetType, targetID, limit)
}

// ListRecent returns the most recent events across all targets
func (r *AuditEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditEvent, error) {
	query := `
		SELECT ` + auditEventColumns + `
		FROM audit_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	return r.queryEvents(ctx, query, limit)
}

func (r *AuditEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.AuditEvent, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var auditEvents []*models.AuditEvent
	for rows.Next() {
		var event models.AuditEvent
		err := rows.Scan(
			&event.ID,
			&event.ActorAliasID,
			&event.Action,
			&event.TargetType,
			&event.TargetID,
			&event.Metadata,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		auditEvents = append(auditEvents, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	return auditEvents, nil
}
