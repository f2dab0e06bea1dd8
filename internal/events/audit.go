// internal/events/audit.go
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "activity-signup/internal/common/errors"

	"github.com/lib/pq"
)

// AuditSink appends every event to an audit table. The registry itself is
// never read back from it.
type AuditSink struct {
	db    *sql.DB
	table string
}

func NewAuditSink(db *sql.DB, table string) *AuditSink {
	return &AuditSink{db: db, table: pq.QuoteIdentifier(table)}
}

func (s *AuditSink) Name() string { return "audit" }

// EnsureTable creates the audit table when it does not exist yet.
func (s *AuditSink) EnsureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            BIGSERIAL PRIMARY KEY,
			event_id      UUID NOT NULL UNIQUE,
			event_type    TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id   TEXT NOT NULL,
			details       JSONB NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`, s.table))
	if err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Deliver inserts the event. Retried deliveries of the same event are ignored.
func (s *AuditSink) Deliver(ctx context.Context, evt Event) error {
	details, err := json.Marshal(map[string]interface{}{
		"activity": evt.Activity,
		"email":    evt.Email,
	})
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("marshal audit details: %w", err))
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (event_id, event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`, s.table),
		evt.ID,
		string(evt.Type),
		"activity",
		evt.Activity,
		details,
		evt.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}
	return nil
}
