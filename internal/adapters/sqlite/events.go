package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aretw0/cancelflow/pkg/analytics"
	"github.com/aretw0/cancelflow/pkg/domain"
)

// EventLog is an analytics.Tracker backed by the flow_events table.
type EventLog struct {
	db *sql.DB
}

var _ analytics.Tracker = (*EventLog)(nil)

// NewEventLog initializes the schema and returns an event log.
func NewEventLog(db *sql.DB) (*EventLog, error) {
	l := &EventLog{db: db}
	if err := l.initSchema(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *EventLog) initSchema() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS flow_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL DEFAULT '',
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			step_id TEXT NOT NULL DEFAULT '',
			step_kind TEXT NOT NULL DEFAULT '',
			answer TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_flow_events_session_id ON flow_events(session_id, id);
	`)
	return err
}

// Track appends e. A zero timestamp is replaced by the current time.
func (l *EventLog) Track(ctx context.Context, e domain.Event) error {
	at := e.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO flow_events (session_id, at, type, step_id, step_kind, answer)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID,
		at.UnixNano(),
		string(e.Type),
		e.StepID,
		string(e.StepKind),
		e.Answer,
	)
	return err
}

// Events returns every event in insertion order.
func (l *EventLog) Events(ctx context.Context) ([]domain.Event, error) {
	return l.query(ctx, `
		SELECT session_id, at, type, step_id, step_kind, answer
		FROM flow_events
		ORDER BY id ASC`)
}

// SessionEvents returns the events of one session in insertion order.
func (l *EventLog) SessionEvents(ctx context.Context, sessionID string) ([]domain.Event, error) {
	return l.query(ctx, `
		SELECT session_id, at, type, step_id, step_kind, answer
		FROM flow_events
		WHERE session_id = ?
		ORDER BY id ASC`, sessionID)
}

func (l *EventLog) query(ctx context.Context, q string, args ...any) ([]domain.Event, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			session string
			atN     int64
			typ     string
			step    string
			kind    string
			answer  string
		)
		if err := rows.Scan(&session, &atN, &typ, &step, &kind, &answer); err != nil {
			return nil, err
		}
		out = append(out, domain.Event{
			Timestamp: time.Unix(0, atN),
			Type:      domain.EventType(typ),
			SessionID: session,
			StepID:    step,
			StepKind:  domain.Kind(kind),
			Answer:    answer,
		})
	}
	return out, rows.Err()
}
