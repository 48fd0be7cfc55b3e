package audit

import (
	"context"
	"database/sql"

	"warehouse-dashboard/pkg/utils"
)

// PostgresRepo stores events in session_audit_events.
// Grant the gateway role INSERT only; the table is never updated.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// EnsureSchema creates the table and index when missing.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const table = `
CREATE TABLE IF NOT EXISTS session_audit_events (
  id          UUID PRIMARY KEY,
  session_id  TEXT NOT NULL,
  type        TEXT NOT NULL,
  username    TEXT NOT NULL DEFAULT '',
  actor_role  TEXT NOT NULL DEFAULT '',
  user_id     BIGINT NOT NULL DEFAULT 0,
  ip_address  TEXT NOT NULL DEFAULT '',
  route       TEXT NOT NULL DEFAULT '',
  message     TEXT NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL
)
`
		if _, err := tx.ExecContext(ctx, table); err != nil {
			return err
		}
		const idx = `
CREATE INDEX IF NOT EXISTS session_audit_events_session_idx
  ON session_audit_events (session_id, created_at)
`
		_, err := tx.ExecContext(ctx, idx)
		return err
	})
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO session_audit_events
  (id, session_id, type, username, actor_role, user_id, ip_address, route, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.SessionID,
		string(e.Type),
		e.Username,
		e.ActorRole,
		e.UserID,
		e.IPAddress,
		e.Route,
		e.Message,
		e.CreatedAt,
	)
	return err
}

// BySession lists a session's events oldest first.
func (r *PostgresRepo) BySession(ctx context.Context, sid string) ([]Event, error) {
	const q = `
SELECT id, session_id, type, username, actor_role, user_id, ip_address, route, message, created_at
FROM session_audit_events
WHERE session_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, sid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var typ string
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&typ,
			&e.Username,
			&e.ActorRole,
			&e.UserID,
			&e.IPAddress,
			&e.Route,
			&e.Message,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
