package events

import (
	"context"
	"database/sql"
)

// NOTE: PostgresRepo assumes the following table exists:
//
// CREATE TABLE webhook_events (
//   id         UUID PRIMARY KEY,
//   type       VARCHAR(50) NOT NULL,
//   call_id    VARCHAR(100),
//   remote_ip  VARCHAR(64),
//   payload    TEXT,
//   created_at TIMESTAMPTZ NOT NULL
// );
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO webhook_events (id, type, call_id, remote_ip, payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Type, e.CallID, e.RemoteIP, e.Payload, e.CreatedAt)
	return err
}
