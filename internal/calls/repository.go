package calls

import (
	"context"
	"database/sql"
	"errors"
)

// Repository is the persistence contract for call records.
//
// Mutations are single-row, last-write-wins per field group. Each webhook
// handler re-reads current state before mutating, so implementations do
// not need row locks.
type Repository interface {
	Create(ctx context.Context, c Call) error
	Get(ctx context.Context, id string) (Call, error)
	ListByPhone(ctx context.Context, phone string) ([]Call, error)

	UpdateRecording(ctx context.Context, id string, url *string, duration *int, status string) error
	UpdateTranscription(ctx context.Context, id string, text *string, status string) error
	UpdateEnrichment(ctx context.Context, id, title, summary string) error

	Delete(ctx context.Context, id string) error
	DeleteByPhone(ctx context.Context, phone string) (int64, error)
}

// NOTE: PostgresRepo assumes the following table exists:
//
// CREATE TABLE calls (
//   id                   VARCHAR(100) PRIMARY KEY,
//   from_phone           VARCHAR(100),
//   call_date            TIMESTAMPTZ NOT NULL,
//   title                VARCHAR(200),
//   summary              TEXT,
//   recording_url        VARCHAR(500),
//   recording_duration   INT,
//   recording_status     VARCHAR(20),
//   transcription_text   TEXT,
//   transcription_status VARCHAR(20)
// );
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const callColumns = `id, from_phone, call_date, title, summary, recording_url, recording_duration, recording_status, transcription_text, transcription_status`

func (r *PostgresRepo) Create(ctx context.Context, c Call) error {
	const q = `
INSERT INTO calls (` + callColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.FromPhone,
		c.CallDate,
		c.Title,
		c.Summary,
		c.RecordingURL,
		c.RecordingDuration,
		nullIfEmpty(c.RecordingStatus),
		c.TranscriptionText,
		nullIfEmpty(c.TranscriptionStatus),
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Call, error) {
	const q = `
SELECT ` + callColumns + `
FROM calls
WHERE id = $1
`
	return scanCall(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) ListByPhone(ctx context.Context, phone string) ([]Call, error) {
	const q = `
SELECT ` + callColumns + `
FROM calls
WHERE from_phone = $1
ORDER BY call_date DESC
`
	rows, err := r.db.QueryContext(ctx, q, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateRecording(ctx context.Context, id string, url *string, duration *int, status string) error {
	const q = `
UPDATE calls
SET recording_url = $2, recording_duration = $3, recording_status = $4
WHERE id = $1
`
	return execExpectingRow(ctx, r.db, q, id, url, duration, nullIfEmpty(status))
}

func (r *PostgresRepo) UpdateTranscription(ctx context.Context, id string, text *string, status string) error {
	const q = `
UPDATE calls
SET transcription_text = $2, transcription_status = $3
WHERE id = $1
`
	return execExpectingRow(ctx, r.db, q, id, text, nullIfEmpty(status))
}

func (r *PostgresRepo) UpdateEnrichment(ctx context.Context, id, title, summary string) error {
	const q = `
UPDATE calls
SET title = $2, summary = $3
WHERE id = $1
`
	return execExpectingRow(ctx, r.db, q, id, title, summary)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM calls WHERE id = $1`
	return execExpectingRow(ctx, r.db, q, id)
}

func (r *PostgresRepo) DeleteByPhone(ctx context.Context, phone string) (int64, error) {
	const q = `DELETE FROM calls WHERE from_phone = $1`
	res, err := r.db.ExecContext(ctx, q, phone)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (Call, error) {
	var c Call
	var recStatus, trStatus sql.NullString
	err := row.Scan(
		&c.ID,
		&c.FromPhone,
		&c.CallDate,
		&c.Title,
		&c.Summary,
		&c.RecordingURL,
		&c.RecordingDuration,
		&recStatus,
		&c.TranscriptionText,
		&trStatus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, ErrNotFound
		}
		return Call{}, err
	}
	c.RecordingStatus = recStatus.String
	c.TranscriptionStatus = trStatus.String
	return c, nil
}

func execExpectingRow(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
