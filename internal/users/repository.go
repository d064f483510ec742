package users

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrNotFound = errors.New("users: not found")

	// ErrPhoneTaken is returned when a phone number change collides with
	// another user's number.
	ErrPhoneTaken = errors.New("users: phone number already in use")
)

// Repository is the persistence contract for the user directory.
type Repository interface {
	// Upsert registers the user keyed by phone number. An existing row
	// gets a fresh fcm_token (and country code when one is supplied);
	// the returned bool reports whether a new row was created.
	Upsert(ctx context.Context, u User) (User, bool, error)

	Get(ctx context.Context, id string) (User, error)
	GetByPhone(ctx context.Context, phone string) (User, error)

	UpdatePhone(ctx context.Context, id, phone string, countryCode *string) error
	SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error
}

// NOTE: PostgresRepo assumes the following table exists. The UNIQUE
// constraint on phone_number is load-bearing: Upsert relies on it.
//
// CREATE TABLE call_users (
//   id                         UUID PRIMARY KEY,
//   phone_number               VARCHAR(100) UNIQUE NOT NULL,
//   country_code               VARCHAR(10),
//   fcm_token                  TEXT NOT NULL,
//   push_notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
//   created_at                 TIMESTAMPTZ NOT NULL,
//   updated_at                 TIMESTAMPTZ NOT NULL
// );
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const userColumns = `id, phone_number, country_code, fcm_token, push_notifications_enabled, created_at, updated_at`

func (r *PostgresRepo) Upsert(ctx context.Context, u User) (User, bool, error) {
	// Atomic register-or-refresh: two concurrent registrations for the
	// same phone number cannot both insert. An existing row keeps its id,
	// notification setting and created_at; country_code only changes when
	// the caller supplied one. xmax = 0 distinguishes insert from update.
	const q = `
INSERT INTO call_users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$6)
ON CONFLICT (phone_number) DO UPDATE
SET fcm_token    = EXCLUDED.fcm_token,
    country_code = COALESCE(EXCLUDED.country_code, call_users.country_code),
    updated_at   = EXCLUDED.updated_at
RETURNING ` + userColumns + `, (xmax = 0)
`
	var out User
	var created bool
	err := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.PhoneNumber,
		u.CountryCode,
		u.FCMToken,
		u.PushNotificationsEnabled,
		u.CreatedAt,
	).Scan(
		&out.ID,
		&out.PhoneNumber,
		&out.CountryCode,
		&out.FCMToken,
		&out.PushNotificationsEnabled,
		&out.CreatedAt,
		&out.UpdatedAt,
		&created,
	)
	if err != nil {
		return User{}, false, err
	}
	return out, created, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM call_users
WHERE id = $1
`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByPhone(ctx context.Context, phone string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM call_users
WHERE phone_number = $1
`
	return scanUser(r.db.QueryRowContext(ctx, q, phone))
}

func (r *PostgresRepo) UpdatePhone(ctx context.Context, id, phone string, countryCode *string) error {
	const q = `
UPDATE call_users
SET phone_number = $2, country_code = $3, updated_at = now()
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, phone, countryCode)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPhoneTaken
		}
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

func (r *PostgresRepo) SetNotificationsEnabled(ctx context.Context, id string, enabled bool) error {
	const q = `
UPDATE call_users
SET push_notifications_enabled = $2, updated_at = now()
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, enabled)
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

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.PhoneNumber,
		&u.CountryCode,
		&u.FCMToken,
		&u.PushNotificationsEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
