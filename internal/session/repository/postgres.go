package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capstone-pvt/api/internal/session/domain"
)

const sessionColumns = `id, user_id, refresh_token_hash, user_agent, ip_address, browser, os,
	is_valid, expires_at, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a session repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert persists the session. The session must have ID set.
func (r *PostgresRepository) Insert(ctx context.Context, s *domain.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, browser, os,
			is_valid, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.UserID, s.RefreshTokenHash,
		s.Device.UserAgent, s.Device.IP, s.Device.Browser, s.Device.OS,
		s.IsValid, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// ListValidByUser returns the user's sessions whose is_valid flag is still
// set. Expiry is not filtered here; callers check it against their clock.
func (r *PostgresRepository) ListValidByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 AND is_valid ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// ListAllValid returns every session whose is_valid flag is still set.
// Used only by the logout-by-token path, which cannot scope by user.
func (r *PostgresRepository) ListAllValid(ctx context.Context) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE is_valid ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	return scanSessions(rows)
}

// Invalidate marks the session with the given id invalid.
func (r *PostgresRepository) Invalidate(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET is_valid = FALSE, updated_at = now() WHERE id = $1`, id)
	return err
}

// InvalidateAllByUser marks every session for the user invalid.
func (r *PostgresRepository) InvalidateAllByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET is_valid = FALSE, updated_at = now() WHERE user_id = $1 AND is_valid`, userID)
	return err
}

func scanSessions(rows pgx.Rows) ([]*domain.Session, error) {
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.RefreshTokenHash,
			&s.Device.UserAgent, &s.Device.IP, &s.Device.Browser, &s.Device.OS,
			&s.IsValid, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
