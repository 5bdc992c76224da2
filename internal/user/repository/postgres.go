package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/capstone-pvt/api/internal/user/domain"
)

const userColumns = `id, email, first_name, last_name, is_active,
	COALESCE(current_session_id, ''), last_login_at, COALESCE(last_login_ip, ''),
	created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a user repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID returns the user for id with role ids loaded, or (nil, nil) if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail returns the user for email, or (nil, nil) if not found.
// PasswordHash is not populated.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByEmailWithPassword returns the user for email with PasswordHash
// populated, or (nil, nil) if not found.
func (r *PostgresRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsActive,
		&u.CurrentSessionID, &u.LastLoginAt, &u.LastLoginIP,
		&u.CreatedAt, &u.UpdatedAt, &u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user and its role assignments.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	for _, roleID := range u.RoleIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, u.ID, roleID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// UpdateLastLogin records the time and source IP of the latest successful login.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2, last_login_ip = $3, updated_at = now() WHERE id = $1`,
		id, at, ip,
	)
	return err
}

// UpdateCurrentSessionID points the user at its new active session; empty clears it.
func (r *PostgresRepository) UpdateCurrentSessionID(ctx context.Context, id string, sessionID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET current_session_id = NULLIF($2, ''), updated_at = now() WHERE id = $1`,
		id, sessionID,
	)
	return err
}

// AssignRoles replaces the user's role set.
func (r *PostgresRepository) AssignRoles(ctx context.Context, id string, roleIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, id, roleID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET updated_at = now() WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsActive,
		&u.CurrentSessionID, &u.LastLoginAt, &u.LastLoginIP,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadRoleIDs(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresRepository) loadRoleIDs(ctx context.Context, u *domain.User) error {
	rows, err := r.pool.Query(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return err
		}
		u.RoleIDs = append(u.RoleIDs, roleID)
	}
	return rows.Err()
}
