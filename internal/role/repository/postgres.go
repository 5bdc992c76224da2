package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
	"github.com/capstone-pvt/api/internal/role/domain"
)

const roleColumns = `id, name, display_name, description, hierarchy, is_system_role, created_at, updated_at`

const insertRoleSQL = `
	INSERT INTO roles (id, name, display_name, description, hierarchy, is_system_role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// updateRoleSQL must write every column the role handler lets callers change;
// a column missing here persists silently stale while the API echoes the new
// value.
const updateRoleSQL = `UPDATE roles SET name = $2, display_name = $3, description = $4, hierarchy = $5, updated_at = now() WHERE id = $1`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a role repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID returns the role for id with permissions expanded, or (nil, nil) if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

// GetByName returns the role for name with permissions expanded, or (nil, nil) if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

// ListByIDs returns the roles for ids with permissions expanded. Unknown ids
// are silently skipped.
func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.listWhere(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ANY($1) ORDER BY hierarchy`, ids)
}

// ListByNames returns the roles for names with permissions expanded.
func (r *PostgresRepository) ListByNames(ctx context.Context, names []string) ([]*domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return r.listWhere(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = ANY($1) ORDER BY hierarchy`, names)
}

// List returns every role with permissions expanded, most senior first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY hierarchy`)
	if err != nil {
		return nil, err
	}
	roles, err := scanRoles(rows)
	if err != nil {
		return nil, err
	}
	if err := r.expandPermissions(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Create inserts the role and its permission assignments.
func (r *PostgresRepository) Create(ctx context.Context, role *domain.Role) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertRoleSQL,
		role.ID, role.Name, role.DisplayName, role.Description, role.Hierarchy, role.IsSystemRole,
		role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		return err
	}
	for _, permID := range role.PermissionIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`, role.ID, permID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Update rewrites the role row and replaces its permission assignments.
func (r *PostgresRepository) Update(ctx context.Context, role *domain.Role) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, updateRoleSQL,
		role.ID, role.Name, role.DisplayName, role.Description, role.Hierarchy,
	)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID); err != nil {
		return err
	}
	for _, permID := range role.PermissionIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`, role.ID, permID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes the role; assignments cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var role domain.Role
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&role.ID, &role.Name, &role.DisplayName, &role.Description,
		&role.Hierarchy, &role.IsSystemRole, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.expandPermissions(ctx, []*domain.Role{&role}); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *PostgresRepository) listWhere(ctx context.Context, query string, arg any) ([]*domain.Role, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	roles, err := scanRoles(rows)
	if err != nil {
		return nil, err
	}
	if err := r.expandPermissions(ctx, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func scanRoles(rows pgx.Rows) ([]*domain.Role, error) {
	defer rows.Close()
	var out []*domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID, &role.Name, &role.DisplayName, &role.Description,
			&role.Hierarchy, &role.IsSystemRole, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &role)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) expandPermissions(ctx context.Context, roles []*domain.Role) error {
	if len(roles) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Role, len(roles))
	ids := make([]string, 0, len(roles))
	for _, role := range roles {
		byID[role.ID] = role
		ids = append(ids, role.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rp.role_id, p.id, p.name, p.description, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ANY($1)
		ORDER BY p.name`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var roleID string
		var p permissiondomain.Permission
		if err := rows.Scan(&roleID, &p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return err
		}
		if role, ok := byID[roleID]; ok {
			role.PermissionIDs = append(role.PermissionIDs, p.ID)
			role.Permissions = append(role.Permissions, p)
		}
	}
	return rows.Err()
}
