// seed inserts the permission catalogue, the Super Admin role, and an
// initial admin account. Idempotent: existing rows are left untouched, so it
// is safe to run on every deploy.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/capstone-pvt/api/internal/config"
	"github.com/capstone-pvt/api/internal/db"
	permissiondomain "github.com/capstone-pvt/api/internal/permission/domain"
	permissionrepo "github.com/capstone-pvt/api/internal/permission/repository"
	roledomain "github.com/capstone-pvt/api/internal/role/domain"
	rolerepo "github.com/capstone-pvt/api/internal/role/repository"
	"github.com/capstone-pvt/api/internal/security"
	userdomain "github.com/capstone-pvt/api/internal/user/domain"
	userrepo "github.com/capstone-pvt/api/internal/user/repository"
)

const superAdminRoleName = "super_admin"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	permissions := permissionrepo.NewPostgresRepository(pool)
	roles := rolerepo.NewPostgresRepository(pool)
	users := userrepo.NewPostgresRepository(pool)

	permIDs, err := seedPermissions(ctx, permissions)
	if err != nil {
		log.Fatalf("seed permissions: %v", err)
	}

	roleID, err := seedSuperAdminRole(ctx, roles, permIDs)
	if err != nil {
		log.Fatalf("seed super admin role: %v", err)
	}

	if err := seedAdminUser(ctx, users, cfg.BcryptCost, roleID); err != nil {
		log.Fatalf("seed admin user: %v", err)
	}

	log.Println("seed complete")
}

// seedPermissions inserts every catalogue permission that does not already
// exist and returns the full id set, existing rows included.
func seedPermissions(ctx context.Context, repo permissionrepo.Repository) ([]string, error) {
	ids := make([]string, 0)
	for _, p := range permissiondomain.Catalogue() {
		existing, err := repo.GetByName(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids = append(ids, existing.ID)
			continue
		}
		p.ID = uuid.New().String()
		p.CreatedAt = time.Now().UTC()
		if err := repo.Create(ctx, &p); err != nil {
			return nil, err
		}
		log.Printf("created permission %s", p.Name)
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// seedSuperAdminRole creates the system Super Admin role at the top of the
// hierarchy, granting every permission.
func seedSuperAdminRole(ctx context.Context, repo rolerepo.Repository, permIDs []string) (string, error) {
	existing, err := repo.GetByName(ctx, superAdminRoleName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	now := time.Now().UTC()
	role := &roledomain.Role{
		ID:            uuid.New().String(),
		Name:          superAdminRoleName,
		DisplayName:   "Super Admin",
		Description:   "Full platform access",
		Hierarchy:     1,
		IsSystemRole:  true,
		PermissionIDs: permIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(ctx, role); err != nil {
		return "", err
	}
	log.Printf("created role %s", role.Name)
	return role.ID, nil
}

// seedAdminUser creates the initial admin from SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD and assigns it the Super Admin role. Skipped when the
// env vars are unset or the account already exists.
func seedAdminUser(ctx context.Context, repo userrepo.Repository, bcryptCost int, roleID string) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set; skipping admin user")
		return nil
	}

	existing, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := security.NewHasher(bcryptCost).Hash([]byte(password))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    "Admin",
		LastName:     "User",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return err
	}
	if err := repo.AssignRoles(ctx, user.ID, []string{roleID}); err != nil {
		return err
	}
	log.Printf("created admin user %s", email)
	return nil
}
