// Package service implements the auth orchestrator: register, login with
// single-active-session enforcement, access token refresh, and logout.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/capstone-pvt/api/internal/audit"
	auditdomain "github.com/capstone-pvt/api/internal/audit/domain"
	"github.com/capstone-pvt/api/internal/permission"
	roledomain "github.com/capstone-pvt/api/internal/role/domain"
	"github.com/capstone-pvt/api/internal/security"
	sessiondomain "github.com/capstone-pvt/api/internal/session/domain"
	userdomain "github.com/capstone-pvt/api/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
// Credential failures are deliberately indistinguishable: missing user,
// inactive user, and wrong password all surface as ErrInvalidCredentials.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrSessionExpired      = errors.New("session expired or revoked")
	ErrUserNotFound        = errors.New("user not found")
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error
	UpdateCurrentSessionID(ctx context.Context, id string, sessionID string) error
}

// RoleRepo is the minimal role repository needed by the auth service.
type RoleRepo interface {
	ListByIDs(ctx context.Context, ids []string) ([]*roledomain.Role, error)
}

// SessionStore is the session lifecycle surface needed by the auth service.
type SessionStore interface {
	Create(ctx context.Context, userID, rawRefreshToken string, device sessiondomain.DeviceInfo, expiresAt time.Time) (string, error)
	ValidateRefreshToken(ctx context.Context, userID, rawRefreshToken string) (bool, error)
	InvalidateByToken(ctx context.Context, rawRefreshToken string) error
	InvalidateAll(ctx context.Context, userID string) error
}

// LoginResult holds everything a successful login produces: the user, its
// expanded role set and effective permissions, and both freshly issued tokens.
type LoginResult struct {
	User             *userdomain.User
	Roles            []*roledomain.Role
	Permissions      []string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RefreshResult holds a reissued access token. The refresh token is not
// rotated; the caller keeps using the one it presented.
type RefreshResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
}

// Service orchestrates credentials, sessions, and tokens for the auth
// endpoints.
type Service struct {
	users    UserRepo
	roles    RoleRepo
	sessions SessionStore
	tokens   *security.TokenProvider
	hasher   *security.Hasher
	audit    audit.AuditLogger
	now      func() time.Time
}

// NewService returns a Service with the given dependencies.
func NewService(
	users UserRepo,
	roles RoleRepo,
	sessions SessionStore,
	tokens *security.TokenProvider,
	hasher *security.Hasher,
	auditLogger audit.AuditLogger,
) *Service {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &Service{
		users:    users,
		roles:    roles,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		audit:    auditLogger,
		now:      time.Now,
	}
}

// WithTimeFunc overrides the service's clock. Intended for tests.
func (s *Service) WithTimeFunc(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a user with a bcrypt password hash and no roles. It does
// not log the user in; the handler follows up with Login.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, user.ID, auditdomain.ActionRegister, "user", "", email)
	user.PasswordHash = ""
	return user, nil
}

// Login authenticates with email/password and returns fresh tokens bound to a
// new session. Creating the session invalidates every prior session for the
// user, and CurrentSessionID is updated so outstanding access tokens from
// older logins stop validating immediately.
func (s *Service) Login(ctx context.Context, email, password string, device sessiondomain.DeviceInfo, rememberMe bool) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || user.PasswordHash == "" {
		s.audit.LogEvent(ctx, "", auditdomain.ActionLoginFailure, "auth", device.IP, email)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.audit.LogEvent(ctx, user.ID, auditdomain.ActionLoginFailure, "auth", device.IP, email)
		return nil, ErrInvalidCredentials
	}

	roles, err := s.roles.ListByIDs(ctx, user.RoleIDs)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := s.tokens.IssueRefresh(user.ID, rememberMe)
	if err != nil {
		return nil, err
	}
	sessionID, err := s.sessions.Create(ctx, user.ID, refreshToken, device, refreshExp)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateCurrentSessionID(ctx, user.ID, sessionID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now, device.IP); err != nil {
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, permission.Names(roles), sessionID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	user.CurrentSessionID = sessionID
	user.LastLoginAt = &now
	user.LastLoginIP = device.IP

	s.audit.LogEvent(ctx, user.ID, auditdomain.ActionLogin, "auth", device.IP, device.UserAgent)

	return &LoginResult{
		User:             user,
		Roles:            roles,
		Permissions:      permission.Resolve(roles),
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// RefreshAccessToken reissues an access token against a presented refresh
// token. The new access token embeds the user's current session id, not the
// id of the session that stored the refresh hash, so a login from another
// device supersedes tokens minted here. The refresh token itself is not
// rotated.
func (s *Service) RefreshAccessToken(ctx context.Context, rawRefreshToken string) (*RefreshResult, error) {
	if rawRefreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.tokens.ParseRefresh(rawRefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	userID := claims.Subject

	ok, err := s.sessions.ValidateRefreshToken(ctx, userID, rawRefreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	roles, err := s.roles.ListByIDs(ctx, user.RoleIDs)
	if err != nil {
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, permission.Names(roles), user.CurrentSessionID)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, user.ID, auditdomain.ActionTokenRefresh, "auth", "", "")

	return &RefreshResult{AccessToken: accessToken, AccessExpiresAt: accessExp}, nil
}

// Logout invalidates the session matching the presented refresh token.
// Idempotent: an empty, unparseable, or already-invalidated token is still a
// successful logout.
func (s *Service) Logout(ctx context.Context, rawRefreshToken string) error {
	if rawRefreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ParseRefresh(rawRefreshToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.InvalidateByToken(ctx, rawRefreshToken); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, claims.Subject, auditdomain.ActionLogout, "auth", "", "")
	return nil
}

// LogoutAll invalidates every session for the user and clears
// CurrentSessionID, so both refresh and outstanding access tokens stop
// working everywhere.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.InvalidateAll(ctx, userID); err != nil {
		return err
	}
	if err := s.users.UpdateCurrentSessionID(ctx, userID, ""); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, userID, auditdomain.ActionLogoutAll, "auth", "", "")
	return nil
}

// GetUserByID loads a user with its expanded roles and effective permissions.
// The password hash is never populated on this path.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*userdomain.User, []*roledomain.Role, []string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if user == nil {
		return nil, nil, nil, ErrUserNotFound
	}
	roles, err := s.roles.ListByIDs(ctx, user.RoleIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	return user, roles, permission.Resolve(roles), nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
