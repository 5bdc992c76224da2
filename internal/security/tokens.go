package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, expired, carries the
// wrong signature or issuer, or was signed with an unexpected algorithm.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims holds JWT claims for the access token. SessionID ties the
// token to one server-side session so a newer login can supersede it before
// the token expires.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	SessionID string   `json:"session_id"`
}

// RefreshClaims holds JWT claims for the refresh token. Only the subject
// (user id) is carried; the session binding lives in the session store as a
// hash of the whole token.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates HS256 JWTs. Access and refresh tokens
// are signed with separate secrets. The clock is injectable so expiry
// behavior is replayable in tests; issuance and validation have no side
// effects.
type TokenProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshShort  time.Duration
	refreshLong   time.Duration
	now           func() time.Time
}

// NewTokenProvider returns a TokenProvider signing with the given secrets.
// refreshShort applies to normal logins, refreshLong to remember-me logins.
func NewTokenProvider(accessSecret, refreshSecret, issuer string, accessTTL, refreshShort, refreshLong time.Duration) *TokenProvider {
	return &TokenProvider{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshShort:  refreshShort,
		refreshLong:   refreshLong,
		now:           time.Now,
	}
}

// WithTimeFunc overrides the provider's clock. Intended for tests.
func (p *TokenProvider) WithTimeFunc(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// IssueAccess issues a short-lived access JWT embedding the user's email,
// role names, and the session id created by the login that produced it.
func (p *TokenProvider) IssueAccess(userID, email string, roles []string, sessionID string) (token string, expiresAt time.Time, err error) {
	now := p.now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     email,
		Roles:     roles,
		SessionID: sessionID,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.accessSecret)
	return token, expiresAt, err
}

// IssueRefresh issues a long-lived refresh JWT for the user. TTL is the
// remember-me lifetime when rememberMe is true, the short lifetime otherwise.
func (p *TokenProvider) IssueRefresh(userID string, rememberMe bool) (token string, expiresAt time.Time, err error) {
	ttl := p.refreshShort
	if rememberMe {
		ttl = p.refreshLong
	}
	now := p.now().UTC()
	expiresAt = now.Add(ttl)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.refreshSecret)
	return token, expiresAt, err
}

// ParseAccess parses and validates an access token (signature, exp, iss).
// Returns ErrInvalidToken on any failure.
func (p *TokenProvider) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := p.parse(tokenString, claims, p.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh parses and validates a refresh token (signature, exp, iss).
// Returns ErrInvalidToken on any failure.
func (p *TokenProvider) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := p.parse(tokenString, claims, p.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *TokenProvider) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithIssuer(p.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
