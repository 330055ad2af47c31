// Package auth issues and validates the signed tokens used for bearer
// authentication and for the calendar OAuth round trip.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/makarovada/legal-time/internal/access"
)

const (
	issuer = "legal-time"

	audienceAccess = "access"
	audienceState  = "calendar-state"

	// DefaultTokenTTL bounds access tokens when no TTL is configured.
	DefaultTokenTTL = 24 * time.Hour
	// DefaultStateTTL bounds the OAuth state parameter.
	DefaultStateTTL = 10 * time.Minute
)

var (
	// ErrInvalidToken is returned for malformed, expired or foreign tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when the signing key is empty.
	ErrMissingSecret = errors.New("token signing secret is empty")
)

// Claims carries the employee and role a token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// TokenManager signs HS256 tokens. Access tokens and state tokens share a key
// but carry distinct audiences, so one can never stand in for the other.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
	stateTTL   time.Duration
	now        func() time.Time
}

// Option customises TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithStateTTL overrides the OAuth state lifetime.
func WithStateTTL(ttl time.Duration) Option {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.stateTTL = ttl
		}
	}
}

// NewTokenManager builds a manager signing with secret. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration, opts ...Option) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	m := &TokenManager{
		signingKey: []byte(secret),
		ttl:        ttl,
		stateTTL:   DefaultStateTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// IssueToken signs an access token for the employee.
func (m *TokenManager) IssueToken(employeeID string, role access.Role) (string, time.Time, error) {
	expiresAt := m.now().Add(m.ttl)
	token, err := m.sign(employeeID, string(role), audienceAccess, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseToken validates an access token and returns the employee ID.
func (m *TokenManager) ParseToken(token string) (string, error) {
	claims, err := m.parse(token, audienceAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IssueState signs the OAuth state for the employee starting a calendar link.
func (m *TokenManager) IssueState(employeeID string) (string, error) {
	return m.sign(employeeID, "", audienceState, m.now().Add(m.stateTTL))
}

// ParseState validates an OAuth state and returns the employee ID.
func (m *TokenManager) ParseState(state string) (string, error) {
	claims, err := m.parse(state, audienceState)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (m *TokenManager) sign(subject, role, audience string, expiresAt time.Time) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(raw, audience string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
