package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-forecast-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie that carries the session token.
const CookieName = "forecast_session"

// UserFinder rehydrates the user bound to a session.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Manager issues, resolves and revokes session tokens. A token is a signed
// JWT whose jti names a record in the Store, so logging out revokes it even
// before it expires. A user may hold several sessions at once.
type Manager struct {
	store  Store
	users  UserFinder
	secret []byte
	ttl    time.Duration
}

func NewManager(store Store, users UserFinder, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Manager{store: store, users: users, secret: []byte(secret), ttl: ttl}
}

// TTL is how long a fresh session stays valid.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Login opens a new session for user and returns its token.
func (m *Manager) Login(ctx context.Context, user *models.User) (string, error) {
	sid := uuid.NewString()
	if err := m.store.Save(ctx, sid, user.ID, m.ttl); err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sid,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		_ = m.store.Delete(ctx, sid)
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve returns the user bound to token. A missing, malformed, expired or
// revoked token, or one whose user no longer exists, yields
// models.ErrUnauthenticated.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated
	}
	claims, err := m.parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}

	userID, err := m.store.Lookup(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if strconv.FormatUint(uint64(userID), 10) != claims.Subject {
		return nil, models.ErrUnauthenticated
	}

	user, err := m.users.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		_ = m.store.Delete(ctx, claims.ID) // bound to a user that is gone
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the session behind token. Unparseable tokens have nothing
// to revoke and are ignored.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, m.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // an expired token can still be logged out
	)
	if err != nil || claims.ID == "" {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, m.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (m *Manager) key(*jwt.Token) (interface{}, error) {
	return m.secret, nil
}
