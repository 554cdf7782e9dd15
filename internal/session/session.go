// Package session issues and resolves login sessions. A session is a Redis
// record mapping a random session ID to a user ID, presented by the client as
// an HS256 JWT carrying that ID.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Store interface {
	SaveSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	LoadSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Claims struct {
	SessionID string      `json:"sid"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	SessionID string
	ExpiresAt time.Time
}

type Manager struct {
	store  Store
	users  UserLookup
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, users UserLookup, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create opens a session for u and returns the signed token.
func (m *Manager) Create(ctx context.Context, u *domain.User) (Token, error) {
	sid := uuid.NewString()
	now := m.now()
	exp := now.Add(m.ttl)

	claims := Claims{
		SessionID: sid,
		Role:      u.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign session token: %w", err)
	}
	if err := m.store.SaveSession(ctx, sid, u.ID, m.ttl); err != nil {
		return Token{}, fmt.Errorf("save session: %w", err)
	}
	return Token{Value: signed, SessionID: sid, ExpiresAt: exp}, nil
}

// Resolve returns the current user behind token. Any invalid, expired,
// revoked or orphaned session yields domain.ErrUnauthorized.
func (m *Manager) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	userID, err := m.store.LoadSession(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if userID == "" || userID != claims.Subject {
		return nil, domain.ErrUnauthorized
	}

	u, err := m.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		_ = m.store.DeleteSession(ctx, claims.SessionID)
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}

// Destroy revokes the session behind token. Unparseable tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.store.DeleteSession(ctx, claims.SessionID)
}

func (m *Manager) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || claims.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
