package session

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	sessions map[string]string
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]string{}}
}

func (s *memStore) SaveSession(_ context.Context, sid, userID string, _ time.Duration) error {
	s.sessions[sid] = userID
	return nil
}

func (s *memStore) LoadSession(_ context.Context, sid string) (string, error) {
	return s.sessions[sid], nil
}

func (s *memStore) DeleteSession(_ context.Context, sid string) error {
	delete(s.sessions, sid)
	return nil
}

type memUsers map[string]*domain.User

func (m memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func TestManager_CreateAndResolve(t *testing.T) {
	store := newMemStore()
	users := memUsers{"u1": {ID: "u1", Email: "jane@example.com"}}
	m := NewManager(store, users, "secret", time.Hour)
	ctx := context.Background()

	tok, err := m.Create(ctx, users["u1"])
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.Equal(t, "u1", store.sessions[tok.SessionID])

	u, err := m.Resolve(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestManager_RoleComesFromCurrentUser(t *testing.T) {
	store := newMemStore()
	users := memUsers{"u1": {ID: "u1"}}
	m := NewManager(store, users, "secret", time.Hour)
	ctx := context.Background()

	tok, err := m.Create(ctx, users["u1"])
	require.NoError(t, err)

	users["u1"].IsAdmin = true
	u, err := m.Resolve(ctx, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role())
}

func TestManager_DestroyRevokes(t *testing.T) {
	store := newMemStore()
	users := memUsers{"u1": {ID: "u1"}}
	m := NewManager(store, users, "secret", time.Hour)
	ctx := context.Background()

	tok, err := m.Create(ctx, users["u1"])
	require.NoError(t, err)
	require.NoError(t, m.Destroy(ctx, tok.Value))

	_, err = m.Resolve(ctx, tok.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NoError(t, m.Destroy(ctx, "garbage"))
}

func TestManager_RejectsBadTokens(t *testing.T) {
	store := newMemStore()
	users := memUsers{"u1": {ID: "u1"}}
	m := NewManager(store, users, "secret", time.Hour)
	ctx := context.Background()

	_, err := m.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other := NewManager(store, users, "other-secret", time.Hour)
	tok, err := other.Create(ctx, users["u1"])
	require.NoError(t, err)
	_, err = m.Resolve(ctx, tok.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{SessionID: tok.SessionID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Resolve(ctx, unsigned)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestManager_Expired(t *testing.T) {
	store := newMemStore()
	users := memUsers{"u1": {ID: "u1"}}
	m := NewManager(store, users, "secret", time.Minute)
	ctx := context.Background()

	tok, err := m.Create(ctx, users["u1"])
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Resolve(ctx, tok.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestManager_DeletedUserEndsSession(t *testing.T) {
	store := newMemStore()
	users := memUsers{"u1": {ID: "u1"}}
	m := NewManager(store, users, "secret", time.Hour)
	ctx := context.Background()

	tok, err := m.Create(ctx, users["u1"])
	require.NoError(t, err)
	delete(users, "u1")

	_, err = m.Resolve(ctx, tok.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, store.sessions)
}
