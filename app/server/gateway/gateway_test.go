package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Welluable/front-row/app/server/errs"
	"github.com/Welluable/front-row/app/server/models"
	"github.com/Welluable/front-row/app/server/password"
	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var lightParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	signups map[string]models.Signup
	findErr error
	listErr error
	delErr  error
	updErr  error
	lookups int
	updates int
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*models.User),
		signups: make(map[string]models.Signup),
	}
}

func (m *memStore) FindAdministrator(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("find administrator: %w", errs.ErrNotFound)
	}
	return u, nil
}

func (m *memStore) ListSignups(context.Context) ([]models.Signup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Signup, 0, len(m.signups))
	for _, s := range m.signups {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteSignup(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	if _, ok := m.signups[id]; !ok {
		return fmt.Errorf("delete signup %q: %w", id, errs.ErrNotFound)
	}
	delete(m.signups, id)
	return nil
}

func (m *memStore) UpdateAdministratorHash(_ context.Context, u *models.User, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updErr != nil {
		return m.updErr
	}
	stored, ok := m.users[u.Email]
	if !ok {
		return errs.ErrNotFound
	}
	cp := *stored
	cp.PasswordHash = hash
	m.users[u.Email] = &cp
	return nil
}

// countingHasher 记录每次校验用的 hash
type countingHasher struct {
	*password.Hasher
	mu       sync.Mutex
	verified []string
}

func (c *countingHasher) Verify(pw, hash string) (bool, error) {
	c.mu.Lock()
	c.verified = append(c.verified, hash)
	c.mu.Unlock()
	return c.Hasher.Verify(pw, hash)
}

func newTestGateway(t *testing.T, store Store, legacy string) (*Gateway, *countingHasher) {
	t.Helper()
	h := &countingHasher{Hasher: password.New(lightParams)}
	g, err := New(zap.NewNop(), store, h, Options{LegacySecret: legacy})
	require.NoError(t, err)
	return g, h
}

func addAdmin(t *testing.T, m *memStore, email, pw, role string) {
	t.Helper()
	hash, err := password.New(lightParams).Hash(pw)
	require.NoError(t, err)
	m.users[email] = &models.User{ID: "u-" + email, Email: email, Role: role, PasswordHash: hash}
}

func TestAuthorize_PerAccount(t *testing.T) {
	store := newMemStore()
	addAdmin(t, store, "admin@example.com", "correct horse", "admin")
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Authorize(context.Background(), " ADMIN@example.com :correct horse")
	require.NoError(t, err)
	assert.True(t, ok, "identifier is normalized")

	ok, err = g.Authorize(context.Background(), "admin@example.com:wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorize_SecretMayContainColons(t *testing.T) {
	store := newMemStore()
	addAdmin(t, store, "admin@example.com", "a:b:c", "admin")
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:a:b:c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorize_UnknownAndWrongLookAlike(t *testing.T) {
	store := newMemStore()
	addAdmin(t, store, "admin@example.com", "correct horse", "admin")
	addAdmin(t, store, "viewer@example.com", "correct horse", "viewer")
	g, h := newTestGateway(t, store, "")

	for _, raw := range []string{
		"admin@example.com:wrong",
		"ghost@example.com:correct horse",
		"viewer@example.com:correct horse",
	} {
		h.verified = nil

		ok, err := g.Authorize(context.Background(), raw)
		require.NoError(t, err, raw)
		assert.False(t, ok, raw)
		assert.Len(t, h.verified, 1, "exactly one hash verification for %s", raw)
	}

	h.verified = nil
	_, _ = g.Authorize(context.Background(), "ghost@example.com:x")
	require.Len(t, h.verified, 1)
	assert.Equal(t, g.dummyHash, h.verified[0])
}

func TestAuthorize_EmptyParts(t *testing.T) {
	store := newMemStore()
	addAdmin(t, store, "admin@example.com", "correct horse", "admin")
	g, _ := newTestGateway(t, store, "legacy")

	for _, raw := range []string{":correct horse", "admin@example.com:", ":"} {
		ok, err := g.Authorize(context.Background(), raw)
		require.NoError(t, err)
		assert.False(t, ok, raw)
	}
	assert.Zero(t, store.lookups, "empty parts are rejected before lookup")
}

func TestAuthorize_SharedSecretUnset(t *testing.T) {
	g, _ := newTestGateway(t, newMemStore(), "")

	for _, raw := range []string{"", "anything", "undefined"} {
		ok, err := g.Authorize(context.Background(), raw)
		require.NoError(t, err)
		assert.False(t, ok, "%q must be denied without a configured secret", raw)
	}
}

func TestAuthorize_SharedSecretConfigured(t *testing.T) {
	g, _ := newTestGateway(t, newMemStore(), "legacy-password")

	ok, _ := g.Authorize(context.Background(), "legacy-password")
	assert.True(t, ok)

	for _, raw := range []string{"", "legacy-passwor", "legacy-password ", "LEGACY-PASSWORD"} {
		ok, err := g.Authorize(context.Background(), raw)
		require.NoError(t, err)
		assert.False(t, ok, raw)
	}
}

func TestAuthorize_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.findErr = errors.New("connection refused")
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:pw")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errs.ErrStorage)
}

func TestAuthorize_CorruptHashDenied(t *testing.T) {
	store := newMemStore()
	store.users["admin@example.com"] = &models.User{Email: "admin@example.com", Role: "admin", PasswordHash: "plain"}
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:plain")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestList_NewestFirst(t *testing.T) {
	store := newMemStore()
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		store.signups[id] = models.Signup{
			ID:        id,
			Email:     id + "@example.com",
			IPHash:    "secret-hash",
			CreatedAt: t1.Add(time.Duration(i) * time.Minute),
		}
	}
	g, _ := newTestGateway(t, store, "")

	views, err := g.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{views[0].ID, views[1].ID, views[2].ID})
	assert.Equal(t, "t3@example.com", views[0].Email)
}

func TestList_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("db down")
	g, _ := newTestGateway(t, store, "")

	_, err := g.List(context.Background())
	assert.ErrorIs(t, err, errs.ErrStorage)
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	store.signups["sig-1"] = models.Signup{ID: "sig-1", Email: "a@example.com"}
	store.signups["sig-2"] = models.Signup{ID: "sig-2", Email: "b@example.com"}
	g, _ := newTestGateway(t, store, "")

	require.NoError(t, g.Delete(context.Background(), "  sig-1 "))
	assert.Len(t, store.signups, 1)

	err := g.Delete(context.Background(), "sig-1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Len(t, store.signups, 1, "deleting a missing id changes nothing")

	assert.ErrorIs(t, g.Delete(context.Background(), "   "), errs.ErrInvalidInput)
}

func TestDelete_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.delErr = errors.New("db down")
	g, _ := newTestGateway(t, store, "")

	err := g.Delete(context.Background(), "sig-1")
	assert.ErrorIs(t, err, errs.ErrStorage)
	assert.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestAuthorize_LegacyBcryptUpgradedOnSuccess(t *testing.T) {
	store := newMemStore()
	legacyHash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["admin@example.com"] = &models.User{ID: "u-1", Email: "admin@example.com", Role: "admin", PasswordHash: string(legacyHash)}
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:correct horse")
	require.NoError(t, err)
	require.True(t, ok)

	upgraded := store.users["admin@example.com"].PasswordHash
	assert.True(t, strings.HasPrefix(upgraded, "$argon2id$"))

	// 升级后的 hash 仍然可用，且不会再次升级
	ok, err = g.Authorize(context.Background(), "admin@example.com:correct horse")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.updates)
}

func TestAuthorize_LegacyBcryptWrongSecretNotUpgraded(t *testing.T) {
	store := newMemStore()
	legacyHash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["admin@example.com"] = &models.User{ID: "u-1", Email: "admin@example.com", Role: "admin", PasswordHash: string(legacyHash)}
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.updates)
}

func TestAuthorize_UpgradeFailureStillAuthorizes(t *testing.T) {
	store := newMemStore()
	legacyHash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	store.users["admin@example.com"] = &models.User{ID: "u-1", Email: "admin@example.com", Role: "admin", PasswordHash: string(legacyHash)}
	store.updErr = errors.New("db down")
	g, _ := newTestGateway(t, store, "")

	ok, err := g.Authorize(context.Background(), "admin@example.com:correct horse")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, string(legacyHash), store.users["admin@example.com"].PasswordHash)
}
