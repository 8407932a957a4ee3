package session

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/storage"
)

// fakeAuth is an AuthService backed by a map of valid tokens
type fakeAuth struct {
	mu           sync.Mutex
	users        map[string]api.User // token -> user
	password     string
	tokenSource  func() string
	profileCalls int
	loginCalls   int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: make(map[string]api.User), password: "x"}
}

func (f *fakeAuth) Login(_ context.Context, creds api.Credentials) (*api.TokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if creds.Password != f.password {
		return nil, errors.NewInvalidCredentialsError("Incorrect email or password", nil)
	}
	token := fmt.Sprintf("tok-%d", f.loginCalls)
	user := api.User{ID: "u-" + creds.Email, Email: creds.Email, Name: "Ada"}
	f.users[token] = user
	return &api.TokenResponse{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func (f *fakeAuth) Register(ctx context.Context, nu api.NewUser) (*api.TokenResponse, error) {
	resp, err := f.Login(ctx, api.Credentials{Email: nu.Email, Password: nu.Password})
	if err != nil {
		return nil, err
	}
	resp.User.Name = nu.Name
	f.mu.Lock()
	f.users[resp.AccessToken] = resp.User
	f.mu.Unlock()
	return resp, nil
}

func (f *fakeAuth) GetProfile(context.Context) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	token := ""
	if f.tokenSource != nil {
		token = f.tokenSource()
	}
	user, ok := f.users[token]
	if !ok {
		return nil, errors.New(errors.ErrCodeAuthSessionExpired, "session is not authorized")
	}
	return &user, nil
}

func (f *fakeAuth) calls() (login, profile int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.profileCalls
}

func newManager(auth *fakeAuth, store storage.Store) *Manager {
	m := NewManager(auth, store, WithLogger(log.Discard()))
	auth.tokenSource = m.Token
	return m
}

func storedUser(t *testing.T, store storage.Store) (api.User, bool) {
	t.Helper()
	raw, ok, err := store.Get(KeyUser)
	require.NoError(t, err)
	if !ok {
		return api.User{}, false
	}
	var u api.User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u, true
}

func TestInitializeWithoutTokenMakesNoRequest(t *testing.T) {
	auth := newFakeAuth()
	m := newManager(auth, storage.NewMemoryStore())

	assert.Equal(t, PhaseReady, m.Phase())

	m.Initialize(context.Background())

	assert.Equal(t, PhaseReady, m.Phase())
	assert.Nil(t, m.User())
	assert.Empty(t, m.Token())
	_, profile := auth.calls()
	assert.Equal(t, 0, profile)
}

func TestLoginPersistsAndRestoresInNewProcess(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := newManager(auth, store)
	first.Initialize(ctx)
	resp, err := first.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	token, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.AccessToken, token)
	persisted, ok := storedUser(t, store)
	require.True(t, ok)
	assert.Equal(t, resp.User, persisted)

	second := newManager(auth, store)
	assert.Equal(t, PhaseHydrating, second.Phase())
	assert.Nil(t, second.User(), "user is not authoritative while hydrating")

	second.Initialize(ctx)

	assert.Equal(t, PhaseReady, second.Phase())
	require.NotNil(t, second.User())
	assert.Equal(t, resp.User, *second.User())
	assert.Equal(t, resp.AccessToken, second.Token())
	_, profile := auth.calls()
	assert.Equal(t, 1, profile)
}

func TestInitializeWithRejectedTokenClearsSession(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, "expired"))
	require.NoError(t, store.Set(KeyUser, `{"id":"u1","email":"a@b.com"}`))

	m := newManager(auth, store)
	m.Initialize(context.Background())

	assert.Equal(t, PhaseReady, m.Phase())
	assert.Nil(t, m.User())
	assert.Empty(t, m.Token())
	assert.Equal(t, 0, store.Len())
}

func TestInitializeRunsOnce(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	_, err := newManager(auth, store).Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	m := newManager(auth, store)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Initialize(ctx)
			assert.Equal(t, PhaseReady, m.Phase())
		}()
	}
	wg.Wait()

	_, profile := auth.calls()
	assert.Equal(t, 1, profile)
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	m := newManager(auth, store)
	_, err := m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	before := m.Snapshot()

	_, err = m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAuthInvalidCredentials, errors.CodeOf(err))
	assert.Equal(t, before, m.Snapshot())
}

func TestRegisterEstablishesSession(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()

	m := newManager(auth, store)
	resp, err := m.Register(context.Background(), api.NewUser{Name: "Grace", Email: "g@h.com", Password: "x"})
	require.NoError(t, err)

	assert.Equal(t, "Grace", m.User().Name)
	assert.Equal(t, resp.AccessToken, m.Token())
	assert.Equal(t, 2, store.Len())
}

func TestLogoutIsIdempotentAndClearsResidue(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	m := newManager(auth, store)
	_, err := m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	m.Logout()
	assert.Nil(t, m.User())
	assert.Empty(t, m.Token())
	assert.Equal(t, 0, store.Len())

	// residue written behind the manager's back is still cleared
	require.NoError(t, store.Set(KeyUser, `{"id":"ghost"}`))
	m.Logout()
	assert.Equal(t, Session{Phase: PhaseReady}, m.Snapshot())
	assert.Equal(t, 0, store.Len())

	login, _ := auth.calls()
	assert.Equal(t, 1, login, "logout makes no request")
}

func TestPatchUser(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	ctx := context.Background()

	m := newManager(auth, store)
	err := m.PatchUser(api.User{ID: "u1"})
	assert.Equal(t, errors.ErrCodeAuthNoSession, errors.CodeOf(err))

	resp, err := m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	patched := resp.User
	patched.Name = "Ada Lovelace"
	require.NoError(t, m.PatchUser(patched))

	assert.Equal(t, "Ada Lovelace", m.User().Name)
	assert.Equal(t, resp.AccessToken, m.Token(), "token untouched")
	persisted, _ := storedUser(t, store)
	assert.Equal(t, "Ada Lovelace", persisted.Name)
}

func TestPatchUserWhileHydratingIsRejected(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(KeyToken, "tok"))

	m := newManager(newFakeAuth(), store)
	err := m.PatchUser(api.User{ID: "u1"})
	assert.Equal(t, errors.ErrCodeAuthNotReady, errors.CodeOf(err))
	assert.Nil(t, m.User())
}

func TestPersistenceFailureIsNotFatal(t *testing.T) {
	auth := newFakeAuth()
	store := storage.NewMemoryStore()
	store.WriteErr = fmt.Errorf("disk full")
	ctx := context.Background()

	m := newManager(auth, store)
	resp, err := m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, resp.AccessToken, m.Token())
	assert.Equal(t, 0, store.Len())

	patched := resp.User
	patched.Name = "Changed"
	require.NoError(t, m.PatchUser(patched))
	assert.Equal(t, "Changed", m.User().Name)

	m.Logout()
	assert.Nil(t, m.User())
}

func TestUserReturnsCopy(t *testing.T) {
	auth := newFakeAuth()
	m := newManager(auth, storage.NewMemoryStore())
	_, err := m.Login(context.Background(), api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	u := m.User()
	u.Name = "mutated"
	assert.Equal(t, "Ada", m.User().Name)
}

func TestRefresh(t *testing.T) {
	auth := newFakeAuth()
	ctx := context.Background()
	m := newManager(auth, storage.NewMemoryStore())

	_, err := m.Refresh(ctx)
	assert.Equal(t, errors.ErrCodeAuthNoSession, errors.CodeOf(err))

	resp, err := m.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	auth.mu.Lock()
	u := auth.users[resp.AccessToken]
	u.StudyStreak = 9
	auth.users[resp.AccessToken] = u
	auth.mu.Unlock()

	user, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, user.StudyStreak)
	assert.Equal(t, 9, m.User().StudyStreak)
}

func TestUnreadableStoreStartsLoggedOutAndKeepsSession(t *testing.T) {
	auth := newFakeAuth()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := newManager(auth, storage.NewFileStore(path, "right"))
	first.Initialize(ctx)
	resp, err := first.Login(ctx, api.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)

	wrong := storage.NewFileStore(path, "wrong")
	_, _, err = wrong.Get(KeyToken)
	require.Equal(t, errors.ErrCodeStoreCrypto, errors.CodeOf(err))

	locked := newManager(auth, wrong)
	assert.Equal(t, PhaseReady, locked.Phase())
	locked.Initialize(ctx)
	assert.Empty(t, locked.Token())
	assert.Nil(t, locked.User())

	again := newManager(auth, storage.NewFileStore(path, "right"))
	assert.Equal(t, PhaseHydrating, again.Phase())
	again.Initialize(ctx)
	assert.Equal(t, resp.AccessToken, again.Token())
	require.NotNil(t, again.User())
	assert.Equal(t, "a@b.com", again.User().Email)
}
