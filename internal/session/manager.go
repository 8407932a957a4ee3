// Package session owns the authenticated identity of the running process.
//
// A Manager is the only writer of the session: the bearer token and the
// current user are read from anywhere, but changed only through Login,
// Register, Logout, PatchUser and Initialize. Both values are persisted so
// that the next process resumes the session without re-authenticating.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/storage"
)

// Persisted storage keys. No other key belongs to the session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Phase is the hydration state of the session
type Phase string

const (
	// PhaseHydrating means a stored token exists but has not been resolved to a user yet
	PhaseHydrating Phase = "hydrating"
	// PhaseReady means User is authoritative
	PhaseReady Phase = "ready"
)

// AuthService is the backend surface the manager depends on
type AuthService interface {
	Login(ctx context.Context, creds api.Credentials) (*api.TokenResponse, error)
	Register(ctx context.Context, user api.NewUser) (*api.TokenResponse, error)
	GetProfile(ctx context.Context) (*api.User, error)
}

// Session is a point-in-time copy of the session state
type Session struct {
	Phase Phase
	Token string
	User  *api.User
}

// Authenticated reports whether a user is logged in
func (s Session) Authenticated() bool {
	return s.User != nil
}

// Manager owns the session. It is safe for concurrent use.
type Manager struct {
	auth   AuthService
	store  storage.Store
	logger *log.Logger

	mu    sync.RWMutex
	phase Phase
	token string
	user  *api.User

	initOnce sync.Once
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager's logger
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager. If the store holds a token the manager starts
// hydrating and Initialize must be called; otherwise it is ready and logged out.
//
// A stored token that cannot be read, for example one sealed under another
// passphrase, also leaves the manager ready and logged out. The persisted
// entries are kept so the session is recovered once the right passphrase is
// configured; the next login or logout overwrites them.
func NewManager(auth AuthService, store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		auth:   auth,
		store:  store,
		logger: log.DefaultLogger(),
		phase:  PhaseReady,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")

	token, ok, err := store.Get(KeyToken)
	if err != nil {
		m.logger.WithError(err).Warn("failed to read stored session, starting logged out")
		return m
	}
	if ok && token != "" {
		m.token = token
		m.phase = PhaseHydrating
	}
	return m
}

// Initialize resolves a stored token into a user. It runs at most once per
// manager; later calls return immediately, after the first has finished.
// A rejected token is not an error: the session is cleared and the manager
// ends ready and logged out. With no stored token no request is made.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.hydrate(ctx)
	})
}

func (m *Manager) hydrate(ctx context.Context) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token == "" {
		m.mu.Lock()
		m.phase = PhaseReady
		m.mu.Unlock()
		return
	}

	user, err := m.auth.GetProfile(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = PhaseReady

	// A login or logout while the profile was in flight owns the session now.
	if m.token != token {
		return
	}

	if err != nil {
		m.logger.WithError(err).Info("stored session rejected, logging out")
		m.token = ""
		m.user = nil
		m.persistClear()
		return
	}

	m.user = cloneUser(user)
	m.persistUser()
}

// Login authenticates and stores the session. On failure the session is unchanged.
func (m *Manager) Login(ctx context.Context, creds api.Credentials) (*api.TokenResponse, error) {
	resp, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	m.establish(resp)
	return resp, nil
}

// Register creates an account and stores the resulting session
func (m *Manager) Register(ctx context.Context, user api.NewUser) (*api.TokenResponse, error) {
	resp, err := m.auth.Register(ctx, user)
	if err != nil {
		return nil, err
	}
	m.establish(resp)
	return resp, nil
}

func (m *Manager) establish(resp *api.TokenResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = resp.AccessToken
	m.user = cloneUser(&resp.User)
	m.phase = PhaseReady

	if err := m.store.Set(KeyToken, m.token); err != nil {
		m.logger.WithError(err).Warn("failed to persist session token, session will not survive restart")
	}
	m.persistUser()
	m.logger.Debug("session established", "user_id", m.user.ID)
}

// Logout clears the session in memory and on disk. It makes no request and is idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.user = nil
	m.phase = PhaseReady
	m.persistClear()
}

// PatchUser replaces the current user without touching the token. It returns
// AUTH-004 while the session is hydrating and AUTH-002 when nobody is logged in.
func (m *Manager) PatchUser(user api.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseHydrating {
		return errors.New(errors.ErrCodeAuthNotReady, "session is still being restored").
			WithSuggestion("Call Initialize before changing the user")
	}
	if m.user == nil {
		return errors.NewNoSessionError()
	}

	m.user = cloneUser(&user)
	m.persistUser()
	return nil
}

// Refresh fetches the current profile and patches it into the session
func (m *Manager) Refresh(ctx context.Context) (*api.User, error) {
	if m.Phase() == PhaseHydrating {
		return nil, errors.New(errors.ErrCodeAuthNotReady, "session is still being restored")
	}
	if m.Token() == "" {
		return nil, errors.NewNoSessionError()
	}

	user, err := m.auth.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.PatchUser(*user); err != nil {
		return nil, err
	}
	return cloneUser(user), nil
}

// Phase returns the hydration phase
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Token returns the bearer token, or "" when logged out
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the current user, or nil when logged out or hydrating
func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

// Snapshot returns the whole session state at once
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Session{
		Phase: m.phase,
		Token: m.token,
		User:  cloneUser(m.user),
	}
}

// persistUser writes the user entry. Callers hold m.mu.
func (m *Manager) persistUser() {
	data, err := json.Marshal(m.user)
	if err != nil {
		m.logger.WithError(err).Warn("failed to encode user for storage")
		return
	}
	if err := m.store.Set(KeyUser, string(data)); err != nil {
		m.logger.WithError(err).Warn("failed to persist user, session will not survive restart")
	}
}

// persistClear removes both entries. Callers hold m.mu.
func (m *Manager) persistClear() {
	if err := m.store.Remove(KeyToken, KeyUser); err != nil {
		m.logger.WithError(err).Warn("failed to clear stored session")
	}
}

func cloneUser(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.AvatarURL != nil {
		avatar := *u.AvatarURL
		c.AvatarURL = &avatar
	}
	return &c
}
