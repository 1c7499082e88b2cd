package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sanctumfront/internal/apiclient"
	"github.com/sanctumfront/internal/apipaths"
	"github.com/sanctumfront/internal/domain"
)

// State is the authentication state of a session
type State string

const (
	StateUnknown       State = "unknown"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// API is the subset of the HTTP client the manager needs
type API interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

// Snapshot is a read-only view of a session
type Snapshot struct {
	State   State
	User    *domain.User
	Loading bool
}

// Authenticated reports whether the snapshot carries a user
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Manager holds the current user of one session.
// CheckAuth, Login and Logout are the only mutators; the lock is never held across a call.
type Manager struct {
	api    API
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	user    *domain.User
	loading bool
}

// NewManager creates a manager in the unknown (loading) state
func NewManager(api API, logger *slog.Logger) *Manager {
	return &Manager{
		api:     api,
		logger:  logger,
		state:   StateUnknown,
		loading: true,
	}
}

// Snapshot returns the current state
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{State: m.state, Loading: m.loading}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// CheckAuth asks the backend who the session belongs to.
// Any failure, 401 included, resolves to anonymous.
func (m *Manager) CheckAuth(ctx context.Context) {
	m.setLoading(true)

	user, err := m.fetchUser(ctx)
	if err != nil {
		if apiclient.StatusCode(err) == http.StatusUnauthorized {
			m.logger.DebugContext(ctx, "session: user is not authenticated")
		} else {
			m.logger.WarnContext(ctx, "session: authentication check failed", "error", err)
		}
		m.set(StateAnonymous, nil)
		return
	}

	m.logger.InfoContext(ctx, "session: user is authenticated", "email", user.Email)
	m.set(StateAuthenticated, user)
}

// Login primes the CSRF cookie and then submits credentials.
// The priming call completes before the credential call is issued. On success the user
// is re-read from the backend; on failure session state is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) domain.LoginResult {
	m.logger.InfoContext(ctx, "session: attempting login", "email", email)

	if _, err := m.api.Get(ctx, apipaths.CSRFCookie); err != nil {
		m.logger.ErrorContext(ctx, "session: failed to get CSRF token", "error", err)
		return failure(err)
	}

	resp, err := m.api.Post(ctx, apipaths.Login, credentials{Email: email, Password: password})
	if err != nil {
		m.logger.WarnContext(ctx, "session: login failed",
			"email", email,
			"status", apiclient.StatusCode(err),
		)
		return failure(err)
	}

	m.logger.InfoContext(ctx, "session: login successful, fetching user data", "status", resp.StatusCode)
	m.CheckAuth(ctx)
	return domain.LoginSucceeded(resp.Body)
}

// Logout signs out remotely and always clears local state.
// The remote error, if any, is returned for the caller to log.
func (m *Manager) Logout(ctx context.Context) error {
	_, err := m.api.Post(ctx, apipaths.Logout, nil)
	m.set(StateAnonymous, nil)

	if err != nil {
		m.logger.WarnContext(ctx, "session: remote logout failed, local state cleared", "error", err)
		return err
	}
	m.logger.InfoContext(ctx, "session: logout successful, user state cleared")
	return nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m *Manager) fetchUser(ctx context.Context) (*domain.User, error) {
	resp, err := m.api.Get(ctx, apipaths.User)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func (m *Manager) set(state State, user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
	m.loading = false
}

// failure converts a client error into a login failure result.
// No response at all is reported as 500.
func failure(err error) domain.LoginResult {
	status := apiclient.StatusCode(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return domain.LoginFailed(status, apiclient.ErrorMessage(err), err)
}
