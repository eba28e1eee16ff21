package sdk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/accessmatic/dashboard/sdk/go/auth"
)

// SessionState is the client-observed authentication state.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionValidating      SessionState = "validating"
	SessionAuthenticated   SessionState = "authenticated"
)

// RestorePolicy decides which Restore failures discard the stored credential.
type RestorePolicy int

const (
	// ClearOnRejection clears only when the server rejects the credential
	// (401/403), the identity payload is malformed, or the token's exp has
	// passed. Network failures and 5xx responses keep it for a later retry.
	ClearOnRejection RestorePolicy = iota
	// ClearOnAnyError clears the credential whenever validation fails.
	ClearOnAnyError
)

var (
	// ErrStaleSession is returned by Restore when a login or logout happened
	// while validation was in flight; the validation result was discarded.
	ErrStaleSession = errors.New("sdk: session changed during validation")

	// ErrTokenExpired is returned by Restore when the stored JWT has expired.
	ErrTokenExpired = errors.New("sdk: stored token has expired")
)

// Session is a read-only snapshot of the session state.
type Session struct {
	State SessionState
	// User is nil unless State is SessionAuthenticated.
	User *User
	// Generation increments on every auth event; comparing two snapshots
	// tells whether anything happened in between.
	Generation uint64
}

// Authenticated reports whether the snapshot holds a validated user.
func (s Session) Authenticated() bool { return s.State == SessionAuthenticated }

// SessionManagerOption customizes a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithRestorePolicy overrides the default ClearOnRejection policy.
func WithRestorePolicy(p RestorePolicy) SessionManagerOption {
	return func(m *SessionManager) { m.policy = p }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// SessionManager owns the session state machine for one Client:
//
//	Unauthenticated -> Validating      Restore with a persisted credential
//	Validating      -> Authenticated   Me succeeds
//	Validating      -> Unauthenticated Me fails
//	Unauthenticated -> Authenticated   Login / Register
//	Authenticated   -> Unauthenticated Logout
//
// It is the only component that clears the store in response to failures.
type SessionManager struct {
	client *Client
	policy RestorePolicy
	now    func() time.Time

	mu    sync.Mutex
	state SessionState
	user  *User
	gen   uint64
}

// NewSessionManager returns a manager in the Unauthenticated state.
func NewSessionManager(client *Client, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		client: client,
		policy: ClearOnRejection,
		now:    time.Now,
		state:  SessionUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the latest snapshot.
func (m *SessionManager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *SessionManager) snapshotLocked() Session {
	s := Session{State: m.state, Generation: m.gen}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Restore validates a persisted credential against GET /auth/me. Without a
// credential it returns the Unauthenticated snapshot and no error. Calling it
// while Authenticated returns the current snapshot unchanged.
//
// Any failure leaves the manager Unauthenticated. Under the default
// ClearOnRejection policy the stored credential is removed only when it is
// expired, rejected with 401/403, or answered with an undecodable user;
// network errors and 5xx responses keep it so a later Restore can retry.
// Use WithRestorePolicy(ClearOnAnyError) to remove the credential on every
// failure instead.
func (m *SessionManager) Restore(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if m.state == SessionAuthenticated {
		defer m.mu.Unlock()
		return m.snapshotLocked(), nil
	}
	token, ok := m.client.session.Get()
	if !ok {
		m.state = SessionUnauthenticated
		m.user = nil
		defer m.mu.Unlock()
		return m.snapshotLocked(), nil
	}
	m.state = SessionValidating
	gen := m.gen
	m.mu.Unlock()

	var (
		user User
		err  error
	)
	if auth.Expired(token, m.now()) {
		err = ErrTokenExpired
	} else {
		user, err = m.client.Auth.Me(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return m.snapshotLocked(), ErrStaleSession
	}
	m.gen++
	if err != nil {
		m.state = SessionUnauthenticated
		m.user = nil
		if m.shouldClear(err) {
			if clearErr := m.client.session.Clear(ctx); clearErr != nil {
				err = errors.Join(err, clearErr)
			}
		}
		return m.snapshotLocked(), err
	}
	m.state = SessionAuthenticated
	m.user = &user
	return m.snapshotLocked(), nil
}

func (m *SessionManager) shouldClear(err error) bool {
	if m.policy == ClearOnAnyError {
		return true
	}
	if errors.Is(err, ErrTokenExpired) || IsAuthRejection(err) {
		return true
	}
	var decodeErr DecodeError
	return errors.As(err, &decodeErr)
}

// Login authenticates and, when the backend returned a token, moves the
// session to Authenticated. A failed login leaves the session untouched.
func (m *SessionManager) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	resp, err := m.client.Auth.Login(ctx, email, password)
	if err != nil {
		return AuthResponse{}, err
	}
	m.applyAuth(resp)
	return resp, nil
}

// Register creates an account and signs in like Login.
func (m *SessionManager) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	resp, err := m.client.Auth.Register(ctx, req)
	if err != nil {
		return AuthResponse{}, err
	}
	m.applyAuth(resp)
	return resp, nil
}

func (m *SessionManager) applyAuth(resp AuthResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.client.session.Get(); !ok {
		return
	}
	m.gen++
	m.state = SessionAuthenticated
	m.user = nil
	if resp.User != nil {
		u := *resp.User
		m.user = &u
	}
}

// Logout clears the credential. Logging out while Unauthenticated is a no-op
// that does not change the snapshot.
func (m *SessionManager) Logout(ctx context.Context) (Session, error) {
	if err := m.client.Auth.Logout(ctx); err != nil {
		return m.Current(), err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != SessionUnauthenticated {
		m.gen++
		m.state = SessionUnauthenticated
		m.user = nil
	}
	return m.snapshotLocked(), nil
}
