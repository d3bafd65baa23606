// sessionhandler/sessionhandler.go

/* The sessionhandler package owns the process-wide token session: a cached pair of bearer
tokens backed by secure storage, classified as absent, expired or valid from the access
token's expiry claim. All mutation flows through the Manager's Load, Save, Destroy and
EnsureFresh entry points; the actual network call that exchanges a refresh token for a new
pair is a caller-supplied RefreshFunc. */
package sessionhandler

import (
	"context"
	"sync"

	"github.com/sessionkit/go-token-session/logger"
	"github.com/sessionkit/go-token-session/securestore"
)

// RefreshFunc exchanges the current token pair for a new one at the authorization server.
// It is the only place a network call to the auth server occurs and is supplied by the
// caller at dispatch time.
type RefreshFunc func(ctx context.Context, current TokenPair) (TokenPair, error)

// Manager orchestrates the token session lifecycle against a secure store. One Manager is
// constructed per process and shared by reference; the mutex serializes every state
// transition so concurrent expired-token callers cannot trigger duplicate refreshes.
type Manager struct {
	store   securestore.Store // store is the durable backend holding the two session secrets.
	log     logger.Logger     // log provides structured logging for session lifecycle events.
	mu      sync.Mutex        // mu guards session across Load/Save/Destroy/EnsureFresh.
	session Session           // session is the in-memory cache of the current session.
}

// NewManager creates a Manager over the provided store. The session starts Absent and is
// populated on the first Load or EnsureFresh.
func NewManager(store securestore.Store, log logger.Logger) *Manager {
	return &Manager{
		store:   store,
		log:     log,
		session: Session{State: StateAbsent},
	}
}

// Current returns a snapshot of the in-memory session. It is a read accessor only; other
// layers observe the session through it but may not write it back.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}
