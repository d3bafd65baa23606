// sessionhandler/session_management.go
package sessionhandler

import (
	"context"
	"time"

	"github.com/sessionkit/go-token-session/securestore"
	"go.uber.org/zap"
)

// Load populates the in-memory session from secure storage. It is idempotent: once a
// session exists in memory (any state other than Absent) the call is a no-op and performs
// no storage I/O. A missing secret is not an error and leaves the session Absent; storage
// I/O failures propagate unchanged.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *Manager) loadLocked() error {
	if m.session.State != StateAbsent {
		return nil
	}

	access, haveAccess, err := m.store.Load(securestore.KeyAccessToken)
	if err != nil {
		m.log.LogAuthTokenError("session_load_failed", err)
		return err
	}
	refresh, haveRefresh, err := m.store.Load(securestore.KeyRefreshToken)
	if err != nil {
		m.log.LogAuthTokenError("session_load_failed", err)
		return err
	}

	if !haveAccess || !haveRefresh {
		m.session = Session{State: StateAbsent}
		m.log.Debug("No stored session found",
			zap.Bool("access_token_present", haveAccess),
			zap.Bool("refresh_token_present", haveRefresh))
		return nil
	}

	pair := TokenPair{AccessToken: access, RefreshToken: refresh}
	m.session = Classify(&pair)
	m.log.Info("Session loaded from secure storage", zap.String("state", m.session.State.String()))
	return nil
}

// Save persists a new token pair and updates the in-memory session. Both secrets are
// deleted before the new values are written so a shared key namespace never holds a stale
// secret. The sequence is not atomic: a crash between delete and write leaves storage
// empty while memory still holds the pair, which degrades to Absent on the next launch.
func (m *Manager) Save(pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(pair)
}

func (m *Manager) saveLocked(pair TokenPair) error {
	if err := m.store.Delete(securestore.KeyAccessToken); err != nil {
		m.log.LogAuthTokenError("session_save_failed", err)
		return err
	}
	if err := m.store.Delete(securestore.KeyRefreshToken); err != nil {
		m.log.LogAuthTokenError("session_save_failed", err)
		return err
	}
	if err := m.store.Save(securestore.KeyAccessToken, pair.AccessToken); err != nil {
		m.log.LogAuthTokenError("session_save_failed", err)
		return err
	}
	if err := m.store.Save(securestore.KeyRefreshToken, pair.RefreshToken); err != nil {
		m.log.LogAuthTokenError("session_save_failed", err)
		return err
	}

	m.session = Classify(&pair)
	m.log.Info("Session saved", zap.String("state", m.session.State.String()))
	return nil
}

// Destroy clears both secrets from storage and resets the in-memory session to Absent.
func (m *Manager) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyLocked()
}

func (m *Manager) destroyLocked() error {
	if err := m.store.Delete(securestore.KeyAccessToken); err != nil {
		m.log.LogAuthTokenError("session_destroy_failed", err)
		return err
	}
	if err := m.store.Delete(securestore.KeyRefreshToken); err != nil {
		m.log.LogAuthTokenError("session_destroy_failed", err)
		return err
	}

	m.session = Session{State: StateAbsent}
	m.log.Info("Session destroyed")
	return nil
}

// EnsureFresh returns a token pair that is valid at the time of the call, refreshing and
// persisting a new pair when the cached one has expired. It fails with ErrMissingToken
// when no session exists. On a refresh failure the session is destroyed before the error
// is returned wrapped in a RefreshError: an expired refresh token must not leave stale
// credentials behind.
//
// The mutex is held for the whole decision, so two concurrent expired-token callers
// produce a single refresh: the second caller re-classifies the pair persisted by the
// first and takes the fast path. Storage writes run to completion regardless of ctx;
// cancellation is observed only by the refresh function itself.
func (m *Manager) EnsureFresh(ctx context.Context, refresh RefreshFunc) (TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return TokenPair{}, err
	}
	if m.session.State == StateAbsent {
		m.log.LogAuthTokenError("ensure_fresh_no_session", ErrMissingToken)
		return TokenPair{}, ErrMissingToken
	}

	// The cached tag may predate the token's expiry; re-derive it now.
	current := m.session.Pair
	m.session = Classify(&current)

	if m.session.State == StateValid {
		m.log.Debug("Access token still valid, refresh skipped")
		return current, nil
	}

	return m.refreshLocked(ctx, refresh, current)
}

// ForceRefresh exchanges the current pair for a new one regardless of the access token's
// expiry. It backs the reactive retry path, where the server has rejected a token that
// still looks valid locally (revocation, clock skew). Failure semantics match EnsureFresh:
// the session is destroyed and the error returned wrapped in a RefreshError.
func (m *Manager) ForceRefresh(ctx context.Context, refresh RefreshFunc) (TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return TokenPair{}, err
	}
	if m.session.State == StateAbsent {
		m.log.LogAuthTokenError("force_refresh_no_session", ErrMissingToken)
		return TokenPair{}, ErrMissingToken
	}

	return m.refreshLocked(ctx, refresh, m.session.Pair)
}

func (m *Manager) refreshLocked(ctx context.Context, refresh RefreshFunc, current TokenPair) (TokenPair, error) {
	start := time.Now()
	newPair, err := refresh(ctx, current)
	if err != nil {
		m.log.LogAuthTokenRefresh("token_refresh", "failure", time.Since(start))
		if destroyErr := m.destroyLocked(); destroyErr != nil {
			m.log.LogAuthTokenError("destroy_after_refresh_failure", destroyErr)
		}
		return TokenPair{}, &RefreshError{Err: err}
	}
	m.log.LogAuthTokenRefresh("token_refresh", "success", time.Since(start))

	if err := m.saveLocked(newPair); err != nil {
		return TokenPair{}, err
	}
	return newPair, nil
}
