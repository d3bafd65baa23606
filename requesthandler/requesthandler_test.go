// requesthandler/requesthandler_test.go
package requesthandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sessionkit/go-token-session/logger"
	"github.com/sessionkit/go-token-session/mocklogger"
	"github.com/sessionkit/go-token-session/securestore"
	"github.com/sessionkit/go-token-session/sessionhandler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mintToken builds a signed token whose expiry lies the given duration from now.
func mintToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": float64(time.Now().Add(expiresIn).Unix())}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-signing-key"))
	require.NoError(t, err)
	return signed
}

// newTestLogger returns a mock logger that tolerates any logging call.
func newTestLogger() *mocklogger.MockLogger {
	log := mocklogger.NewMockLogger()
	log.On("GetLogLevel").Return(logger.LogLevelInfo).Maybe()
	log.On("Debug", mock.Anything, mock.Anything).Maybe()
	log.On("Info", mock.Anything, mock.Anything).Maybe()
	log.On("Warn", mock.Anything, mock.Anything).Maybe()
	log.On("Error", mock.Anything, mock.Anything).Return(errors.New("logged error")).Maybe()
	log.On("LogRequestStart", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	log.On("LogRequestEnd", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	log.On("LogError", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	log.On("LogAuthTokenError", mock.Anything, mock.Anything).Maybe()
	log.On("LogAuthTokenRefresh", mock.Anything, mock.Anything, mock.Anything).Maybe()
	log.On("LogRetryAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	return log
}

// scriptedSender records every request it receives and replies with a scripted
// sequence of responses.
type scriptedSender struct {
	requests  []*http.Request
	responses []*http.Response
	err       error
}

func (s *scriptedSender) Send(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		panic("scriptedSender: no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	resp.Request = req
	return resp, nil
}

func scriptedResponse(statusCode int, contentType string, body string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// newTestDispatcher wires a dispatcher around an in-memory store and a scripted
// sender, bypassing NewDispatcher so tests control the logger and transport.
func newTestDispatcher(store securestore.Store, sender *scriptedSender, refresh sessionhandler.RefreshFunc) *Dispatcher {
	log := newTestLogger()
	config := ClientConfig{
		ClientOptions: ClientOptions{
			LogLevel:            DefaultLogLevelString,
			LogOutputFormat:     DefaultLogOutputFormat,
			LogConsoleSeparator: DefaultLogConsoleSeparator,
			UserAgent:           "test-agent/1.0",
			CustomTimeout:       DefaultTimeout,
		},
	}
	return &Dispatcher{
		Session: sessionhandler.NewManager(store, log),
		Sender:  sender,
		Logger:  log,
		config:  config,
		refresh: refresh,
	}
}

func seedStore(t *testing.T, store securestore.Store, access, refresh string) {
	t.Helper()
	require.NoError(t, store.Save(securestore.KeyAccessToken, access))
	require.NoError(t, store.Save(securestore.KeyRefreshToken, refresh))
}

func noRefresh(t *testing.T) sessionhandler.RefreshFunc {
	return func(ctx context.Context, pair sessionhandler.TokenPair) (sessionhandler.TokenPair, error) {
		t.Fatal("refresh must not be invoked")
		return sessionhandler.TokenPair{}, nil
	}
}

func TestDoAuthenticatedDecoratesRequest(t *testing.T) {
	store := securestore.NewMemoryStore()
	access := mintToken(t, time.Hour)
	seedStore(t, store, access, "rt1")

	sender := &scriptedSender{responses: []*http.Response{scriptedResponse(http.StatusOK, "application/json", `{}`)}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	resp, err := dispatcher.DoAuthenticated(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, sender.requests, 1)
	sent := sender.requests[0]
	assert.Equal(t, "Bearer "+access, sent.Header.Get("Authorization"))
	assert.Equal(t, "test-agent/1.0", sent.Header.Get("User-Agent"))
	assert.NotEmpty(t, sent.Header.Get("X-Request-ID"))
}

func TestDoAuthenticatedDoesNotMutateCallerRequest(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	sender := &scriptedSender{responses: []*http.Response{scriptedResponse(http.StatusOK, "", "")}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	_, err = dispatcher.DoAuthenticated(req)
	require.NoError(t, err)

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("X-Request-ID"))
	assert.NotSame(t, req, sender.requests[0])
}

func TestDoAuthenticatedRefreshesExpiredToken(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, -time.Hour), "rt1")

	freshAccess := mintToken(t, time.Hour)
	refreshCalls := 0
	refresh := func(ctx context.Context, pair sessionhandler.TokenPair) (sessionhandler.TokenPair, error) {
		refreshCalls++
		assert.Equal(t, "rt1", pair.RefreshToken)
		return sessionhandler.TokenPair{AccessToken: freshAccess, RefreshToken: "rt2"}, nil
	}

	sender := &scriptedSender{responses: []*http.Response{scriptedResponse(http.StatusOK, "", "")}}
	dispatcher := newTestDispatcher(store, sender, refresh)

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	_, err = dispatcher.DoAuthenticated(req)
	require.NoError(t, err)

	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, "Bearer "+freshAccess, sender.requests[0].Header.Get("Authorization"))

	persisted, found, err := store.Load(securestore.KeyRefreshToken)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "rt2", persisted)
}

func TestDoAuthenticatedWithoutStoredSessionFails(t *testing.T) {
	sender := &scriptedSender{}
	dispatcher := newTestDispatcher(securestore.NewMemoryStore(), sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	_, err = dispatcher.DoAuthenticated(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, sessionhandler.ErrMissingToken)
	assert.Empty(t, sender.requests)
}

func TestDoAuthenticatedNoRefreshSendsExpiredToken(t *testing.T) {
	store := securestore.NewMemoryStore()
	staleAccess := mintToken(t, -time.Hour)
	seedStore(t, store, staleAccess, "rt1")

	sender := &scriptedSender{responses: []*http.Response{scriptedResponse(http.StatusUnauthorized, "", "")}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://auth.example.com/oauth/token", nil)
	require.NoError(t, err)

	resp, err := dispatcher.DoAuthenticatedNoRefresh(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer "+staleAccess, sender.requests[0].Header.Get("Authorization"))
}

func TestDoAuthenticatedNoRefreshWithoutStoredSessionFails(t *testing.T) {
	sender := &scriptedSender{}
	dispatcher := newTestDispatcher(securestore.NewMemoryStore(), sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	_, err = dispatcher.DoAuthenticatedNoRefresh(req)
	assert.ErrorIs(t, err, sessionhandler.ErrMissingToken)
}

func TestReactiveRetryOnUnauthorized(t *testing.T) {
	store := securestore.NewMemoryStore()
	revokedAccess := mintToken(t, time.Hour)
	seedStore(t, store, revokedAccess, "rt1")

	freshAccess := mintToken(t, time.Hour)
	refreshCalls := 0
	refresh := func(ctx context.Context, pair sessionhandler.TokenPair) (sessionhandler.TokenPair, error) {
		refreshCalls++
		return sessionhandler.TokenPair{AccessToken: freshAccess, RefreshToken: "rt2"}, nil
	}

	sender := &scriptedSender{responses: []*http.Response{
		scriptedResponse(http.StatusUnauthorized, "", ""),
		scriptedResponse(http.StatusOK, "", ""),
	}}
	dispatcher := newTestDispatcher(store, sender, refresh)
	dispatcher.config.ClientOptions.EnableReactiveRetry = true

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	resp, err := dispatcher.DoAuthenticated(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, refreshCalls)
	require.Len(t, sender.requests, 2)
	assert.Equal(t, "Bearer "+revokedAccess, sender.requests[0].Header.Get("Authorization"))
	assert.Equal(t, "Bearer "+freshAccess, sender.requests[1].Header.Get("Authorization"))
}

func TestReactiveRetryRepliesAtMostOnce(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	refresh := func(ctx context.Context, pair sessionhandler.TokenPair) (sessionhandler.TokenPair, error) {
		return sessionhandler.TokenPair{AccessToken: mintToken(t, time.Hour), RefreshToken: "rt2"}, nil
	}

	sender := &scriptedSender{responses: []*http.Response{
		scriptedResponse(http.StatusUnauthorized, "", ""),
		scriptedResponse(http.StatusUnauthorized, "", ""),
	}}
	dispatcher := newTestDispatcher(store, sender, refresh)
	dispatcher.config.ClientOptions.EnableReactiveRetry = true

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	resp, err := dispatcher.DoAuthenticated(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Len(t, sender.requests, 2)
}

func TestReactiveRetryDisabledByDefault(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	sender := &scriptedSender{responses: []*http.Response{scriptedResponse(http.StatusUnauthorized, "", "")}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	resp, err := dispatcher.DoAuthenticated(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Len(t, sender.requests, 1)
}

func TestSendReturnsTransportError(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	sender := &scriptedSender{err: errors.New("connection refused")}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))

	req, err := http.NewRequest(http.MethodGet, "http://api.example.com/v1/things", nil)
	require.NoError(t, err)

	_, err = dispatcher.DoAuthenticated(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
