// requesthandler/requesthandler.go
// The requesthandler package provides the authenticated request dispatcher. It composes
// the secure store, session manager, header handler and response handlers into a single
// client surface: callers hand it plain *http.Request values (or use the high level Do
// method) and the dispatcher guarantees each outgoing request carries a fresh bearer
// token, a stable User-Agent and a per-request correlation ID.
package requesthandler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sessionkit/go-token-session/cookiejar"
	"github.com/sessionkit/go-token-session/logger"
	"github.com/sessionkit/go-token-session/proxy"
	"github.com/sessionkit/go-token-session/redirecthandler"
	"github.com/sessionkit/go-token-session/securestore"
	"github.com/sessionkit/go-token-session/sessionhandler"
)

// BaseURLProvider returns the base URL for high level calls. It is consulted per
// request so implementations may rotate endpoints.
type BaseURLProvider func() (string, error)

// Dispatcher sends HTTP requests decorated with a bearer token managed by the
// session handler.
type Dispatcher struct {
	Session *sessionhandler.Manager // Session state machine backing token freshness.
	Sender  Sender                  // Transport used to execute requests. Replaceable in tests.
	Logger  logger.Logger           // Logger used across the dispatcher.

	config  ClientConfig
	refresh sessionhandler.RefreshFunc
	baseURL BaseURLProvider
}

// NewDispatcher builds a Dispatcher from the supplied configuration. The store holds
// the persisted token pair, refresh is invoked whenever the session needs new tokens,
// and baseURL (optional, required only for the high level Do method) supplies the
// endpoint prefix for relative paths.
func NewDispatcher(config ClientConfig, store securestore.Store, refresh sessionhandler.RefreshFunc, baseURL BaseURLProvider) (*Dispatcher, error) {
	log := logger.BuildLogger(
		logger.ParseLogLevelFromString(config.ClientOptions.LogLevel),
		config.ClientOptions.LogOutputFormat,
		config.ClientOptions.LogConsoleSeparator,
	)

	httpClient := &http.Client{
		Timeout: config.ClientOptions.CustomTimeout,
	}

	if err := proxy.SetupProxy(httpClient, config.ClientOptions.ProxyURL, log); err != nil {
		log.Error("Error setting up proxy", zap.Error(err))
		return nil, err
	}

	if err := cookiejar.SetupCookieJar(httpClient, config.ClientOptions.EnableCookieJar, log); err != nil {
		log.Error("Error setting up cookie jar", zap.Error(err))
		return nil, err
	}

	if err := redirecthandler.SetupRedirectHandler(httpClient, config.ClientOptions.FollowRedirects, config.ClientOptions.MaxRedirects, log); err != nil {
		log.Error("Error setting up redirect handler", zap.Error(err))
		return nil, err
	}

	dispatcher := &Dispatcher{
		Session: sessionhandler.NewManager(store, log),
		Sender:  &httpClientSender{client: httpClient},
		Logger:  log,
		config:  config,
		refresh: refresh,
		baseURL: baseURL,
	}

	log.Info("Dispatcher initialized",
		zap.String("log_level", config.ClientOptions.LogLevel),
		zap.String("user_agent", config.ClientOptions.UserAgent),
		zap.Bool("cookie_jar_enabled", config.ClientOptions.EnableCookieJar),
		zap.Bool("reactive_retry_enabled", config.ClientOptions.EnableReactiveRetry),
		zap.Duration("timeout", config.ClientOptions.CustomTimeout),
	)

	return dispatcher, nil
}
