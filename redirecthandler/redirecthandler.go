// redirecthandler/redirecthandler.go
package redirecthandler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sessionkit/go-token-session/logger"
)

// RedirectHandler governs how the HTTP client follows redirects. Its main job in a
// token-bearing client is credential hygiene: the Authorization header must never
// travel to a host other than the one the request was issued against.
type RedirectHandler struct {
	Logger           logger.Logger // Logger instance for logging.
	MaxRedirects     int           // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders []string      // Headers to be removed on cross-domain redirects.
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(log logger.Logger, maxRedirects int) *RedirectHandler {
	return &RedirectHandler{
		Logger:           log,
		MaxRedirects:     maxRedirects,
		SensitiveHeaders: []string{"Authorization", "Cookie"},
	}
}

// AddSensitiveHeader allows adding configurable sensitive headers.
func (r *RedirectHandler) AddSensitiveHeader(header string) {
	r.SensitiveHeaders = append(r.SensitiveHeaders, header)
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect implements the redirect policy.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	// Redirecting a POST or PATCH replays the body; return the response as is.
	if via[0].Method == http.MethodPost || via[0].Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following",
			zap.String("method", via[0].Method),
			zap.String("url", req.URL.String()))
		return http.ErrUseLastResponse
	}

	if len(via) >= r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("max_redirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	if req.URL.Host != via[0].URL.Host {
		r.secureRequest(req)
		r.Logger.Debug("Cross-host redirect, stripped sensitive headers",
			zap.String("original_host", via[0].URL.Host),
			zap.String("redirect_host", req.URL.Host))
	}

	r.Logger.Debug("Following redirect",
		zap.String("original_url", via[len(via)-1].URL.String()),
		zap.String("redirect_url", req.URL.String()),
		zap.Int("redirect_count", len(via)))

	return nil
}

// secureRequest removes sensitive headers from the request when the new destination
// is a different host.
func (r *RedirectHandler) secureRequest(req *http.Request) {
	for _, header := range r.SensitiveHeaders {
		req.Header.Del(header)
	}
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// SetupRedirectHandler configures the HTTP client for redirect handling based on the
// client configuration. When followRedirects is disabled, redirect responses are
// returned to the caller unfollowed.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log logger.Logger) error {
	if !followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		log.Info("Redirect following disabled")
		return nil
	}

	if maxRedirects < 1 {
		return log.Error("Invalid maxRedirects value", zap.Int("max_redirects", maxRedirects))
	}

	redirectHandler := NewRedirectHandler(log, maxRedirects)
	redirectHandler.WithRedirectHandling(client)
	log.Info("Redirect handling enabled", zap.Int("max_redirects", maxRedirects))
	return nil
}
