// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sessionkit/go-token-session/headers/redact"
	"github.com/sessionkit/go-token-session/logger"
	"go.uber.org/zap"
)

// Handler is responsible for managing and setting headers on outgoing HTTP requests.
// It operates on the derived request produced by the dispatcher, never on the caller's
// original request object.
type Handler struct {
	req *http.Request // The http.Request for which headers are being managed
	log logger.Logger // The logger to use for logging headers
}

// NewHandler creates a new instance of Handler for a given http.Request and logger.
func NewHandler(req *http.Request, log logger.Logger) *Handler {
	return &Handler{
		req: req,
		log: log,
	}
}

// SetAuthorization sets the Authorization header for the request.
func (h *Handler) SetAuthorization(token string) {
	// Ensure the token is prefixed with "Bearer " only once
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	h.req.Header.Set("Authorization", token)
}

// SetContentType sets the Content-Type header for the request.
func (h *Handler) SetContentType(contentType string) {
	h.req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func (h *Handler) SetAccept(acceptHeader string) {
	h.req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *Handler) SetUserAgent(userAgent string) {
	if userAgent != "" {
		h.req.Header.Set("User-Agent", userAgent)
	}
}

// SetRequestID sets the X-Request-ID header used to correlate request logs.
func (h *Handler) SetRequestID(requestID string) {
	h.req.Header.Set("X-Request-ID", requestID)
}

// SetCustomHeader sets a custom header for the request.
// This function allows setting arbitrary headers for specialized API requirements.
func SetCustomHeader(req *http.Request, headerName, headerValue string) {
	req.Header.Set(headerName, headerValue)
}

// LogHeaders prints all the current headers in the http.Request using the zap logger.
// It uses redact.SensitiveHeaderData to redact sensitive data based on the hideSensitiveData flag.
func (h *Handler) LogHeaders(hideSensitiveData bool) {
	if h.log.GetLogLevel() <= logger.LogLevelDebug {
		redactedHeaders := http.Header{}

		for name, values := range h.req.Header {
			if len(values) > 0 {
				redactedValue := redact.SensitiveHeaderData(hideSensitiveData, name, values[0])
				redactedHeaders.Set(name, redactedValue)
			}
		}

		headersStr := HeadersToString(redactedHeaders)

		h.log.Debug("HTTP Request Headers", zap.String("Headers", headersStr))
	}
}

// HeadersToString converts a http.Header to a string for logging,
// with each header on a new line for readability.
func HeadersToString(headers http.Header) string {
	var headerStrings []string
	for name, values := range headers {
		valueStr := strings.Join(values, ", ")
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, valueStr))
	}
	return strings.Join(headerStrings, "\n")
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, log logger.Logger) {
	deprecationHeader := resp.Header.Get("Deprecation")
	if deprecationHeader != "" {
		log.Warn("API endpoint is deprecated",
			zap.String("Date", deprecationHeader),
			zap.String("Endpoint", resp.Request.URL.String()),
		)
	}
}
