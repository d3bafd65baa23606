// zaplogger_logfields.go
package logger

import (
	"time"

	"go.uber.org/zap"
)

// LogRequestStart logs the initiation of an HTTP request, including the request ID, HTTP method,
// URL, and headers. Intended to be called at the beginning of an authenticated request lifecycle.
func (d *defaultLogger) LogRequestStart(event string, requestID string, method string, url string, headers map[string][]string) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", url),
		zap.Reflect("headers", headers),
	}
	d.Info("Authenticated request started", fields...)
}

// LogRequestEnd logs the completion of an HTTP request, including the HTTP method, URL, status
// code, and duration.
func (d *defaultLogger) LogRequestEnd(event string, method string, url string, statusCode int, duration time.Duration) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", duration),
	}
	d.Info("Authenticated request completed", fields...)
}

// LogError logs an error that occurs during the processing of an HTTP request.
func (d *defaultLogger) LogError(event string, method string, url string, statusCode int, serverStatusMessage string, err error, rawResponse string) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status_code", statusCode),
		zap.String("server_status_message", serverStatusMessage),
		zap.String("raw_response", rawResponse),
	}
	if err != nil {
		fields = append(fields, zap.String("error_message", err.Error()))
	}
	d.logger.Error("Error during authenticated request", fields...)
}

// LogAuthTokenError logs a failure in the token session lifecycle, such as a failed load from
// secure storage, a refresh failure, or a missing session.
func (d *defaultLogger) LogAuthTokenError(event string, err error) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.Error(err),
	}
	d.logger.Error("Token session error", fields...)
}

// LogAuthTokenRefresh logs the outcome of a token refresh attempt.
func (d *defaultLogger) LogAuthTokenRefresh(event string, outcome string, duration time.Duration) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("outcome", outcome),
		zap.Duration("duration", duration),
	}
	d.Info("Token refresh attempted", fields...)
}

// LogRetryAttempt logs a retry of an authenticated request, including the attempt number and
// the reason for the retry.
func (d *defaultLogger) LogRetryAttempt(event string, method string, url string, attempt int, reason string, err error) {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("attempt", attempt),
		zap.String("reason", reason),
		zap.Error(err),
	}
	d.Warn("Authenticated request retry", fields...)
}
