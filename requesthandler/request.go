// requesthandler/request.go
package requesthandler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sessionkit/go-token-session/headers"
	"github.com/sessionkit/go-token-session/sessionhandler"
	"github.com/sessionkit/go-token-session/status"
)

// DoAuthenticated sends the request with a valid bearer token, refreshing the stored
// session first when the access token is expired or the credential was destroyed.
// The caller's request is never mutated; the dispatcher sends a decorated clone.
func (d *Dispatcher) DoAuthenticated(req *http.Request) (*http.Response, error) {
	return d.send(req, true)
}

// DoAuthenticatedNoRefresh sends the request with whatever access token is currently
// stored, without triggering a refresh. Intended for callers that must not block on
// the refresh endpoint, such as the refresh call itself.
func (d *Dispatcher) DoAuthenticatedNoRefresh(req *http.Request) (*http.Response, error) {
	return d.send(req, false)
}

func (d *Dispatcher) send(req *http.Request, autoRefresh bool) (*http.Response, error) {
	pair, err := d.currentPair(req.Context(), autoRefresh)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()

	out, err := d.outgoingRequest(req, pair.AccessToken, requestID)
	if err != nil {
		return nil, err
	}

	d.Logger.LogRequestStart("request_dispatch", requestID, out.Method, out.URL.String(), out.Header)
	startTime := time.Now()

	resp, err := d.Sender.Send(out)
	if err != nil {
		d.Logger.LogError("request_dispatch", out.Method, out.URL.String(), 0, "", err, "")
		return nil, err
	}

	d.Logger.LogRequestEnd("request_dispatch", out.Method, out.URL.String(), resp.StatusCode, time.Since(startTime))

	if autoRefresh && d.config.ClientOptions.EnableReactiveRetry && status.IsUnauthorized(resp.StatusCode) {
		return d.retryAfterRefresh(req, resp, requestID)
	}

	return resp, nil
}

// retryAfterRefresh handles a 401 on a request that was sent with a locally valid
// token, which means the server revoked it. The session is force refreshed and the
// request is replayed exactly once, with the reactive path disabled for the replay.
func (d *Dispatcher) retryAfterRefresh(req *http.Request, resp *http.Response, requestID string) (*http.Response, error) {
	d.Logger.LogRetryAttempt("request_dispatch", req.Method, req.URL.String(), 1, "unauthorized response with locally valid token", nil)
	resp.Body.Close()

	pair, err := d.Session.ForceRefresh(req.Context(), d.refresh)
	if err != nil {
		return nil, err
	}

	out, err := d.outgoingRequest(req, pair.AccessToken, requestID)
	if err != nil {
		return nil, err
	}

	d.Logger.LogRequestStart("request_dispatch_retry", requestID, out.Method, out.URL.String(), out.Header)
	startTime := time.Now()

	retryResp, err := d.Sender.Send(out)
	if err != nil {
		d.Logger.LogError("request_dispatch_retry", out.Method, out.URL.String(), 0, "", err, "")
		return nil, err
	}

	d.Logger.LogRequestEnd("request_dispatch_retry", out.Method, out.URL.String(), retryResp.StatusCode, time.Since(startTime))
	return retryResp, nil
}

// currentPair resolves the token pair to attach to an outgoing request. With
// autoRefresh it delegates to the session handler's freshness guarantee; without it
// the stored pair is used as-is, expired or not, so long as one exists.
func (d *Dispatcher) currentPair(ctx context.Context, autoRefresh bool) (sessionhandler.TokenPair, error) {
	if autoRefresh {
		return d.Session.EnsureFresh(ctx, d.refresh)
	}

	if err := d.Session.Load(); err != nil {
		return sessionhandler.TokenPair{}, err
	}

	session := d.Session.Current()
	if session.State == sessionhandler.StateAbsent {
		return sessionhandler.TokenPair{}, sessionhandler.ErrMissingToken
	}
	return session.Pair, nil
}

// outgoingRequest clones the caller's request and applies the standard header set.
// When the original request carries a body, a fresh body reader is obtained via
// GetBody so the clone (and any retry) reads from the start.
func (d *Dispatcher) outgoingRequest(req *http.Request, accessToken string, requestID string) (*http.Request, error) {
	out := req.Clone(req.Context())

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}

	headerHandler := headers.NewHandler(out, d.Logger)
	headerHandler.SetAuthorization(accessToken)
	headerHandler.SetUserAgent(d.config.ClientOptions.UserAgent)
	headerHandler.SetRequestID(requestID)
	headerHandler.LogHeaders(d.config.ClientOptions.HideSensitiveData)

	return out, nil
}
