// requesthandler/do.go
package requesthandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sessionkit/go-token-session/headers"
	"github.com/sessionkit/go-token-session/response"
	"github.com/sessionkit/go-token-session/status"
)

// Do performs an authenticated JSON API call against the configured base URL.
// body, when non-nil, is marshalled to JSON and sent as the request body. out, when
// non-nil, receives the unmarshalled response body on success. The raw response is
// returned in both cases; on a non-success status the error is a *response.APIError
// carrying the parsed server message.
func (d *Dispatcher) Do(ctx context.Context, method string, endpoint string, body interface{}, out interface{}) (*http.Response, error) {
	if d.baseURL == nil {
		return nil, errors.New("no base URL provider configured")
	}

	base, err := d.baseURL()
	if err != nil {
		return nil, fmt.Errorf("resolving base URL: %w", err)
	}

	requestURL, err := url.JoinPath(base, endpoint)
	if err != nil {
		return nil, fmt.Errorf("building request URL: %w", err)
	}

	var bodyReader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var req *http.Request
	if bodyReader != nil {
		req, err = http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, requestURL, nil)
	}
	if err != nil {
		return nil, err
	}

	headerHandler := headers.NewHandler(req, d.Logger)
	if bodyReader != nil {
		headerHandler.SetContentType("application/json")
	}
	headerHandler.SetAccept("application/json")

	resp, err := d.DoAuthenticated(req)
	if err != nil {
		return nil, err
	}

	if !status.IsSuccessStatusCode(resp.StatusCode) {
		apiErr := response.HandleErrorResponse(resp)
		d.Logger.LogError("api_call", req.Method, req.URL.String(), resp.StatusCode, apiErr.Message, apiErr, apiErr.RawResponse)
		return resp, apiErr
	}

	if err := response.HandleSuccessResponse(resp, out, d.Logger); err != nil {
		return resp, err
	}

	return resp, nil
}
