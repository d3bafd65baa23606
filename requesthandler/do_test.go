// requesthandler/do_test.go
package requesthandler

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sessionkit/go-token-session/response"
	"github.com/sessionkit/go-token-session/securestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func fixedBaseURL(base string) BaseURLProvider {
	return func() (string, error) { return base, nil }
}

func TestDoUnmarshalsJSONResponse(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	sender := &scriptedSender{responses: []*http.Response{
		scriptedResponse(http.StatusOK, "application/json", `{"id":"w-1","name":"flux capacitor"}`),
	}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))
	dispatcher.baseURL = fixedBaseURL("http://api.example.com")

	var out widget
	resp, err := dispatcher.Do(context.Background(), http.MethodGet, "/v1/widgets/w-1", nil, &out)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, widget{ID: "w-1", Name: "flux capacitor"}, out)
	assert.Equal(t, "http://api.example.com/v1/widgets/w-1", sender.requests[0].URL.String())
	assert.Equal(t, "application/json", sender.requests[0].Header.Get("Accept"))
}

func TestDoMarshalsRequestBody(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	sender := &scriptedSender{responses: []*http.Response{
		scriptedResponse(http.StatusCreated, "application/json", `{"id":"w-2","name":"sprocket"}`),
	}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))
	dispatcher.baseURL = fixedBaseURL("http://api.example.com")

	var out widget
	_, err := dispatcher.Do(context.Background(), http.MethodPost, "/v1/widgets", widget{Name: "sprocket"}, &out)
	require.NoError(t, err)

	sent := sender.requests[0]
	assert.Equal(t, "application/json", sent.Header.Get("Content-Type"))

	payload, err := io.ReadAll(sent.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"","name":"sprocket"}`, string(payload))
	assert.Equal(t, "w-2", out.ID)
}

func TestDoReturnsAPIErrorOnFailureStatus(t *testing.T) {
	store := securestore.NewMemoryStore()
	seedStore(t, store, mintToken(t, time.Hour), "rt1")

	sender := &scriptedSender{responses: []*http.Response{
		scriptedResponse(http.StatusNotFound, "application/json", `{"message":"widget not found"}`),
	}}
	dispatcher := newTestDispatcher(store, sender, noRefresh(t))
	dispatcher.baseURL = fixedBaseURL("http://api.example.com")

	resp, err := dispatcher.Do(context.Background(), http.MethodGet, "/v1/widgets/missing", nil, nil)
	require.Error(t, err)

	var apiErr *response.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "widget not found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDoWithoutBaseURLProviderFails(t *testing.T) {
	dispatcher := newTestDispatcher(securestore.NewMemoryStore(), &scriptedSender{}, noRefresh(t))

	_, err := dispatcher.Do(context.Background(), http.MethodGet, "/v1/widgets", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}
