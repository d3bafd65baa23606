// requesthandler/sender.go
package requesthandler

import "net/http"

// Sender executes a single HTTP request. The default implementation wraps an
// *http.Client; tests substitute their own.
type Sender interface {
	Send(req *http.Request) (*http.Response, error)
}

type httpClientSender struct {
	client *http.Client
}

func (s *httpClientSender) Send(req *http.Request) (*http.Response, error) {
	return s.client.Do(req)
}
