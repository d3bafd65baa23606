// proxy/proxy.go

package proxy

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/sessionkit/go-token-session/logger"
)

// SetupProxy routes the client's traffic through the given proxy URL. Credentials may
// be embedded in the URL userinfo; they are forwarded as Proxy-Authorization on the
// CONNECT request. An empty proxyURL leaves the client's transport untouched.
func SetupProxy(httpClient *http.Client, proxyURL string, log logger.Logger) error {
	if proxyURL == "" {
		return nil
	}

	parsedProxyURL, err := url.Parse(proxyURL)
	if err != nil {
		log.Error("Failed to parse proxy URL", zap.Error(err))
		return err
	}

	transport := &http.Transport{
		Proxy: http.ProxyURL(parsedProxyURL),
	}

	if parsedProxyURL.User != nil {
		transport.ProxyConnectHeader = http.Header{
			"Proxy-Authorization": []string{parsedProxyURL.User.String()},
		}
	}

	httpClient.Transport = transport

	log.Info("Proxy configured", zap.String("proxy_host", parsedProxyURL.Host))
	return nil
}
