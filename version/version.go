// version.go
package version

import "fmt"

const (
	// SDKVersion holds the current version of the library.
	SDKVersion = "0.1.0"
	// UserAgentBase is the product token sent in the User-Agent header.
	UserAgentBase = "go-token-session"
)

// GetUserAgentHeader returns the default User-Agent string for outgoing requests.
func GetUserAgentHeader() string {
	return fmt.Sprintf("%s/%s", UserAgentBase, SDKVersion)
}
