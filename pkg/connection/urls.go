package connection

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/open-cuss/cuss2-go/pkg/auth"
)

// SubscribePath is the platform socket endpoint path.
const SubscribePath = "/platform/subscribe"

// NormalizeBaseURL strips the query string and any trailing slash from a
// base URL. It is idempotent.
func NormalizeBaseURL(base string) string {
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return strings.TrimRight(base, "/")
}

// SocketURL derives the platform socket URL from a base URL by mapping
// the scheme (http→ws, https→wss; ws/wss pass through) and appending
// the subscribe path.
func SocketURL(base string) (string, error) {
	u, err := url.Parse(NormalizeBaseURL(base))
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already a socket scheme.
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path += SubscribePath
	return u.String(), nil
}

// TokenURL returns the explicit token URL if set, otherwise the default
// endpoint under the base URL.
func TokenURL(base, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return NormalizeBaseURL(base) + auth.DefaultTokenPath
}
