// Package netx builds the URLs the client dials.
package netx

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL appends a resource path to base, keeping the base path prefix
// (e.g. "/api") and the trailing slash the backend routes expect, and encodes
// query when it is non-empty.
func ResolveURL(base, path string, query url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", base)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// WebsocketBase derives a websocket base from the REST base by swapping the
// scheme and replacing a trailing "/api" segment with "/ws".
func WebsocketBase(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	p := strings.TrimRight(u.Path, "/")
	p = strings.TrimSuffix(p, "/api")
	u.Path = p + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}
