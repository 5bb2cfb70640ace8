// Package urlcheck canonicalizes user-submitted URLs and verifies, best
// effort, that they are reachable. Normalization is pure; verification talks
// to the network (HEAD, then GET, then a Wayback Machine availability
// lookup) and degrades to "unvalidated" rather than failing the request.
package urlcheck

import (
	"errors"
	"net/url"
	"strings"
)

// Normalization errors.
var (
	// ErrInvalid means the input is empty or does not parse as an
	// absolute HTTP(S) URL.
	ErrInvalid = errors.New("invalid URL")

	// ErrCredentials means the authority carries userinfo.
	ErrCredentials = errors.New("URL contains credentials")
)

// Normalize canonicalizes a raw user-supplied URL string:
// scheme and host are lowercased, a default port is stripped, path case is
// preserved, and "https://" is prepended when the input has no scheme.
// Fragments and query order are preserved.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalid
	}
	if strings.ContainsAny(trimmed, " \t\n") {
		return "", ErrInvalid
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		// No scheme (or a host:port mistaken for one): retry as HTTPS.
		u, err = url.Parse("https://" + trimmed)
		if err != nil {
			return "", ErrInvalid
		}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalid
	}
	if u.User != nil {
		return "", ErrCredentials
	}

	host := strings.ToLower(u.Host)
	if host == "" {
		return "", ErrInvalid
	}
	host = stripDefaultPort(scheme, host)

	hostname := host
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.HasSuffix(host, "]") {
		hostname = host[:i]
	}
	if !strings.Contains(hostname, ".") && hostname != "localhost" {
		return "", ErrInvalid
	}

	u.Scheme = scheme
	u.Host = host
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// stripDefaultPort removes :80 from http hosts and :443 from https hosts.
func stripDefaultPort(scheme, host string) string {
	switch scheme {
	case "http":
		return strings.TrimSuffix(host, ":80")
	case "https":
		return strings.TrimSuffix(host, ":443")
	}
	return host
}
