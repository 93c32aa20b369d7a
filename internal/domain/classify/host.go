// Package classify turns browser URLs into normalized hostnames and decides
// what kind of destination they are: distracting (fixed list, exact match),
// a coarse focus/distraction/neutral site class, and the work context used
// to phrase nudges.
package classify

import (
	"net/url"
	"strings"
)

// Unknown is the domain recorded for URLs that cannot be parsed.
const Unknown = "unknown"

// Hostname returns the lowercased host of rawURL with a single leading
// "www." label stripped. The second return is false when rawURL has no
// parseable host (about:blank, chrome://newtab, garbage).
func Hostname(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return strings.TrimPrefix(host, "www."), true
}

// Domain is Hostname with Unknown substituted for unparseable input.
func Domain(rawURL string) string {
	if h, ok := Hostname(rawURL); ok {
		return h
	}
	return Unknown
}

// IsWeb reports whether rawURL is an http or https page with a host.
// Browser-internal pages (about:blank, chrome://newtab) are not.
func IsWeb(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
