package classify

import "strings"

// DefaultDistractions is the built-in distraction list.
var DefaultDistractions = []string{
	"youtube.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"reddit.com",
	"tiktok.com",
	"netflix.com",
	"twitch.tv",
	"9gag.com",
}

// DistractionList is an immutable set of distracting hostnames.
// Matching is exact on the normalized hostname: "notyoutube.com" and
// "youtube.com.evil.io" are not distractions.
type DistractionList struct {
	set map[string]struct{}
}

// NewDistractionList normalizes domains (lowercase, no leading "www.") and
// builds the set. Empty entries are ignored.
func NewDistractionList(domains []string) *DistractionList {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return &DistractionList{set: set}
}

// IsDistracting reports whether rawURL's hostname is on the list.
func (l *DistractionList) IsDistracting(rawURL string) bool {
	host, ok := Hostname(rawURL)
	if !ok {
		return false
	}
	return l.ContainsHost(host)
}

// ContainsHost reports whether an already-normalized hostname is listed.
func (l *DistractionList) ContainsHost(host string) bool {
	_, ok := l.set[host]
	return ok
}

// Len returns the number of listed domains.
func (l *DistractionList) Len() int {
	return len(l.set)
}
