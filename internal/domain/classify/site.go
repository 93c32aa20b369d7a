package classify

import (
	"strings"
	"sync"
	"time"
)

// SiteClass is the coarse classification shown in insights.
type SiteClass string

const (
	ClassFocus       SiteClass = "focus"
	ClassDistraction SiteClass = "distraction"
	ClassNeutral     SiteClass = "neutral"
)

// SiteCacheTTL is how long a classification is reused.
const SiteCacheTTL = 4 * time.Hour

var (
	focusSites = map[string]bool{
		"notion.so": true, "docs.google.com": true, "github.com": true,
		"stackoverflow.com": true, "khanacademy.org": true, "leetcode.com": true,
		"coursera.org": true, "edx.org": true,
	}
	distractionSites = map[string]bool{
		"youtube.com": true, "reddit.com": true, "netflix.com": true,
		"tiktok.com": true, "instagram.com": true, "twitter.com": true,
		"facebook.com": true, "twitch.tv": true,
	}

	focusKeywords       = []string{"docs", "work", "study", "learn", "code", "git", "notion"}
	distractionKeywords = []string{"watch", "video", "game", "social", "fun", "tube", "tok"}
)

type siteEntry struct {
	class SiteClass
	at    time.Time
}

// SiteClassifier labels a site as focus, distraction or neutral using a
// known-site table first and a keyword heuristic second. Results are cached
// for SiteCacheTTL. Safe for concurrent use.
type SiteClassifier struct {
	now func() time.Time

	mu    sync.Mutex
	cache map[string]siteEntry
}

// NewSiteClassifier returns a classifier using now as its clock
// (time.Now when nil).
func NewSiteClassifier(now func() time.Time) *SiteClassifier {
	if now == nil {
		now = time.Now
	}
	return &SiteClassifier{now: now, cache: make(map[string]siteEntry)}
}

// Classify accepts a URL, a bare hostname, or a page title.
func (c *SiteClassifier) Classify(input string) SiteClass {
	key := sanitizeSite(input)
	if key == "" {
		return ClassNeutral
	}

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[key]; ok && now.Sub(e.at) < SiteCacheTTL {
		return e.class
	}

	class := classifySite(key)
	c.cache[key] = siteEntry{class: class, at: now}
	return class
}

func classifySite(key string) SiteClass {
	if focusSites[key] {
		return ClassFocus
	}
	if distractionSites[key] {
		return ClassDistraction
	}
	for _, kw := range focusKeywords {
		if strings.Contains(key, kw) {
			return ClassFocus
		}
	}
	for _, kw := range distractionKeywords {
		if strings.Contains(key, kw) {
			return ClassDistraction
		}
	}
	return ClassNeutral
}

// sanitizeSite strips scheme, "www." and any path, then lowercases.
func sanitizeSite(input string) string {
	s := strings.TrimSpace(strings.ToLower(input))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
