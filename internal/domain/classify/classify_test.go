package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Hostname normalization
// =============================================================================

func TestHostname(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=abc", "youtube.com", true},
		{"http://WWW.Reddit.com/r/golang", "reddit.com", true},
		{"https://docs.google.com/document/d/1", "docs.google.com", true},
		{"https://www.www.example.com", "www.example.com", true},
		{"https://m.youtube.com", "m.youtube.com", true},
		{"", "", false},
		{"not a url", "", false},
		{"://missing-scheme", "", false},
	}
	for _, tc := range cases {
		got, ok := Hostname(tc.in)
		assert.Equal(t, tc.ok, ok, "ok for %q", tc.in)
		assert.Equal(t, tc.want, got, "host for %q", tc.in)
	}
}

func TestIsWeb(t *testing.T) {
	assert.True(t, IsWeb("https://github.com/corey"))
	assert.True(t, IsWeb("HTTP://example.com"))
	assert.False(t, IsWeb("about:blank"))
	assert.False(t, IsWeb("chrome://newtab/"))
	assert.False(t, IsWeb("::::"))
	assert.False(t, IsWeb(""))
}

func TestDomain_UnknownOnGarbage(t *testing.T) {
	assert.Equal(t, Unknown, Domain("::::"))
	assert.Equal(t, "github.com", Domain("https://github.com/corey"))
}

// =============================================================================
// Distraction list: exact hostname match only
// =============================================================================

func TestDistractionList_ExactMatch(t *testing.T) {
	l := NewDistractionList([]string{"YouTube.com", "www.reddit.com", " "})
	assert.Equal(t, 2, l.Len())

	assert.True(t, l.IsDistracting("https://www.youtube.com/watch?v=1"))
	assert.True(t, l.IsDistracting("https://reddit.com/r/all"))

	assert.False(t, l.IsDistracting("https://notyoutube.com"), "substring must not match")
	assert.False(t, l.IsDistracting("https://youtube.com.evil.io"), "suffix must not match")
	assert.False(t, l.IsDistracting("https://music.youtube.com"), "subdomains are distinct hosts")
	assert.False(t, l.IsDistracting("garbage"))
}

func TestDefaultDistractions(t *testing.T) {
	l := NewDistractionList(DefaultDistractions)
	assert.True(t, l.ContainsHost("twitch.tv"))
	assert.False(t, l.ContainsHost("github.com"))
}

// =============================================================================
// Site classifier: known sites, keyword fallback, 4h cache
// =============================================================================

func TestSiteClassifier_KnownSites(t *testing.T) {
	c := NewSiteClassifier(nil)
	assert.Equal(t, ClassFocus, c.Classify("https://www.github.com/corey/tabwarden"))
	assert.Equal(t, ClassDistraction, c.Classify("netflix.com"))
	assert.Equal(t, ClassNeutral, c.Classify("example.org"))
	assert.Equal(t, ClassNeutral, c.Classify(""))
}

func TestSiteClassifier_KeywordFallback(t *testing.T) {
	c := NewSiteClassifier(nil)
	assert.Equal(t, ClassFocus, c.Classify("learn.microsoft.com"))
	assert.Equal(t, ClassDistraction, c.Classify("somegame.io"))
}

func TestSiteClassifier_CacheExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewSiteClassifier(func() time.Time { return now })

	assert.Equal(t, ClassNeutral, c.Classify("example.org"))

	// Poison the cache entry to prove the cached value is served.
	c.mu.Lock()
	c.cache["example.org"] = siteEntry{class: ClassFocus, at: now}
	c.mu.Unlock()
	assert.Equal(t, ClassFocus, c.Classify("example.org"))

	now = now.Add(SiteCacheTTL)
	assert.Equal(t, ClassNeutral, c.Classify("example.org"), "expired entry is recomputed")
}

// =============================================================================
// Context inference
// =============================================================================

// substringMatcher is a test double for ports.PatternMatcher.
type substringMatcher struct{ keywords []string }

func (m *substringMatcher) Rebuild(keywords []string) error {
	m.keywords = append([]string(nil), keywords...)
	return nil
}

func (m *substringMatcher) Match(content string) []string {
	var out []string
	for _, kw := range m.keywords {
		if strings.Contains(content, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func TestContextInferrer(t *testing.T) {
	inf, err := NewContextInferrer(&substringMatcher{})
	require.NoError(t, err)

	cases := map[string]Context{
		"docs.google.com":         ContextDocument,
		"notion.so":               ContextDocument,
		"github.com":              ContextCoding,
		"gitlab.com":              ContextCoding,
		"jstor.org":               ContextResearch,
		"coursera.org":            ContextLearning,
		"learn.microsoft.com":     ContextLearning,
		"figma.com":               ContextCreative,
		"mail.google.com":         ContextCommunication,
		"messages.google.com":     ContextCommunication,
		"example.com":             ContextGeneral,
		"https://www.github.com/": ContextCoding,
	}
	for host, want := range cases {
		assert.Equal(t, want, inf.Infer(host), host)
	}
}

func TestContextInferrer_FirstRuleWins(t *testing.T) {
	inf, err := NewContextInferrer(&substringMatcher{})
	require.NoError(t, err)
	// Both "github" (coding) and "docs" (document) match; document is checked first.
	assert.Equal(t, ContextDocument, inf.Infer("docs.github.com"))
}
