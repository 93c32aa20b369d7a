package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/corey/tabwarden/internal/ports"
)

var _ ports.PatternMatcher = (*Matcher)(nil)

func TestMatcher_SingleKeyword(t *testing.T) {
	m, err := NewMatcher([]string{"docs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, m.Match("docs.google.com"))
}

func TestMatcher_MultipleKeywords(t *testing.T) {
	m, err := NewMatcher([]string{"mail", "github", "learn"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"github", "learn"}, m.Match("learn.github.com"))
}

func TestMatcher_OverlappingKeywords(t *testing.T) {
	// "messag" sits inside "messages"; both it and "mess" are reported.
	m, err := NewMatcher([]string{"mess", "messag"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mess", "messag"}, m.Match("messages.google.com"))
}

func TestMatcher_DedupRepeated(t *testing.T) {
	m, err := NewMatcher([]string{"docs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, m.Match("docs.docs.example"))
}

func TestMatcher_NoMatch(t *testing.T) {
	m, err := NewMatcher([]string{"figma"})
	require.NoError(t, err)
	assert.Nil(t, m.Match("youtube.com"))
	assert.Nil(t, m.Match(""))
}

func TestMatcher_Rebuild(t *testing.T) {
	m, err := NewMatcher([]string{"notion"})
	require.NoError(t, err)

	require.NoError(t, m.Rebuild([]string{"canva"}))
	assert.Nil(t, m.Match("notion.so"), "old keywords no longer match")
	assert.Equal(t, []string{"canva"}, m.Match("www.canva.com"))
	assert.Equal(t, 1, m.Len())
}

func TestMatcher_RebuildRejectsEmpty(t *testing.T) {
	m, err := NewMatcher([]string{"docs"})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Rebuild([]string{"ok", ""}), ErrEmptyKeyword)
	assert.Equal(t, []string{"docs"}, m.Match("docs.rs"), "failed rebuild keeps the old automaton")
}

func TestMatcher_CaseSensitive(t *testing.T) {
	// Caller normalizes case before matching.
	m, err := NewMatcher([]string{"github"})
	require.NoError(t, err)
	assert.Nil(t, m.Match("GitHub.com"))
}

func TestMatcher_DrivesContextInference(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	ci, err := classify.NewContextInferrer(m)
	require.NoError(t, err)

	assert.Equal(t, classify.ContextDocument, ci.Infer("https://docs.github.com/en"), "earlier rule wins")
	assert.Equal(t, classify.ContextCoding, ci.Infer("gitlab.com"))
	assert.Equal(t, classify.ContextCommunication, ci.Infer("MAIL.google.com"))
	assert.Equal(t, classify.ContextGeneral, ci.Infer("example.org"))
}

func BenchmarkMatch(b *testing.B) {
	m, _ := NewMatcher([]string{"docs", "notion", "github", "gitlab", "jstor", "research", "coursera", "learn", "figma", "canva", "mail", "messag"})
	for i := 0; i < b.N; i++ {
		m.Match("research.docs.university-learning.example.edu")
	}
}
