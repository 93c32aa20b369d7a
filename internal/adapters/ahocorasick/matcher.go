// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching.
package ahocorasick

import (
	"errors"
	"sync"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// ErrEmptyKeyword is returned by Rebuild when a keyword is "".
var ErrEmptyKeyword = errors.New("ahocorasick: empty keyword")

// Matcher implements ports.PatternMatcher. Safe for concurrent use:
// Rebuild swaps the automaton under a write lock.
type Matcher struct {
	mu        sync.RWMutex
	automaton aho.AhoCorasick
	keywords  []string
}

// NewMatcher builds a matcher over keywords.
func NewMatcher(keywords []string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.Rebuild(keywords); err != nil {
		return nil, err
	}
	return m, nil
}

// Rebuild replaces the automaton with a new set of keywords.
func (m *Matcher) Rebuild(keywords []string) error {
	for _, kw := range keywords {
		if kw == "" {
			return ErrEmptyKeyword
		}
	}
	kws := make([]string, len(keywords))
	copy(kws, keywords)

	var automaton aho.AhoCorasick
	if len(kws) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		automaton = builder.Build(kws)
	}

	m.mu.Lock()
	m.automaton = automaton
	m.keywords = kws
	m.mu.Unlock()
	return nil
}

// Match returns the distinct keywords found in content, in order of first
// occurrence. Overlapping keywords ("learn" inside "elearning") are all
// reported.
func (m *Matcher) Match(content string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.keywords) == 0 || content == "" {
		return nil
	}

	iter := m.automaton.IterOverlappingByte([]byte(content))
	seen := make(map[int]bool)
	var result []string
	for next := iter.Next(); next != nil; next = iter.Next() {
		p := next.Pattern()
		if !seen[p] {
			seen[p] = true
			result = append(result, m.keywords[p])
		}
	}
	return result
}

// Len returns the number of keywords in the automaton.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keywords)
}
