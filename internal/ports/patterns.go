package ports

// PatternMatcher finds keywords in content using multi-pattern matching (Aho-Corasick).
// A single pass over the content finds all matching keywords simultaneously,
// regardless of how many keywords are in the set.
//
// Used to infer the work context of a hostname ("docs", "github", "mail", ...).
// The keyword set is small and rebuilt only on startup or config reload.
type PatternMatcher interface {
	// Match returns the distinct keywords found in content, in order of
	// first occurrence. Returns nil if no keywords match. Content is
	// matched as-is (caller normalizes case).
	Match(content string) []string

	// Rebuild replaces the entire keyword set and reconstructs the automaton.
	// Returns an error if any keyword is empty.
	Rebuild(keywords []string) error
}
