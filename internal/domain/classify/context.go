package classify

import (
	"fmt"
	"strings"

	"github.com/corey/tabwarden/internal/ports"
)

// Context is the inferred kind of work the user was doing on a site.
type Context string

const (
	ContextDocument      Context = "document"
	ContextCoding        Context = "coding"
	ContextResearch      Context = "research"
	ContextLearning      Context = "learning"
	ContextCreative      Context = "creative"
	ContextCommunication Context = "communication"
	ContextGeneral       Context = "general"
)

// contextRule maps hostname keywords to a context. Rules are checked in
// order; the first rule with any matching keyword wins.
type contextRule struct {
	ctx      Context
	keywords []string
}

var contextRules = []contextRule{
	{ContextDocument, []string{"docs", "notion"}},
	{ContextCoding, []string{"github", "gitlab"}},
	{ContextResearch, []string{"jstor", "research"}},
	{ContextLearning, []string{"coursera", "learn"}},
	{ContextCreative, []string{"figma", "canva"}},
	{ContextCommunication, []string{"mail", "messag"}},
}

// ContextInferrer infers a Context from a hostname with one multi-pattern
// scan instead of a substring check per keyword.
type ContextInferrer struct {
	matcher ports.PatternMatcher
	rank    map[string]int // keyword -> rule index
}

// NewContextInferrer loads the keyword table into m.
func NewContextInferrer(m ports.PatternMatcher) (*ContextInferrer, error) {
	rank := make(map[string]int)
	var keywords []string
	for i, r := range contextRules {
		for _, kw := range r.keywords {
			rank[kw] = i
			keywords = append(keywords, kw)
		}
	}
	if err := m.Rebuild(keywords); err != nil {
		return nil, fmt.Errorf("build context matcher: %w", err)
	}
	return &ContextInferrer{matcher: m, rank: rank}, nil
}

// Infer returns the context for host (a hostname or URL). Unmatched hosts
// are ContextGeneral.
func (c *ContextInferrer) Infer(host string) Context {
	if h, ok := Hostname(host); ok {
		host = h
	}
	best := len(contextRules)
	for _, kw := range c.matcher.Match(strings.ToLower(host)) {
		if i, ok := c.rank[kw]; ok && i < best {
			best = i
		}
	}
	if best == len(contextRules) {
		return ContextGeneral
	}
	return contextRules[best].ctx
}
