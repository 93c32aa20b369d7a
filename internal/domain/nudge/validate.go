package nudge

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Length bounds for an acceptable generated nudge, in characters.
const (
	MinLength = 10
	MaxLength = 120
)

var (
	ErrEmpty       = errors.New("nudge is empty")
	ErrLength      = errors.New("nudge length out of range")
	ErrContainsURL = errors.New("nudge contains a link")
	ErrHedge       = errors.New("nudge reads as a hedge or apology")
)

// hedges are openers that mark a refusal or an apology rather than a nudge.
var hedges = []string{
	"i'm sorry",
	"i am sorry",
	"sorry,",
	"i apologize",
	"apologies",
	"as an ai",
	"i cannot help",
	"i cannot assist",
	"i cannot provide",
	"i can't help",
	"i can't assist",
	"i can't provide",
	"i'm unable",
	"i am unable",
	"unfortunately,",
}

// Validate checks raw generator output before post-processing.
func Validate(text string) error {
	t := strings.TrimSpace(text)
	if t == "" {
		return ErrEmpty
	}
	if n := utf8.RuneCountInString(t); n < MinLength || n > MaxLength {
		return fmt.Errorf("%w: %d", ErrLength, n)
	}
	lower := strings.ToLower(t)
	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") {
		return ErrContainsURL
	}
	opener := strings.ReplaceAll(lower, "’", "'")
	for _, h := range hedges {
		if strings.HasPrefix(opener, h) {
			return fmt.Errorf("%w: %q", ErrHedge, h)
		}
	}
	return nil
}

var quoteReplacer = strings.NewReplacer(
	`"`, "",
	"“", "",
	"”", "",
	"`", "",
)

// PostProcess normalizes validated text: quotes and line breaks removed,
// whitespace collapsed, and from guaranteed to appear literally. When
// decorate is non-empty it is appended as a trailing symbol.
func PostProcess(text, from, decorate string) string {
	t := quoteReplacer.Replace(text)
	t = strings.Trim(strings.TrimSpace(t), "'‘’")
	t = strings.Join(strings.Fields(t), " ")

	if from != "" && !strings.Contains(strings.ToLower(t), strings.ToLower(from)) {
		t = strings.TrimRight(t, ".!") + ". Back to " + from + "!"
	}
	if decorate != "" {
		t += " " + decorate
	}
	return t
}
