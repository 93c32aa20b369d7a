package nudge

import (
	"strings"

	"github.com/corey/tabwarden/internal/domain/classify"
)

var fallbackTemplates = map[classify.Context][]string{
	classify.ContextDocument: {
		"Your document on {from} is waiting to be finished",
		"You were editing {from} - just a few more changes?",
	},
	classify.ContextCoding: {
		"Your code on {from} needs your magic",
		"You're in the zone! Stay with {from}",
	},
	classify.ContextResearch: {
		"Your research on {from} was getting interesting",
		"Those sources on {from} won't analyze themselves",
	},
	classify.ContextLearning: {
		"Your lesson on {from} was almost complete",
		"That concept on {from} needs more practice",
	},
	classify.ContextCreative: {
		"Your creative flow on {from} was inspiring",
		"{from} holds your unfinished masterpiece",
	},
	classify.ContextCommunication: {
		"Your conversation on {from} needs your reply",
		"People are waiting for you on {from}",
	},
	classify.ContextGeneral: {
		"You were doing great work on {from}",
		"Ready to pick up where you left off on {from}?",
	},
}

// Fallback picks a template for ctx using pick (which must return a value
// in [0, n)) and substitutes from. Unknown contexts use the general table.
func Fallback(ctx classify.Context, from string, pick func(n int) int) string {
	list, ok := fallbackTemplates[ctx]
	if !ok {
		list = fallbackTemplates[classify.ContextGeneral]
	}
	return strings.ReplaceAll(list[pick(len(list))], "{from}", from)
}
