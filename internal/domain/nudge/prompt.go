package nudge

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/corey/tabwarden/internal/ports"
)

// SystemPrompt frames every remote generation.
const SystemPrompt = "You are a focus coach that generates short, empathetic nudges to help people stay productive."

// DefaultGenerateConfig holds the sampling parameters for nudge generation.
var DefaultGenerateConfig = ports.GenerateConfig{
	SystemPrompt: SystemPrompt,
	Temperature:  0.7,
	MaxTokens:    50,
}

// Telemetry is the live state embedded in the prompt.
type Telemetry struct {
	Streak       int
	Balance      int
	TopDomains   []string // today's most distracting domains, worst first
	SprintActive bool
	Now          time.Time
}

// BuildPrompt renders the generation prompt for a from -> to drift.
func BuildPrompt(from, to string, ctx classify.Context, t Telemetry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a short (15-30 word) motivational nudge to help someone return from %s to their %s work on %s.\n", to, ctx, from)
	fmt.Fprintf(&b, "It is %s. ", timeOfDay(t.Now))
	fmt.Fprintf(&b, "They have a %d-day focus streak and %d focus points.", t.Streak, t.Balance)
	if t.SprintActive {
		b.WriteString(" They are in the middle of a focus sprint.")
	}
	if len(t.TopDomains) > 0 {
		fmt.Fprintf(&b, " Today's biggest distractions: %s.", strings.Join(t.TopDomains, ", "))
	}
	b.WriteString("\nMake it empathetic and encouraging, mention ")
	b.WriteString(from)
	b.WriteString(" by name, and reply with the nudge only. No links.")
	return b.String()
}

func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	case h >= 17 && h < 22:
		return "evening"
	default:
		return "late at night"
	}
}
