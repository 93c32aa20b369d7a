package nudge

import "github.com/corey/tabwarden/internal/domain/classify"

// Insights is the persisted aiInsights document: what the engine last
// concluded, for the dashboard and the CLI.
type Insights struct {
	LastClassification  *Classification `json:"lastClassification,omitempty"`
	LastNudge           *Result         `json:"lastNudge,omitempty"`
	LastDistractionFlow *Flow           `json:"lastDistractionFlow,omitempty"`
	GeminiUsage         Usage           `json:"geminiUsage"`
}

// Classification is the most recent site label.
type Classification struct {
	Site      string             `json:"site"`
	Class     classify.SiteClass `json:"class"`
	Timestamp int64              `json:"timestamp"`
}

// Flow is the most recent productive -> distracting transition.
type Flow struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp int64  `json:"timestamp"`
}
