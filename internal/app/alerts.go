package app

import (
	"sync"
	"time"

	"github.com/corey/tabwarden/internal/domain/status"
	"github.com/corey/tabwarden/internal/ports"
)

// alertGate sits in front of the notification sink. Focus alerts and
// excessive-switching warnings share one cooldown; engine advisories are
// always shown. Either way the last alert is kept for the status snapshot.
type alertGate struct {
	sink ports.Notifier
	now  func() time.Time

	mu       sync.Mutex
	cooldown time.Duration
	lastGate time.Time
	last     *status.Alert
}

func newAlertGate(sink ports.Notifier, cooldown time.Duration, now func() time.Time) *alertGate {
	return &alertGate{sink: sink, cooldown: cooldown, now: now}
}

// Gated shows the alert unless another gated alert went out within the
// cooldown. It reports whether the alert was shown.
func (g *alertGate) Gated(title, message string) bool {
	g.mu.Lock()
	now := g.now()
	if !g.lastGate.IsZero() && now.Sub(g.lastGate) < g.cooldown {
		g.mu.Unlock()
		return false
	}
	g.lastGate = now
	g.last = &status.Alert{Title: title, Message: message, At: now}
	g.mu.Unlock()

	g.sink.Show(title, message)
	return true
}

// Show always shows the alert.
func (g *alertGate) Show(title, message string) {
	g.mu.Lock()
	g.last = &status.Alert{Title: title, Message: message, At: g.now()}
	g.mu.Unlock()
	g.sink.Show(title, message)
}

// Last returns a copy of the most recent alert, or nil.
func (g *alertGate) Last() *status.Alert {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return nil
	}
	a := *g.last
	return &a
}

// SetCooldown applies a reloaded cooldown.
func (g *alertGate) SetCooldown(d time.Duration) {
	g.mu.Lock()
	g.cooldown = d
	g.mu.Unlock()
}
