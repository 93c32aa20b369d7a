package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/domain/points"
	"github.com/corey/tabwarden/internal/ports"
)

const focusAlertTitle = "⚠️ Focus Alert"

// schedule delivers the hourly maintenance tick to the dispatcher. It is
// unrelated to the UTC day rollover, which happens on the first write of a
// new day.
func (a *App) schedule(ctx context.Context) error {
	t := time.NewTicker(a.Settings().Activity.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := a.Submit(ports.Event{Kind: ports.EventTimerFired, Timer: ports.TimerCleanup}); err != nil {
				a.log.Warn("cleanup tick dropped", zap.Error(err))
			}
		}
	}
}

// cleanup clears the in-memory switch window and its persisted count.
func (a *App) cleanup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.switches.Reset()
	if err := a.putLocked(ctx, ports.KeyTabSwitchCount, 0); err != nil {
		a.log.Error("reset tab switch count", zap.Error(err))
		return
	}
	a.log.Debug("tab switch window cleared")
}

// recordSwitch counts one tab activation at its event time. Excessive
// switching raises a focus alert through the shared cooldown.
func (a *App) recordSwitch(ctx context.Context, at time.Time) {
	if at.IsZero() {
		at = a.now()
	}
	a.mu.Lock()
	count := a.switches.RecordAt(at)
	excessive := a.switches.Excessive(count)
	window := a.switches.Window()
	err := a.putLocked(ctx, ports.KeyTabSwitchCount, count)
	a.mu.Unlock()

	if err != nil {
		a.log.Error("persist tab switch count", zap.Error(err))
	}
	if !excessive {
		return
	}
	msg := fmt.Sprintf("You've switched tabs %d times in %d minutes. Pick one task and stay with it.",
		count, int(window/time.Minute))
	if a.alerts.Gated(focusAlertTitle, msg) {
		a.metrics.RecordAdvisory(ctx, string(points.AdvisorySwitching), 0)
	}
}

// putLocked writes a single key.
func (a *App) putLocked(ctx context.Context, key string, v any) error {
	rec := ports.Record{}
	if err := rec.Put(key, v); err != nil {
		return err
	}
	return a.Store.Set(ctx, rec)
}
