package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/domain/nudge"
	"github.com/corey/tabwarden/internal/domain/session"
	"github.com/corey/tabwarden/internal/ports"
)

// ErrQueueFull is returned by Submit when the dispatcher is saturated.
var ErrQueueFull = errors.New("event queue full")

// Submit queues ev for the dispatcher without waiting for it to be handled.
func (a *App) Submit(ev ports.Event) error {
	if !ev.Valid() {
		return fmt.Errorf("unknown event kind: %q", ev.Kind)
	}
	if ev.Time.IsZero() {
		ev.Time = a.now()
	}
	select {
	case a.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// EventCount returns the number of events handled since start.
func (a *App) EventCount() uint64 {
	return a.eventCount.Load()
}

// dispatch is the single consumer of the event queue. Every event is
// handled to completion before the next is taken.
func (a *App) dispatch(ctx context.Context) error {
	log := a.log.Named("dispatcher")
	for {
		select {
		case <-ctx.Done():
			if n := len(a.events); n > 0 {
				log.Debug("dropping queued events at shutdown", zap.Int("count", n))
			}
			return nil
		case ev := <-a.events:
			a.handle(ctx, ev)
		}
	}
}

func (a *App) handle(ctx context.Context, ev ports.Event) {
	defer a.eventCount.Add(1)
	a.log.Debug("event",
		zap.String("kind", string(ev.Kind)),
		zap.String("id", ev.ID),
		zap.Int("tab", ev.TabID))

	switch ev.Kind {
	case ports.EventTabActivated:
		a.tabs.apply(ev)
		a.recordSwitch(ctx, ev.Time)
		a.foreground(ctx, ev.TabID)

	case ports.EventTabUpdated:
		a.tabs.apply(ev)
		if ev.Status == ports.TabStatusComplete && ev.Active {
			a.foreground(ctx, ev.TabID)
		}

	case ports.EventTabRemoved:
		a.tabs.apply(ev)

	case ports.EventFocusChanged:
		a.tabs.apply(ev)
		tab, err := a.tabs.ActiveTab(ctx)
		if err != nil {
			// Browser lost focus: whatever was in front is no longer watched.
			if f := a.tracker.Flush(); f != nil {
				a.recordDistraction(ctx, *f)
			}
			return
		}
		a.observe(ctx, tab.URL)

	case ports.EventStorageChanged:
		a.applyStorageChanges(ev.Changes)

	case ports.EventTimerFired:
		switch ev.Timer {
		case ports.TimerSprint:
			a.completeSprint(ctx)
		case ports.TimerCleanup:
			a.cleanup(ctx)
		default:
			a.log.Warn("unknown timer", zap.String("timer", ev.Timer))
		}
	}
}

// foreground resolves tabID to its URL and observes it.
func (a *App) foreground(ctx context.Context, tabID int) {
	tab, err := a.tabs.GetTab(ctx, tabID)
	if err != nil {
		a.log.Debug("foreground tab unknown", zap.Int("tab", tabID), zap.Error(err))
		return
	}
	a.observe(ctx, tab.URL)
}

// observe feeds a foreground URL to the session tracker and acts on what it
// reports: a finished session is committed, a drift starts a nudge.
func (a *App) observe(ctx context.Context, url string) {
	obs := a.tracker.Observe(url)
	if obs.Flush != nil {
		a.recordDistraction(ctx, *obs.Flush)
	}
	if obs.Transition != nil {
		a.startNudge(ctx, *obs.Transition)
	}
}

// startNudge runs the nudge chain off the dispatcher so a slow remote call
// never holds up event handling. The pipeline drops transitions that
// arrive while one is in flight.
func (a *App) startNudge(ctx context.Context, tr session.Transition) {
	tel := a.telemetry(ctx)
	a.background.Add(1)
	go func() {
		defer a.background.Done()
		a.runNudge(ctx, tr, tel)
	}()
}

func (a *App) runNudge(ctx context.Context, tr session.Transition, tel nudge.Telemetry) {
	res, ok := a.pipeline.Nudge(ctx, nudge.Request{FromURL: tr.FromURL, ToURL: tr.ToURL, Telemetry: tel})
	now := a.now()

	a.updateInsights(ctx, func(ins *nudge.Insights) {
		ins.LastClassification = &nudge.Classification{
			Site:      tr.To,
			Class:     a.sites.Classify(tr.To),
			Timestamp: now.UnixMilli(),
		}
		ins.LastDistractionFlow = &nudge.Flow{From: tr.FromURL, To: tr.ToURL, Timestamp: now.UnixMilli()}
		if ok {
			ins.LastNudge = &res
		}
		ins.GeminiUsage = a.pipeline.Usage()
	})
	if !ok {
		return
	}

	a.metrics.RecordNudge(ctx, string(res.Source))
	if !a.alerts.Gated(focusAlertTitle, res.Text) {
		a.log.Debug("focus alert suppressed by cooldown", zap.String("to", tr.To))
	}
}

// onStoreChange forwards sprint toggles to the dispatcher. It runs inside
// Store.Set, possibly on the dispatcher goroutine, so it must not block.
func (a *App) onStoreChange(changes []ports.Change) {
	var relevant []ports.Change
	for _, c := range changes {
		if c.Key == ports.KeySprintActive {
			relevant = append(relevant, c)
		}
	}
	if len(relevant) == 0 {
		return
	}
	if err := a.Submit(ports.Event{Kind: ports.EventStorageChanged, Changes: relevant}); err != nil {
		a.log.Warn("storage change dropped", zap.Error(err))
	}
}

func (a *App) applyStorageChanges(changes []ports.Change) {
	for _, c := range changes {
		if c.Key != ports.KeySprintActive {
			continue
		}
		var active bool
		if len(c.New) > 0 {
			if err := json.Unmarshal(c.New, &active); err != nil {
				a.log.Warn("bad sprintActive value", zap.ByteString("value", c.New), zap.Error(err))
				continue
			}
		}
		if active {
			a.startSprint()
		} else {
			a.sprint.stop()
		}
	}
}

// onFeedEvent is the tailer callback.
func (a *App) onFeedEvent(ev *ports.Event) {
	if err := a.Submit(*ev); err != nil {
		a.log.Warn("feed event dropped", zap.String("id", ev.ID), zap.Error(err))
	}
}
