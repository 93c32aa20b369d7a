package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/domain/nudge"
	"github.com/corey/tabwarden/internal/domain/points"
	"github.com/corey/tabwarden/internal/domain/session"
	"github.com/corey/tabwarden/internal/domain/stats"
	"github.com/corey/tabwarden/internal/domain/status"
	"github.com/corey/tabwarden/internal/ports"
)

// InitializeStorage writes the day-zero defaults when the store has never
// been initialized, and performs a pending day rollover otherwise.
func (a *App) InitializeStorage(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := a.Store.Get(ctx, ports.KeyLastReset)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	now := a.now()
	if !rec.Has(ports.KeyLastReset) {
		if err := a.writeDayZeroLocked(ctx, now); err != nil {
			return fmt.Errorf("initialize storage: %w", err)
		}
		a.log.Info("storage initialized", zap.String("date", stats.DateKey(now)))
		return nil
	}

	l, err := a.loadLedger(ctx)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if stats.NeedsRollover(l.LastReset, now) {
		if err := a.rolloverLocked(ctx, l, now); err != nil {
			return fmt.Errorf("initialize storage: %w", err)
		}
	}
	return nil
}

func (a *App) writeDayZeroLocked(ctx context.Context, now time.Time) error {
	l := &ledger{
		Stats:     stats.Aggregate{},
		Trend:     stats.Trend{},
		LastReset: stats.DateKey(now),
		Account:   points.NewAccount(a.engine.Rules(), now),
	}
	rec, err := l.record()
	if err != nil {
		return err
	}
	if err := rec.Put(ports.KeyTabSwitchCount, 0); err != nil {
		return err
	}
	if err := rec.Put(ports.KeySprintActive, false); err != nil {
		return err
	}
	if err := rec.Put(ports.KeyAIInsights, nudge.Insights{}); err != nil {
		return err
	}
	return a.Store.Set(ctx, rec)
}

// rolloverLocked archives the finished day into the trend, clears the
// daily counters and re-floors the balance, then writes everything back.
func (a *App) rolloverLocked(ctx context.Context, l *ledger, now time.Time) error {
	prev := l.LastReset
	archived := l.Stats.TotalToday()
	l.Trend = stats.Rollover(l.Stats, l.Trend, l.LastReset)
	l.Account = l.Account.Rollover(a.engine.Rules())
	l.LastReset = stats.DateKey(now)

	rec, err := l.record()
	if err != nil {
		return err
	}
	if err := a.Store.Set(ctx, rec); err != nil {
		return err
	}
	a.log.Info("day rollover",
		zap.String("from", prev),
		zap.String("to", l.LastReset),
		zap.Int64("archived_ms", archived),
		zap.Int("balance", l.Account.Balance))
	a.writeStatusLocked(l)
	return nil
}

// recordDistraction commits one flushed session and runs the rule engine
// over the new daily total. When the day has turned since the last write,
// the rollover runs instead and the session is not recorded.
//
// Every daily rule reads TotalToday (the sum of today's counters), never
// the lifetime totals.
func (a *App) recordDistraction(ctx context.Context, f session.Flush) {
	a.mu.Lock()
	defer a.mu.Unlock()

	log := a.log.With(zap.String("domain", f.Domain), zap.Duration("duration", f.Duration()))

	l, err := a.loadLedger(ctx)
	if err != nil {
		log.Error("load stats, session dropped", zap.Error(err))
		return
	}
	now := a.now()
	if stats.NeedsRollover(l.LastReset, now) {
		if err := a.rolloverLocked(ctx, l, now); err != nil {
			log.Error("rollover failed", zap.Error(err))
		}
		return
	}

	l.Stats.Record(f.Domain, f.Start, f.End)
	total := l.Stats.TotalToday()
	res := a.engine.Apply(points.Input{
		Account:      l.Account,
		TotalTodayMs: total,
		SprintActive: l.SprintActive,
		Now:          now,
	})
	l.Account = res.Account
	l.Trend = l.Trend.Upsert(stats.DateKey(now), total)

	rec, err := l.record()
	if err == nil {
		err = a.Store.Set(ctx, rec)
	}
	if err != nil {
		log.Error("write stats, session dropped", zap.Error(err))
		return
	}

	log.Debug("session recorded", zap.Int64("today_ms", total), zap.Int("balance", l.Account.Balance))
	a.metrics.RecordFlush(ctx, f.Domain, f.Duration().Milliseconds())
	a.announce(ctx, res.Advisories)
	a.writeStatusLocked(l)
}

// announce shows engine advisories. They bypass the shared alert cooldown.
func (a *App) announce(ctx context.Context, advs []points.Advisory) {
	for _, adv := range advs {
		a.metrics.RecordAdvisory(ctx, string(adv.Kind), adv.Points)
		a.alerts.Show(adv.Title, adv.Message)
	}
}

// telemetry snapshots the live numbers embedded in a nudge prompt.
func (a *App) telemetry(ctx context.Context) nudge.Telemetry {
	t := nudge.Telemetry{Now: a.now()}
	a.mu.Lock()
	l, err := a.loadLedger(ctx)
	a.mu.Unlock()
	if err != nil {
		a.log.Warn("load telemetry", zap.Error(err))
		return t
	}
	t.Streak = l.Account.Streak
	t.Balance = l.Account.Balance
	t.SprintActive = l.SprintActive
	for _, d := range l.Stats.Top(3) {
		t.TopDomains = append(t.TopDomains, d.Domain)
	}
	return t
}

// loadInsights reads the aiInsights document.
func (a *App) loadInsights(ctx context.Context) (nudge.Insights, error) {
	var ins nudge.Insights
	rec, err := a.Store.Get(ctx, ports.KeyAIInsights)
	if err != nil {
		return ins, err
	}
	_, err = rec.Decode(ports.KeyAIInsights, &ins)
	return ins, err
}

// updateInsights applies fn to the persisted aiInsights document.
func (a *App) updateInsights(ctx context.Context, fn func(*nudge.Insights)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ins, err := a.loadInsights(ctx)
	if err != nil {
		a.log.Error("load insights", zap.Error(err))
		return
	}
	fn(&ins)
	rec := ports.Record{}
	if err := rec.Put(ports.KeyAIInsights, ins); err != nil {
		a.log.Error("encode insights", zap.Error(err))
		return
	}
	if err := a.Store.Set(ctx, rec); err != nil {
		a.log.Error("write insights", zap.Error(err))
	}
}

// restoreUsage seeds the pipeline's usage counters from the store.
func (a *App) restoreUsage(ctx context.Context) {
	ins, err := a.loadInsights(ctx)
	if err != nil {
		a.log.Warn("restore generator usage", zap.Error(err))
		return
	}
	a.pipeline.RestoreUsage(ins.GeminiUsage)
}

// snapshot builds the status view of l.
func (a *App) snapshot(l *ledger) *status.StatusData {
	in := status.Input{
		Account:      l.Account,
		Stats:        l.Stats,
		SprintActive: l.SprintActive,
		LastAlert:    a.alerts.Last(),
		Now:          a.now(),
	}
	if s, ok := a.tracker.Current(); ok {
		in.Distracted = s.Domain
	}
	return status.Generate(in)
}

// writeStatusLocked refreshes status.json. Failures are logged only.
func (a *App) writeStatusLocked(l *ledger) {
	if err := status.WriteJSON(a.Paths.Status, a.snapshot(l)); err != nil {
		a.log.Warn("write status file", zap.Error(err))
	}
}
