package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/domain/nudge"
)

// queryTimeout bounds the store access of a single socket or HTTP query.
const queryTimeout = 5 * time.Second

var _ socket.AppQueries = (*App)(nil)

// GeneratorName identifies the remote generator, or "local" when nudges
// come from templates only.
func (a *App) GeneratorName() string {
	if a.gen == nil {
		return "local"
	}
	return a.gen.Name()
}

// Status returns the current status snapshot.
func (a *App) Status() (*socket.StatusResult, error) {
	l, err := a.readLedger()
	if err != nil {
		return nil, err
	}
	return a.snapshot(l), nil
}

// Stats lists every domain with distraction time today.
func (a *App) Stats() (socket.StatsResult, error) {
	l, err := a.readLedger()
	if err != nil {
		return socket.StatsResult{}, err
	}
	domains := l.Stats.Top(0)
	return socket.StatsResult{
		Domains:      domains,
		Count:        len(domains),
		TotalTodayMs: l.Stats.TotalToday(),
	}, nil
}

// Trend returns the daily history, oldest first.
func (a *App) Trend() (socket.TrendResult, error) {
	l, err := a.readLedger()
	if err != nil {
		return socket.TrendResult{}, err
	}
	return socket.TrendResult{Days: l.Trend, Count: len(l.Trend)}, nil
}

// Insights returns the persisted aiInsights document with live usage.
func (a *App) Insights() (socket.InsightsResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	a.mu.Lock()
	ins, err := a.loadInsights(ctx)
	a.mu.Unlock()
	if err != nil {
		return socket.InsightsResult{}, fmt.Errorf("load insights: %w", err)
	}
	ins.GeminiUsage = a.pipeline.Usage()
	return ins, nil
}

// Reset wipes all persisted state and starts over from day zero. The
// in-memory session, switch window and sprint timer are cleared too.
func (a *App) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	a.tracker.Reset()
	a.switches.Reset()
	a.sprint.stop()

	now := a.now()
	if err := a.writeDayZeroLocked(ctx, now); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	a.pipeline.RestoreUsage(nudge.Usage{})
	a.log.Info("state reset")

	if l, err := a.loadLedger(ctx); err == nil {
		a.writeStatusLocked(l)
	}
	return nil
}

// readLedger loads the ledger for a read-only query.
func (a *App) readLedger() (*ledger, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	l, err := a.loadLedger(ctx)
	if err != nil {
		a.log.Warn("query failed", zap.Error(err))
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return l, nil
}
