package app

import (
	"context"

	"github.com/corey/tabwarden/internal/domain/points"
	"github.com/corey/tabwarden/internal/domain/stats"
	"github.com/corey/tabwarden/internal/ports"
)

// ledger is the persisted accounting state read and written as one unit:
// the stats aggregate, the trend, and the points account spread over its
// individual keys.
type ledger struct {
	Stats        stats.Aggregate
	Trend        stats.Trend
	LastReset    string
	Account      points.Account
	SprintActive bool // read-only here; only sprint control writes it
}

type ledgerField struct {
	key string
	ptr any
}

func (l *ledger) fields() []ledgerField {
	return []ledgerField{
		{ports.KeyDistractionStats, &l.Stats},
		{ports.KeyDistractionStatsTrend, &l.Trend},
		{ports.KeyLastReset, &l.LastReset},
		{ports.KeyUserPoints, &l.Account.Balance},
		{ports.KeyTotalPenaltyToday, &l.Account.DailyPenaltyAccrued},
		{ports.KeyLastPenaltyCheck, &l.Account.PenaltyCheckpointMs},
		{ports.KeyLastRewardTime, &l.Account.LastRewardMs},
		{ports.KeyDailyStreak, &l.Account.Streak},
		{ports.KeyLastProductiveDay, &l.Account.LastProductiveDate},
	}
}

var ledgerKeys = []string{
	ports.KeyDistractionStats,
	ports.KeyDistractionStatsTrend,
	ports.KeyLastReset,
	ports.KeyUserPoints,
	ports.KeyTotalPenaltyToday,
	ports.KeyLastPenaltyCheck,
	ports.KeyLastRewardTime,
	ports.KeyDailyStreak,
	ports.KeyLastProductiveDay,
	ports.KeySprintActive,
}

// loadLedger reads the accounting keys. Callers hold a.mu when they intend
// to write the ledger back.
func (a *App) loadLedger(ctx context.Context) (*ledger, error) {
	rec, err := a.Store.Get(ctx, ledgerKeys...)
	if err != nil {
		return nil, err
	}
	l := &ledger{}
	for _, f := range l.fields() {
		if _, err := rec.Decode(f.key, f.ptr); err != nil {
			return nil, err
		}
	}
	if _, err := rec.Decode(ports.KeySprintActive, &l.SprintActive); err != nil {
		return nil, err
	}
	if l.Stats == nil {
		l.Stats = stats.Aggregate{}
	}
	return l, nil
}

// record encodes every ledger key except sprintActive.
func (l *ledger) record() (ports.Record, error) {
	rec := ports.Record{}
	for _, f := range l.fields() {
		if err := rec.Put(f.key, f.ptr); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
