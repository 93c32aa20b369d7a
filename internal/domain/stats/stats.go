// Package stats owns the per-domain distraction aggregates, the 7-day trend,
// and the UTC day-boundary rollover. It is pure: persistence and locking
// live in the caller.
package stats

import (
	"sort"
	"time"
)

const (
	// MaxSessions bounds the per-domain session history (oldest evicted).
	MaxSessions = 50

	// MaxTrend is the number of days kept in the trend.
	MaxTrend = 7

	// DateLayout is the persisted calendar date format (UTC).
	DateLayout = "2006-01-02"
)

// SessionRecord is one flushed distraction session, in Unix milliseconds.
type SessionRecord struct {
	Start    int64 `json:"start"`
	End      int64 `json:"end"`
	Duration int64 `json:"duration"`
}

// DomainStats accumulates time spent on one distracting domain.
// Total is lifetime and monotonic; Today is reset at rollover.
type DomainStats struct {
	Total     int64           `json:"total"`
	Today     int64           `json:"today"`
	Count     int64           `json:"count"`
	LastVisit int64           `json:"lastVisit"`
	Sessions  []SessionRecord `json:"sessions"`
}

// Aggregate is the persisted distractionStats map keyed by normalized domain.
type Aggregate map[string]*DomainStats

// Record adds one session of duration ending at end to domain, creating the
// domain on first sight and evicting the oldest session beyond MaxSessions.
func (a Aggregate) Record(domain string, start, end time.Time) {
	d := a[domain]
	if d == nil {
		d = &DomainStats{}
		a[domain] = d
	}
	ms := end.Sub(start).Milliseconds()
	d.Total += ms
	d.Today += ms
	d.Count++
	d.LastVisit = end.UnixMilli()
	d.Sessions = append(d.Sessions, SessionRecord{
		Start:    start.UnixMilli(),
		End:      end.UnixMilli(),
		Duration: ms,
	})
	if n := len(d.Sessions); n > MaxSessions {
		d.Sessions = append([]SessionRecord(nil), d.Sessions[n-MaxSessions:]...)
	}
}

// TotalToday sums Today across all domains.
//
// Every daily rule (penalty, reward eligibility, productive day) is
// evaluated against this value. Summing lifetime Total here would make a
// single heavy day disqualify every later reward and streak, so Today is
// the one measure used throughout.
func (a Aggregate) TotalToday() int64 {
	var sum int64
	for _, d := range a {
		sum += d.Today
	}
	return sum
}

// ResetDaily zeroes the daily counters and clears session histories.
// Domains and their lifetime totals are kept.
func (a Aggregate) ResetDaily() {
	for _, d := range a {
		d.Today = 0
		d.Sessions = nil
	}
}

// DomainTotal is one row of a ranking.
type DomainTotal struct {
	Domain  string `json:"domain"`
	TodayMs int64  `json:"today_ms"`
	TotalMs int64  `json:"total_ms"`
	Count   int64  `json:"count"`
}

// Top returns up to n domains with non-zero Today, ranked by Today
// descending then name. n <= 0 returns all of them.
func (a Aggregate) Top(n int) []DomainTotal {
	var out []DomainTotal
	for name, d := range a {
		if d.Today <= 0 {
			continue
		}
		out = append(out, DomainTotal{Domain: name, TodayMs: d.Today, TotalMs: d.Total, Count: d.Count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TodayMs != out[j].TodayMs {
			return out[i].TodayMs > out[j].TodayMs
		}
		return out[i].Domain < out[j].Domain
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DateKey formats t as a UTC calendar date.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Yesterday returns the UTC calendar date before t.
func Yesterday(t time.Time) string {
	return t.UTC().AddDate(0, 0, -1).Format(DateLayout)
}
