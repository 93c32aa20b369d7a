package stats

import "time"

// TrendRecord is one day's total distraction time.
type TrendRecord struct {
	Date               string `json:"date"`
	TotalDistractionMs int64  `json:"totalDistractionMs"`
}

// Trend is the persisted distractionStatsTrend list, oldest first.
type Trend []TrendRecord

// Upsert updates the entry for date or appends a new one, keeping the last
// MaxTrend entries. The receiver is not modified.
func (t Trend) Upsert(date string, totalMs int64) Trend {
	out := make(Trend, 0, len(t)+1)
	out = append(out, t...)
	for i := range out {
		if out[i].Date == date {
			out[i].TotalDistractionMs = totalMs
			return out
		}
	}
	out = append(out, TrendRecord{Date: date, TotalDistractionMs: totalMs})
	if len(out) > MaxTrend {
		out = out[len(out)-MaxTrend:]
	}
	return out
}

// NeedsRollover reports whether lastReset is a different UTC day than now.
// An empty lastReset (never initialized) also needs one.
func NeedsRollover(lastReset string, now time.Time) bool {
	return lastReset != DateKey(now)
}

// Rollover archives the finished day's total under lastReset, then clears
// the aggregate's daily structures. It returns the new trend. When
// lastReset is empty there is no finished day to archive.
func Rollover(agg Aggregate, trend Trend, lastReset string) Trend {
	if lastReset != "" {
		trend = trend.Upsert(lastReset, agg.TotalToday())
	}
	agg.ResetDaily()
	return trend
}
