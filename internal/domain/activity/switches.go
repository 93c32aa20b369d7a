// Package activity counts tab switches over a sliding window.
package activity

import "time"

const (
	DefaultWindow    = 20 * time.Minute
	DefaultCapacity  = 100
	DefaultThreshold = 10
)

// SwitchTracker collects tab-switch timestamps and reports how many fall
// within the rolling window. The window is ephemeral: it lives in memory
// only and starts empty on every daemon start.
// Not thread-safe. The caller (App.mu) must serialize access.
type SwitchTracker struct {
	window    time.Duration
	capacity  int
	threshold int
	stamps    []time.Time
}

// NewSwitchTracker creates a tracker. Zero values select the defaults.
func NewSwitchTracker(window time.Duration, capacity, threshold int) *SwitchTracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &SwitchTracker{window: window, capacity: capacity, threshold: threshold}
}

// RecordAt prunes entries older than the window relative to ts, appends
// ts, and returns the resulting count. The oldest entries are dropped
// beyond capacity.
func (s *SwitchTracker) RecordAt(ts time.Time) int {
	s.evict(ts)
	s.stamps = append(s.stamps, ts)
	if n := len(s.stamps); n > s.capacity {
		s.stamps = append([]time.Time(nil), s.stamps[n-s.capacity:]...)
	}
	return len(s.stamps)
}

// Count returns the number of switches within the window ending at now.
func (s *SwitchTracker) Count(now time.Time) int {
	s.evict(now)
	return len(s.stamps)
}

// Excessive reports whether count exceeds the threshold.
func (s *SwitchTracker) Excessive(count int) bool {
	return count > s.threshold
}

// Window returns the configured window length.
func (s *SwitchTracker) Window() time.Duration {
	return s.window
}

// Reset clears all timestamps.
func (s *SwitchTracker) Reset() {
	s.stamps = nil
}

// evict removes timestamps older than the window.
func (s *SwitchTracker) evict(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.stamps) && s.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		s.stamps = s.stamps[i:]
	}
}
