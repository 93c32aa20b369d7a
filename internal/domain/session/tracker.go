// Package session implements the distraction-session state machine.
//
// The tracker is Idle or Active(domain, start). Each observed foreground URL
// drives one transition:
//
//	Idle      + distracting URL      -> Active (open)
//	Active(D) + same URL             -> Active(D) (no-op)
//	Active(D) + other distracting URL -> flush D, Active(D')
//	Active(D) + non-distracting URL  -> flush D, Idle
//
// A flush shorter than the minimum duration is discarded.
package session

import (
	"sync"
	"time"

	"github.com/corey/tabwarden/internal/domain/classify"
)

// DefaultMinDuration is the shortest session worth recording.
const DefaultMinDuration = 5 * time.Second

// State is the in-memory active session.
type State struct {
	URL    string    `json:"url"`
	Domain string    `json:"domain"`
	Start  time.Time `json:"start"`
}

// Flush is a completed session long enough to be recorded.
type Flush struct {
	Domain string
	URL    string
	Start  time.Time
	End    time.Time
}

// Duration is End - Start.
func (f Flush) Duration() time.Duration {
	return f.End.Sub(f.Start)
}

// Transition is a move from a non-distracting foreground URL to a
// distracting one, the trigger for a nudge.
type Transition struct {
	FromURL string
	ToURL   string
	From    string // normalized hostnames
	To      string
}

// Observation is everything one foreground change produced.
type Observation struct {
	Flush      *Flush
	Transition *Transition
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithMinDuration overrides DefaultMinDuration.
func WithMinDuration(d time.Duration) Option {
	return func(t *Tracker) { t.minDuration = d }
}

// Tracker is safe for concurrent use: Observe calls are serialized so that
// overlapping triggers cannot double-flush or lose a session.
type Tracker struct {
	isDistracting func(rawURL string) bool
	now           func() time.Time
	minDuration   time.Duration

	mu      sync.Mutex
	active  *State
	lastURL string // last foreground URL of any kind
}

// NewTracker returns an Idle tracker. isDistracting is consulted on every
// observation, so swapping the list behind it takes effect immediately.
func NewTracker(isDistracting func(rawURL string) bool, opts ...Option) *Tracker {
	t := &Tracker{
		isDistracting: isDistracting,
		now:           time.Now,
		minDuration:   DefaultMinDuration,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Observe evaluates rawURL as the new foreground page. An empty URL (a tab
// still loading, a devtools window) carries no information and is ignored.
func (t *Tracker) Observe(rawURL string) Observation {
	var obs Observation
	if rawURL == "" {
		return obs
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	distracting := t.isDistracting(rawURL)

	if distracting && rawURL != t.lastURL && classify.IsWeb(t.lastURL) && !t.isDistracting(t.lastURL) {
		obs.Transition = &Transition{
			FromURL: t.lastURL,
			ToURL:   rawURL,
			From:    classify.Domain(t.lastURL),
			To:      classify.Domain(rawURL),
		}
	}
	t.lastURL = rawURL

	switch {
	case distracting && t.active != nil && t.active.URL == rawURL:
		// same page still in front
	case distracting:
		obs.Flush = t.flushLocked(now)
		t.active = &State{URL: rawURL, Domain: classify.Domain(rawURL), Start: now}
	case t.active != nil:
		obs.Flush = t.flushLocked(now)
	}
	return obs
}

// Flush closes the active session, if any, as if the user left it now.
// Used at shutdown so the final session is not lost.
func (t *Tracker) Flush() *Flush {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked(t.now())
}

// Reset drops the active session without recording it and forgets the
// last foreground URL.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.active = nil
	t.lastURL = ""
	t.mu.Unlock()
}

// Current returns a copy of the active session.
func (t *Tracker) Current() (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return State{}, false
	}
	return *t.active, true
}

// flushLocked ends the active session and returns it if it meets the
// minimum duration. The state is cleared either way.
func (t *Tracker) flushLocked(now time.Time) *Flush {
	s := t.active
	if s == nil {
		return nil
	}
	t.active = nil
	if now.Sub(s.Start) < t.minDuration {
		return nil
	}
	return &Flush{Domain: s.Domain, URL: s.URL, Start: s.Start, End: now}
}
