package session

import (
	"sync"
	"testing"
	"time"

	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestTracker(t *testing.T) (*Tracker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	list := classify.NewDistractionList(classify.DefaultDistractions)
	return NewTracker(list.IsDistracting, WithClock(clock.Now)), clock
}

const (
	work   = "https://github.com/corey/tabwarden"
	yt1    = "https://www.youtube.com/watch?v=1"
	yt2    = "https://www.youtube.com/watch?v=2"
	reddit = "https://reddit.com/r/golang"
)

// =============================================================================
// State machine transitions
// =============================================================================

func TestTracker_IdleToActive(t *testing.T) {
	tr, _ := newTestTracker(t)

	obs := tr.Observe(yt1)
	assert.Nil(t, obs.Flush)

	s, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, "youtube.com", s.Domain)
	assert.Equal(t, yt1, s.URL)
}

func TestTracker_SameURLIsNoop(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	start, _ := tr.Current()

	clock.Advance(time.Minute)
	obs := tr.Observe(yt1)
	assert.Nil(t, obs.Flush)

	s, _ := tr.Current()
	assert.Equal(t, start.Start, s.Start, "start time untouched")
}

func TestTracker_DistractingToDistractingFlushesThenOpens(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(30 * time.Second)

	obs := tr.Observe(reddit)
	require.NotNil(t, obs.Flush)
	assert.Equal(t, "youtube.com", obs.Flush.Domain)
	assert.Equal(t, 30*time.Second, obs.Flush.Duration())

	s, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, "reddit.com", s.Domain)
}

func TestTracker_URLChangeSameDomainStartsNewSession(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(10 * time.Second)

	obs := tr.Observe(yt2)
	require.NotNil(t, obs.Flush)
	assert.Equal(t, yt1, obs.Flush.URL)

	s, _ := tr.Current()
	assert.Equal(t, yt2, s.URL)
}

func TestTracker_ActiveToIdle(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(2 * time.Minute)

	obs := tr.Observe(work)
	require.NotNil(t, obs.Flush)
	assert.Equal(t, 2*time.Minute, obs.Flush.Duration())

	_, ok := tr.Current()
	assert.False(t, ok)
}

func TestTracker_ShortSessionDiscarded(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(4999 * time.Millisecond)

	obs := tr.Observe(work)
	assert.Nil(t, obs.Flush, "under 5s is noise, not a zero-length record")
	_, ok := tr.Current()
	assert.False(t, ok, "state is cleared even when discarded")
}

func TestTracker_ExactlyMinimumIsRecorded(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(5 * time.Second)
	obs := tr.Observe(work)
	assert.NotNil(t, obs.Flush)
}

func TestTracker_EmptyURLIgnored(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(time.Minute)
	obs := tr.Observe("")
	assert.Nil(t, obs.Flush)
	_, ok := tr.Current()
	assert.True(t, ok)
}

func TestTracker_ForcedFlush(t *testing.T) {
	tr, clock := newTestTracker(t)
	assert.Nil(t, tr.Flush(), "idle flush is a no-op")

	tr.Observe(yt1)
	clock.Advance(time.Minute)
	f := tr.Flush()
	require.NotNil(t, f)
	assert.Equal(t, time.Minute, f.Duration())
	assert.Nil(t, tr.Flush(), "second flush finds nothing")
}

func TestTracker_ResetDropsSession(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(work)
	tr.Observe(yt1)
	clock.Advance(time.Minute)

	tr.Reset()
	_, ok := tr.Current()
	assert.False(t, ok)
	assert.Nil(t, tr.Flush())

	// History is gone too: no drift is reported from before the reset.
	obs := tr.Observe(reddit)
	assert.Nil(t, obs.Transition)
}

// =============================================================================
// Productive -> distracting transitions
// =============================================================================

func TestTracker_TransitionReported(t *testing.T) {
	tr, _ := newTestTracker(t)
	assert.Nil(t, tr.Observe(work).Transition)

	obs := tr.Observe(yt1)
	require.NotNil(t, obs.Transition)
	assert.Equal(t, "github.com", obs.Transition.From)
	assert.Equal(t, "youtube.com", obs.Transition.To)
}

func TestTracker_NoTransitionBetweenDistractions(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Observe(work)
	tr.Observe(yt1)
	assert.Nil(t, tr.Observe(reddit).Transition)
}

func TestTracker_NoTransitionWithoutHistory(t *testing.T) {
	tr, _ := newTestTracker(t)
	assert.Nil(t, tr.Observe(yt1).Transition)
}

func TestTracker_NoTransitionFromBrowserPage(t *testing.T) {
	for _, from := range []string{"about:blank", "chrome://newtab/", "::::"} {
		t.Run(from, func(t *testing.T) {
			tr, _ := newTestTracker(t)
			tr.Observe(from)
			obs := tr.Observe(yt1)
			assert.Nil(t, obs.Transition)

			_, ok := tr.Current()
			assert.True(t, ok, "the distraction session still opens")
		})
	}
}

// =============================================================================
// Serialization: concurrent observers never double-flush
// =============================================================================

func TestTracker_ConcurrentObserveSingleFlush(t *testing.T) {
	tr, clock := newTestTracker(t)
	tr.Observe(yt1)
	clock.Advance(time.Minute)

	var wg sync.WaitGroup
	flushes := make(chan *Flush, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f := tr.Observe(work).Flush; f != nil {
				flushes <- f
			}
		}()
	}
	wg.Wait()
	close(flushes)

	n := 0
	for range flushes {
		n++
	}
	assert.Equal(t, 1, n)
}

// Sum of recorded durations equals the sum of qualifying sessions.
func TestTracker_SumOfFlushes(t *testing.T) {
	tr, clock := newTestTracker(t)
	steps := []struct {
		url  string
		stay time.Duration
	}{
		{yt1, 3 * time.Second},
		{reddit, 40 * time.Second},
		{work, time.Minute},
		{yt2, 6 * time.Second},
		{work, 0},
	}

	var total time.Duration
	for _, s := range steps {
		if f := tr.Observe(s.url).Flush; f != nil {
			total += f.Duration()
		}
		clock.Advance(s.stay)
	}
	assert.Equal(t, 46*time.Second, total)
}
