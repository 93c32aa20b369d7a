package tailer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/tabwarden/internal/ports"
)

// =============================================================================
// Parser
// =============================================================================

func TestParser_TabActivated(t *testing.T) {
	ev, err := ParseLine([]byte(`{"id":"e1","kind":"tab_activated","tab_id":7,"url":"https://youtube.com/"}`))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "e1", ev.ID)
	assert.Equal(t, ports.EventTabActivated, ev.Kind)
	assert.Equal(t, 7, ev.TabID)
	assert.Equal(t, "https://youtube.com/", ev.URL)
}

func TestParser_TabUpdated(t *testing.T) {
	ev, err := ParseLine([]byte(`{"kind":"tab_updated","tab_id":3,"status":"complete","active":true,"url":"https://reddit.com/"}`))
	require.NoError(t, err)
	assert.Equal(t, ports.TabStatusComplete, ev.Status)
	assert.True(t, ev.Active)
}

func TestParser_BOMHandling(t *testing.T) {
	line := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"kind":"focus_changed","window_id":2}`)...)
	ev, err := ParseLine(line)
	require.NoError(t, err)
	assert.Equal(t, ports.EventFocusChanged, ev.Kind)
}

func TestParser_EmptyLine(t *testing.T) {
	ev, err := ParseLine(nil)
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestParser_SkipMalformedJSON(t *testing.T) {
	_, err := ParseLine([]byte(`{"kind":`))
	assert.Error(t, err)
}

func TestParser_UnknownKind(t *testing.T) {
	_, err := ParseLine([]byte(`{"kind":"tab_exploded"}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

// =============================================================================
// Tailer
// =============================================================================

// appendEvents writes events to path the way the native host does.
func appendEvents(t *testing.T, path string, events ...ports.Event) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()
	for _, ev := range events {
		b, err := json.Marshal(ev)
		require.NoError(t, err)
		_, err = f.Write(append(b, '\n'))
		require.NoError(t, err)
	}
}

type collector struct {
	mu     sync.Mutex
	events []*ports.Event
}

func (c *collector) add(ev *ports.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) urls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, ev := range c.events {
		out = append(out, ev.URL)
	}
	return out
}

func activated(url string) ports.Event {
	return ports.Event{ID: uuid.NewString(), Kind: ports.EventTabActivated, TabID: 1, URL: url}
}

func TestTailer_TailNewLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	appendEvents(t, path, activated("https://old.example/"))

	var c collector
	tailer := New(Config{Path: path, PollInterval: 20 * time.Millisecond, Callback: c.add})
	tailer.Start()
	defer tailer.Stop()
	<-tailer.Started() // Wait for the initial seek before writing

	appendEvents(t, path,
		activated("https://github.com/"),
		activated("https://youtube.com/"),
	)

	assert.Eventually(t, func() bool { return len(c.urls()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"https://github.com/", "https://youtube.com/"}, c.urls(), "history before start is skipped")
}

func TestTailer_FileCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	var c collector
	tailer := New(Config{Path: path, PollInterval: 20 * time.Millisecond, Callback: c.add})
	tailer.Start()
	defer tailer.Stop()
	<-tailer.Started()

	appendEvents(t, path, activated("https://reddit.com/"))
	assert.Eventually(t, func() bool { return len(c.urls()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestTailer_SurvivesTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	var c collector
	tailer := New(Config{Path: path, PollInterval: 20 * time.Millisecond, Callback: c.add})
	tailer.Start()
	defer tailer.Stop()
	<-tailer.Started()

	appendEvents(t, path, activated("https://a.example/"), activated("https://b.example/"))
	assert.Eventually(t, func() bool { return len(c.urls()) == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Truncate(path, 0))
	time.Sleep(60 * time.Millisecond)
	appendEvents(t, path, activated("https://c.example/"))

	assert.Eventually(t, func() bool { return len(c.urls()) == 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestTailer_PartialLineWaits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	line := `{"kind":"tab_activated","tab_id":1,"url":"https://x.com/"}`
	require.NoError(t, os.WriteFile(path, []byte(line[:20]), 0644))

	var c collector
	tailer := New(Config{Path: path, Callback: c.add})
	tailer.readNewLines()
	assert.Empty(t, c.urls())
	assert.Equal(t, int64(0), tailer.offset, "unterminated line not consumed")

	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0644))
	tailer.readNewLines()
	assert.Equal(t, []string{"https://x.com/"}, c.urls())
}

func TestTailer_EventDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	dup := activated("https://first.example/")
	second := activated("https://second.example/")
	appendEvents(t, path, dup, dup, second)

	var c collector
	tailer := New(Config{Path: path, Callback: c.add})
	tailer.readNewLines()

	assert.Equal(t, []string{"https://first.example/", "https://second.example/"}, c.urls())
}

func TestTailer_ReportsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := "not json\n" +
		`{"kind":"bogus"}` + "\n" +
		`{"kind":"` + strings.Repeat("x", MaxLineBytes) + `"}` + "\n" +
		`{"kind":"tab_activated","url":"https://ok.example/"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	var c collector
	var errs []error
	tailer := New(Config{Path: path, Callback: c.add, OnError: func(err error) { errs = append(errs, err) }})
	tailer.readNewLines()

	assert.Equal(t, []string{"https://ok.example/"}, c.urls())
	assert.Len(t, errs, 2, "oversized lines are dropped silently")
}

func TestTailer_StopCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	var c collector
	tailer := New(Config{Path: path, PollInterval: 20 * time.Millisecond, Callback: c.add})
	tailer.Start()
	<-tailer.Started()
	tailer.Stop()

	appendEvents(t, path, activated("https://late.example/"))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, c.urls(), "no events after Stop()")

	// Double stop should not panic
	tailer.Stop()
}
