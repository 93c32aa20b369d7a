// Package tailer follows the browser event feed: a JSONL file that the
// native-messaging host appends one event per line to.
package tailer

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"github.com/corey/tabwarden/internal/ports"
)

// maxSeen bounds the ID dedup set.
const maxSeen = 10000

// Tailer polls the feed file and emits parsed events.
//
// On start it seeks to the end of the file (old events are history, not
// input) and then reads complete lines as they are appended. A file that
// shrinks is assumed to have been truncated or replaced and is re-read from
// the start. A trailing line without a newline is left for the next poll.
//
// Thread-safe: Start/Stop can be called from any goroutine.
type Tailer struct {
	path         string
	pollInterval time.Duration

	callback func(*ports.Event) // called for each parsed event
	onError  func(error)        // called for parse errors (optional)

	// State, owned by the loop goroutine
	offset int64
	seen   map[string]bool // event ID dedup set

	mu      sync.Mutex
	done    chan struct{}
	started chan struct{} // closed after the initial seek
	wg      sync.WaitGroup
}

// Config holds parameters for creating a Tailer.
type Config struct {
	// Path is the JSONL feed file. It may not exist yet.
	Path string

	// PollInterval is how often to check for new lines. Default: 500ms.
	PollInterval time.Duration

	// Callback is called for each successfully parsed event.
	// Must be non-nil.
	Callback func(*ports.Event)

	// OnError is called when a line fails to parse. Optional.
	OnError func(error)
}

// New creates a Tailer. Does not start tailing until Start() is called.
func New(cfg Config) *Tailer {
	interval := cfg.PollInterval
	if interval == 0 {
		interval = 500 * time.Millisecond
	}

	return &Tailer{
		path:         cfg.Path,
		pollInterval: interval,
		callback:     cfg.Callback,
		onError:      cfg.OnError,
		seen:         make(map[string]bool),
		done:         make(chan struct{}),
		started:      make(chan struct{}),
	}
}

// Start begins the tailing loop in a background goroutine.
func (t *Tailer) Start() {
	t.wg.Add(1)
	go t.loop()
}

// Stop terminates the tailing loop and waits for it to finish.
// Safe to call multiple times.
func (t *Tailer) Stop() {
	t.mu.Lock()
	select {
	case <-t.done:
		// Already stopped
		t.mu.Unlock()
		return
	default:
		close(t.done)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// Path returns the feed file being followed.
func (t *Tailer) Path() string {
	return t.path
}

// Started returns a channel that closes after the initial seek completes.
// Useful for tests that need to wait for the tailer to be ready before writing.
func (t *Tailer) Started() <-chan struct{} {
	return t.started
}

func (t *Tailer) loop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	if info, err := os.Stat(t.path); err == nil {
		t.offset = info.Size()
	}
	close(t.started)

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.readNewLines()
		}
	}
}

// readNewLines reads any complete lines appended since the last read.
// Uses ReadBytes('\n') to track exact byte offsets (bufio.Scanner
// reads ahead and corrupts file position tracking).
func (t *Tailer) readNewLines() {
	f, err := os.Open(t.path)
	if err != nil {
		return // not created yet, or rotated away; skip this cycle
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < t.offset {
		// File was truncated: start from beginning
		t.offset = 0
	}
	if info.Size() == t.offset {
		return // no new data
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return
	}

	reader := bufio.NewReaderSize(f, 256*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// EOF: an unterminated tail is still being written
			break
		}
		t.offset += int64(len(line))

		line = trimNewline(line)
		if len(line) == 0 || len(line) > MaxLineBytes {
			continue
		}

		ev, parseErr := ParseLine(line)
		if parseErr != nil {
			if t.onError != nil {
				t.onError(parseErr)
			}
			continue
		}
		if ev == nil {
			continue
		}

		// ID dedup: the host may replay its buffer after a reconnect
		if ev.ID != "" {
			if t.seen[ev.ID] {
				continue
			}
			t.seen[ev.ID] = true
		}

		if t.callback != nil {
			t.callback(ev)
		}
	}

	// Bound dedup set to prevent unbounded growth
	if len(t.seen) > maxSeen {
		t.seen = make(map[string]bool)
	}
}
