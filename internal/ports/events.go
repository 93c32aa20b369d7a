package ports

import (
	"context"
	"errors"
	"time"
)

// EventKind is the closed set of events the dispatcher understands.
type EventKind string

const (
	EventTabActivated   EventKind = "tab_activated"
	EventTabUpdated     EventKind = "tab_updated"
	EventTabRemoved     EventKind = "tab_removed"
	EventFocusChanged   EventKind = "focus_changed"
	EventStorageChanged EventKind = "storage_changed"
	EventTimerFired     EventKind = "timer_fired"
)

// Timer names carried by EventTimerFired.
const (
	TimerSprint  = "sprint"
	TimerCleanup = "cleanup"
)

// Tab load status values for EventTabUpdated.
const (
	TabStatusLoading  = "loading"
	TabStatusComplete = "complete"
)

// Event is one browser or internal event. Only the fields relevant to Kind
// are populated. Events arrive from the socket, the JSONL feed, the store
// change listener, and internal timers; all of them are funneled through a
// single ordered channel.
type Event struct {
	ID       string    `json:"id,omitempty"`
	Kind     EventKind `json:"kind"`
	TabID    int       `json:"tab_id,omitempty"`
	WindowID int       `json:"window_id,omitempty"`
	URL      string    `json:"url,omitempty"`
	Title    string    `json:"title,omitempty"`
	Status   string    `json:"status,omitempty"`
	Active   bool      `json:"active,omitempty"`
	Timer    string    `json:"timer,omitempty"`
	Changes  []Change  `json:"changes,omitempty"`
	Time     time.Time `json:"time,omitempty"`
}

// Valid reports whether the event kind is one the dispatcher handles.
func (e Event) Valid() bool {
	switch e.Kind {
	case EventTabActivated, EventTabUpdated, EventTabRemoved,
		EventFocusChanged, EventStorageChanged, EventTimerFired:
		return true
	}
	return false
}

// Tab is the foreground-resolution view of a browser tab.
type Tab struct {
	ID       int    `json:"id"`
	WindowID int    `json:"window_id,omitempty"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Active   bool   `json:"active"`
}

// ErrTabNotFound is returned by TabLookup when the tab is unknown.
var ErrTabNotFound = errors.New("tab not found")

// TabLookup resolves tab IDs to their current URL and title.
type TabLookup interface {
	// GetTab returns the tab with the given ID or ErrTabNotFound.
	GetTab(ctx context.Context, tabID int) (Tab, error)

	// ActiveTab returns the tab currently in the foreground of the
	// focused window, or ErrTabNotFound when nothing is focused.
	ActiveTab(ctx context.Context) (Tab, error)
}
