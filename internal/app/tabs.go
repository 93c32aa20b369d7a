package app

import (
	"context"
	"sync"

	"github.com/corey/tabwarden/internal/ports"
)

// windowNone is the window ID a focus event carries when the browser itself
// lost focus.
const windowNone = -1

// tabRegistry implements ports.TabLookup from the event stream itself: each
// event updates what is known about its tab, and the foreground tab is the
// active tab of the focused window.
type tabRegistry struct {
	mu      sync.Mutex
	tabs    map[int]ports.Tab
	active  map[int]int // windowID -> tabID
	focused int         // windowID; 0 until the first focus or activation
	last    int         // most recently activated tabID
}

func newTabRegistry() *tabRegistry {
	return &tabRegistry{
		tabs:   make(map[int]ports.Tab),
		active: make(map[int]int),
	}
}

// apply folds one tab or focus event into the registry.
func (r *tabRegistry) apply(ev ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case ports.EventTabActivated, ports.EventTabUpdated:
		tab := r.tabs[ev.TabID]
		tab.ID = ev.TabID
		if ev.WindowID != 0 {
			tab.WindowID = ev.WindowID
		}
		if ev.URL != "" {
			tab.URL = ev.URL
		}
		if ev.Title != "" {
			tab.Title = ev.Title
		}
		activated := ev.Kind == ports.EventTabActivated || ev.Active
		if activated {
			if prev, ok := r.tabs[r.active[tab.WindowID]]; ok && prev.ID != tab.ID {
				prev.Active = false
				r.tabs[prev.ID] = prev
			}
			tab.Active = true
			r.active[tab.WindowID] = tab.ID
			r.last = tab.ID
		}
		r.tabs[tab.ID] = tab
		if ev.Kind == ports.EventTabActivated && tab.WindowID != 0 {
			r.focused = tab.WindowID
		}

	case ports.EventTabRemoved:
		tab, ok := r.tabs[ev.TabID]
		if !ok {
			return
		}
		delete(r.tabs, ev.TabID)
		if r.active[tab.WindowID] == tab.ID {
			delete(r.active, tab.WindowID)
		}
		if r.last == tab.ID {
			r.last = 0
		}

	case ports.EventFocusChanged:
		r.focused = ev.WindowID
	}
}

// GetTab returns the last known state of tabID.
func (r *tabRegistry) GetTab(_ context.Context, tabID int) (ports.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[tabID]
	if !ok {
		return ports.Tab{}, ports.ErrTabNotFound
	}
	return tab, nil
}

// ActiveTab returns the active tab of the focused window. Before any window
// focus is known, the most recently activated tab stands in.
func (r *tabRegistry) ActiveTab(_ context.Context) (ports.Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.focused == windowNone {
		return ports.Tab{}, ports.ErrTabNotFound
	}
	id := r.last
	if r.focused != 0 {
		var ok bool
		if id, ok = r.active[r.focused]; !ok {
			return ports.Tab{}, ports.ErrTabNotFound
		}
	}
	tab, ok := r.tabs[id]
	if !ok {
		return ports.Tab{}, ports.ErrTabNotFound
	}
	return tab, nil
}
