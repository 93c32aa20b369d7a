// Package socket implements a JSON-over-Unix-socket protocol for the tabwarden daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/corey/tabwarden/internal/domain/nudge"
	"github.com/corey/tabwarden/internal/domain/stats"
	"github.com/corey/tabwarden/internal/domain/status"
	"github.com/corey/tabwarden/internal/ports"
)

// SocketPath returns the Unix socket path for a given home directory.
// Format: /tmp/tabwarden-{first12hex}.sock
func SocketPath(home string) string {
	abs, err := filepath.Abs(home)
	if err != nil {
		abs = home
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/tabwarden-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodEvent    = "event"
	MethodHealth   = "health"
	MethodStatus   = "status"
	MethodStats    = "stats"
	MethodTrend    = "trend"
	MethodInsights = "insights"
	MethodSprint   = "sprint"
	MethodShutdown = "shutdown"
	MethodReset    = "reset"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// EventResult acknowledges a queued browser event.
type EventResult struct {
	ID     string `json:"id"`
	Queued bool   `json:"queued"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Events    uint64 `json:"events"`
	Generator string `json:"generator"`
}

// StatsResult lists every tracked distracting domain.
type StatsResult struct {
	Domains      []stats.DomainTotal `json:"domains"`
	Count        int                 `json:"count"`
	TotalTodayMs int64               `json:"total_today_ms"`
}

// TrendResult is the rolling daily distraction history, oldest first.
type TrendResult struct {
	Days  []stats.TrendRecord `json:"days"`
	Count int                 `json:"count"`
}

// SprintParams is the params for a sprint request.
type SprintParams struct {
	Active bool `json:"active"`
}

// SprintResult reports the sprint state after a sprint request.
// EndsAt is zero when no sprint is running.
type SprintResult struct {
	Active bool  `json:"active"`
	EndsAt int64 `json:"ends_at,omitempty"`
}

// StatusResult is the result of a status request.
type StatusResult = status.StatusData

// InsightsResult is the last classification, nudge and flow plus
// generator usage counters.
type InsightsResult = nudge.Insights

// AppQueries provides read and control access to app state for server handlers.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	// Submit queues a browser event for the dispatcher. It does not wait
	// for the event to be processed.
	Submit(ev ports.Event) error
	EventCount() uint64
	GeneratorName() string

	Status() (*StatusResult, error)
	Stats() (StatsResult, error)
	Trend() (TrendResult, error)
	Insights() (InsightsResult, error)
	SetSprint(active bool) (SprintResult, error)
	Reset() error
}
