// Package status generates the status snapshot for tabwarden.
//
// The daemon writes a JSON status file after every accounting change
// (flush, advisory, rollover, sprint). Shell prompts and status bars read
// it without talking to the daemon.
package status

import (
	"encoding/json"
	"os"
	"time"

	"github.com/corey/tabwarden/internal/domain/points"
	"github.com/corey/tabwarden/internal/domain/stats"
)

// StatusFile is the filename within the home directory where status JSON is written.
const StatusFile = "status.json"

// topN is how many domains the snapshot lists.
const topN = 3

// StatusData is the JSON payload the daemon writes.
type StatusData struct {
	Balance      int       `json:"balance"`
	Streak       int       `json:"streak"`
	PenaltyToday int       `json:"penalty_today"`
	TodayMs      int64     `json:"today_ms"`
	SprintActive bool      `json:"sprint_active"`
	Distracted   string    `json:"distracted,omitempty"`
	TopDomains   []string  `json:"top_domains"`
	LastAlert    *Alert    `json:"last_alert,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Alert is the most recent notification shown to the user.
type Alert struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Input is the state a snapshot is built from.
type Input struct {
	Account      points.Account
	Stats        stats.Aggregate
	SprintActive bool
	Distracted   string // domain of the open session, if any
	LastAlert    *Alert
	Now          time.Time
}

// Generate produces a StatusData from current accounting state.
func Generate(in Input) *StatusData {
	sd := &StatusData{
		Balance:      in.Account.Balance,
		Streak:       in.Account.Streak,
		PenaltyToday: in.Account.DailyPenaltyAccrued,
		TodayMs:      in.Stats.TotalToday(),
		SprintActive: in.SprintActive,
		Distracted:   in.Distracted,
		LastAlert:    in.LastAlert,
		UpdatedAt:    in.Now.UTC(),
	}
	for _, d := range in.Stats.Top(topN) {
		sd.TopDomains = append(sd.TopDomains, d.Domain)
	}
	return sd
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJSON loads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}
