package points

import (
	"fmt"
	"time"
)

// AdvisoryKind identifies a notification-worthy outcome.
type AdvisoryKind string

const (
	AdvisoryPenalty   AdvisoryKind = "penalty"
	AdvisoryReward    AdvisoryKind = "reward"
	AdvisoryStreak    AdvisoryKind = "streak"
	AdvisorySprint    AdvisoryKind = "sprint"
	AdvisorySwitching AdvisoryKind = "switching"
	AdvisoryNudge     AdvisoryKind = "nudge"
)

// Advisory is a non-blocking event for the notification sink.
// Points is the signed balance change (zero for informational advisories).
type Advisory struct {
	Kind    AdvisoryKind `json:"kind"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Points  int          `json:"points"`
}

// Input is one consistent snapshot the rules are evaluated against.
type Input struct {
	Account      Account
	TotalTodayMs int64 // sum of today's distraction across all domains
	SprintActive bool
	Now          time.Time
}

// Result is the updated account plus any advisories, in rule order.
type Result struct {
	Account    Account
	Advisories []Advisory
}

// Changed reports whether the account differs from in.
func (r Result) Changed(in Account) bool {
	return r.Account != in
}

// Engine evaluates the penalty, reward and streak rules.
type Engine struct {
	rules Rules
}

// NewEngine returns an engine using rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's constants.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Apply runs the three rules in order. Re-running it with the same
// TotalTodayMs is a no-op: the penalty checkpoint, reward timestamp and
// productive date only move forward and gate their own rule.
func (e *Engine) Apply(in Input) Result {
	res := Result{Account: in.Account}
	if adv, ok := e.penalty(&res.Account, in); ok {
		res.Advisories = append(res.Advisories, adv)
	}
	if adv, ok := e.reward(&res.Account, in); ok {
		res.Advisories = append(res.Advisories, adv)
	}
	if adv, ok := e.streak(&res.Account, in); ok {
		res.Advisories = append(res.Advisories, adv)
	}
	return res
}

// penalty consumes whole intervals of new distraction time. The balance
// multiplier is (1 + balance/PenaltyScale), computed in integers so the
// result is the exact floor; the deduction is capped at the balance.
func (e *Engine) penalty(a *Account, in Input) (Advisory, bool) {
	if in.SprintActive {
		return Advisory{}, false
	}
	interval := e.rules.PenaltyInterval.Milliseconds()
	if interval <= 0 {
		return Advisory{}, false
	}
	k := (in.TotalTodayMs - a.PenaltyCheckpointMs) / interval
	if k <= 0 {
		return Advisory{}, false
	}

	scale := int64(e.rules.PenaltyScale)
	p := k * int64(e.rules.PenaltyPoints) * (scale + int64(a.Balance)) / scale
	if p > int64(a.Balance) {
		p = int64(a.Balance)
	}
	if p < 0 {
		p = 0
	}

	a.Balance -= int(p)
	a.DailyPenaltyAccrued += int(p)
	a.PenaltyCheckpointMs += k * interval

	if p == 0 {
		return Advisory{}, false
	}
	minutes := time.Duration(k*interval) * time.Millisecond / time.Minute
	return Advisory{
		Kind:    AdvisoryPenalty,
		Title:   "⛔ Distraction Penalty",
		Message: fmt.Sprintf("%d points deducted for %d mins distraction!", p, minutes),
		Points:  -int(p),
	}, true
}

func (e *Engine) reward(a *Account, in Input) (Advisory, bool) {
	now := in.Now.UnixMilli()
	if now-a.LastRewardMs < e.rules.RewardInterval.Milliseconds() {
		return Advisory{}, false
	}
	if in.TotalTodayMs >= e.rules.RewardCeiling.Milliseconds() {
		return Advisory{}, false
	}
	a.Balance += e.rules.RewardPoints
	a.LastRewardMs = now
	return Advisory{
		Kind:    AdvisoryReward,
		Title:   "🎁 Focus Reward",
		Message: fmt.Sprintf("+%d points for 1 hour distraction-free!", e.rules.RewardPoints),
		Points:  e.rules.RewardPoints,
	}, true
}

func (e *Engine) streak(a *Account, in Input) (Advisory, bool) {
	productive := !in.SprintActive && in.TotalTodayMs < e.rules.ProductiveCeiling.Milliseconds()
	today := in.Now.UTC().Format("2006-01-02")
	if !productive || a.LastProductiveDate == today {
		return Advisory{}, false
	}
	yesterday := in.Now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	if a.LastProductiveDate == yesterday {
		a.Streak++
	} else {
		a.Streak = 1
	}
	a.LastProductiveDate = today
	return Advisory{
		Kind:    AdvisoryStreak,
		Title:   fmt.Sprintf("🔥 %d-Day Streak!", a.Streak),
		Message: "You stayed productive today!",
	}, true
}

// CompleteSprint credits a finished focus sprint.
func (e *Engine) CompleteSprint(a Account) (Account, Advisory) {
	a.Balance += e.rules.SprintPoints
	return a, Advisory{
		Kind:    AdvisorySprint,
		Title:   "🎉 Sprint Complete!",
		Message: fmt.Sprintf("+%d points earned!", e.rules.SprintPoints),
		Points:  e.rules.SprintPoints,
	}
}
