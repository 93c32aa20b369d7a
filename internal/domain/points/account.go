// Package points implements the productivity economy: the points account
// and the penalty, reward and streak rules evaluated after every flush.
package points

import "time"

// Account is the singleton points ledger. It is persisted as separate keys
// (userPoints, totalPenaltyToday, lastPenaltyCheck, ...) by the app layer.
type Account struct {
	Balance             int    `json:"balance"`
	DailyPenaltyAccrued int    `json:"daily_penalty"`
	PenaltyCheckpointMs int64  `json:"penalty_checkpoint_ms"`
	LastRewardMs        int64  `json:"last_reward_ms"`
	Streak              int    `json:"streak"`
	LastProductiveDate  string `json:"last_productive_date"`
}

// Rules holds the economy's constants.
type Rules struct {
	PenaltyInterval   time.Duration // one whole interval of daily distraction
	PenaltyPoints     int           // base points per interval
	PenaltyScale      int           // balance divisor for the penalty multiplier
	RewardInterval    time.Duration // minimum spacing between rewards
	RewardPoints      int
	RewardCeiling     time.Duration // daily distraction must stay under this
	ProductiveCeiling time.Duration // daily distraction under this makes a productive day
	SprintDuration    time.Duration
	SprintPoints      int
	MinBalance        int // rollover floor
	InitialBalance    int
}

// DefaultRules returns the standard economy.
func DefaultRules() Rules {
	return Rules{
		PenaltyInterval:   5 * time.Minute,
		PenaltyPoints:     5,
		PenaltyScale:      500,
		RewardInterval:    60 * time.Minute,
		RewardPoints:      15,
		RewardCeiling:     60 * time.Minute,
		ProductiveCeiling: 10 * time.Minute,
		SprintDuration:    25 * time.Minute,
		SprintPoints:      10,
		MinBalance:        50,
		InitialBalance:    100,
	}
}

// NewAccount returns the day-zero account: initial balance, reward clock
// started now, and yesterday recorded as the last productive day so that a
// productive first day counts as a one-day streak.
func NewAccount(r Rules, now time.Time) Account {
	return Account{
		Balance:            r.InitialBalance,
		LastRewardMs:       now.UnixMilli(),
		LastProductiveDate: now.UTC().AddDate(0, 0, -1).Format("2006-01-02"),
	}
}

// Rollover resets the daily penalty bookkeeping and raises the balance to
// the floor if it sank below it. It never lowers the balance.
func (a Account) Rollover(r Rules) Account {
	a.PenaltyCheckpointMs = 0
	a.DailyPenaltyAccrued = 0
	if a.Balance < r.MinBalance {
		a.Balance = r.MinBalance
	}
	return a
}
