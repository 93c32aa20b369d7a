package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/domain/points"
	"github.com/corey/tabwarden/internal/ports"
)

// sprintTimer is the one-shot focus sprint timer. Starting it cancels any
// timer already scheduled; a generation counter makes sure a timer that
// fired just before being cancelled is ignored by the dispatcher.
type sprintTimer struct {
	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	fired  uint64 // generation whose timer fired; 0 = none pending
	endsAt time.Time
}

// start arms the timer for d. fire is called from the timer goroutine.
func (s *sprintTimer) start(d time.Duration, now time.Time, fire func()) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.fired = 0
	gen := s.gen
	s.endsAt = now.Add(d)
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.fired = gen
		s.mu.Unlock()
		fire()
	})
	return s.endsAt
}

// stop cancels the running timer, if any.
func (s *sprintTimer) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.fired = 0
	s.endsAt = time.Time{}
}

// take reports whether the current timer fired, consuming the firing.
func (s *sprintTimer) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fired == 0 || s.fired != s.gen {
		return false
	}
	s.fired = 0
	s.timer = nil
	s.endsAt = time.Time{}
	return true
}

// deadline returns when the running sprint ends, or the zero time.
func (s *sprintTimer) deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endsAt
}

// startSprint arms the sprint timer. Expiry is delivered to the dispatcher
// as a timer event.
func (a *App) startSprint() time.Time {
	d := a.Settings().Points.SprintDuration
	ends := a.sprint.start(d, a.now(), func() {
		if err := a.Submit(ports.Event{Kind: ports.EventTimerFired, Timer: ports.TimerSprint}); err != nil {
			a.log.Error("sprint completion dropped", zap.Error(err))
		}
	})
	a.log.Info("focus sprint started", zap.Duration("duration", d))
	return ends
}

// completeSprint credits the sprint and clears sprintActive, which in turn
// stops the (already expired) timer through the storage listener.
func (a *App) completeSprint(ctx context.Context) {
	if !a.sprint.take() {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.loadLedger(ctx)
	if err != nil {
		a.log.Error("load points for sprint", zap.Error(err))
		return
	}
	acct, adv := a.engine.CompleteSprint(l.Account)
	rec := ports.Record{}
	if err := rec.Put(ports.KeyUserPoints, acct.Balance); err != nil {
		a.log.Error("encode sprint result", zap.Error(err))
		return
	}
	if err := rec.Put(ports.KeySprintActive, false); err != nil {
		a.log.Error("encode sprint result", zap.Error(err))
		return
	}
	if err := a.Store.Set(ctx, rec); err != nil {
		a.log.Error("write sprint result", zap.Error(err))
		return
	}
	l.Account = acct
	l.SprintActive = false

	a.log.Info("focus sprint complete", zap.Int("balance", acct.Balance))
	a.announce(ctx, []points.Advisory{adv})
	a.writeStatusLocked(l)
}

// resumeSprint re-arms the timer for a sprint that was active when the
// daemon last stopped. The remaining time is not persisted, so the sprint
// restarts at full length.
func (a *App) resumeSprint(ctx context.Context) {
	rec, err := a.Store.Get(ctx, ports.KeySprintActive)
	if err != nil {
		a.log.Warn("read sprint state", zap.Error(err))
		return
	}
	var active bool
	if _, err := rec.Decode(ports.KeySprintActive, &active); err != nil {
		a.log.Warn("read sprint state", zap.Error(err))
		return
	}
	if active {
		a.startSprint()
	}
}

// SetSprint persists the sprint flag. The storage listener starts or stops
// the timer; the returned deadline is the one the new sprint will get.
func (a *App) SetSprint(active bool) (socket.SprintResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	rec := ports.Record{}
	if err := rec.Put(ports.KeySprintActive, active); err != nil {
		return socket.SprintResult{}, err
	}
	if err := a.Store.Set(ctx, rec); err != nil {
		return socket.SprintResult{}, fmt.Errorf("set sprint: %w", err)
	}
	res := socket.SprintResult{Active: active}
	if active {
		if ends := a.sprint.deadline(); !ends.IsZero() {
			res.EndsAt = ends.UnixMilli()
		} else {
			res.EndsAt = a.now().Add(a.Settings().Points.SprintDuration).UnixMilli()
		}
	}
	return res, nil
}
