package app

import (
	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/config"
	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/corey/tabwarden/internal/domain/points"
)

// reloadConfig is the config watcher callback. A file that fails to load or
// validate is ignored and the running configuration stays in effect.
//
// Hot-reloadable: distraction list, nudge cooldown bounds, points rules,
// alert cooldown. Everything else needs a daemon restart.
func (a *App) reloadConfig(path string) {
	next, err := config.Load(path)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		a.log.Warn("config reload rejected", zap.String("path", path), zap.Error(err))
		return
	}

	a.distractions.Store(classify.NewDistractionList(next.Distractions))
	a.pipeline.SetCooldownBounds(next.Nudge.MinCooldown, next.Nudge.MaxCooldown)
	a.alerts.SetCooldown(next.Notify.Cooldown)

	a.mu.Lock()
	a.engine = points.NewEngine(next.Rules())
	a.mu.Unlock()

	a.settings.Store(next)
	a.log.Info("config reloaded",
		zap.Int("distractions", len(next.Distractions)),
		zap.Duration("min_cooldown", next.Nudge.MinCooldown),
		zap.Duration("max_cooldown", next.Nudge.MaxCooldown))
}
