// Package nudge produces short coaching messages when the user drifts from
// productive work to a distraction.
//
// Each request walks an ordered chain and stops at the first stage that
// yields text:
//
//	cooldown gate -> cache (from, to) -> remote generator -> local template
//
// The chain never fails. A request refused by the cooldown gate, or one
// that arrives while another is still in flight, simply produces nothing.
package nudge

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/corey/tabwarden/internal/ports"
	"github.com/corey/tabwarden/internal/retry"
)

// Source names the stage that produced a nudge.
type Source string

const (
	SourceCache    Source = "cache"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// decorations are appended to a small share of remote nudges.
var decorations = []string{"✨", "🚀", "💪", "🎯", "🔥", "🧠"}

// Request describes one productive -> distracting transition.
type Request struct {
	FromURL   string
	ToURL     string
	Telemetry Telemetry
}

// Result is an emitted nudge.
type Result struct {
	Text    string           `json:"text"`
	Source  Source           `json:"source"`
	From    string           `json:"from"`
	To      string           `json:"to"`
	Context classify.Context `json:"context"`
	At      time.Time        `json:"at"`
}

// Usage counts remote generation attempts. Persisted under
// aiInsights.geminiUsage.
type Usage struct {
	Count    int   `json:"count"`
	LastUsed int64 `json:"lastUsed"`
	Errors   int   `json:"errors"`
}

// Config tunes the pipeline. Zero fields select defaults.
type Config struct {
	Timeout        time.Duration // whole remote stage, retries included
	Attempts       int
	Backoff        time.Duration // linear: Backoff, 2*Backoff, ...
	CacheTTL       time.Duration
	Cooldown       time.Duration
	MinCooldown    time.Duration
	MaxCooldown    time.Duration
	DecorateChance float64
	Generate       ports.GenerateConfig
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Timeout:        8 * time.Second,
		Attempts:       2,
		Backoff:        time.Second,
		CacheTTL:       DefaultCacheTTL,
		Cooldown:       DefaultCooldown,
		MinCooldown:    DefaultMinCooldown,
		MaxCooldown:    DefaultMaxCooldown,
		DecorateChance: 0.2,
		Generate:       DefaultGenerateConfig,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Attempts <= 0 {
		c.Attempts = d.Attempts
	}
	if c.Backoff < 0 {
		c.Backoff = d.Backoff
	}
	if c.Generate.SystemPrompt == "" {
		c.Generate = d.Generate
	}
	return c
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRand overrides the random source used for template and decoration
// choice.
func WithRand(r *rand.Rand) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rng = r
		}
	}
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	gen      ports.Generator // nil: local templates only
	contexts *classify.ContextInferrer
	cache    *Cache
	cooldown *Cooldown
	inflight *semaphore.Weighted
	cfg      Config
	log      *zap.Logger
	now      func() time.Time

	mu    sync.Mutex // guards rng and usage
	rng   *rand.Rand
	usage Usage
}

// New creates a pipeline. gen may be nil.
func New(gen ports.Generator, contexts *classify.ContextInferrer, cfg Config, log *zap.Logger, opts ...Option) *Pipeline {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		gen:      gen,
		contexts: contexts,
		inflight: semaphore.NewWeighted(1),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, o := range opts {
		o(p)
	}
	p.cache = NewCache(cfg.CacheTTL, p.now)
	p.cooldown = NewCooldown(cfg.Cooldown, cfg.MinCooldown, cfg.MaxCooldown)
	return p
}

// Nudge runs the chain for one transition. The bool is false when nothing
// was emitted (cooldown, or another request in flight).
func (p *Pipeline) Nudge(ctx context.Context, req Request) (Result, bool) {
	if !p.inflight.TryAcquire(1) {
		p.log.Debug("nudge already in flight, dropping transition")
		return Result{}, false
	}
	defer p.inflight.Release(1)

	now := p.now()
	if !p.cooldown.Ready(now) {
		p.log.Debug("nudge cooldown active", zap.Duration("window", p.cooldown.Current()))
		return Result{}, false
	}

	from, to := classify.Domain(req.FromURL), classify.Domain(req.ToURL)
	res := Result{From: from, To: to, Context: p.contexts.Infer(from), At: now}

	if text, ok := p.cache.Get(from, to); ok {
		res.Text, res.Source = text, SourceCache
		p.cooldown.Mark(now)
		return res, true
	}

	if p.gen != nil {
		text, err := p.remote(ctx, BuildPrompt(from, to, res.Context, req.Telemetry))
		p.recordUsage(now, err)
		if err == nil {
			res.Text = PostProcess(text, from, p.decoration())
			res.Source = SourceRemote
			p.cache.Put(from, to, res.Text)
			p.cooldown.Shrink()
			p.cooldown.Mark(p.now())
			return res, true
		}
		p.log.Info("remote nudge unavailable, using local template",
			zap.String("generator", p.gen.Name()),
			zap.Error(err))
	}

	res.Text = Fallback(res.Context, from, p.intn)
	res.Source = SourceFallback
	p.cooldown.Grow()
	p.cooldown.Mark(p.now())
	return res, true
}

type reply struct {
	text string
	err  error
}

// remote calls the generator with bounded retries, racing the whole
// exchange against the timeout. A reply that arrives after the deadline is
// dropped on the floor; the buffered channel lets the worker exit.
func (p *Pipeline) remote(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	done := make(chan reply, 1)
	go func() {
		var text string
		err := retry.Do(ctx, p.cfg.Attempts, retry.Linear(p.cfg.Backoff), func(ctx context.Context) error {
			t, err := p.gen.Generate(ctx, prompt, p.cfg.Generate)
			if err != nil {
				return err
			}
			text = t
			return nil
		})
		done <- reply{text: text, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if err := Validate(r.text); err != nil {
			return "", fmt.Errorf("%w: %w", ports.ErrMalformedResponse, err)
		}
		return r.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ports.ErrTimeout, ctx.Err())
	}
}

// Usage returns a snapshot of the remote usage counters.
func (p *Pipeline) Usage() Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.usage
}

// RestoreUsage seeds the counters from persisted state.
func (p *Pipeline) RestoreUsage(u Usage) {
	p.mu.Lock()
	p.usage = u
	p.mu.Unlock()
}

// CooldownWindow returns the adaptive cooldown currently in effect.
func (p *Pipeline) CooldownWindow() time.Duration {
	return p.cooldown.Current()
}

// SetCooldownBounds applies new floor and cap values (config reload).
func (p *Pipeline) SetCooldownBounds(floor, ceiling time.Duration) {
	p.cooldown.SetBounds(floor, ceiling)
}

func (p *Pipeline) recordUsage(at time.Time, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usage.Count++
	p.usage.LastUsed = at.UnixMilli()
	if err != nil {
		p.usage.Errors++
	}
}

func (p *Pipeline) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

func (p *Pipeline) decoration() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng.Float64() >= p.cfg.DecorateChance {
		return ""
	}
	return decorations[p.rng.IntN(len(decorations))]
}
