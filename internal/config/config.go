// Package config loads tabwarden configuration from config.yaml with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/corey/tabwarden/internal/domain/classify"
	"github.com/corey/tabwarden/internal/domain/points"
)

// FileName is the config file within the home directory.
const FileName = "config.yaml"

// Generator providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// ValidProviders lists all supported generator providers.
var ValidProviders = []string{ProviderGemini, ProviderOpenAI, ProviderNone}

// Config is the full daemon configuration.
type Config struct {
	Distractions []string        `yaml:"distractions"`
	Session      SessionConfig   `yaml:"session"`
	Generator    GeneratorConfig `yaml:"generator"`
	Nudge        NudgeConfig     `yaml:"nudge"`
	Points       PointsConfig    `yaml:"points"`
	Activity     ActivityConfig  `yaml:"activity"`
	Notify       NotifyConfig    `yaml:"notify"`
	HTTP         HTTPConfig      `yaml:"http"`
	Feed         FeedConfig      `yaml:"feed"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
}

// SessionConfig tunes the distraction-session tracker.
type SessionConfig struct {
	MinDuration time.Duration `yaml:"min_duration"`
}

// GeneratorConfig selects and tunes the remote nudge generator.
type GeneratorConfig struct {
	Provider string        `yaml:"provider"` // gemini, openai, none
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"api_key,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"` // openai-compatible endpoint
	Timeout  time.Duration `yaml:"timeout"`
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

// NudgeConfig tunes the nudge pipeline.
type NudgeConfig struct {
	Cooldown       time.Duration `yaml:"cooldown"`
	MinCooldown    time.Duration `yaml:"min_cooldown"`
	MaxCooldown    time.Duration `yaml:"max_cooldown"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	DecorateChance float64       `yaml:"decorate_chance"`
}

// PointsConfig holds the economy constants.
type PointsConfig struct {
	PenaltyInterval   time.Duration `yaml:"penalty_interval"`
	PenaltyPoints     int           `yaml:"penalty_points"`
	PenaltyScale      int           `yaml:"penalty_scale"`
	RewardInterval    time.Duration `yaml:"reward_interval"`
	RewardPoints      int           `yaml:"reward_points"`
	RewardCeiling     time.Duration `yaml:"reward_ceiling"`
	ProductiveCeiling time.Duration `yaml:"productive_ceiling"`
	SprintDuration    time.Duration `yaml:"sprint_duration"`
	SprintPoints      int           `yaml:"sprint_points"`
	MinBalance        int           `yaml:"min_balance"`
	InitialBalance    int           `yaml:"initial_balance"`
}

// ActivityConfig tunes tab-switch tracking and hourly maintenance.
type ActivityConfig struct {
	SwitchWindow    time.Duration `yaml:"switch_window"`
	SwitchCapacity  int           `yaml:"switch_capacity"`
	SwitchThreshold int           `yaml:"switch_threshold"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// NotifyConfig controls user-visible alerts.
type NotifyConfig struct {
	Cooldown time.Duration `yaml:"cooldown"`
	Desktop  bool          `yaml:"desktop"`
}

// HTTPConfig controls the local JSON API.
type HTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"` // 0 derives a port from the home directory
}

// FeedConfig controls the JSONL event feed tailer.
type FeedConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// TelemetryConfig controls the OTLP metrics exporter.
type TelemetryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Insecure bool          `yaml:"insecure"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	r := points.DefaultRules()
	return &Config{
		Distractions: slices.Clone(classify.DefaultDistractions),
		Session:      SessionConfig{MinDuration: 5 * time.Second},
		Generator: GeneratorConfig{
			Provider: ProviderGemini,
			Model:    "gemini-2.5-flash",
			Timeout:  8 * time.Second,
			Attempts: 2,
			Backoff:  time.Second,
		},
		Nudge: NudgeConfig{
			Cooldown:       10 * time.Minute,
			MinCooldown:    5 * time.Minute,
			MaxCooldown:    30 * time.Minute,
			CacheTTL:       30 * time.Minute,
			DecorateChance: 0.2,
		},
		Points: PointsConfig{
			PenaltyInterval:   r.PenaltyInterval,
			PenaltyPoints:     r.PenaltyPoints,
			PenaltyScale:      r.PenaltyScale,
			RewardInterval:    r.RewardInterval,
			RewardPoints:      r.RewardPoints,
			RewardCeiling:     r.RewardCeiling,
			ProductiveCeiling: r.ProductiveCeiling,
			SprintDuration:    r.SprintDuration,
			SprintPoints:      r.SprintPoints,
			MinBalance:        r.MinBalance,
			InitialBalance:    r.InitialBalance,
		},
		Activity: ActivityConfig{
			SwitchWindow:    20 * time.Minute,
			SwitchCapacity:  100,
			SwitchThreshold: 10,
			CleanupInterval: time.Hour,
		},
		Notify:    NotifyConfig{Cooldown: 5 * time.Minute, Desktop: true},
		HTTP:      HTTPConfig{Enabled: true},
		Feed:      FeedConfig{Enabled: true, PollInterval: 500 * time.Millisecond},
		Telemetry: TelemetryConfig{Interval: 30 * time.Second},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies TABWARDEN_* and provider key variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TABWARDEN_PROVIDER"); v != "" {
		c.Generator.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("TABWARDEN_MODEL"); v != "" {
		c.Generator.Model = v
	}
	if v := os.Getenv("TABWARDEN_BASE_URL"); v != "" {
		c.Generator.BaseURL = v
	}

	// Provider key variables only fill in a missing key for their own provider.
	if c.Generator.APIKey == "" {
		switch c.Generator.Provider {
		case ProviderGemini:
			c.Generator.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		case ProviderOpenAI:
			c.Generator.APIKey = firstEnv("OPENAI_API_KEY", "DEEPSEEK_API_KEY")
		}
	}
	if v := os.Getenv("TABWARDEN_API_KEY"); v != "" {
		c.Generator.APIKey = v
	}

	if v := os.Getenv("TABWARDEN_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Generator.Timeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("TABWARDEN_DISTRACTIONS"); v != "" {
		var list []string
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				list = append(list, d)
			}
		}
		c.Distractions = list
	}
	if v := os.Getenv("TABWARDEN_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.HTTP.Port = n
		}
	}
	if v := os.Getenv("TABWARDEN_DESKTOP_NOTIFY"); v != "" {
		c.Notify.Desktop, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("TABWARDEN_OTEL_ENABLED"); v != "" {
		c.Telemetry.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("TABWARDEN_OTEL_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
	if v := os.Getenv("TABWARDEN_OTEL_INSECURE"); v != "" {
		c.Telemetry.Insecure, _ = strconv.ParseBool(v)
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if !slices.Contains(ValidProviders, c.Generator.Provider) {
		return fmt.Errorf("invalid generator provider: %s (valid: %v)", c.Generator.Provider, ValidProviders)
	}
	if c.Generator.Provider != ProviderNone && c.Generator.Model == "" {
		return fmt.Errorf("generator %s: model not configured", c.Generator.Provider)
	}
	for _, d := range c.Distractions {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("distractions: empty entry")
		}
	}
	n := c.Nudge
	if n.MinCooldown <= 0 || n.MaxCooldown < n.MinCooldown {
		return fmt.Errorf("nudge cooldown bounds invalid: min %s, max %s", n.MinCooldown, n.MaxCooldown)
	}
	if n.DecorateChance < 0 || n.DecorateChance > 1 {
		return fmt.Errorf("nudge decorate_chance must be within [0, 1], got %v", n.DecorateChance)
	}
	p := c.Points
	if p.PenaltyInterval <= 0 || p.RewardInterval <= 0 || p.SprintDuration <= 0 {
		return fmt.Errorf("points intervals must be positive")
	}
	if p.PenaltyScale <= 0 {
		return fmt.Errorf("points penalty_scale must be positive, got %d", p.PenaltyScale)
	}
	if c.Activity.CleanupInterval <= 0 {
		return fmt.Errorf("activity cleanup_interval must be positive")
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port out of range: %d", c.HTTP.Port)
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry enabled without an endpoint")
	}
	return nil
}

// Rules converts the points section into engine rules.
func (c *Config) Rules() points.Rules {
	p := c.Points
	return points.Rules{
		PenaltyInterval:   p.PenaltyInterval,
		PenaltyPoints:     p.PenaltyPoints,
		PenaltyScale:      p.PenaltyScale,
		RewardInterval:    p.RewardInterval,
		RewardPoints:      p.RewardPoints,
		RewardCeiling:     p.RewardCeiling,
		ProductiveCeiling: p.ProductiveCeiling,
		SprintDuration:    p.SprintDuration,
		SprintPoints:      p.SprintPoints,
		MinBalance:        p.MinBalance,
		InitialBalance:    p.InitialBalance,
	}
}
