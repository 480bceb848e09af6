package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/tracker/journal"
	"gopkg.in/yaml.v3"
)

// Config represents the complete tracker configuration
type Config struct {
	User    UserConfig    `json:"user" yaml:"user"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Auth    AuthConfig    `json:"auth" yaml:"auth"`
	Analyze AnalyzeConfig `json:"analyze" yaml:"analyze"`
	Display DisplayConfig `json:"display" yaml:"display"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
}

// UserConfig identifies whose portfolios are read. ID is overridden by
// the subject of a stored login token.
type UserConfig struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// StoreConfig selects the journal backend
type StoreConfig struct {
	Type         string        `json:"type" yaml:"type"` // "sqlite", "redis" or "memory"
	DBPath       string        `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	Redis        RedisConfig   `json:"redis,omitempty" yaml:"redis,omitempty"`
	Conflict     string        `json:"conflict,omitempty" yaml:"conflict,omitempty"` // "last-write-wins" or "reject-stale"
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	FlushTimeout time.Duration `json:"flush_timeout,omitempty" yaml:"flush_timeout,omitempty"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// LogConfig mirrors the zap.Config knobs the CLI exposes
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Encoding          string `json:"encoding" yaml:"encoding"` // "json" or "console"
	Output            string `json:"output,omitempty" yaml:"output,omitempty"`
	Development       bool   `json:"development,omitempty" yaml:"development,omitempty"`
	Sampling          bool   `json:"sampling,omitempty" yaml:"sampling,omitempty"`
	DisableCaller     bool   `json:"disable_caller,omitempty" yaml:"disable_caller,omitempty"`
	DisableStacktrace bool   `json:"disable_stacktrace,omitempty" yaml:"disable_stacktrace,omitempty"`
}

// AuthConfig signs login tokens. The secret may also come from the
// environment variable named by SecretEnv.
type AuthConfig struct {
	Secret    string        `json:"secret,omitempty" yaml:"secret,omitempty"`
	SecretEnv string        `json:"secret_env,omitempty" yaml:"secret_env,omitempty"`
	TokenTTL  time.Duration `json:"token_ttl" yaml:"token_ttl"`
	TokenFile string        `json:"token_file,omitempty" yaml:"token_file,omitempty"`
}

// AnalyzeConfig configures AI trade reviews
type AnalyzeConfig struct {
	Model     string `json:"model" yaml:"model"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
}

// RiskConfig is the personal pre-trade policy. Zero values disable a check.
type RiskConfig struct {
	DefaultRiskPct float64 `json:"default_risk_pct,omitempty" yaml:"default_risk_pct,omitempty"`
	MaxRiskPct     float64 `json:"max_risk_pct,omitempty" yaml:"max_risk_pct,omitempty"`
	MinRR          float64 `json:"min_rr,omitempty" yaml:"min_rr,omitempty"`
	MaxOpenTrades  int     `json:"max_open_trades,omitempty" yaml:"max_open_trades,omitempty"`
}

type DisplayConfig struct {
	Timezone  string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	WordWrap  int    `json:"word_wrap,omitempty" yaml:"word_wrap,omitempty"`
	PlainText bool   `json:"plain_text,omitempty" yaml:"plain_text,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User.ID) == "" {
		return fmt.Errorf("user.id is required")
	}
	switch c.Store.Type {
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store db_path required for sqlite type")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store redis.addr required for redis type")
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'sqlite', 'redis' or 'memory'")
	}
	switch c.Store.Conflict {
	case "", "last-write-wins", "reject-stale":
	default:
		return fmt.Errorf("store.conflict must be 'last-write-wins' or 'reject-stale'")
	}
	if c.Store.PollInterval < 0 || c.Store.FlushTimeout < 0 {
		return fmt.Errorf("store durations must not be negative")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Analyze.Model == "" {
		return fmt.Errorf("analyze.model is required")
	}
	if c.Display.Timezone != "" {
		if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
			return fmt.Errorf("display.timezone: %w", err)
		}
	}
	if c.Display.WordWrap < 0 {
		return fmt.Errorf("display.word_wrap must not be negative")
	}
	if c.Risk.DefaultRiskPct < 0 || c.Risk.DefaultRiskPct > 100 || c.Risk.MaxRiskPct < 0 || c.Risk.MaxRiskPct > 100 {
		return fmt.Errorf("risk percentages must be between 0 and 100")
	}
	if c.Risk.MaxRiskPct > 0 && c.Risk.DefaultRiskPct > c.Risk.MaxRiskPct {
		return fmt.Errorf("risk.default_risk_pct must not exceed risk.max_risk_pct")
	}
	if c.Risk.MinRR < 0 || c.Risk.MaxOpenTrades < 0 {
		return fmt.Errorf("risk limits must not be negative")
	}
	return nil
}

// AuthSecret returns the configured signing secret, preferring the
// environment.
func (c *Config) AuthSecret() string {
	if c.Auth.SecretEnv != "" {
		if v := os.Getenv(c.Auth.SecretEnv); v != "" {
			return v
		}
	}
	return c.Auth.Secret
}

// Location returns the display time zone, the local zone when unset.
func (c *Config) Location() *time.Location {
	if c.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Dir is the per-user directory holding the config, database and token.
func Dir() string {
	if d := os.Getenv("TRACKER_HOME"); d != "" {
		return d
	}
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "tracker")
	}
	return ".tracker"
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	dir := Dir()
	return &Config{
		User: UserConfig{
			ID: "local",
		},
		Store: StoreConfig{
			Type:         "sqlite",
			DBPath:       filepath.Join(dir, "tracker.db"),
			Redis:        RedisConfig{Addr: "localhost:6379", Prefix: "tracker"},
			Conflict:     "last-write-wins",
			PollInterval: journal.DefaultPollInterval,
			FlushTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:    "warn",
			Encoding: "console",
			Output:   "stderr",
		},
		Auth: AuthConfig{
			SecretEnv: "TRACKER_AUTH_SECRET",
			TokenTTL:  30 * 24 * time.Hour,
			TokenFile: filepath.Join(dir, "token"),
		},
		Analyze: AnalyzeConfig{
			Model:     "gemini-2.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Display: DisplayConfig{
			WordWrap: 100,
		},
	}
}
