// Package config loads adaptutor's configuration: built-in defaults, then
// an optional YAML file, then ADAPTUTOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/adaptutor/internal/judge"
	"github.com/abhisek/adaptutor/internal/llm"
	"github.com/abhisek/adaptutor/internal/telemetry"
)

// Config is the full application configuration.
type Config struct {
	Database  DatabaseConfig   `yaml:"database"`
	Server    ServerConfig     `yaml:"server"`
	Judge     JudgeConfig      `yaml:"judge"`
	LLM       llm.Config       `yaml:"llm"`
	Grading   GradingConfig    `yaml:"grading"`
	Locking   LockingConfig    `yaml:"locking"`
	Log       LogConfig        `yaml:"log"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	Selector  SelectorConfig   `yaml:"selector"`
}

// DatabaseConfig selects the store. An empty DSN resolves to the default
// SQLite path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" validate:"required"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// JudgeConfig configures the Judge0 client. An empty URL disables code
// execution.
type JudgeConfig struct {
	URL               string        `yaml:"url" validate:"omitempty,url"`
	APIKey            string        `yaml:"api_key"`
	APIHost           string        `yaml:"api_host"`
	Base64            bool          `yaml:"base64"`
	PollInterval      time.Duration `yaml:"poll_interval" validate:"gt=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestTimeout    time.Duration `yaml:"request_timeout" validate:"gt=0"`
	DefaultLanguageID int           `yaml:"default_language_id" validate:"gt=0"`
	Workers           int           `yaml:"workers" validate:"min=1,max=64"`
	RatePerSecond     float64       `yaml:"rate_per_second" validate:"gte=0"`
}

// Enabled reports whether a judge endpoint is configured.
func (j JudgeConfig) Enabled() bool {
	return j.URL != ""
}

// ClientConfig converts to the judge client's config.
func (j JudgeConfig) ClientConfig() judge.Config {
	return judge.Config{
		URL:            j.URL,
		APIKey:         j.APIKey,
		APIHost:        j.APIHost,
		Base64:         j.Base64,
		PollInterval:   j.PollInterval,
		Timeout:        j.Timeout,
		RequestTimeout: j.RequestTimeout,
		RatePerSecond:  j.RatePerSecond,
	}
}

// GradingConfig controls the rubric grader. It only takes effect when an
// LLM provider is configured.
type GradingConfig struct {
	Enabled              bool          `yaml:"enabled"`
	ShortAnswerMaxTokens int           `yaml:"short_answer_max_tokens" validate:"min=1"`
	CodeMaxTokens        int           `yaml:"code_max_tokens" validate:"min=1"`
	Temperature          float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout              time.Duration `yaml:"timeout" validate:"gt=0"`
}

type LockingConfig struct {
	Backend   string        `yaml:"backend" validate:"oneof=local redis"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Mode string `yaml:"mode" validate:"oneof=dev prod"`
}

type SelectorConfig struct {
	MaxPerCall int `yaml:"max_per_call" validate:"min=1,max=3"`
	// LLMFill generates a question when a difficulty level is empty.
	LLMFill bool `yaml:"llm_fill"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Judge: JudgeConfig{
			PollInterval:      judge.DefaultPollInterval,
			Timeout:           judge.DefaultTimeout,
			RequestTimeout:    judge.DefaultRequestTimeout,
			DefaultLanguageID: judge.DefaultLanguageID,
			Workers:           4,
			RatePerSecond:     10,
		},
		LLM: llm.DefaultConfig(),
		Grading: GradingConfig{
			Enabled:              true,
			ShortAnswerMaxTokens: 300,
			CodeMaxTokens:        400,
			Timeout:              30 * time.Second,
		},
		Locking:   LockingConfig{Backend: "local", TTL: 10 * time.Second},
		Log:       LogConfig{Mode: "dev"},
		Telemetry: telemetry.Config{Exporter: telemetry.ExporterNone},
		Selector:  SelectorConfig{MaxPerCall: 3},
	}
}

// Load builds the configuration. path may be empty, in which case
// ADAPTUTOR_CONFIG and then $XDG_CONFIG_HOME/adaptutor/config.yaml are
// tried; a missing discovered file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	ApplyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns the config file location probed when none is given.
func DefaultPath() string {
	if p := os.Getenv("ADAPTUTOR_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "adaptutor", "config.yaml")
}

// ApplyEnv overrides cfg with ADAPTUTOR_* environment variables.
func ApplyEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(dst *time.Duration, key string) {
		if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
			*dst = d
		}
	}
	num := func(dst *int, key string) {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = n
		}
	}
	flag := func(dst *bool, key string) {
		if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
			*dst = b
		}
	}

	str(&cfg.Database.DSN, "ADAPTUTOR_DB")
	str(&cfg.Server.Addr, "ADAPTUTOR_ADDR")
	if v := os.Getenv("ADAPTUTOR_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	str(&cfg.Judge.URL, "ADAPTUTOR_JUDGE_URL")
	str(&cfg.Judge.APIKey, "ADAPTUTOR_JUDGE_API_KEY")
	str(&cfg.Judge.APIHost, "ADAPTUTOR_JUDGE_API_HOST")
	flag(&cfg.Judge.Base64, "ADAPTUTOR_JUDGE_BASE64")
	dur(&cfg.Judge.Timeout, "ADAPTUTOR_JUDGE_TIMEOUT")
	num(&cfg.Judge.Workers, "ADAPTUTOR_JUDGE_WORKERS")

	flag(&cfg.Grading.Enabled, "ADAPTUTOR_GRADING_ENABLED")

	str(&cfg.Locking.Backend, "ADAPTUTOR_LOCK_BACKEND")
	str(&cfg.Locking.RedisAddr, "ADAPTUTOR_REDIS_ADDR")

	str(&cfg.Log.Mode, "ADAPTUTOR_LOG_MODE")

	flag(&cfg.Telemetry.Enabled, "ADAPTUTOR_TRACING")
	str(&cfg.Telemetry.Exporter, "ADAPTUTOR_TRACE_EXPORTER")

	llm.ApplyEnv(&cfg.LLM)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and the LLM provider's keys.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
