package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

var (
	ErrMissingToken      = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingWebhookURL = errors.New("WEBHOOK_URL is required when MODE=webhook")
)

// Telegram accepts 1-256 characters from this set as a webhook secret token.
var webhookSecretPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

// Mode selects how updates are received from Telegram.
type Mode string

const (
	ModePolling Mode = "polling"
	ModeWebhook Mode = "webhook"
)

// UnmarshalText accepts "poll", "polling" and "webhook" in any case.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "poll", "polling":
		*m = ModePolling
	case "webhook":
		*m = ModeWebhook
	default:
		return fmt.Errorf("unknown MODE %q, expected polling or webhook", string(text))
	}
	return nil
}

// Config keeps runtime settings for the bot.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	Supabase struct {
		URL string `env:"SUPABASE_URL"`
		Key string `env:"SUPABASE_KEY"`
	}

	// Local SQLite file used when Supabase is not configured.
	DatabaseURL string `env:"DATABASE_URL"`

	Mode        Mode   `env:"MODE" envDefault:"polling"`
	Port        int    `env:"PORT" envDefault:"8080"`
	WebhookURL  string `env:"WEBHOOK_URL"`
	PollTimeout int    `env:"POLL_TIMEOUT" envDefault:"60"`

	// Sent by Telegram in X-Telegram-Bot-Api-Secret-Token on every webhook call.
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"0s"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// A missing .env is fine: in production the variables are set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.Supabase.URL = strings.TrimSpace(cfg.Supabase.URL)
	cfg.Supabase.Key = strings.TrimSpace(cfg.Supabase.Key)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	cfg.WebhookSecret = strings.TrimSpace(cfg.WebhookSecret)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("POLL_TIMEOUT must not be negative")
	}
	if c.Mode == ModeWebhook {
		if c.WebhookURL == "" {
			return ErrMissingWebhookURL
		}
		u, err := url.Parse(c.WebhookURL)
		if err != nil {
			return fmt.Errorf("WEBHOOK_URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("WEBHOOK_URL %q has no host", c.WebhookURL)
		}
	}
	if c.WebhookSecret != "" && !webhookSecretPattern.MatchString(c.WebhookSecret) {
		return fmt.Errorf("WEBHOOK_SECRET must be 1-256 characters of A-Z, a-z, 0-9, _ and -")
	}
	return nil
}

// SupabaseConfigured reports whether both halves of the Supabase pair are set.
func (c Config) SupabaseConfigured() bool {
	return c.Supabase.URL != "" && c.Supabase.Key != ""
}

// SupabasePartial reports a pair with exactly one half set.
func (c Config) SupabasePartial() bool {
	return (c.Supabase.URL == "") != (c.Supabase.Key == "")
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// WebhookPath is the path component of WebhookURL, "/" when empty.
func (c Config) WebhookPath() string {
	u, err := url.Parse(c.WebhookURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}
