// Package config reads service configuration from the environment (optionally seeded from a
// .env file) and applies defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates every configuration section.
type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	Store    StoreConfig
	Airtable AirtableConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Image    ImageConfig
	Stripe   StripeConfig
	Google   GoogleConfig
	Auth     AuthConfig
	Ledger   LedgerConfig
}

type HTTPConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// VerifyRate and VerifyBurst bound access-code attempts per client IP.
	VerifyRate  time.Duration
	VerifyBurst int
}

type LogConfig struct {
	Level  string
	Format string // json|console
}

// StoreConfig selects where user records live: "airtable" or "sqlite".
type StoreConfig struct {
	Backend string
}

type AirtableConfig struct {
	APIKey string
	BaseID string
	Table  string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

type LLMConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	SiteURL  string
	SiteName string
}

type ImageConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	PollInterval   time.Duration
	RetryInterval  time.Duration
	MaxAttempts    int
	PlaceholderURL string
}

// Enabled reports whether an image endpoint is configured. Without one, image features
// serve the placeholder.
func (c ImageConfig) Enabled() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type GoogleConfig struct {
	CredentialsFile string
	LanguageCode    string
	Voice           string
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	AdminKeyHash string
}

type LedgerConfig struct {
	// TestMode is the initial value of the runtime setting; it is changed at runtime only
	// through the admin settings endpoint.
	TestMode      bool
	NarrationCost int
}

const (
	defaultAddr          = ":8080"
	defaultLLMBaseURL    = "https://openrouter.ai/api/v1"
	defaultLLMModel      = "anthropic/claude-3.5-sonnet"
	defaultPlaceholder   = "/static/placeholder-career.png"
	defaultSQLitePath    = "./career_portal.db"
	defaultAirtableTable = "Results"
)

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            valueOrDefault("SERVER_ADDR", defaultAddr),
			AllowedOrigins:  splitCSV(os.Getenv("SERVER_ALLOWED_ORIGINS")),
			ShutdownTimeout: durationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			VerifyRate:      durationOrDefault("VERIFY_RATE", 2*time.Second),
			VerifyBurst:     intOrDefault("VERIFY_BURST", 5),
		},
		Log: LogConfig{
			Level:  valueOrDefault("LOG_LEVEL", "info"),
			Format: valueOrDefault("LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(valueOrDefault("RECORD_STORE", "airtable")),
		},
		Airtable: AirtableConfig{
			APIKey: os.Getenv("AIRTABLE_API_KEY"),
			BaseID: os.Getenv("AIRTABLE_BASE_ID"),
			Table:  valueOrDefault("AIRTABLE_TABLE", defaultAirtableTable),
		},
		SQLite: SQLiteConfig{
			Path: valueOrDefault("SQLITE_PATH", defaultSQLitePath),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			LockTTL:  durationOrDefault("LEDGER_LOCK_TTL", 5*time.Second),
		},
		LLM: LLMConfig{
			APIKey:   os.Getenv("OPENROUTER_API_KEY"),
			BaseURL:  valueOrDefault("OPENROUTER_BASE_URL", defaultLLMBaseURL),
			Model:    valueOrDefault("OPENROUTER_MODEL", defaultLLMModel),
			Timeout:  durationOrDefault("OPENROUTER_TIMEOUT", 2*time.Minute),
			SiteURL:  os.Getenv("OPENROUTER_SITE_URL"),
			SiteName: valueOrDefault("OPENROUTER_SITE_NAME", "Career Results Portal"),
		},
		Image: ImageConfig{
			APIKey:         os.Getenv("IMAGE_API_KEY"),
			BaseURL:        os.Getenv("IMAGE_BASE_URL"),
			Model:          os.Getenv("IMAGE_MODEL"),
			PollInterval:   durationOrDefault("IMAGE_POLL_INTERVAL", 5*time.Second),
			RetryInterval:  durationOrDefault("IMAGE_RETRY_INTERVAL", 2*time.Second),
			MaxAttempts:    intOrDefault("IMAGE_MAX_ATTEMPTS", 60),
			PlaceholderURL: valueOrDefault("IMAGE_PLACEHOLDER_URL", defaultPlaceholder),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(valueOrDefault("STRIPE_CURRENCY", "chf")),
		},
		Google: GoogleConfig{
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			LanguageCode:    valueOrDefault("SPEECH_LANGUAGE", "en-US"),
			Voice:           valueOrDefault("TTS_VOICE", "en-US-Neural2-F"),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET_KEY"),
			SessionTTL:   durationOrDefault("SESSION_TTL", 12*time.Hour),
			AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		},
		Ledger: LedgerConfig{
			TestMode:      boolOrDefault("TEST_MODE", false),
			NarrationCost: intOrDefault("NARRATION_COST", 5),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Store.Backend {
	case "airtable":
		if c.Airtable.APIKey == "" || c.Airtable.BaseID == "" {
			return fmt.Errorf("AIRTABLE_API_KEY and AIRTABLE_BASE_ID are required for RECORD_STORE=airtable")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported RECORD_STORE %q", c.Store.Backend)
	}
	if c.Image.MaxAttempts <= 0 {
		return fmt.Errorf("IMAGE_MAX_ATTEMPTS must be positive")
	}
	if c.Ledger.NarrationCost < 0 {
		return fmt.Errorf("NARRATION_COST must not be negative")
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolOrDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
