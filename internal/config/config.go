package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const appDirName = "jobadmin"

// Config holds all configuration for the application
type Config struct {
	// Backend API Configuration
	Backend BackendConfig

	// Web console configuration
	Server ServerConfig

	// Session and credential persistence
	Session SessionConfig

	// Responsive chrome
	UI UIConfig

	// Logging Configuration
	Logging LoggingConfig
}

// BackendConfig holds the remote job-board API configuration
type BackendConfig struct {
	URL     string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// ServerConfig holds the web console listener configuration
type ServerConfig struct {
	ListenAddr     string `validate:"required"`
	AllowedOrigins []string
	// Host names accepted in addition to loopback ones
	TrustedHosts []string
}

// SessionConfig holds credential storage and verification settings
type SessionConfig struct {
	Store           string `validate:"oneof=file sqlite keyring memory"`
	StorePath       string
	VerifyOnStartup bool
	ProbeSchedule   string // Cron expression, empty = no periodic probe
}

// UIConfig holds layout shell settings
type UIConfig struct {
	CompactBreakpoint int `validate:"gt=0"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout, err := durationEnv("BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	breakpoint, err := intEnv("COMPACT_BREAKPOINT", 768)
	if err != nil {
		return nil, err
	}

	verify, err := boolEnv("VERIFY_ON_STARTUP", false)
	if err != nil {
		return nil, err
	}

	store := strings.ToLower(getEnv("CREDENTIAL_STORE", "file"))

	storePath := os.Getenv("CREDENTIAL_PATH")
	if storePath == "" {
		storePath, err = DefaultStorePath(store)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnv("BACKEND_URL", "https://jobs-backend-z4z9.onrender.com/api"), "/"),
			Timeout: timeout,
		},
		Server: ServerConfig{
			ListenAddr:     getEnv("LISTEN_ADDR", "127.0.0.1:5173"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
			TrustedHosts:   splitList(os.Getenv("TRUSTED_HOSTS")),
		},
		Session: SessionConfig{
			Store:           store,
			StorePath:       storePath,
			VerifyOnStartup: verify,
			ProbeSchedule:   strings.TrimSpace(os.Getenv("SESSION_PROBE_SCHEDULE")),
		},
		UI: UIConfig{
			CompactBreakpoint: breakpoint,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and the probe schedule syntax
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Session.ProbeSchedule != "" {
		if _, err := ParseSchedule(c.Session.ProbeSchedule); err != nil {
			return fmt.Errorf("invalid SESSION_PROBE_SCHEDULE: %w", err)
		}
	}

	return nil
}

// ParseSchedule parses a standard 5-field cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// DefaultStorePath returns the default location for the given credential store kind
func DefaultStorePath(store string) (string, error) {
	switch store {
	case "file", "sqlite":
	default:
		return "", nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".config", appDirName)
	if store == "sqlite" {
		return filepath.Join(dir, "jobadmin.sqlite"), nil
	}
	return filepath.Join(dir, "credentials.json"), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
