package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultPort                   = 3318
	DefaultSQLitePath             = "shared-friday.db"
	DefaultAdminCheckTimeout      = 5 * time.Second
	DefaultClaimCooldown          = time.Second
	DefaultMaxParticipantQuantity = 10
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SessionSalt   string
	EventSlugSalt string

	AdminCheckTimeout      time.Duration
	ClaimCooldown          time.Duration
	MaxParticipantQuantity int
}

// LoadEnvFile loads a .env file into the environment. Variables that are
// already set win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// BindFlags registers every config flag on fs
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	// Network config (can be CLI args or env)
	fs.IntVarP(&cfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&cfg.DatabaseURL, "database-url", "d", "", "Database URL or sqlite file path")
	fs.StringVarP(&cfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")
	fs.StringVar(&cfg.EventSlugSalt, "slug-salt", "", "Event share slug salt (prefer env)")

	// Tuning
	fs.DurationVar(&cfg.AdminCheckTimeout, "admin-timeout", 0, "How long to wait for the admin lookup")
	fs.DurationVar(&cfg.ClaimCooldown, "claim-cooldown", 0, "Minimum gap between claim requests from one user")
	fs.IntVar(&cfg.MaxParticipantQuantity, "max-participant-qty", 0, "Largest quantity a participant may add")
}

// Resolve fills unset fields from the environment, applies defaults and
// checks required values.
func Resolve(cfg Config) (Config, error) {
	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLitePath
	}

	// Secrets - MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	if cfg.EventSlugSalt == "" {
		cfg.EventSlugSalt = os.Getenv("EVENT_SLUG_SALT")
	}
	if cfg.EventSlugSalt == "" {
		return Config{}, errors.New("EVENT_SLUG_SALT required")
	}

	var err error
	if cfg.AdminCheckTimeout, err = durationFromEnv(cfg.AdminCheckTimeout, "ADMIN_CHECK_TIMEOUT", DefaultAdminCheckTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ClaimCooldown, err = durationFromEnv(cfg.ClaimCooldown, "CLAIM_COOLDOWN", DefaultClaimCooldown); err != nil {
		return Config{}, err
	}

	if cfg.MaxParticipantQuantity == 0 {
		cfg.MaxParticipantQuantity = DefaultMaxParticipantQuantity
		if s := os.Getenv("MAX_PARTICIPANT_QUANTITY"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return Config{}, errors.New("invalid MAX_PARTICIPANT_QUANTITY env variable")
			}
			cfg.MaxParticipantQuantity = n
		}
	}

	return cfg, nil
}

func durationFromEnv(current time.Duration, key string, def time.Duration) (time.Duration, error) {
	if current != 0 {
		return current, nil
	}
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}

// ParseFlags parses args and resolves the result against the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("shared-friday", pflag.ContinueOnError)
	BindFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return Resolve(cfg)
}
