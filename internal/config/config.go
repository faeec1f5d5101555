package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Token            string `env:"TOKEN,required,notEmpty"`
	GuildID          string `env:"GUILD_ID,required,notEmpty"`
	OrganizerRoleID  string `env:"ORGANIZER_ROLE_ID,required,notEmpty"`
	DefaultChannelID string `env:"DEFAULT_CHANNEL_ID"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"rosterbot.db"`
	RedisURL    string `env:"REDIS_URL"`

	SuppressionTTL    time.Duration `env:"SUPPRESSION_TTL" envDefault:"10s"`
	LatePromptTimeout time.Duration `env:"LATE_PROMPT_TIMEOUT" envDefault:"5m"`
	IOTimeout         time.Duration `env:"IO_TIMEOUT" envDefault:"5s"`
	StoreTimeout      time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
	ThreadSyncWorkers int           `env:"THREAD_SYNC_WORKERS" envDefault:"2"`
	ThreadSyncRate    float64       `env:"THREAD_SYNC_RATE" envDefault:"5"`

	Locale   string `env:"LOCALE" envDefault:"en"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":9090"`
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validate applique les règles de format ; la présence des champs est vérifiée par env.
func (c *Config) validate() error {
	if !isSnowflake(c.GuildID) {
		return fmt.Errorf("config: GUILD_ID must be a Discord guild ID (digits only)")
	}
	if !isSnowflake(c.OrganizerRoleID) {
		return fmt.Errorf("config: ORGANIZER_ROLE_ID must be a Discord role ID (digits only)")
	}
	if c.DefaultChannelID != "" && !isSnowflake(c.DefaultChannelID) {
		return fmt.Errorf("config: DEFAULT_CHANNEL_ID must be a Discord channel ID (digits only)")
	}

	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			// Valeur par défaut utile en local lorsque DATABASE_URL n'est pas fournie.
			c.DatabaseURL = "postgres://localhost:5432/rosterbot?sslmode=disable"
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("config: SQLITE_PATH is required with STORE_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (postgres or sqlite)", c.StoreDriver)
	}

	if c.RedisURL != "" {
		if _, err := url.Parse(c.RedisURL); err != nil {
			return fmt.Errorf("config: invalid REDIS_URL: %w", err)
		}
	}
	if c.SuppressionTTL <= 0 {
		return fmt.Errorf("config: SUPPRESSION_TTL must be positive")
	}
	if c.LatePromptTimeout <= 0 {
		return fmt.Errorf("config: LATE_PROMPT_TIMEOUT must be positive")
	}
	if c.IOTimeout <= 0 {
		return fmt.Errorf("config: IO_TIMEOUT must be positive")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("config: STORE_TIMEOUT must be positive")
	}
	if c.ThreadSyncWorkers < 1 {
		c.ThreadSyncWorkers = 1
	}
	return nil
}
