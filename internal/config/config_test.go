package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN", "token")
	t.Setenv("GUILD_ID", "123")
	t.Setenv("ORGANIZER_ROLE_ID", "456")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "test.db")
}

func TestLoad_Defaults(t *testing.T) {
	setBase(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SuppressionTTL != 10*time.Second {
		t.Errorf("SuppressionTTL = %v", cfg.SuppressionTTL)
	}
	if cfg.LatePromptTimeout != 5*time.Minute {
		t.Errorf("LatePromptTimeout = %v", cfg.LatePromptTimeout)
	}
	if cfg.StoreTimeout != 2*time.Second {
		t.Errorf("StoreTimeout = %v", cfg.StoreTimeout)
	}
	if cfg.Locale != "en" || cfg.HTTPAddr != ":9090" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_PostgresDefaultURL(t *testing.T) {
	setBase(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cfg.DatabaseURL, "postgres://localhost") {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing token":    {"TOKEN": ""},
		"bad guild":        {"GUILD_ID": "abc"},
		"bad role":         {"ORGANIZER_ROLE_ID": ""},
		"bad channel":      {"DEFAULT_CHANNEL_ID": "general"},
		"unknown driver":   {"STORE_DRIVER": "mongo"},
		"bad database url": {"STORE_DRIVER": "postgres", "DATABASE_URL": "not a url"},
		"zero ttl":         {"SUPPRESSION_TTL": "0s"},
		"zero store limit": {"STORE_TIMEOUT": "0s"},
		"bad duration":     {"LATE_PROMPT_TIMEOUT": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setBase(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoad_RequiredVariables(t *testing.T) {
	for _, name := range []string{"TOKEN", "GUILD_ID", "ORGANIZER_ROLE_ID"} {
		t.Run(name, func(t *testing.T) {
			setBase(t)
			if err := os.Unsetenv(name); err != nil {
				t.Fatal(err)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not name %s", err, name)
			}
		})
	}
}
