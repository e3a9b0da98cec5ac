package config

import (
	"fmt"
	"os"
	"strconv"

	"voucher-engine/internal/core"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup.
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins string
	JWTSecret      string
	LogLevel       string

	// DefaultGLAccountID balances a voucher whose bank account has no GL code and
	// whose company has no opening-difference setting.
	DefaultGLAccountID int
	// OpeningDifferenceSetting names the settings row holding the opening-balance
	// difference account.
	OpeningDifferenceSetting string

	// CLIUserID and CLICompanyID form the session of the one-shot CLI.
	CLIUserID    int
	CLICompanyID int
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		ServerPort:               getenv("SERVER_PORT", "8080"),
		AllowedOrigins:           os.Getenv("ALLOWED_ORIGINS"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		LogLevel:                 getenv("LOG_LEVEL", "info"),
		OpeningDifferenceSetting: getenv("OPENING_DIFFERENCE_SETTING", core.OpeningDifferenceSetting),
	}

	ids := []struct {
		key string
		dst *int
	}{
		{"DEFAULT_GL_ACCOUNT_ID", &cfg.DefaultGLAccountID},
		{"CLI_USER_ID", &cfg.CLIUserID},
		{"CLI_COMPANY_ID", &cfg.CLICompanyID},
	}
	for _, id := range ids {
		v := os.Getenv(id.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q", id.key, v)
		}
		*id.dst = n
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
