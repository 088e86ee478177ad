// Package config содержит логику чтения конфигурации панели продаж.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress       = "localhost:8080"
	defaultTokenType        = "frontEndTest"
	defaultSalesAPITimeout  = 10 * time.Second
	defaultSessionTTL       = 30 * time.Minute
	defaultSessionRetention = 7 * 24 * time.Hour
)

// ErrNoSalesAPI возвращается, если адрес API продаж не задан.
var ErrNoSalesAPI = errors.New("sales API address is not configured")

// Config содержит параметры конфигурации панели продаж.
type Config struct {
	RunAddress         string        `env:"RUN_ADDRESS"`
	SalesAPIURL        string        `env:"SALES_API_URL"`
	SalesAPITokenType  string        `env:"SALES_API_TOKEN_TYPE"`
	SalesAPITimeout    time.Duration `env:"SALES_API_TIMEOUT"`
	DatabaseURI        string        `env:"DATABASE_URI"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	SessionTTL         time.Duration `env:"SESSION_TTL"`
	SessionRetention   time.Duration `env:"SESSION_RETENTION"`
	SecureCookie       bool          `env:"SESSION_COOKIE_SECURE"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Parse считывает конфигурацию из флагов командной строки, файла .env и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var corsOrigins string

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.SalesAPIURL, "u", "", "sales API base URL")
	flag.StringVar(&cfg.SalesAPITokenType, "t", defaultTokenType, "token type sent to the authorize endpoint")
	flag.DurationVar(&cfg.SalesAPITimeout, "timeout", defaultSalesAPITimeout, "sales API request timeout, 0 disables it")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI for session storage")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing secret")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", defaultSessionTTL, "idle time before a session is evicted from memory")
	flag.DurationVar(&cfg.SessionRetention, "session-retention", defaultSessionRetention, "how long stored sessions are kept")
	flag.BoolVar(&cfg.SecureCookie, "secure-cookie", false, "mark the session cookie as Secure")
	flag.StringVar(&corsOrigins, "cors", "", "comma separated origins allowed to call /api")

	flag.Parse()

	cfg.CORSAllowedOrigins = splitList(corsOrigins)

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.SalesAPIURL = strings.TrimRight(strings.TrimSpace(cfg.SalesAPIURL), "/")
	if cfg.SalesAPIURL == "" {
		return nil, ErrNoSalesAPI
	}
	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.SalesAPITokenType == "" {
		cfg.SalesAPITokenType = defaultTokenType
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
