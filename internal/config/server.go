package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds host settings read from the environment.
type Server struct {
	Addr            string        `env:"ETHERDUEL_ADDR"             envDefault:":8080"`
	CatalogPath     string        `env:"ETHERDUEL_CATALOG"          envDefault:"catalogs/default.yaml"`
	RulesPath       string        `env:"ETHERDUEL_RULES"            envDefault:"config/rules.yaml"`
	LogLevel        string        `env:"ETHERDUEL_LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"ETHERDUEL_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// LoadServer parses Server from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (s Server) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
