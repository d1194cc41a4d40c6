package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config contiene la configuración del servicio de caja leída del entorno
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Backend de back-office (API REST opaca)
	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	TerminalID      string `env:"TERMINAL_ID" envDefault:"caja-01"`
	DefaultOperator string `env:"DEFAULT_OPERATOR"`
	Currency        string `env:"CURRENCY" envDefault:"PEN"`

	// Movimientos con monto >= umbral requieren confirmación explícita
	HighValueThreshold string        `env:"HIGH_VALUE_THRESHOLD" envDefault:"1000"`
	SummaryPoll        time.Duration `env:"SUMMARY_POLL_INTERVAL" envDefault:"30s"`

	// Almacenamiento local de snapshots de cierre: sqlite | postgres
	SnapshotDriver string `env:"SNAPSHOT_DRIVER" envDefault:"sqlite"`
	SnapshotPath   string `env:"SNAPSHOT_PATH" envDefault:"caja-snapshots.db"`

	// DatabaseURL habilita journal de ventas, catálogo de métodos de pago y reportes
	DatabaseURL string `env:"DATABASE_URL"`

	PrometheusEnabled bool   `env:"PROMETHEUS_ENABLED" envDefault:"false"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load lee la configuración desde variables de entorno y la valida
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate verifica los valores que no se pueden expresar con tags
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.BackendURL); err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be greater than 0")
	}
	threshold, err := c.Threshold()
	if err != nil {
		return err
	}
	if !threshold.IsPositive() {
		return fmt.Errorf("HIGH_VALUE_THRESHOLD must be greater than 0")
	}
	if c.SummaryPoll < 0 {
		return fmt.Errorf("SUMMARY_POLL_INTERVAL must be >= 0")
	}
	switch strings.ToLower(c.SnapshotDriver) {
	case "sqlite":
		if strings.TrimSpace(c.SnapshotPath) == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the sqlite snapshot driver")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres snapshot driver")
		}
	default:
		return fmt.Errorf("SNAPSHOT_DRIVER %q is not supported (sqlite|postgres)", c.SnapshotDriver)
	}
	return nil
}

// Threshold devuelve el umbral de montos altos como decimal
func (c *Config) Threshold() (decimal.Decimal, error) {
	threshold, err := decimal.NewFromString(strings.TrimSpace(c.HighValueThreshold))
	if err != nil {
		return decimal.Zero, fmt.Errorf("HIGH_VALUE_THRESHOLD is invalid: %w", err)
	}
	return threshold, nil
}
