// Package config loads bank-admin settings: built-in defaults, an optional
// TOML file, BANKADMIN_* environment variables, then command-line flags.
package config

import (
	"time"

	"bank-admin/pkg/account"
	"bank-admin/pkg/client"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/mirror"
	"bank-admin/pkg/resilience"
)

// Config is the complete bank-admin configuration.
type Config struct {
	// Currency is the ISO code balances are displayed in
	Currency string `toml:"currency" env:"BANKADMIN_CURRENCY" validate:"required,len=3"`

	API        client.Config              `toml:"api"`
	Resilience resilience.ResilientConfig `toml:"resilience"`
	Mirror     mirror.Config              `toml:"mirror"`
	Log        logging.Config             `toml:"log"`
	Console    ConsoleConfig              `toml:"console"`
	Ops        OpsConfig                  `toml:"ops"`
}

// ConsoleConfig configures the web console listener.
type ConsoleConfig struct {
	Addr            string        `toml:"addr" env:"BANKADMIN_CONSOLE_ADDR" validate:"required"`
	ReadTimeout     time.Duration `toml:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `toml:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"BANKADMIN_SHUTDOWN_TIMEOUT" validate:"min=0"`
}

// OpsConfig configures the health, status and metrics listener.
type OpsConfig struct {
	Enabled bool   `toml:"enabled" env:"BANKADMIN_OPS_ENABLED"`
	Addr    string `toml:"addr" env:"BANKADMIN_OPS_ADDR"`
	// Namespace prefixes every Prometheus metric name
	Namespace string `toml:"namespace" validate:"required"`
}

// Default returns the built-in configuration before DefaultValues is applied.
func Default() Config {
	return Config{
		Currency:   account.DefaultCurrency,
		API:        client.DefaultConfig(),
		Resilience: resilience.DefaultResilientConfig(),
		Mirror:     mirror.DefaultConfig(),
		Log:        logging.DefaultConfig(),
		Console: ConsoleConfig{
			Addr:            ":8081",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Ops: OpsConfig{
			Enabled:   true,
			Addr:      ":9090",
			Namespace: "bank_admin",
		},
	}
}

// DefaultValues is the default configuration file. It is decoded over
// Default so that every knob is documented in one place.
const DefaultValues = `
currency = "USD"

[api]
base_url = "http://localhost:8080/api/accounts"
timeout = "10s"
user_agent = "bank-admin/1.0"

[resilience]
name = "accounts-api"
timeout = "5s"

[resilience.breaker]
max_requests = 1
interval = "0s"
open_timeout = "30s"
failure_threshold = 5

[mirror]
backend = "none"
namespace = "accounts"
list_ttl = "15s"
account_ttl = "30s"
not_found_ttl = "5s"
max_entries = 10000
warm = true

[mirror.writer]
queue_size = 1000
workers = 2
max_wait = "10ms"

[mirror.redis]
addr = "localhost:6379"
db = 0
key_prefix = "bank-admin:"
dial_timeout = "5s"
write_timeout = "3s"

[log]
level = "info"
format = "json"
output_paths = ["stderr"]

[console]
addr = ":8081"
read_timeout = "15s"
write_timeout = "15s"
shutdown_timeout = "10s"

[ops]
enabled = true
addr = ":9090"
namespace = "bank_admin"
`
