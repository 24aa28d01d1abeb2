package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env"
	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when no --env-file is given. Its absence is
// not an error.
const DefaultEnvFile = ".env"

// Overrides are values taken from command-line flags. Empty fields are
// left alone.
type Overrides struct {
	APIBase     string
	LogLevel    string
	ConsoleAddr string
	OpsAddr     string
	Mirror      string
}

func loadDefault(defaultValues string, cfg *Config) error {
	if _, err := toml.Decode(defaultValues, cfg); err != nil {
		return err
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	bs, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(bs), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadEnv parses every section explicitly so nested sections pick up
// their variables too.
func loadEnv(cfg *Config) error {
	sections := []interface{}{
		cfg,
		&cfg.API,
		&cfg.Resilience,
		&cfg.Resilience.CircuitBreakerConfig,
		&cfg.Mirror,
		&cfg.Mirror.Redis,
		&cfg.Log,
		&cfg.Console,
		&cfg.Ops,
	}
	for _, section := range sections {
		if err := env.Parse(section); err != nil {
			return err
		}
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process
// environment without overriding variables that are already set. A
// missing DefaultEnvFile is ignored; any other missing file is an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == DefaultEnvFile {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration: Default, then DefaultValues, then the
// TOML file at filePath (if any), then the environment, then overrides.
// The result is validated.
func Load(filePath string, overrides Overrides) (*Config, error) {
	cfg := Default()

	if err := loadDefault(DefaultValues, &cfg); err != nil {
		return nil, fmt.Errorf("error loading default configuration: %w", err)
	}
	// Get file configuration
	var errLoadFile error
	if filePath != "" {
		errLoadFile = loadFile(filePath, &cfg)
	}
	// Overwrite file configuration with the env configuration
	errLoadEnv := loadEnv(&cfg)
	if errLoadFile != nil {
		return nil, fmt.Errorf("error loading configuration file: %w", errLoadFile)
	}
	if errLoadEnv != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", errLoadEnv)
	}

	overrides.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (o Overrides) apply(cfg *Config) {
	if o.APIBase != "" {
		cfg.API.BaseURL = o.APIBase
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.ConsoleAddr != "" {
		cfg.Console.Addr = o.ConsoleAddr
	}
	if o.OpsAddr != "" {
		cfg.Ops.Addr = o.OpsAddr
	}
	if o.Mirror != "" {
		cfg.Mirror.Backend = o.Mirror
	}
}

var validate = validator.New()

// Validate checks every section against its validate tags.
func (c *Config) Validate() error {
	if c.Ops.Enabled && c.Ops.Addr == "" {
		return errors.New("config: Ops.Addr is required when the ops server is enabled")
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
}
