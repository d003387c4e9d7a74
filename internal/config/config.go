// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"import-cost/core/types"
	"import-cost/internal/errors"
	"import-cost/internal/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "IMPORT_COST_"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Calculator contains the default rates and currency symbols
	Calculator CalculatorConfig `json:"calculator" yaml:"calculator"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Server contains HTTP API configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// History contains saved-quote storage configuration
	History HistoryConfig `json:"history" yaml:"history"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// CalculatorConfig contains calculation defaults
type CalculatorConfig struct {
	// ExchangeRate converts source to target currency; 0 means unknown
	ExchangeRate float64 `json:"exchange_rate" yaml:"exchange_rate" validate:"gte=0"`

	// ICMSRate is the consumption-tax percentage; nil applies the default of 18
	ICMSRate *float64 `json:"icms_rate,omitempty" yaml:"icms_rate,omitempty" validate:"omitempty,gte=0,lte=100"`

	// SourceSymbol is shown next to prices and freight
	SourceSymbol string `json:"source_symbol" yaml:"source_symbol" validate:"required"`

	// TargetSymbol is shown next to taxes and totals
	TargetSymbol string `json:"target_symbol" yaml:"target_symbol" validate:"required"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format" validate:"oneof=cli text json xlsx pdf"`

	// ShowDetails includes the calculation trace in CLI output
	ShowDetails bool `json:"show_details" yaml:"show_details"`

	// NoColor disables ANSI colors
	NoColor bool `json:"no_color" yaml:"no_color"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" yaml:"addr" validate:"required"`

	// ReadTimeoutSeconds bounds request reading
	ReadTimeoutSeconds int `json:"read_timeout_seconds" yaml:"read_timeout_seconds" validate:"gte=0"`

	// WriteTimeoutSeconds bounds response writing
	WriteTimeoutSeconds int `json:"write_timeout_seconds" yaml:"write_timeout_seconds" validate:"gte=0"`

	// AllowedOrigins enables CORS for these origins; empty disables it
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

// HistoryConfig contains saved-quote storage settings
type HistoryConfig struct {
	// Backend is file or memory
	Backend string `json:"backend" yaml:"backend" validate:"oneof=file memory"`

	// Directory holds one JSON file per saved quote
	Directory string `json:"directory" yaml:"directory"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Calculator: CalculatorConfig{
			SourceSymbol: types.CurrencyCNY.Symbol(),
			TargetSymbol: types.CurrencyBRL.Symbol(),
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowDetails:   false,
		},
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
		},
		History: HistoryConfig{
			Backend:   "file",
			Directory: filepath.Join(homeDir(), ".import-cost", "history"),
		},
		Logging: logging.DefaultConfig(),
	}
}

func homeDir() string {
	dir, _ := os.UserHomeDir()
	return dir
}

// DefaultPath returns the per-user configuration file
func DefaultPath() string {
	return filepath.Join(homeDir(), ".import-cost", "config.yaml")
}

// Configuration converts the calculator defaults into calculation input
func (c CalculatorConfig) Configuration() types.Configuration {
	cfg := types.Configuration{ExchangeRate: decimal.NewFromFloat(c.ExchangeRate)}
	if c.ICMSRate != nil {
		cfg.ICMSRate = decimal.NewNullDecimal(decimal.NewFromFloat(*c.ICMSRate))
	}
	return cfg
}

// Load reads a JSON or YAML file, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := unmarshal(path, data, cfg); err != nil {
				return nil, errors.Config("parse "+path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Config("read "+path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays IMPORT_COST_* variables, reading a .env file in the
// working directory first when one exists.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string { return s }), nil); err != nil {
		return errors.Config("load env", err)
	}

	if v := k.String(EnvPrefix + "EXCHANGE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Config(EnvPrefix+"EXCHANGE_RATE", err)
		}
		c.Calculator.ExchangeRate = rate
	}
	if v := k.String(EnvPrefix + "ICMS_RATE"); v != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Config(EnvPrefix+"ICMS_RATE", err)
		}
		c.Calculator.ICMSRate = &rate
	}
	if v := k.String(EnvPrefix + "SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := k.String(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := k.String(EnvPrefix + "ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := k.String(EnvPrefix + "HISTORY_DIR"); v != "" {
		c.History.Directory = v
	}
	if v := k.String(EnvPrefix + "OUTPUT_FORMAT"); v != "" {
		c.Output.DefaultFormat = strings.ToLower(v)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and enumerations
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.Newf(errors.TypeValidation, "invalid configuration: %s failed %s", fe.Namespace(), fe.Tag()).
				WithContext("field", fe.Namespace())
		}
		return errors.Config("validate", err)
	}
	return nil
}

// Save writes configuration as JSON or YAML depending on the extension
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("create "+dir, err)
	}

	data, err := c.Marshal(formatOf(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes the configuration as "json" or "yaml"
func (c *Config) Marshal(format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if format == "yaml" {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return nil, errors.Config("encode configuration", err)
	}
	return data, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if formatOf(path) == "yaml" {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
