package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"import-cost/internal/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "cli", cfg.Output.DefaultFormat)
	require.Equal(t, "¥", cfg.Calculator.SourceSymbol)
	require.False(t, cfg.Calculator.Configuration().HasExchangeRate())
	require.Equal(t, "file", cfg.History.Backend)
}

func TestLoadRejectsUnknownHistoryBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  backend: redis\n"), 0o644))

	_, err := Load(path)
	require.True(t, errors.IsType(err, errors.TypeValidation), "got %v", err)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calculator:
  exchange_rate: 0.847
  icms_rate: 0
  source_symbol: "¥"
  target_symbol: "R$"
output:
  default_format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Output.DefaultFormat)

	calc := cfg.Calculator.Configuration()
	require.Equal(t, "0.847", calc.ExchangeRate.String())
	require.True(t, calc.ICMSRate.Valid)
	require.True(t, calc.ICMSRate.Decimal.IsZero())
}

func TestLoadRejectsOutOfRangeICMS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"calculator": {"icms_rate": 150, "source_symbol": "¥", "target_symbol": "R$"}}`), 0o644))

	_, err := Load(path)
	require.True(t, errors.IsType(err, errors.TypeValidation), "got %v", err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IMPORT_COST_EXCHANGE_RATE", "0.75")
	t.Setenv("IMPORT_COST_ICMS_RATE", "12")
	t.Setenv("IMPORT_COST_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("IMPORT_COST_LOG_LEVEL", "DEBUG")
	t.Setenv("IMPORT_COST_HISTORY_DIR", "/tmp/quotes")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 0.75, cfg.Calculator.ExchangeRate)
	require.NotNil(t, cfg.Calculator.ICMSRate)
	require.Equal(t, 12.0, *cfg.Calculator.ICMSRate)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/quotes", cfg.History.Directory)
}

func TestEnvRejectsGarbage(t *testing.T) {
	t.Setenv("IMPORT_COST_EXCHANGE_RATE", "abc")
	_, err := Load("")
	require.True(t, errors.IsType(err, errors.TypeConfig), "got %v", err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Calculator.ExchangeRate = 0.9
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.9, loaded.Calculator.ExchangeRate)
	require.Equal(t, cfg.Server.Addr, loaded.Server.Addr)
}
