package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DBCREL_INPUT_ENCODING", "DBCREL_DELIMITER", "DBCREL_ENCODING",
		"DBCREL_DECIMAL_SEPARATOR", "DBCREL_LOG_LEVEL", "DBCREL_LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbcrel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Input.Encoding)
	assert.Equal(t, ",", cfg.Output.Delimiter)
	assert.Equal(t, "utf-8-sig", cfg.Output.Encoding)
	assert.Equal(t, ".", cfg.Output.DecimalSeparator)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	opts := cfg.OutputOptions()
	assert.Equal(t, ',', opts.Delimiter)
	assert.False(t, opts.DecimalComma)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
output:
  delimiter: ";"
  decimal-separator: ","
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ";", cfg.Output.Delimiter)
	assert.Equal(t, ",", cfg.Output.DecimalSeparator)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, "utf-8-sig", cfg.Output.Encoding)
	assert.Equal(t, "text", cfg.Logging.Format)

	opts := cfg.OutputOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.True(t, opts.DecimalComma)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "output:\n  delimiter: \";\"\n")
	t.Setenv("DBCREL_DELIMITER", "\t")
	t.Setenv("DBCREL_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "\t", cfg.Output.Delimiter)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "output: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestResolve_DoesNotValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("DBCREL_LOG_LEVEL", "loud")

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "loud", cfg.Logging.Level)
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Input:   InputConfig{Encoding: "auto"},
			Output:  OutputConfig{Delimiter: ",", Encoding: "utf-8-sig", DecimalSeparator: "."},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"windows input", func(c *Config) { c.Input.Encoding = "windows-1252" }, ""},
		{"unknown input encoding", func(c *Config) { c.Input.Encoding = "klingon" }, "input.encoding"},
		{"empty delimiter", func(c *Config) { c.Output.Delimiter = "" }, "single character"},
		{"long delimiter", func(c *Config) { c.Output.Delimiter = ";;" }, "single character"},
		{"quote delimiter", func(c *Config) { c.Output.Delimiter = `"` }, "quote or line break"},
		{"bad decimal", func(c *Config) { c.Output.DecimalSeparator = "_" }, "decimal-separator"},
		{"decimal equals delimiter", func(c *Config) { c.Output.DecimalSeparator = "," }, "must differ"},
		{"unknown output encoding", func(c *Config) { c.Output.Encoding = "klingon" }, "output.encoding"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	cfg := &Config{
		Input:   InputConfig{Encoding: "auto"},
		Output:  OutputConfig{Delimiter: "", Encoding: "utf-8", DecimalSeparator: "."},
		Logging: LoggingConfig{Level: "loud", Format: "xml"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.delimiter")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
}
