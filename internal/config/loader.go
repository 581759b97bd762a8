package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/dbc-relational/internal/output"
)

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Resolve is Load without validation, for callers that apply further
// overrides first.
func Resolve(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// loadStruct recursively applies environment overrides and defaults to the
// string fields of v. A value set by the YAML file is kept unless the
// environment overrides it.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}
		if fieldVal.Kind() != reflect.String {
			return fmt.Errorf("unsupported field type for %s: %s", envName, fieldVal.Kind())
		}

		if value, ok := os.LookupEnv(envName); ok && value != "" {
			fieldVal.SetString(value)
			continue
		}
		if fieldVal.String() == "" {
			fieldVal.SetString(field.Tag.Get("default"))
		}
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if enc := strings.ToLower(c.Input.Encoding); enc != "auto" {
		if _, err := htmlindex.Get(enc); err != nil {
			errs = append(errs, fmt.Sprintf("input.encoding (%q) must be auto or a known encoding name", c.Input.Encoding))
		}
	}

	if utf8.RuneCountInString(c.Output.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("output.delimiter (%q) must be a single character", c.Output.Delimiter))
	} else if strings.ContainsAny(c.Output.Delimiter, "\"\r\n") {
		errs = append(errs, fmt.Sprintf("output.delimiter (%q) cannot be a quote or line break", c.Output.Delimiter))
	}

	if c.Output.DecimalSeparator != "." && c.Output.DecimalSeparator != "," {
		errs = append(errs, fmt.Sprintf("output.decimal-separator (%q) must be one of: . ,", c.Output.DecimalSeparator))
	} else if c.Output.DecimalSeparator == c.Output.Delimiter {
		errs = append(errs, "output.decimal-separator must differ from output.delimiter")
	}

	if _, err := output.Encoding(c.Output.Encoding); err != nil {
		errs = append(errs, fmt.Sprintf("output.encoding: %v", err))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("logging.format (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// OutputOptions converts the output settings for the table writer.
func (c *Config) OutputOptions() output.Options {
	return output.Options{
		Delimiter:    c.Output.DelimiterRune(),
		Encoding:     c.Output.Encoding,
		DecimalComma: c.Output.DecimalComma(),
	}
}
