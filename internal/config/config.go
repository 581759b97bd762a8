// Package config holds the conversion settings. Values come from struct-tag
// defaults, an optional YAML file and DBCREL_* environment variables, in
// that order of increasing precedence; the CLI applies its flags last.
package config

// Config holds all tool configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds DBC loading settings.
type InputConfig struct {
	// Encoding of the DBC file: "auto" or a WHATWG name (default: auto)
	Encoding string `yaml:"encoding" env:"DBCREL_INPUT_ENCODING" default:"auto"`
}

// OutputConfig holds table presentation settings. None of them affects row
// content or identifier assignment.
type OutputConfig struct {
	// Delimiter is the single field separator character (default: ,)
	Delimiter string `yaml:"delimiter" env:"DBCREL_DELIMITER" default:","`

	// Encoding is "utf-8-sig" (with byte-order mark), "utf-8" or a WHATWG name (default: utf-8-sig)
	Encoding string `yaml:"encoding" env:"DBCREL_ENCODING" default:"utf-8-sig"`

	// DecimalSeparator is "." or "," (default: .)
	DecimalSeparator string `yaml:"decimal-separator" env:"DBCREL_DECIMAL_SEPARATOR" default:"."`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"DBCREL_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"DBCREL_LOG_FORMAT" default:"text"`
}

// DelimiterRune returns the delimiter as a rune. Validate guarantees it is
// exactly one character.
func (c *OutputConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// DecimalComma reports whether numbers use ',' as decimal separator.
func (c *OutputConfig) DecimalComma() bool {
	return c.DecimalSeparator == ","
}
