package dbc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// statement is one logical DBC statement with the line it starts on.
type statement struct {
	line    int
	keyword string
	text    string
}

// terminated lists the keywords whose statements end with ';' and may
// therefore continue on following lines.
var terminated = map[string]bool{
	"CM_":             true,
	"VAL_":            true,
	"VAL_TABLE_":      true,
	"BA_":             true,
	"BA_DEF_":         true,
	"BA_DEF_DEF_":     true,
	"BA_REL_":         true,
	"BA_DEF_REL_":     true,
	"BA_DEF_DEF_REL_": true,
	"BA_DEF_SGTYPE_":  true,
	"BA_SGTYPE_":      true,
	"BO_TX_BU_":       true,
	"EV_":             true,
	"ENVVAR_DATA_":    true,
	"SIG_GROUP_":      true,
	"SIG_VALTYPE_":    true,
	"SIG_TYPE_REF_":   true,
	"SGTYPE_":         true,
	"SG_MUL_VAL_":     true,
}

// splitStatements cuts DBC text into statements. A keyword standing alone on
// a line (as in the NS_ section) is not a statement start.
func splitStatements(text string) []statement {
	lines := strings.Split(text, "\n")
	var out []statement

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		keyword := strings.TrimSuffix(fields[0], ":")
		start := i + 1

		if terminated[keyword] && len(fields) > 1 {
			buf := trimmed
			for !hasTerminator(buf) && i+1 < len(lines) {
				i++
				buf += "\n" + strings.TrimRight(lines[i], "\r")
			}
			out = append(out, statement{line: start, keyword: keyword, text: buf})
			continue
		}

		out = append(out, statement{line: start, keyword: keyword, text: trimmed})
	}
	return out
}

// hasTerminator reports whether s contains a ';' outside double quotes.
func hasTerminator(s string) bool {
	inQuote := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}

// decode converts raw file bytes to text. "auto" keeps valid UTF-8 and
// falls back to Windows-1252, the customary DBC encoding.
func decode(data []byte, name string) (string, error) {
	var enc encoding.Encoding
	switch strings.ToLower(name) {
	case "", "auto":
		if utf8.Valid(data) {
			return strings.TrimPrefix(string(data), "\ufeff"), nil
		}
		enc = charmap.Windows1252
	default:
		e, err := htmlindex.Get(name)
		if err != nil {
			return "", fmt.Errorf("unknown encoding %q: %w", name, err)
		}
		enc = e
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(out), "\ufeff"), nil
}
