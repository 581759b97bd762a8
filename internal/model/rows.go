package model

import (
	"fmt"
	"strings"
	"unicode"
)

// Table describes the fixed schema of one output table. Column order is part
// of the output contract.
type Table struct {
	Name    string
	Header  []string
	Numeric []int // indexes of columns holding decimal numbers
}

var (
	CANTable = Table{
		Name: "CAN",
		Header: []string{
			"ID", "Network", "Message", "Descriptive_Name", "Simulink_Name",
			"Offset", "Scaling_Factor", "Min_Value", "Max_Value", "Default_Value",
			"Unit", "SPN", "ECU_Receivers", "ECU_Senders",
			"VTB_ID", "INP_ID", "OUT_ID",
		},
		Numeric: []int{5, 6, 7, 8, 9},
	}
	VTBTable = Table{
		Name:   "VTB",
		Header: []string{"ID", "Descriptive_Name", "Simulink_Name", "ARR_ID_Input", "ARR_ID_Output"},
	}
	ARRTable = Table{
		Name:   "ARR",
		Header: []string{"ID", "Values", "Unit"},
	}
)

// CANRow is the signal fact row, one per signal occurrence.
type CANRow struct {
	ID            string
	Network       string
	Message       string
	Signal        string
	SimulinkName  string
	Offset        string
	Scale         string
	Minimum       string
	Maximum       string
	Default       string
	Unit          string
	SPN           string
	Receivers     string
	Senders       string
	BridgeID      string
	InputArrayID  string
	OutputArrayID string
}

func (r CANRow) Record() []string {
	return []string{
		r.ID, r.Network, r.Message, r.Signal, r.SimulinkName,
		r.Offset, r.Scale, r.Minimum, r.Maximum, r.Default,
		r.Unit, r.SPN, r.Receivers, r.Senders,
		r.BridgeID, r.InputArrayID, r.OutputArrayID,
	}
}

// VTBRow is the bridge row of one distinct enumeration.
type VTBRow struct {
	ID              string
	DescriptiveName string
	SimulinkName    string
	InputArrayID    string
	OutputArrayID   string
}

func (r VTBRow) Record() []string {
	return []string{r.ID, r.DescriptiveName, r.SimulinkName, r.InputArrayID, r.OutputArrayID}
}

// ARRRow holds one distinct sequence of codes or labels.
type ARRRow struct {
	ID     string
	Values string // flattened
	Unit   string
}

func (r ARRRow) Record() []string {
	return []string{r.ID, r.Values, r.Unit}
}

// Flatten renders a list as a single display field: each token is quoted
// the way a Python list literal prints it, tokens are joined by one space,
// and structural punctuation ([ ] ' ,) is stripped. A token containing a
// single quote but no double quote therefore keeps its double quotes
// ("Its on"). The transform is lossy and not meant to be parsed back.
func Flatten(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = flattenStrip.Replace(pyQuote(v))
	}
	return strings.Join(parts, " ")
}

var flattenStrip = strings.NewReplacer("[", "", "]", "", "'", "", ",", "")

// pyQuote quotes s like Python's repr of a str.
func pyQuote(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
