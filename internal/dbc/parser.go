// Package dbc loads Vector DBC signal databases into the model.
//
// Only the statements that feed the model are interpreted:
//
//	BO_        message definition
//	SG_        signal definition (multiplexer markers accepted)
//	BO_TX_BU_  additional message transmitters
//	VAL_       signal value descriptions (choices)
//	BA_        attribute values (database, message and signal scope)
//	BA_DEF_DEF_ attribute defaults
//
// Everything else (comments, value tables, environment variables, ...) is
// skipped. Statements terminated by ';' may span several lines.
package dbc

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

// ErrSyntax is matched by errors for DBC statements that cannot be parsed.
var ErrSyntax = errors.New("dbc syntax error")

type SyntaxError struct {
	File   string
	Line   int
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.File, e.Line, e.Reason, e.Text)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// placeholderNode is the DBC name for "no node".
const placeholderNode = "Vector__XXX"

var (
	reMessage = regexp.MustCompile(`^BO_\s+(\d+)\s+(\w+)\s*:\s*(\d+)\s+(\w+)`)
	reSignal  = regexp.MustCompile(
		`^SG_\s+(\w+)\s*(M|m\d+M?)?\s*:\s*(\d+)\|(\d+)@([01])([+-])\s*` +
			`\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)\s*` +
			`\[\s*([^|]+?)\s*\|\s*([^\]]+?)\s*\]\s*` +
			`"((?:[^"\\]|\\.)*)"\s*(.*)$`)
	reTransmitters = regexp.MustCompile(`^BO_TX_BU_\s+(\d+)\s*:\s*([^;]*);`)
	reValues       = regexp.MustCompile(`(?s)^VAL_\s+(\d+)\s+(\w+)\s+(.*);`)
	reValuePair    = regexp.MustCompile(`(\S+)\s+"((?:[^"\\]|\\.)*)"`)
	reAttrValue    = regexp.MustCompile(`(?s)^BA_\s+"(\w+)"\s+(.*);`)
	reAttrDefault  = regexp.MustCompile(`(?s)^BA_DEF_DEF_\s+"(\w+)"\s+(.*);`)
	reAttrSignal   = regexp.MustCompile(`(?s)^SG_\s+(\d+)\s+(\w+)\s+(.+)$`)
	reAttrMessage  = regexp.MustCompile(`(?s)^BO_\s+(\d+)\s+(.+)$`)
	reAttrOther    = regexp.MustCompile(`^(BU_|EV_|BU_SG_REL_|BU_BO_REL_|BU_EV_REL_)\s`)
)

// LoadOption configures LoadFile and Parse.
type LoadOption func(*loadOptions)

type loadOptions struct {
	encoding string
}

// WithEncoding sets the input text encoding: "auto" (UTF-8 when valid,
// Windows-1252 otherwise) or any WHATWG encoding name.
func WithEncoding(name string) LoadOption {
	return func(o *loadOptions) { o.encoding = name }
}

// LoadFile reads and parses a DBC file.
func LoadFile(path string, opts ...LoadOption) (*model.Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dbc: %w", err)
	}
	return Parse(path, data, opts...)
}

type sigRef struct {
	msg uint32
	sig string
}

// parser accumulates statements; assemble turns them into the model once
// the whole file is read, because VAL_ and BA_ may precede or follow BO_.
// Signals end up ordered by start bit within their message, ties in file
// order.
type parser struct {
	file     string
	messages []*model.Message
	txs      map[uint32][]string
	choices  map[sigRef][]model.Choice
	sigAttrs map[sigRef]attrs
	global   attrs
	defaults attrs
	current  *model.Message
	refs     map[*model.Signal]sigRef
	startBit map[*model.Signal]int
}

// Parse parses DBC text. name is used in error messages only.
func Parse(name string, data []byte, opts ...LoadOption) (*model.Database, error) {
	o := loadOptions{encoding: "auto"}
	for _, opt := range opts {
		opt(&o)
	}

	text, err := decode(data, o.encoding)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	p := &parser{
		file:     name,
		txs:      map[uint32][]string{},
		choices:  map[sigRef][]model.Choice{},
		sigAttrs: map[sigRef]attrs{},
		global:   attrs{},
		defaults: attrs{},
		refs:     map[*model.Signal]sigRef{},
		startBit: map[*model.Signal]int{},
	}

	for _, st := range splitStatements(text) {
		if err := p.statement(st); err != nil {
			return nil, err
		}
	}

	return p.assemble(), nil
}

func (p *parser) statement(st statement) error {
	switch st.keyword {
	case "BO_":
		return p.message(st)
	case "SG_":
		return p.signal(st)
	case "BO_TX_BU_":
		p.transmitters(st)
	case "VAL_":
		p.values(st)
	case "BA_":
		p.attribute(st)
	case "BA_DEF_DEF_":
		if m := reAttrDefault.FindStringSubmatch(st.text); m != nil {
			p.defaults[m[1]] = unquote(m[2])
		}
	default:
		// Any other statement does not feed the model.
		p.current = nil
	}
	return nil
}

func (p *parser) message(st statement) error {
	m := reMessage.FindStringSubmatch(st.text)
	if m == nil {
		return p.syntax(st, "malformed message definition")
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return p.syntax(st, "message id out of range")
	}

	msg := &model.Message{
		Name:    m[2],
		ID:      uint32(id),
		Senders: []string{},
	}
	if m[4] != placeholderNode {
		msg.Senders = append(msg.Senders, m[4])
	}
	p.messages = append(p.messages, msg)
	p.current = msg
	return nil
}

func (p *parser) signal(st statement) error {
	if p.current == nil {
		return p.syntax(st, "signal outside of a message")
	}
	m := reSignal.FindStringSubmatch(st.text)
	if m == nil {
		return p.syntax(st, "malformed signal definition")
	}

	start, err := strconv.Atoi(m[3])
	if err != nil {
		return p.syntax(st, "signal start bit out of range")
	}

	nums := make([]float64, 4)
	for i, s := range []string{m[7], m[8], m[9], m[10]} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p.syntax(st, "malformed signal number "+strconv.Quote(s))
		}
		nums[i] = v
	}

	sig := &model.Signal{
		Name:      m[1],
		Scale:     nums[0],
		Offset:    nums[1],
		Receivers: splitNodes(m[12]),
	}
	if nums[2] != 0 || nums[3] != 0 {
		sig.Minimum = &nums[2]
		sig.Maximum = &nums[3]
	}
	if unit := unescape(m[11]); unit != "" {
		sig.Unit = &unit
	}

	p.current.Signals = append(p.current.Signals, sig)
	p.refs[sig] = sigRef{msg: p.current.ID, sig: sig.Name}
	p.startBit[sig] = sortStartBit(start, m[5] == "0")
	return nil
}

func (p *parser) transmitters(st statement) {
	m := reTransmitters.FindStringSubmatch(st.text)
	if m == nil {
		return
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return
	}
	p.txs[uint32(id)] = append(p.txs[uint32(id)], splitNodes(m[2])...)
}

func (p *parser) values(st statement) {
	m := reValues.FindStringSubmatch(st.text)
	if m == nil {
		// Environment variable value descriptions carry no message id.
		return
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return
	}
	ref := sigRef{msg: uint32(id), sig: m[2]}

	var choices []model.Choice
	for _, pair := range reValuePair.FindAllStringSubmatch(m[3], -1) {
		choices = append(choices, model.Choice{
			Code:  pair[1],
			Label: model.NamedValue{Name: unescape(pair[2])},
		})
	}
	p.choices[ref] = choices
}

func (p *parser) attribute(st statement) {
	m := reAttrValue.FindStringSubmatch(st.text)
	if m == nil {
		return
	}
	name, rest := m[1], strings.TrimSpace(m[2])

	if sm := reAttrSignal.FindStringSubmatch(rest); sm != nil {
		id, err := strconv.ParseUint(sm[1], 10, 32)
		if err != nil {
			return
		}
		ref := sigRef{msg: uint32(id), sig: sm[2]}
		if p.sigAttrs[ref] == nil {
			p.sigAttrs[ref] = attrs{}
		}
		p.sigAttrs[ref][name] = unquote(sm[3])
		return
	}
	if reAttrMessage.MatchString(rest) || reAttrOther.MatchString(rest) {
		return
	}
	p.global[name] = unquote(rest)
}

func (p *parser) assemble() *model.Database {
	db := &model.Database{Messages: p.messages}

	if v, ok := p.lookup(RoleNetwork, sigRef{}); ok && v != "" {
		db.Network = &v
	}

	for _, msg := range p.messages {
		if db.Network != nil {
			bus := *db.Network
			msg.Bus = &bus
		}
		for _, tx := range p.txs[msg.ID] {
			msg.Senders = appendUniqueStr(msg.Senders, tx)
		}
		sort.SliceStable(msg.Signals, func(i, j int) bool {
			return p.startBit[msg.Signals[i]] < p.startBit[msg.Signals[j]]
		})

		for _, sig := range msg.Signals {
			ref := p.refs[sig]
			sig.Choices = p.choices[ref]

			if v, ok := p.lookup(RoleInitial, ref); ok {
				if raw, err := strconv.ParseFloat(v, 64); err == nil {
					initial := raw*sig.Scale + sig.Offset
					sig.Initial = &initial
				}
			}
			if v, ok := p.lookup(RoleSPN, ref); ok {
				if spn, err := strconv.ParseInt(v, 10, 64); err == nil {
					sig.SPN = &spn
				}
			}
		}
	}
	return db
}

// sortStartBit returns the bit position signals of a message are ordered by.
// Big-endian start bits count from the most significant bit of their byte,
// so they are mirrored within the byte to compare with little-endian ones.
func sortStartBit(start int, bigEndian bool) int {
	if bigEndian {
		return 8*(start/8) + (7 - start%8)
	}
	return start
}

func (p *parser) syntax(st statement, reason string) error {
	return &SyntaxError{File: p.file, Line: st.line, Text: st.text, Reason: reason}
}

// splitNodes splits a node list separated by commas and/or blanks, dropping
// the placeholder node. The result is never nil.
func splitNodes(s string) []string {
	nodes := []string{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) {
		if f != placeholderNode {
			nodes = append(nodes, f)
		}
	}
	return nodes
}

// unquote strips surrounding double quotes from an attribute value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return unescape(s[1 : len(s)-1])
	}
	return s
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}

func appendUniqueStr(slice []string, s string) []string {
	for _, v := range slice {
		if v == s {
			return slice
		}
	}
	return append(slice, s)
}
