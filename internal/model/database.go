// Package model defines the data structures shared by the loader, the
// normalization engine and the table writers.
package model

import (
	"errors"
	"strconv"
)

// NA is the sentinel rendered for every absent attribute or reference.
const NA = "NA"

// ErrMissingAttribute is returned by attribute accessors when the source
// object does not carry the requested attribute.
var ErrMissingAttribute = errors.New("missing attribute")

// Database is the loaded signal database: an ordered list of messages.
type Database struct {
	// Network is the database-level bus/network name, if declared.
	Network  *string
	Messages []*Message
}

// SignalCount returns the number of signals across all messages.
func (d *Database) SignalCount() int {
	n := 0
	for _, m := range d.Messages {
		n += len(m.Signals)
	}
	return n
}

type Message struct {
	Name    string
	ID      uint32
	Bus     *string  // network/bus name, nil when not declared
	Senders []string // nil when the source has no sender information
	Signals []*Signal
}

// Signal is one signal of a message. Optional numeric attributes are pointers;
// nil means the source did not declare them.
type Signal struct {
	Name      string
	Offset    float64
	Scale     float64
	Minimum   *float64
	Maximum   *float64
	Initial   *float64
	Unit      *string
	SPN       *int64
	Receivers []string // nil when the source has no receiver information
	Choices   []Choice // in source order, possibly empty
}

// BusName returns the message's network name.
func (m *Message) BusName() (string, error) {
	if m.Bus == nil {
		return "", ErrMissingAttribute
	}
	return *m.Bus, nil
}

// SenderList returns the flattened senders.
func (m *Message) SenderList() (string, error) {
	if m.Senders == nil {
		return "", ErrMissingAttribute
	}
	return Flatten(m.Senders), nil
}

func (s *Signal) MinimumValue() (string, error) { return floatAttr(s.Minimum) }
func (s *Signal) MaximumValue() (string, error) { return floatAttr(s.Maximum) }
func (s *Signal) InitialValue() (string, error) { return floatAttr(s.Initial) }

func (s *Signal) UnitName() (string, error) {
	if s.Unit == nil {
		return "", ErrMissingAttribute
	}
	return *s.Unit, nil
}

func (s *Signal) SPNValue() (string, error) {
	if s.SPN == nil {
		return "", ErrMissingAttribute
	}
	return strconv.FormatInt(*s.SPN, 10), nil
}

// ReceiverList returns the flattened receivers.
func (s *Signal) ReceiverList() (string, error) {
	if s.Receivers == nil {
		return "", ErrMissingAttribute
	}
	return Flatten(s.Receivers), nil
}

// HasChoices reports whether the signal carries an enumeration.
func (s *Signal) HasChoices() bool {
	return len(s.Choices) > 0
}

func floatAttr(v *float64) (string, error) {
	if v == nil {
		return "", ErrMissingAttribute
	}
	return FormatNumber(*v), nil
}

// FormatNumber renders a number the shortest way that round-trips, without
// an exponent, using '.' as decimal separator.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
