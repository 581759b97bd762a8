package normalize

import (
	"fmt"
	"strconv"
)

// IDWidth is the zero-padding width of every surrogate identifier.
const IDWidth = 4

// Sequence mints identifiers for one table: PREFIX_0001, PREFIX_0002, ...
// Numbers past the padding width keep growing (PREFIX_10000); Overflowed
// reports when that happened.
type Sequence struct {
	prefix string
	width  int
	n      int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, width: IDWidth}
}

// Next increments the counter and returns the new identifier.
func (s *Sequence) Next() string {
	s.n++
	return fmt.Sprintf("%s_%0*d", s.prefix, s.width, s.n)
}

// Count returns how many identifiers were minted.
func (s *Sequence) Count() int { return s.n }

func (s *Sequence) Overflowed() bool {
	return len(strconv.Itoa(s.n)) > s.width
}

// Sequences holds the three per-table counters of one conversion pass.
type Sequences struct {
	CAN *Sequence
	VTB *Sequence
	ARR *Sequence
}

func NewSequences() *Sequences {
	return &Sequences{
		CAN: NewSequence("CAN"),
		VTB: NewSequence("VTB"),
		ARR: NewSequence("ARR"),
	}
}
