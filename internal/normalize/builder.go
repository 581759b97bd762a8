package normalize

import (
	"errors"
	"log/slog"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

// Tables holds the three output row sequences in identifier order.
type Tables struct {
	CAN []model.CANRow
	VTB []model.VTBRow
	ARR []model.ARRRow
}

// Option configures a Build call.
type Option func(*builder)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) { b.logger = l }
}

// WithProgress registers a callback invoked after every signal with the
// number of signals processed so far and the total.
func WithProgress(fn func(done, total int)) Option {
	return func(b *builder) { b.progress = fn }
}

type builder struct {
	seq      *Sequences
	cache    *Cache
	tables   *Tables
	logger   *slog.Logger
	progress func(done, total int)
}

// refs are the three enumeration references of a fact row.
type refs struct {
	bridge string
	input  string
	output string
}

var noRefs = refs{bridge: model.NA, input: model.NA, output: model.NA}

// Build walks messages and their signals in the given order and produces the
// relational tables. Every call starts from fresh counters and an empty
// cache, so identical input always yields identical tables. On error no
// tables are returned.
func Build(messages []*model.Message, opts ...Option) (*Tables, error) {
	b := &builder{
		seq:    NewSequences(),
		cache:  NewCache(),
		tables: &Tables{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	total := 0
	for _, m := range messages {
		total += len(m.Signals)
	}

	done := 0
	for _, msg := range messages {
		for _, sig := range msg.Signals {
			if err := b.addSignal(msg, sig); err != nil {
				return nil, &SignalError{Message: msg.Name, Signal: sig.Name, Err: err}
			}
			done++
			if b.progress != nil {
				b.progress(done, total)
			}
		}
	}

	for _, s := range []*Sequence{b.seq.CAN, b.seq.VTB, b.seq.ARR} {
		if s.Overflowed() {
			b.logger.Warn("identifier counter exceeded padding width",
				"table", s.prefix, "count", s.Count(), "width", s.width)
		}
	}

	bridges, inputs, outputs := b.cache.Len()
	b.logger.Debug("relational build finished",
		"signals", len(b.tables.CAN),
		"enumerations", bridges,
		"code_arrays", inputs,
		"label_arrays", outputs,
	)

	return b.tables, nil
}

func (b *builder) addSignal(msg *model.Message, sig *model.Signal) error {
	id := b.seq.CAN.Next()

	r := noRefs
	if sig.HasChoices() {
		key, err := Canonicalize(sig.Choices)
		if err != nil {
			return err
		}
		r = b.resolve(key)
	}

	b.tables.CAN = append(b.tables.CAN, model.CANRow{
		ID:            id,
		Network:       orNA(msg.BusName),
		Message:       msg.Name,
		Signal:        sig.Name,
		SimulinkName:  model.NA,
		Offset:        model.FormatNumber(sig.Offset),
		Scale:         model.FormatNumber(sig.Scale),
		Minimum:       orNA(sig.MinimumValue),
		Maximum:       orNA(sig.MaximumValue),
		Default:       orNA(sig.InitialValue),
		Unit:          orNA(sig.UnitName),
		SPN:           orNA(sig.SPNValue),
		Receivers:     orNA(sig.ReceiverList),
		Senders:       orNA(msg.SenderList),
		BridgeID:      r.bridge,
		InputArrayID:  r.input,
		OutputArrayID: r.output,
	})
	return nil
}

// resolve returns the identifiers for an enumeration, emitting bridge and
// array rows the first time a structure is seen.
func (b *builder) resolve(key Key) refs {
	if id, ok := b.cache.Bridge(key); ok {
		in, _ := b.cache.InputArray(key)
		out, _ := b.cache.OutputArray(key)
		return refs{bridge: id, input: in, output: out}
	}

	in, ok := b.cache.InputArray(key)
	if !ok {
		in = b.seq.ARR.Next()
		b.tables.ARR = append(b.tables.ARR, model.ARRRow{
			ID:     in,
			Values: model.Flatten(key.Codes),
			Unit:   model.NA,
		})
		b.cache.PutInputArray(key, in)
	}

	out, ok := b.cache.OutputArray(key)
	if !ok {
		out = b.seq.ARR.Next()
		b.tables.ARR = append(b.tables.ARR, model.ARRRow{
			ID:     out,
			Values: model.Flatten(key.Labels),
			Unit:   model.NA,
		})
		b.cache.PutOutputArray(key, out)
	}

	id := b.seq.VTB.Next()
	b.tables.VTB = append(b.tables.VTB, model.VTBRow{
		ID:              id,
		DescriptiveName: model.NA,
		SimulinkName:    model.NA,
		InputArrayID:    in,
		OutputArrayID:   out,
	})
	b.cache.PutBridge(key, id)

	b.logger.Debug("new enumeration", "vtb", id, "input", in, "output", out, "size", len(key.Codes))
	return refs{bridge: id, input: in, output: out}
}

// orNA projects an optional attribute, rendering an absent one as NA.
func orNA(get func() (string, error)) string {
	v, err := get()
	if errors.Is(err, model.ErrMissingAttribute) {
		return model.NA
	}
	return v
}
