package model

// Label is the text side of an enumeration entry. It has exactly two
// variants: NamedValue and PlainText. Use LabelText to read it.
type Label interface {
	label()
}

// NamedValue is a label that exposes a display name, as produced for VAL_
// entries by the DBC loader.
type NamedValue struct {
	Name string
}

// PlainText is a label that is just its own text.
type PlainText string

func (NamedValue) label() {}
func (PlainText) label()  {}

// LabelText extracts the display text of a label. A nil label yields "".
func LabelText(l Label) string {
	switch v := l.(type) {
	case NamedValue:
		return v.Name
	case *NamedValue:
		if v == nil {
			return ""
		}
		return v.Name
	case PlainText:
		return string(v)
	default:
		return ""
	}
}

// Choice is one code→label pair of a signal enumeration. Code keeps the raw
// token text; it is interpreted as an integer during canonicalization.
type Choice struct {
	Code  string
	Label Label
}
