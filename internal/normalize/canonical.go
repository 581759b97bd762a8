// Package normalize turns the message/signal hierarchy into three relational
// tables. Enumerations that repeat across signals are stored once and shared
// through sequential surrogate identifiers; the output depends only on the
// order of the input, never on map iteration order.
package normalize

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/StinkyLord/dbc-relational/internal/model"
)

// Key is the canonical form of an enumeration: codes ascending, labels in
// the matching order. Codes are integers of any size in canonical decimal
// form ("-1", "0", "18446744073709551615").
type Key struct {
	Codes  []string
	Labels []string
}

// Canonicalize sorts the choices by numeric code. The result only depends on
// the set of code/label pairs, not on the order they were declared in.
func Canonicalize(choices []model.Choice) (Key, error) {
	type pair struct {
		code  *big.Int
		label string
	}

	pairs := make([]pair, 0, len(choices))
	for _, c := range choices {
		code, ok := new(big.Int).SetString(strings.TrimSpace(c.Code), 10)
		if !ok {
			return Key{}, &MalformedChoiceKeyError{Code: c.Code, Err: strconv.ErrSyntax}
		}
		pairs = append(pairs, pair{code: code, label: model.LabelText(c.Label)})
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].code.Cmp(pairs[j].code) < 0 })

	key := Key{
		Codes:  make([]string, len(pairs)),
		Labels: make([]string, len(pairs)),
	}
	for i, p := range pairs {
		if i > 0 && pairs[i-1].code.Cmp(p.code) == 0 {
			return Key{}, &DuplicateChoiceCodeError{
				Code:   p.code.String(),
				Labels: [2]string{pairs[i-1].label, p.label},
			}
		}
		key.Codes[i] = p.code.String()
		key.Labels[i] = p.label
	}
	return key, nil
}

// codesKey and labelsKey are injective string forms used as map keys.
func (k Key) codesKey() string {
	return strings.Join(k.Codes, ",")
}

func (k Key) labelsKey() string {
	var b strings.Builder
	for i, l := range k.Labels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(l))
	}
	return b.String()
}
