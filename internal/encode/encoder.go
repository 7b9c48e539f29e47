package encode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/spellpack/internal/resolve"
	"github.com/udisondev/spellpack/internal/stats"
)

// Synthetic attributes added to every encoded record.
const (
	AttrOwner = "i"   // group index of a hide record's primary
	AttrLayer = "mod" // display name of the record's layer
)

// Separator between the header and values, and between values.
const Separator = "\x00"

// Encoder turns classified records into dictionary-encoded strings.
// It is not safe for concurrent use: the dictionary grows as records are encoded.
type Encoder struct {
	dict   *Dictionary
	layers []string
}

// NewEncoder returns an encoder naming layer weights after layers.
func NewEncoder(dict *Dictionary, layers []string) *Encoder {
	return &Encoder{dict: dict, layers: layers}
}

// Dictionary returns the encoder's key dictionary.
func (e *Encoder) Dictionary() *Dictionary {
	return e.dict
}

// Encode encodes every record of c in order.
func (e *Encoder) Encode(c *resolve.Classification) ([]string, error) {
	out := make([]string, len(c.Records))
	for i, rec := range c.Records {
		s, err := e.Record(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding record %d (%s): %w", i, rec.Entry.ID, err)
		}
		out[i] = s
	}
	return out, nil
}

// Record encodes one record: the concatenated key tokens, a NUL, and the
// values joined by NUL, both in attribute order.
func (e *Encoder) Record(rec resolve.Record) (string, error) {
	attrs := Attributes(rec, e.layers)

	var header strings.Builder
	values := make([]string, 0, attrs.Len())
	for _, name := range attrs.Names() {
		tok, err := e.dict.Token(name)
		if err != nil {
			return "", err
		}
		header.WriteString(tok)
		v, _ := attrs.Get(name)
		values = append(values, v)
	}

	return header.String() + Separator + strings.Join(values, Separator), nil
}

// Attributes returns the attributes a record is encoded with: Using is
// replaced by the index of the link target (or dropped when there is none),
// hide records get their owner group index, and every record gets its layer name.
func Attributes(rec resolve.Record, layers []string) stats.Attributes {
	attrs := rec.Entry.Attributes()

	if _, ok := attrs.Get(stats.AttrUsing); ok {
		if rec.Link == resolve.LinkNone {
			attrs.Delete(stats.AttrUsing)
		} else {
			attrs.Set(stats.AttrUsing, strconv.Itoa(rec.Target))
		}
	}
	if rec.Role == resolve.Hide {
		attrs.Set(AttrOwner, strconv.Itoa(rec.Group))
	}
	attrs.Set(AttrLayer, LayerName(layers, rec.Entry.Weight))

	return attrs
}

// LayerName returns the display name of weight, or the weight itself when
// no name is configured for it.
func LayerName(layers []string, weight int) string {
	if weight >= 0 && weight < len(layers) {
		return layers[weight]
	}
	return strconv.Itoa(weight)
}
