// Package encode serializes classified records through a shared key dictionary.
package encode

import (
	"fmt"

	"github.com/udisondev/spellpack/internal/codec"
)

// Dictionary is an append-only list of attribute names. A name's index is
// the order it was first seen in, and its token is codec.Token(index).
type Dictionary struct {
	keys  []string
	index map[string]int
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

// Token returns the token of name, adding name if it is new.
func (d *Dictionary) Token(name string) (string, error) {
	i, ok := d.index[name]
	if !ok {
		i = len(d.keys)
		if i >= codec.MaxTokens {
			return "", fmt.Errorf("adding key %q: dictionary full: %w", name, codec.ErrTokenRange)
		}
		d.keys = append(d.keys, name)
		d.index[name] = i
	}
	return codec.Token(i)
}

// Index returns the position of name.
func (d *Dictionary) Index(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Keys returns a copy of the names in index order.
func (d *Dictionary) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of names.
func (d *Dictionary) Len() int {
	return len(d.keys)
}
