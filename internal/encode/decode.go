package encode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/spellpack/internal/codec"
)

// ErrMalformedRecord is returned by Decode for records that do not match their header.
var ErrMalformedRecord = errors.New("malformed record")

// Field is one decoded attribute.
type Field struct {
	Key   string
	Value string
}

// Decode splits an encoded record back into its fields using the dictionary keys.
func Decode(keys []string, record string) ([]Field, error) {
	header, body, ok := strings.Cut(record, Separator)
	if !ok {
		return nil, fmt.Errorf("%w: no header separator", ErrMalformedRecord)
	}

	var names []string
	for len(header) > 0 {
		i, size, err := codec.ReadToken(header)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if i >= len(keys) {
			return nil, fmt.Errorf("%w: key %d not in dictionary", ErrMalformedRecord, i)
		}
		names = append(names, keys[i])
		header = header[size:]
	}

	values := strings.Split(body, Separator)
	if len(values) != len(names) {
		return nil, fmt.Errorf("%w: %d keys but %d values", ErrMalformedRecord, len(names), len(values))
	}

	fields := make([]Field, len(names))
	for i := range names {
		fields[i] = Field{Key: names[i], Value: values[i]}
	}
	return fields, nil
}
