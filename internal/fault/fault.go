// Package fault defines the fatal error kinds of a conversion run.
//
// Parse warnings and lookup misses are not errors: they are reported by the
// stage that produced them and never abort a run.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfig       // missing or malformed configuration
	KindIO           // missing directory or unreadable file
	KindDecode       // XML that does not have the expected shape
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a fatal error tagged with its Kind.
type Error struct {
	Kind Kind
	Op   string // stage that failed, e.g. "load localization"
	Path string // file or directory involved, may be empty
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config wraps err as a configuration error.
func Config(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// IO wraps err as an I/O error on path.
func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// Decode wraps err as a decode error on path.
func Decode(op, path string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Path: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
