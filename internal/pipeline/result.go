package pipeline

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/spellpack/internal/encode"
	"github.com/udisondev/spellpack/internal/icons"
	"github.com/udisondev/spellpack/internal/stats"
)

// Result is everything an external writer needs to emit the viewer's data.
type Result struct {
	Version    string
	Records    []string // encoded records; the first Primaries are show records
	Primaries  int
	SpellTypes string   // sorted distinct SpellType values, comma-joined
	Keys       []string // key dictionary, token i is codec.Token(i)
	Icons      icons.Atlas
	Textures   []string // atlas textures, indexed by Icon.Atlas
	Layers     []string
	Search     encode.SearchIndex

	Warnings []stats.Warning
	Misses   int
}

// Digest returns a hex BLAKE2b-256 fingerprint of the version, dictionary and
// records. Two runs over identical input produce the same digest.
func (r *Result) Digest() string {
	h, _ := blake2b.New256(nil)

	var n [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}

	count := func(c int) {
		binary.LittleEndian.PutUint64(n[:], uint64(c))
		h.Write(n[:])
	}

	write(r.Version)
	count(len(r.Keys))
	for _, k := range r.Keys {
		write(k)
	}
	count(len(r.Records))
	for _, rec := range r.Records {
		write(rec)
	}
	return hex.EncodeToString(h.Sum(nil))
}
