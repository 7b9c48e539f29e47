package encode

import (
	"strings"

	"github.com/udisondev/spellpack/internal/codec"
	"github.com/udisondev/spellpack/internal/resolve"
	"github.com/udisondev/spellpack/internal/stats"
)

// SearchIndex maps lowercased display-name words to ascending record indices.
type SearchIndex map[string][]int

// BuildSearchIndex indexes the resolved DisplayName of every show record.
func BuildSearchIndex(r *resolve.Resolver, c *resolve.Classification) SearchIndex {
	idx := make(SearchIndex)
	for i, id := range c.Groups {
		name, ok := r.Lookup(id, stats.AttrDisplayName)
		if !ok {
			continue
		}
		seen := make(map[string]struct{})
		for _, tok := range codec.Tokenize(name) {
			if !codec.IsWord(tok) {
				continue
			}
			w := strings.ToLower(tok)
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			idx[w] = append(idx[w], i)
		}
	}
	return idx
}
