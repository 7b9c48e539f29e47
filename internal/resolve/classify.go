package resolve

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/udisondev/spellpack/internal/stats"
)

// Level ranks used when sorting groups.
const (
	rankZeroLevel    = 98
	rankMissingLevel = 99
)

// Role tells whether a record is a group's visible primary or one of its overrides.
type Role uint8

const (
	Show Role = iota
	Hide
)

func (r Role) String() string {
	if r == Show {
		return "show"
	}
	return "hide"
}

// LinkKind describes a record's override target.
type LinkKind uint8

const (
	LinkNone LinkKind = iota // no Using, or Using names an unknown id
	LinkNext                 // same id, next higher layer
	LinkSelf                 // same id, last layer: points to itself
	LinkBase                 // another id's primary record
)

// Record is a classified entry.
type Record struct {
	Entry  *stats.Entry
	Role   Role
	Group  int      // index of the owning group in Classification.Groups
	Link   LinkKind // kind of Target
	Target int      // index in Classification.Records, -1 for LinkNone
}

// Classification is the ordered record list of a run.
// Records[i] for i < len(Groups) is the primary record of Groups[i];
// override records follow in group order, lowest weight first.
type Classification struct {
	Groups  []string
	Records []Record
}

// Primaries returns the number of show records.
func (c *Classification) Primaries() int {
	return len(c.Groups)
}

type groupKey struct {
	id    string
	level float64
	name  string
}

// Classify sorts the resolver's groups and splits each into one show record
// and zero or more hide records with resolved override links.
func Classify(r *Resolver) *Classification {
	keys := make([]groupKey, 0, r.Len())
	for _, id := range r.IDs() {
		keys = append(keys, groupKey{
			id:    id,
			level: levelRank(r, id),
			name:  sortName(r.Group(id)[0]),
		})
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.id < b.id
	})

	c := &Classification{Groups: make([]string, len(keys))}
	groupIndex := make(map[string]int, len(keys))
	for i, k := range keys {
		c.Groups[i] = k.id
		groupIndex[k.id] = i
	}

	// primaries first, so a group's primary record index equals its group index
	recordIndex := make(map[*stats.Entry]int)
	for i, id := range c.Groups {
		e := r.Group(id)[0]
		recordIndex[e] = len(c.Records)
		c.Records = append(c.Records, Record{Entry: e, Role: Show, Group: i})
	}
	for i, id := range c.Groups {
		for _, e := range r.Group(id)[1:] {
			recordIndex[e] = len(c.Records)
			c.Records = append(c.Records, Record{Entry: e, Role: Hide, Group: i})
		}
	}

	for i := range c.Records {
		rec := &c.Records[i]
		rec.Link, rec.Target = link(r, rec.Entry, recordIndex, groupIndex)
	}

	slog.Info("classified entries", "groups", len(c.Groups), "records", len(c.Records))
	return c
}

func link(r *Resolver, e *stats.Entry, recordIndex map[*stats.Entry]int, groupIndex map[string]int) (LinkKind, int) {
	using, ok := e.Using()
	if !ok {
		return LinkNone, -1
	}

	if using == e.ID {
		group := r.Group(e.ID)
		for i, g := range group {
			if g == e && i+1 < len(group) {
				return LinkNext, recordIndex[group[i+1]]
			}
		}
		return LinkSelf, recordIndex[e]
	}

	base, ok := groupIndex[using]
	if !ok {
		slog.Debug("prototype not found", "id", e.ID, "using", using)
		return LinkNone, -1
	}
	return LinkBase, base
}

// levelRank orders groups by resolved Level: 0 sorts after every other
// level and a missing or non-numeric level sorts last.
func levelRank(r *Resolver, id string) float64 {
	v, ok := r.Lookup(id, stats.AttrLevel)
	if !ok {
		return rankMissingLevel
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return rankMissingLevel
	}
	if n == 0 {
		return rankZeroLevel
	}
	return n
}

// sortName strips the leading letters of an id ("Target_Fireball" -> "_Fireball")
// so spells of different kinds interleave by name. InterruptData ids keep them.
func sortName(e *stats.Entry) string {
	if e.Type == stats.TypeInterruptData {
		return e.ID
	}
	return strings.TrimLeftFunc(e.ID, func(r rune) bool {
		return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
	})
}
