// Package resolve answers attribute queries across layered and inherited
// entries and classifies entry groups into show and hide records.
package resolve

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/spellpack/internal/stats"
)

// Policy is the direction a group's layers are scanned in when resolving an attribute.
type Policy uint8

const (
	// EarliestDefiner returns the value of the lowest-weight layer that defines
	// the attribute. A later layer only wins when no earlier layer defines it.
	EarliestDefiner Policy = iota
	// LatestOverride returns the value of the highest-weight layer that defines it.
	LatestOverride
)

func (p Policy) String() string {
	switch p {
	case EarliestDefiner:
		return "earliest"
	case LatestOverride:
		return "latest"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy converts a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "earliest":
		return EarliestDefiner, nil
	case "latest":
		return LatestOverride, nil
	}
	return 0, fmt.Errorf("unknown resolution policy %q", s)
}

// Resolver groups entries by id. Groups are sorted by ascending weight.
type Resolver struct {
	groups map[string][]*stats.Entry
	policy Policy
}

// NewResolver groups entries. The order of entries does not matter: ties on
// weight are broken by source file and position in that file.
func NewResolver(entries []*stats.Entry, policy Policy) *Resolver {
	groups := make(map[string][]*stats.Entry)
	for _, e := range entries {
		groups[e.ID] = append(groups[e.ID], e)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return entryLess(g[i], g[j]) })
	}
	return &Resolver{groups: groups, policy: policy}
}

func entryLess(a, b *stats.Entry) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Seq < b.Seq
}

// Policy returns the resolver's scan direction.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Group returns the entries with id, lowest weight first.
func (r *Resolver) Group(id string) []*stats.Entry {
	return r.groups[id]
}

// IDs returns every group id in unspecified order.
func (r *Resolver) IDs() []string {
	ids := make([]string, 0, len(r.groups))
	for id := range r.groups {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of groups.
func (r *Resolver) Len() int {
	return len(r.groups)
}

// Lookup resolves attr for the entry group key.
//
// The group's layers are scanned in policy order and the first defined value
// wins. When no layer defines attr, the first layer whose Using names another
// id redirects the search to that group, repeatedly. A prototype chain that
// revisits an id ends the search.
func (r *Resolver) Lookup(key, attr string) (string, bool) {
	var visited map[string]struct{}

	for {
		group := r.groups[key]
		proto := ""

		for i := range group {
			e := group[r.index(len(group), i)]
			if v, ok := e.Attr(attr); ok {
				return v, true
			}
			if u, ok := e.Using(); ok && u != key && proto == "" {
				proto = u
			}
		}

		if proto == "" {
			return "", false
		}

		if visited == nil {
			visited = make(map[string]struct{})
		}
		visited[key] = struct{}{}
		if _, seen := visited[proto]; seen {
			slog.Warn("prototype cycle", "id", key, "using", proto, "attr", attr)
			return "", false
		}
		key = proto
	}
}

func (r *Resolver) index(n, i int) int {
	if r.policy == LatestOverride {
		return n - 1 - i
	}
	return i
}
