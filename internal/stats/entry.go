// Package stats parses stat definition files into entries.
package stats

// Well-known attribute names.
const (
	AttrUsing                    = "Using"
	AttrLevel                    = "Level"
	AttrSpellType                = "SpellType"
	AttrDisplayName              = "DisplayName"
	AttrDescription              = "Description"
	AttrExtraDescription         = "ExtraDescription"
	AttrTooltipUpcastDescription = "TooltipUpcastDescription"
)

// TypeInterruptData is the entry type whose ids sort with their prefix.
const TypeInterruptData = "InterruptData"

// MultiValueSep separates the values of a multi-value attribute.
const MultiValueSep = "\x02"

// Attributes is an insertion-ordered attribute map.
// Setting an existing name replaces its value and keeps its position.
type Attributes struct {
	names  []string
	values map[string]string
}

// Set stores value under name.
func (a *Attributes) Set(name, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = value
}

// Get returns the value stored under name.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Names returns attribute names in insertion order. The slice must not be modified.
func (a *Attributes) Names() []string {
	return a.names
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	return len(a.names)
}

// Clone returns an independent copy.
func (a *Attributes) Clone() Attributes {
	c := Attributes{
		names:  make([]string, len(a.names)),
		values: make(map[string]string, len(a.values)),
	}
	copy(c.names, a.names)
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}

// Delete removes name, keeping the order of the remaining attributes.
func (a *Attributes) Delete(name string) {
	if _, ok := a.values[name]; !ok {
		return
	}
	delete(a.values, name)
	for i, n := range a.names {
		if n == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
}

// Entry is one stat definition from one source layer.
// Entries are immutable once Parse returns them.
type Entry struct {
	ID     string
	Type   string
	Weight int    // layer index, higher layers override lower ones
	Source string // file the entry was read from
	Seq    int    // position of the entry within Source

	attrs Attributes
}

// Attr returns the entry's own value for name.
func (e *Entry) Attr(name string) (string, bool) {
	return e.attrs.Get(name)
}

// Attributes returns a copy of the entry's attributes.
func (e *Entry) Attributes() Attributes {
	return e.attrs.Clone()
}

// Using returns the entry's prototype id, if any.
func (e *Entry) Using() (string, bool) {
	return e.attrs.Get(AttrUsing)
}

// NewEntry builds an entry from name/value pairs, in order. It is meant for
// tests and callers that assemble entries without a source file.
func NewEntry(id, typ string, weight int, pairs ...string) *Entry {
	e := &Entry{ID: id, Type: typ, Weight: weight}
	for i := 0; i+1 < len(pairs); i += 2 {
		e.attrs.Set(pairs[i], pairs[i+1])
	}
	return e
}
