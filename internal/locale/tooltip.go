package locale

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/udisondev/spellpack/internal/codec"
	"github.com/udisondev/spellpack/internal/fault"
)

// ErrNoChildren is returned when a tooltip document has no <children> block.
var ErrNoChildren = errors.New("no <children> block")

var childrenMarker = regexp.MustCompile(`</?children>`)

// --- XML structures (tooltips) ---

type xmlNodeList struct {
	Nodes []xmlNode `xml:"node"`
}

type xmlNode struct {
	Attributes []xmlAttribute `xml:"attribute"`
}

type xmlAttribute struct {
	ID     string `xml:"id,attr"`
	Value  string `xml:"value,attr"`
	Handle string `xml:"handle,attr"`
}

// Tooltip is one resolved tooltip node.
type Tooltip struct {
	UUID string
	Name string
	Text string
}

// Upcast renders the tooltip the way upcast descriptions are shown.
func (t Tooltip) Upcast() string {
	return t.Name + "<br>" + t.Text
}

// Tooltips indexes tooltips by codec.Hash of their UUID.
type Tooltips struct {
	byKey map[string]Tooltip
}

// NewTooltips indexes the given tooltips.
func NewTooltips(list ...Tooltip) *Tooltips {
	t := &Tooltips{byKey: make(map[string]Tooltip, len(list))}
	for _, tip := range list {
		t.byKey[codec.Hash(tip.UUID)] = tip
	}
	return t
}

// ParseTooltips decodes the node list inside the first <children> block.
//
// Attributes are classified by the first letter of their id:
// N is the display name, T a text handle resolved through lang, U the UUID.
func ParseTooltips(data []byte, lang *Localization) (*Tooltips, error) {
	slices := childrenMarker.Split(string(data), -1)
	if len(slices) < 2 {
		return nil, ErrNoChildren
	}

	var list xmlNodeList
	doc := "<nodes>" + slices[1] + "</nodes>"
	if err := xml.Unmarshal([]byte(doc), &list); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	tips := make([]Tooltip, 0, len(list.Nodes))
	for _, n := range list.Nodes {
		tip := convertNode(n, lang)
		if tip.UUID == "" {
			continue
		}
		tips = append(tips, tip)
	}
	return NewTooltips(tips...), nil
}

func convertNode(n xmlNode, lang *Localization) Tooltip {
	var tip Tooltip
	for _, a := range n.Attributes {
		switch {
		case strings.HasPrefix(a.ID, "N"):
			tip.Name = a.Value
		case strings.HasPrefix(a.ID, "T"):
			handle := a.Handle
			if handle == "" {
				handle = a.Value
			}
			tip.Text = lang.Resolve(handle)
		case strings.HasPrefix(a.ID, "U"):
			tip.UUID = a.Value
		}
	}
	return tip
}

// LoadTooltips reads and decodes the tooltip file at path.
func LoadTooltips(path string, lang *Localization) (*Tooltips, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.IO("read tooltips", path, err)
	}

	t, err := ParseTooltips(data, lang)
	if err != nil {
		return nil, fault.Decode("decode tooltips", path, err)
	}

	slog.Info("loaded tooltips", "path", path, "entries", t.Len())
	return t, nil
}

// Lookup returns the tooltip stored under key, a codec.Hash of its UUID.
func (t *Tooltips) Lookup(key string) (Tooltip, bool) {
	if t == nil {
		return Tooltip{}, false
	}
	tip, ok := t.byKey[key]
	return tip, ok
}

// Len returns the number of tooltips.
func (t *Tooltips) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byKey)
}
