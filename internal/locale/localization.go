// Package locale loads the text maps that the stat parser resolves names and
// descriptions through: the localization table and the tooltip table.
package locale

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/spellpack/internal/fault"
)

// --- XML structures (localization) ---

type xmlContentList struct {
	XMLName xml.Name     `xml:"contentList"`
	Content []xmlContent `xml:"content"`
}

type xmlContent struct {
	UID  string `xml:"contentuid,attr"`
	Text string `xml:",chardata"`
}

// Localization maps content ids to translated text.
// It is built once and read concurrently by every parser task.
type Localization struct {
	text map[string]string
}

// NewLocalization builds a Localization from an id -> text map.
func NewLocalization(text map[string]string) *Localization {
	if text == nil {
		text = make(map[string]string)
	}
	return &Localization{text: text}
}

// ParseLocalization decodes a contentList document. Duplicate ids keep the last text.
func ParseLocalization(data []byte) (*Localization, error) {
	var list xmlContentList
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	text := make(map[string]string, len(list.Content))
	for _, c := range list.Content {
		text[c.UID] = c.Text
	}
	return &Localization{text: text}, nil
}

// LoadLocalization reads and decodes the localization file at path.
func LoadLocalization(path string) (*Localization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.IO("read localization", path, err)
	}

	l, err := ParseLocalization(data)
	if err != nil {
		return nil, fault.Decode("decode localization", path, err)
	}

	slog.Info("loaded localization", "path", path, "entries", l.Len())
	return l, nil
}

// Lookup returns the text for id. A nil Localization has no entries.
func (l *Localization) Lookup(id string) (string, bool) {
	if l == nil {
		return "", false
	}
	s, ok := l.text[id]
	return s, ok
}

// Resolve returns the text for id, or id itself when it is unknown.
func (l *Localization) Resolve(id string) string {
	if s, ok := l.Lookup(id); ok {
		return s
	}
	return id
}

// Len returns the number of entries.
func (l *Localization) Len() int {
	if l == nil {
		return 0
	}
	return len(l.text)
}
