// Package icons extracts icon positions from texture atlas UV maps.
package icons

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/udisondev/spellpack/internal/fault"
)

// Quantum is the number of icon cells per atlas row and column.
const Quantum = 32

// Icon is an icon's cell in an atlas: quantized U and V plus the atlas index.
type Icon struct {
	U     uint8
	V     uint8
	Atlas int
}

// Triple returns the icon as [u, v, atlas], the shape the viewer consumes.
func (i Icon) Triple() [3]int {
	return [3]int{int(i.U), int(i.V), i.Atlas}
}

// Atlas maps icon keys to their cell.
type Atlas map[string]Icon

// --- XML structures (icons) ---

type xmlAttribute struct {
	ID    string `xml:"id,attr"`
	Value string `xml:"value,attr"`
}

type xmlIconUV struct {
	Attributes []xmlAttribute `xml:"attribute"`
}

// Extract adds every IconUV node of one UV map document to a, tagged with atlas.
// Nodes without a MapKey are ignored. It returns the number of icons added.
func Extract(a Atlas, r io.Reader, atlas int) (int, error) {
	dec := xml.NewDecoder(r)
	added := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, fmt.Errorf("reading token: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "node" || attr(start, "id") != "IconUV" {
			continue
		}

		var node xmlIconUV
		if err := dec.DecodeElement(&node, &start); err != nil {
			return added, fmt.Errorf("decoding IconUV: %w", err)
		}

		key, icon, ok, err := convertIconUV(node, atlas)
		if err != nil {
			return added, err
		}
		if !ok {
			continue
		}
		a[key] = icon
		added++
	}
}

func convertIconUV(node xmlIconUV, atlas int) (string, Icon, bool, error) {
	var key, u1, v1 string
	for _, a := range node.Attributes {
		switch a.ID {
		case "MapKey":
			key = a.Value
		case "U1":
			u1 = a.Value
		case "V1":
			v1 = a.Value
		}
	}
	if key == "" {
		return "", Icon{}, false, nil
	}

	u, err := quantize(u1)
	if err != nil {
		return "", Icon{}, false, fmt.Errorf("icon %s U1: %w", key, err)
	}
	v, err := quantize(v1)
	if err != nil {
		return "", Icon{}, false, fmt.Errorf("icon %s V1: %w", key, err)
	}
	return key, Icon{U: u, V: v, Atlas: atlas}, true, nil
}

// quantize maps a normalized coordinate to its cell, truncating toward zero.
func quantize(s string) (uint8, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	q := math.Trunc(f * Quantum)
	switch {
	case q < 0 || math.IsNaN(q):
		return 0, nil
	case q > math.MaxUint8:
		return math.MaxUint8, nil
	}
	return uint8(q), nil
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Load extracts every configured UV map in order; the position in paths is the atlas index.
func Load(paths []string) (Atlas, error) {
	a := make(Atlas)
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fault.IO("read icon atlas", path, err)
		}
		n, err := Extract(a, bytes.NewReader(data), i)
		if err != nil {
			return nil, fault.Decode("decode icon atlas", path, err)
		}
		slog.Info("loaded icon atlas", "path", path, "index", i, "icons", n)
	}
	return a, nil
}
