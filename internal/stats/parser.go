package stats

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/udisondev/spellpack/internal/codec"
	"github.com/udisondev/spellpack/internal/locale"
)

var (
	// dataPair captures the quoted key and value of a data line.
	dataPair = regexp.MustCompile(`"([^"]+)" "([^"]+)"`)
	// callExpr matches name(args) sub-expressions such as DealDamage(8d6,Fire).
	callExpr = regexp.MustCompile(`([a-zA-Z]+\([0-9',.+\-a-zA-Z \/\\()_]*\))`)
	// handleSuffix is the ";<version>" tail of localization handles.
	handleSuffix = regexp.MustCompile(`;\d+$`)
)

// unknownValue is stored as an empty string.
const unknownValue = "unknown"

// Warning is a skipped line. Warnings never abort parsing.
type Warning struct {
	Source string
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Reason)
}

// Result is the outcome of parsing one source file.
type Result struct {
	Entries  []*Entry
	Warnings []Warning
	Misses   int // localization and tooltip lookups that fell back to the raw text
}

// Parser turns stat definition text into entries. It only reads its text maps,
// so one Parser may be shared by concurrent Parse calls.
type Parser struct {
	lang     *locale.Localization
	tooltips *locale.Tooltips
}

// NewParser returns a parser resolving text through lang and tooltips.
// Either may be nil, in which case every lookup misses.
func NewParser(lang *locale.Localization, tooltips *locale.Tooltips) *Parser {
	return &Parser{lang: lang, tooltips: tooltips}
}

// Parse reads every entry of one source file. Each entry gets weight.
func (p *Parser) Parse(source, text string, weight int) Result {
	var (
		res     Result
		current *Entry
		lineNo  int
	)

	flush := func() {
		if current != nil && current.ID != "" {
			current.Seq = len(res.Entries)
			res.Entries = append(res.Entries, current)
		}
		current = nil
	}
	warn := func(reason string) {
		res.Warnings = append(res.Warnings, Warning{Source: source, Line: lineNo, Reason: reason})
	}

	for raw := range strings.Lines(text) {
		lineNo++
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if id, ok := entryStart(line); ok {
			flush()
			current = &Entry{ID: id, Weight: weight, Source: source}
			continue
		}

		if current == nil {
			warn("line outside of an entry")
			continue
		}

		switch {
		case strings.HasPrefix(line, "using "):
			current.attrs.Set(AttrUsing, unquote(line[len("using "):]))
		case strings.HasPrefix(line, "type "):
			current.Type = unquote(line[len("type "):])
		case strings.HasPrefix(line, "data "):
			pairs := dataPair.FindAllStringSubmatch(line, -1)
			if len(pairs) != 1 {
				warn("malformed data line")
				continue
			}
			m := pairs[0]
			value, hit := p.transform(m[1], m[2])
			if !hit {
				res.Misses++
			}
			current.attrs.Set(m[1], value)
		default:
			warn("unrecognized line")
		}
	}
	flush()

	return res
}

// entryStart reports whether line opens an entry. A bare keyword yields an
// empty id.
func entryStart(line string) (string, bool) {
	switch {
	case line == "new entry" || line == "new":
		return "", true
	case strings.HasPrefix(line, "new entry "):
		return unquote(line[len("new entry "):]), true
	case strings.HasPrefix(line, "new "):
		return unquote(line[len("new "):]), true
	}
	return "", false
}

func unquote(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// transform applies the value pipeline for key. hit is false when a text
// lookup fell back to the raw value.
func (p *Parser) transform(key, value string) (string, bool) {
	v := callExpr.ReplaceAllString(value, "<b>$1</b>")

	switch key {
	case AttrTooltipUpcastDescription:
		if tip, ok := p.tooltips.Lookup(codec.Hash(v)); ok {
			return tip.Upcast(), true
		}
		return v, false
	case AttrDisplayName, AttrDescription, AttrExtraDescription:
		handle := handleSuffix.ReplaceAllString(v, "")
		if s, ok := p.lang.Lookup(handle); ok {
			return s, true
		}
		return handle, false
	}

	if v == unknownValue {
		return "", true
	}
	return strings.ReplaceAll(v, ";", MultiValueSep), true
}
