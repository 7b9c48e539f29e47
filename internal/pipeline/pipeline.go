// Package pipeline wires the conversion stages together for one run.
//
//	localization -> tooltips -> icon atlases
//	stat files (parallel) -> merge -> resolve/classify -> encode
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/udisondev/spellpack/internal/config"
	"github.com/udisondev/spellpack/internal/encode"
	"github.com/udisondev/spellpack/internal/fault"
	"github.com/udisondev/spellpack/internal/icons"
	"github.com/udisondev/spellpack/internal/locale"
	"github.com/udisondev/spellpack/internal/resolve"
	"github.com/udisondev/spellpack/internal/stats"
)

// Context holds everything built once per run and shared read-only by the stages.
type Context struct {
	Config   config.Converter
	Lang     *locale.Localization
	Tooltips *locale.Tooltips
	Atlas    icons.Atlas
	Policy   resolve.Policy
}

// NewContext loads the leaf text maps and icon atlases described by cfg.
func NewContext(cfg config.Converter) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := resolve.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, fault.Config("resolution policy", err)
	}

	c := &Context{Config: cfg, Policy: policy}

	c.Lang, err = locale.LoadLocalization(c.path(cfg.English))
	if err != nil {
		return nil, err
	}
	c.Tooltips, err = locale.LoadTooltips(c.path(cfg.Tooltips), c.Lang)
	if err != nil {
		return nil, err
	}

	iconPaths := make([]string, len(cfg.Icons))
	for i, p := range cfg.Icons {
		iconPaths[i] = c.path(p)
	}
	c.Atlas, err = icons.Load(iconPaths)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// path resolves a configured path against the unpack directory.
func (c *Context) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Config.UnpackDir, p)
}

// Run builds a Context from cfg and converts everything it describes.
func Run(ctx context.Context, cfg config.Converter) (*Result, error) {
	c, err := NewContext(cfg)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx)
}

// Run parses every layer, classifies the merged entries and encodes them.
func (c *Context) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	dirs := make([]string, len(c.Config.Spells))
	for i, d := range c.Config.Spells {
		dirs[i] = c.path(d)
	}
	sources, err := stats.Discover(dirs)
	if err != nil {
		return nil, err
	}

	parser := stats.NewParser(c.Lang, c.Tooltips)
	loaded, err := stats.Load(ctx, parser, sources, c.Config.PoolSize())
	if err != nil {
		return nil, fault.IO("load stat files", c.Config.UnpackDir, err)
	}
	for _, w := range loaded.Warnings {
		slog.Debug("skipped line", "warning", w.String())
	}

	resolver := resolve.NewResolver(loaded.Entries, c.Policy)
	classes := resolve.Classify(resolver)

	enc := encode.NewEncoder(encode.NewDictionary(), c.Config.Layers)
	records, err := enc.Encode(classes)
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}

	res := &Result{
		Version:    c.Config.Version,
		Records:    records,
		Primaries:  classes.Primaries(),
		SpellTypes: spellTypes(loaded.Entries),
		Keys:       enc.Dictionary().Keys(),
		Icons:      c.Atlas,
		Textures:   c.Config.Textures,
		Layers:     c.Config.Layers,
		Search:     encode.BuildSearchIndex(resolver, classes),
		Warnings:   loaded.Warnings,
		Misses:     loaded.Misses,
	}

	slog.Info("conversion done",
		"records", len(res.Records),
		"primaries", res.Primaries,
		"keys", len(res.Keys),
		"icons", len(res.Icons),
		"policy", c.Policy.String(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// spellTypes returns the distinct SpellType values, sorted and comma-joined.
func spellTypes(entries []*stats.Entry) string {
	set := make(map[string]struct{})
	for _, e := range entries {
		if v, ok := e.Attr(stats.AttrSpellType); ok && v != "" {
			set[v] = struct{}{}
		}
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ",")
}
