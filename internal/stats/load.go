package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/spellpack/internal/fault"
)

// Source is one stat definition file and the layer weight it is parsed with.
type Source struct {
	Path   string
	Weight int
}

// FileError records a source file that could not be loaded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// IsStatFile reports whether a file name holds stat definitions.
func IsStatFile(name string) bool {
	return strings.HasPrefix(name, "Spell_") || strings.HasPrefix(name, "Passive")
}

// Discover lists the stat files of every layer directory. The index of a
// directory in dirs is the weight of its files. Files are sorted by path within a layer.
func Discover(dirs []string) ([]Source, error) {
	var sources []Source
	for weight, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fault.IO("read layer directory", dir, err)
		}

		var layer []Source
		for _, de := range entries {
			if de.IsDir() || !IsStatFile(de.Name()) {
				continue
			}
			layer = append(layer, Source{Path: filepath.Join(dir, de.Name()), Weight: weight})
		}
		sort.Slice(layer, func(i, j int) bool { return layer[i].Path < layer[j].Path })

		slog.Debug("discovered layer", "dir", dir, "weight", weight, "files", len(layer))
		sources = append(sources, layer...)
	}
	return sources, nil
}

// LoadResult is the merged outcome of parsing many files.
type LoadResult struct {
	Entries  []*Entry
	Warnings []Warning
	Misses   int
}

// Load parses sources on a pool of at most workers goroutines.
//
// Every file is attempted. Files that fail are reported together in the
// returned error as *FileError values, and the entries of every file that
// succeeded are still returned.
func Load(ctx context.Context, p *Parser, sources []Source, workers int) (LoadResult, error) {
	results := make([]Result, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = &FileError{Path: src.Path, Err: err}
				return nil
			}
			data, err := os.ReadFile(src.Path)
			if err != nil {
				errs[i] = &FileError{Path: src.Path, Err: err}
				return nil
			}
			results[i] = p.Parse(src.Path, string(data), src.Weight)
			return nil
		})
	}
	_ = g.Wait()

	var out LoadResult
	for i := range results {
		out.Entries = append(out.Entries, results[i].Entries...)
		out.Warnings = append(out.Warnings, results[i].Warnings...)
		out.Misses += results[i].Misses
	}

	err := errors.Join(errs...)
	if err != nil {
		slog.Warn("some stat files failed to load", "err", err)
	}
	slog.Info("parsed stat files",
		"files", len(sources),
		"entries", len(out.Entries),
		"warnings", len(out.Warnings),
		"lookup_misses", out.Misses,
	)
	return out, err
}

// FailedFiles returns the path of every *FileError in err, including
// errors joined by Load and wrapped by callers.
func FailedFiles(err error) []string {
	switch x := err.(type) {
	case nil:
		return nil
	case *FileError:
		return []string{x.Path}
	case interface{ Unwrap() []error }:
		var paths []string
		for _, e := range x.Unwrap() {
			paths = append(paths, FailedFiles(e)...)
		}
		return paths
	case interface{ Unwrap() error }:
		return FailedFiles(x.Unwrap())
	}
	return nil
}
