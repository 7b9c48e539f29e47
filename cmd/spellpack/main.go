// spellpack converts unpacked stat files, localization and tooltips into the
// dictionary-encoded record stream read by the spell viewer.
//
// Usage:
//
//	go run ./cmd/spellpack                          # config/spellpack.yaml
//	go run ./cmd/spellpack -config cfg.yaml -publish
//	SPELLPACK_CONFIG=cfg.yaml go run ./cmd/spellpack -v
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/spellpack/internal/config"
	"github.com/udisondev/spellpack/internal/fault"
	"github.com/udisondev/spellpack/internal/pipeline"
	"github.com/udisondev/spellpack/internal/stats"
	"github.com/udisondev/spellpack/internal/store"
)

const ConfigPath = "config/spellpack.yaml"

func main() {
	cfgPath := flag.String("config", "", "path to the YAML config (default "+ConfigPath+")")
	publish := flag.Bool("publish", false, "publish the result to PostgreSQL")
	verbose := flag.Bool("v", false, "log skipped lines and other debug output")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *cfgPath, *publish); err != nil {
		slog.Error("fatal", "kind", fault.KindOf(err).String(), "err", err)
		if files := stats.FailedFiles(err); len(files) > 0 {
			slog.Error("failed stat files", "count", len(files), "files", files)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, publish bool) error {
	if cfgPath == "" {
		cfgPath = ConfigPath
		if p := os.Getenv("SPELLPACK_CONFIG"); p != "" {
			cfgPath = p
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded",
		"path", cfgPath,
		"version", cfg.Version,
		"unpack_dir", cfg.UnpackDir,
		"layers", cfg.Layers,
		"workers", cfg.PoolSize(),
		"policy", cfg.Policy,
	)

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	digest := res.Digest()
	slog.Info("result ready",
		"records", len(res.Records),
		"primaries", res.Primaries,
		"keys", len(res.Keys),
		"icons", len(res.Icons),
		"spell_types", res.SpellTypes,
		"warnings", len(res.Warnings),
		"lookup_misses", res.Misses,
		"digest", digest,
	)

	if !publish && !cfg.Publish {
		return nil
	}

	dsn := cfg.Database.DSN()
	if err := store.Migrate(ctx, dsn); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	id, created, err := db.Publish(ctx, res)
	if err != nil {
		return fmt.Errorf("publishing result: %w", err)
	}
	slog.Info("published", "bundle", id, "new", created)
	return nil
}
