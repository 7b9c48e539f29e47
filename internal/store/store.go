// Package store publishes conversion results to PostgreSQL so a viewer
// backend can serve them without rerunning the converter.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/spellpack/internal/icons"
	"github.com/udisondev/spellpack/internal/pipeline"
)

// ErrBundleNotFound is returned when no bundle matches a query.
var ErrBundleNotFound = errors.New("bundle not found")

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and returns a DB handle.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Bundle describes one published result.
type Bundle struct {
	ID         int64
	Version    string
	Digest     string
	SpellTypes string
	Layers     []string
	Textures   []string
	Primaries  int
}

// Publish stores res as a new bundle. Publishing a result whose digest is
// already stored returns the existing bundle id with created == false.
func (d *DB) Publish(ctx context.Context, res *pipeline.Result) (id int64, created bool, err error) {
	digest := res.Digest()

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx,
		`INSERT INTO bundles (version, digest, spell_types, layers, textures, primaries)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (digest) DO NOTHING
		 RETURNING id`,
		res.Version, digest, res.SpellTypes, nonNil(res.Layers), nonNil(res.Textures), res.Primaries,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := tx.QueryRow(ctx, `SELECT id FROM bundles WHERE digest = $1`, digest).Scan(&id); err != nil {
			return 0, false, fmt.Errorf("querying bundle %s: %w", digest, err)
		}
		slog.Info("bundle already published", "id", id, "digest", digest)
		return id, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("inserting bundle: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"bundle_keys"},
		[]string{"bundle_id", "idx", "name"},
		pgx.CopyFromSlice(len(res.Keys), func(i int) ([]any, error) {
			return []any{id, int32(i), res.Keys[i]}, nil
		}),
	); err != nil {
		return 0, false, fmt.Errorf("copying keys: %w", err)
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"bundle_records"},
		[]string{"bundle_id", "idx", "payload"},
		pgx.CopyFromSlice(len(res.Records), func(i int) ([]any, error) {
			return []any{id, int32(i), []byte(res.Records[i])}, nil
		}),
	); err != nil {
		return 0, false, fmt.Errorf("copying records: %w", err)
	}

	iconKeys := sortedKeys(res.Icons)
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"bundle_icons"},
		[]string{"bundle_id", "map_key", "u", "v", "atlas"},
		pgx.CopyFromSlice(len(iconKeys), func(i int) ([]any, error) {
			ic := res.Icons[iconKeys[i]]
			return []any{id, iconKeys[i], int16(ic.U), int16(ic.V), int32(ic.Atlas)}, nil
		}),
	); err != nil {
		return 0, false, fmt.Errorf("copying icons: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("committing bundle: %w", err)
	}

	slog.Info("bundle published", "id", id, "digest", digest, "records", len(res.Records))
	return id, true, nil
}

// Latest returns the most recently published bundle of version.
func (d *DB) Latest(ctx context.Context, version string) (Bundle, error) {
	var b Bundle
	err := d.pool.QueryRow(ctx,
		`SELECT id, version, digest, spell_types, layers, textures, primaries
		 FROM bundles WHERE version = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1`, version,
	).Scan(&b.ID, &b.Version, &b.Digest, &b.SpellTypes, &b.Layers, &b.Textures, &b.Primaries)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bundle{}, fmt.Errorf("version %q: %w", version, ErrBundleNotFound)
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("querying latest bundle of %q: %w", version, err)
	}
	return b, nil
}

// Records returns the encoded records of a bundle in index order.
func (d *DB) Records(ctx context.Context, bundleID int64) ([]string, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT payload FROM bundle_records WHERE bundle_id = $1 ORDER BY idx`, bundleID)
	if err != nil {
		return nil, fmt.Errorf("querying records of bundle %d: %w", bundleID, err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scanning records of bundle %d: %w", bundleID, err)
	}

	out := make([]string, len(payloads))
	for i, p := range payloads {
		out[i] = string(p)
	}
	return out, nil
}

// Keys returns the key dictionary of a bundle in index order.
func (d *DB) Keys(ctx context.Context, bundleID int64) ([]string, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT name FROM bundle_keys WHERE bundle_id = $1 ORDER BY idx`, bundleID)
	if err != nil {
		return nil, fmt.Errorf("querying keys of bundle %d: %w", bundleID, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning keys of bundle %d: %w", bundleID, err)
	}
	return keys, nil
}

// Icons returns the icon atlas of a bundle.
func (d *DB) Icons(ctx context.Context, bundleID int64) (icons.Atlas, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT map_key, u, v, atlas FROM bundle_icons WHERE bundle_id = $1`, bundleID)
	if err != nil {
		return nil, fmt.Errorf("querying icons of bundle %d: %w", bundleID, err)
	}
	defer rows.Close()

	a := make(icons.Atlas)
	for rows.Next() {
		var (
			key   string
			u, v  int16
			atlas int32
		)
		if err := rows.Scan(&key, &u, &v, &atlas); err != nil {
			return nil, fmt.Errorf("scanning icon: %w", err)
		}
		a[key] = icons.Icon{U: uint8(u), V: uint8(v), Atlas: int(atlas)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating icons: %w", err)
	}
	return a, nil
}

func sortedKeys(a icons.Atlas) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
