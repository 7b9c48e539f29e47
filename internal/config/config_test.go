package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellpack/internal/fault"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spellpack.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "4.1.1.3"
unpack_dir: /data/unpacked
spells:
  - Shared/Public/Shared/Stats/Generated/Data
  - Gustav/Public/Gustav/Stats/Generated/Data
layers: [Shared, Gustav]
icons: [Icons_Skills.lsx]
dds: [Icons_Skills.dds]
workers: 4
policy: latest
database:
  host: db
  port: 5433
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "4.1.1.3", cfg.Version)
	assert.Equal(t, "/data/unpacked", cfg.UnpackDir)
	assert.Equal(t, []string{"Shared", "Gustav"}, cfg.Layers)
	assert.Equal(t, 4, cfg.PoolSize())
	assert.Equal(t, PolicyLatest, cfg.Policy)
	// untouched keys keep their defaults
	assert.Equal(t, "public", cfg.Assets)
	assert.Equal(t, "postgres://spellpack:spellpack@db:5433/spellpack?sslmode=disable", cfg.Database.DSN())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	// defaults carry no spell sources, so validation must fail
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, fault.KindConfig, fault.KindOf(err))
	assert.Contains(t, err.Error(), "spells is empty")
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "spells: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, fault.KindConfig, fault.KindOf(err))
}

func TestValidate(t *testing.T) {
	valid := func() Converter {
		cfg := Default()
		cfg.Spells = []string{"a", "b"}
		cfg.Layers = []string{"A", "B"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Converter)
		wantErr string
	}{
		{"ok", func(*Converter) {}, ""},
		{"layer mismatch", func(c *Converter) { c.Layers = c.Layers[:1] }, "layers has 1"},
		{"texture mismatch", func(c *Converter) { c.Textures = []string{"x.dds"} }, "dds has 1"},
		{"negative workers", func(c *Converter) { c.Workers = -1 }, "workers"},
		{"bad policy", func(c *Converter) { c.Policy = "newest" }, "unknown policy"},
		{"no unpack dir", func(c *Converter) { c.UnpackDir = "" }, "unpack_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, fault.KindConfig, fault.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPoolSize_ZeroMeansNumCPU(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	assert.Positive(t, cfg.PoolSize())
}
