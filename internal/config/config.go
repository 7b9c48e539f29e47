package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spellpack/internal/fault"
)

// Resolution policies accepted by the "policy" key.
const (
	PolicyEarliest = "earliest"
	PolicyLatest   = "latest"
)

// Converter holds all configuration for one conversion run.
type Converter struct {
	// Output
	Assets  string `yaml:"assets"`  // directory the external writer emits into
	Version string `yaml:"version"` // game version the unpacked tree belongs to

	// Unpacked game data, relative paths are resolved against UnpackDir
	UnpackDir string `yaml:"unpack_dir"`
	Tooltips  string `yaml:"tooltips"`
	English   string `yaml:"english"`

	// Spell sources: Spells[i] is a directory under UnpackDir, Layers[i] its display name.
	// Position in the list is the layer weight.
	Spells []string `yaml:"spells"`
	Layers []string `yaml:"layers"`

	// Icon atlases: Icons[i] is the UV map XML of texture Textures[i]
	Icons    []string `yaml:"icons"`
	Textures []string `yaml:"dds"`

	Workers int    `yaml:"workers"` // parser pool size (0 = NumCPU)
	Policy  string `yaml:"policy"`  // attribute resolution direction

	// Publishing
	Publish  bool           `yaml:"publish"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Converter config with sensible defaults.
func Default() Converter {
	return Converter{
		Assets:    "public",
		UnpackDir: "unpacked",
		Tooltips:  "Shared/Public/Shared/GUI/tooltips.lsx",
		English:   "English/Localization/English/english.xml",
		Workers:   runtime.NumCPU(),
		Policy:    PolicyEarliest,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "spellpack",
			Password: "spellpack",
			DBName:   "spellpack",
			SSLMode:  "disable",
		},
	}
}

// Load loads converter config from a YAML file and validates it.
// If the file doesn't exist, defaults are validated and returned.
func Load(path string) (Converter, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fault.Config("reading config", fmt.Errorf("%s: %w", path, err))
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fault.Config("parsing config", fmt.Errorf("%s: %w", path, err))
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every problem found in cfg as a single configuration error.
func (c *Converter) Validate() error {
	var errs []error

	if c.UnpackDir == "" {
		errs = append(errs, errors.New("unpack_dir is empty"))
	}
	if c.Tooltips == "" {
		errs = append(errs, errors.New("tooltips is empty"))
	}
	if c.English == "" {
		errs = append(errs, errors.New("english is empty"))
	}
	if len(c.Spells) == 0 {
		errs = append(errs, errors.New("spells is empty"))
	}
	if len(c.Spells) != len(c.Layers) {
		errs = append(errs, fmt.Errorf("spells has %d entries but layers has %d", len(c.Spells), len(c.Layers)))
	}
	if len(c.Textures) != 0 && len(c.Textures) != len(c.Icons) {
		errs = append(errs, fmt.Errorf("dds has %d entries but icons has %d", len(c.Textures), len(c.Icons)))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Policy != PolicyEarliest && c.Policy != PolicyLatest {
		errs = append(errs, fmt.Errorf("unknown policy %q", c.Policy))
	}

	if len(errs) > 0 {
		return fault.Config("validating config", errors.Join(errs...))
	}
	return nil
}

// PoolSize returns the number of parser workers to start.
func (c *Converter) PoolSize() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
