// Package config holds the tunables §4-§5 name as constants or
// per-deployment knobs, loadable from a TOML file the way the
// go-ethereum/swarm family configures its nodes.
package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/naoina/toml"
)

// Config is the complete set of swarm-manager and tree tunables a
// deployment may override; NewConfig returns the spec's defaults.
type Config struct {
	// ChunkSize is the default chunk size (§6's URI default, §4.2's
	// hash-tree leaf granularity) when a caller does not specify one.
	ChunkSize int64

	// MaxActiveSwarms caps the swarm manager's active-set LRU (§4.4).
	MaxActiveSwarms int

	// DiscardWindow bounds how many trailing chunks a live swarm (UMT)
	// keeps addressable before pruning (§4.3).
	DiscardWindow uint64

	// ChunksPerSignature batches a live source's peak-signing cadence
	// (§4.3's supplemented chunks-per-signature feature).
	ChunksPerSignature int

	// RemovalSweepInterval/IdleSweepInterval are the swarm manager's
	// background sweep cadences (§5).
	RemovalSweepInterval time.Duration
	IdleSweepInterval    time.Duration
	RemovalIdleThreshold time.Duration

	// TrackerBackoffInitial/Multiplier/Cap govern tracker contact retry
	// (§5).
	TrackerBackoffInitial    time.Duration
	TrackerBackoffMultiplier float64
	TrackerBackoffCap        time.Duration

	// MetaStorePath is where the swarm manager's durable cached-metadata
	// LevelDB index lives.
	MetaStorePath string
}

// NewConfig returns the defaults named throughout spec.md.
func NewConfig() *Config {
	return &Config{
		ChunkSize:                1024,
		MaxActiveSwarms:          100,
		DiscardWindow:            0,
		ChunksPerSignature:       1,
		RemovalSweepInterval:     5 * time.Second,
		IdleSweepInterval:        1 * time.Second,
		RemovalIdleThreshold:     30 * time.Second,
		TrackerBackoffInitial:    5 * time.Second,
		TrackerBackoffMultiplier: 1.1,
		TrackerBackoffCap:        1800 * time.Second,
		MetaStorePath:            "tswift-meta.ldb",
	}
}

// tomlSettings matches the field-naming and strictness conventions the
// go-ethereum/swarm family uses for its own node TOML config: field
// names pass through unchanged, and an unrecognized key is an error
// rather than silently ignored.
var tomlSettings = toml.Config{
	NormFieldName: func(_ reflect.Type, key string) string { return key },
	FieldToKey:    func(_ reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("tswift: config: field %q not found in type %s", field, rt.Name())
	},
}

// Load reads and decodes a TOML file into a fresh Config seeded with
// NewConfig's defaults, so an omitted field keeps its default value.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r into a fresh Config seeded with NewConfig's
// defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := NewConfig()
	if err := tomlSettings.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save encodes cfg as TOML to path.
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tomlSettings.NewEncoder(f).Encode(cfg)
}
