// Package config loads the SkillMeat CLI configuration. Settings live in
// ~/.skillmeat/config.yaml; a missing file yields the defaults so the CLI
// works with zero setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/inhies/go-bytesize"
	"gopkg.in/yaml.v3"
)

// DefaultDirName is the per-user state directory under $HOME.
const DefaultDirName = ".skillmeat"

// FileName is the configuration file inside the state directory.
const FileName = "config.yaml"

// Config is the top-level configuration structure.
type Config struct {
	// CollectionsRoot holds one subdirectory per collection.
	CollectionsRoot string `yaml:"collections_root"`
	// SnapshotsRoot holds rollback snapshots.
	SnapshotsRoot string `yaml:"snapshots_root"`
	// SnapshotKeep bounds retained snapshots per collection.
	SnapshotKeep int `yaml:"snapshot_keep"`
	// DefaultCollection is used when --collection is not passed.
	DefaultCollection string `yaml:"default_collection"`
	// DefaultStrategy settles conflicts when --strategy is not passed.
	DefaultStrategy string `yaml:"default_strategy"`
	// TrustedSigners is an authorized_keys file of bundle signing keys.
	TrustedSigners string `yaml:"trusted_signers"`

	Limits    LimitsConfig    `yaml:"limits"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LimitsConfig bounds bundle validation. Sizes accept human-readable
// values like "500MB".
type LimitsConfig struct {
	MaxBundleSize       string  `yaml:"max_bundle_size"`
	MaxFileSize         string  `yaml:"max_file_size"`
	MaxFiles            int     `yaml:"max_files"`
	MaxCompressionRatio float64 `yaml:"max_compression_ratio"`
}

// TelemetryConfig controls usage event tracking. Events go to the JSONL
// file when set, or to the HTTP endpoint, or nowhere.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	FilePath string `yaml:"file_path,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, DefaultDirName)

	return &Config{
		CollectionsRoot:   filepath.Join(base, "collections"),
		SnapshotsRoot:     filepath.Join(base, "snapshots"),
		SnapshotKeep:      10,
		DefaultCollection: "default",
		DefaultStrategy:   "interactive",
		TrustedSigners:    filepath.Join(base, "trusted_signers"),
		Limits: LimitsConfig{
			MaxBundleSize:       "500MB",
			MaxFileSize:         "100MB",
			MaxFiles:            10000,
			MaxCompressionRatio: 100,
		},
		Telemetry: TelemetryConfig{Enabled: false},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, DefaultDirName, FileName)
}

// Load reads the configuration from path. A missing file returns the
// defaults. ${VAR} references in the file are expanded from the
// environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseSize converts a human-readable size like "500MB" into bytes.
func ParseSize(s string) (bytesize.ByteSize, error) {
	size, err := bytesize.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return size, nil
}

func validate(cfg *Config) error {
	if cfg.CollectionsRoot == "" {
		return fmt.Errorf("collections_root must be specified")
	}
	if cfg.SnapshotsRoot == "" {
		return fmt.Errorf("snapshots_root must be specified")
	}
	if cfg.SnapshotKeep <= 0 {
		return fmt.Errorf("snapshot_keep must be greater than 0")
	}
	if _, err := ParseSize(cfg.Limits.MaxBundleSize); err != nil {
		return err
	}
	if _, err := ParseSize(cfg.Limits.MaxFileSize); err != nil {
		return err
	}
	if cfg.Limits.MaxFiles <= 0 {
		return fmt.Errorf("limits.max_files must be greater than 0")
	}
	if cfg.Limits.MaxCompressionRatio <= 1 {
		return fmt.Errorf("limits.max_compression_ratio must be greater than 1")
	}

	switch cfg.DefaultStrategy {
	case "merge", "fork", "skip", "interactive":
	default:
		return fmt.Errorf("invalid default strategy: %s, must be 'merge', 'fork', 'skip' or 'interactive'", cfg.DefaultStrategy)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.FilePath == "" && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry is enabled but neither file_path nor endpoint is set")
	}
	return nil
}
