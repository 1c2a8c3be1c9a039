// Package cmdutils wires the services commands depend on from the loaded
// configuration, so individual commands stay thin.
package cmdutils

import (
	"github.com/rs/zerolog/log"

	"github.com/skillmeat/skillmeat-cli/internal/bundle"
	"github.com/skillmeat/skillmeat-cli/internal/collection"
	"github.com/skillmeat/skillmeat-cli/internal/config"
	"github.com/skillmeat/skillmeat-cli/internal/signing"
	"github.com/skillmeat/skillmeat-cli/internal/snapshot"
	"github.com/skillmeat/skillmeat-cli/internal/terminal"
	"github.com/skillmeat/skillmeat-cli/telemetry"
)

// Factory builds the managers and services commands need.
type Factory struct {
	Config   *config.Config
	Terminal terminal.Info

	Collections func() *collection.Manager
	Snapshots   func() *snapshot.Manager
	Validator   func() *bundle.Validator
	Verifier    func() signing.Verifier
	Tracker     func() telemetry.Tracker
}

// NewFactory creates a factory from the loaded configuration.
func NewFactory(cfg *config.Config, term terminal.Info) *Factory {
	return &Factory{
		Config:   cfg,
		Terminal: term,

		Collections: func() *collection.Manager {
			return collection.NewManager(cfg.CollectionsRoot)
		},
		Snapshots: func() *snapshot.Manager {
			return snapshot.NewManager(cfg.SnapshotsRoot, cfg.SnapshotKeep)
		},
		Validator: func() *bundle.Validator {
			return bundle.NewValidator(limitsFromConfig(cfg))
		},
		Verifier: func() signing.Verifier {
			v, err := signing.NewFileVerifier(cfg.TrustedSigners)
			if err != nil {
				log.Warn().Err(err).Msg("Trusted signers unavailable; treating all signatures as untrusted")
				return &signing.FileVerifier{}
			}
			return v
		},
		Tracker: func() telemetry.Tracker {
			if !cfg.Telemetry.Enabled {
				return telemetry.Nop()
			}
			if cfg.Telemetry.Endpoint != "" {
				return telemetry.NewHTTPTracker(cfg.Telemetry.Endpoint)
			}
			return telemetry.NewFileTracker(cfg.Telemetry.FilePath)
		},
	}
}

// Importer assembles the full import pipeline.
func (f *Factory) Importer(reporter bundle.Reporter) *bundle.Importer {
	return bundle.NewImporter(
		f.Validator(),
		f.Collections(),
		f.Snapshots(),
		f.Verifier(),
		f.Tracker(),
		reporter,
	)
}

func limitsFromConfig(cfg *config.Config) bundle.Limits {
	limits := bundle.DefaultLimits()
	if size, err := config.ParseSize(cfg.Limits.MaxBundleSize); err == nil {
		limits.MaxBundleSize = size
	}
	if size, err := config.ParseSize(cfg.Limits.MaxFileSize); err == nil {
		limits.MaxFileSize = size
	}
	if cfg.Limits.MaxFiles > 0 {
		limits.MaxFiles = cfg.Limits.MaxFiles
	}
	if cfg.Limits.MaxCompressionRatio > 1 {
		limits.MaxCompressionRatio = cfg.Limits.MaxCompressionRatio
	}
	return limits
}
