package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fieldwise/fieldwise/fieldmap"
	"github.com/fieldwise/fieldwise/retrieve"
)

// Config gathers every pipeline tunable: the retrieval cascade thresholds,
// the mapper weights, and the engine's own knobs.
type Config struct {
	Retrieval retrieve.Config  `yaml:"retrieval"`
	Weights   fieldmap.Weights `yaml:"weights"`
	// TopK caps how many ranked candidates feed each retrieval. Zero picks
	// the default; negative lifts the cap.
	TopK int `yaml:"top_k"`
	// Concurrency bounds parallel per-field retrieval.
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Retrieval:   retrieve.DefaultConfig(),
		Weights:     fieldmap.DefaultWeights(),
		TopK:        5,
		Concurrency: 4,
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.TopK == 0 {
		cfg.TopK = def.TopK
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return cfg
}

// LoadConfig reads a YAML configuration file. Omitted fields fall back to
// defaults through the per-package normalization passes.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return normalizeConfig(cfg), nil
}
