// Package config loads the engine configuration artifact. The weight table
// and platform size ceilings are deliberately configuration, not hard-wired
// constants; the defaults here are the documented values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trustgate/internal/metrics"
)

// Config holds every tunable of the scoring engine.
type Config struct {
	// Weights is the metric weight table; it must sum to 1.0.
	Weights map[string]float64 `yaml:"weights"`

	// SizeCeilings are the per-platform weight-size bands in MB.
	SizeCeilings metrics.SizeCeilings `yaml:"size_ceilings"`

	// MetricTimeout bounds each evaluator call.
	MetricTimeout time.Duration `yaml:"metric_timeout"`

	// BatchConcurrency bounds simultaneously in-flight artifact evaluations.
	BatchConcurrency int `yaml:"batch_concurrency"`

	// GitHubToken and JudgeAPIKey come from the environment, never the file.
	GitHubToken string `yaml:"-"`
	JudgeAPIKey string `yaml:"-"`
}

// Default returns the documented engine configuration.
func Default() *Config {
	weights := make(map[string]float64)
	for kind, w := range metrics.DefaultWeights() {
		weights[string(kind)] = w
	}
	return &Config{
		Weights:          weights,
		SizeCeilings:     metrics.DefaultSizeCeilings(),
		MetricTimeout:    30 * time.Second,
		BatchConcurrency: 4,
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		JudgeAPIKey:      os.Getenv("OPENAI_API_KEY"),
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if err := c.MetricWeights().Validate(); err != nil {
		return err
	}
	if c.MetricTimeout <= 0 {
		return fmt.Errorf("metric_timeout must be positive")
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("batch_concurrency must be positive")
	}
	return nil
}

// MetricWeights converts the table to the metrics package representation.
func (c *Config) MetricWeights() metrics.Weights {
	w := make(metrics.Weights, len(c.Weights))
	for kind, weight := range c.Weights {
		w[metrics.Kind(kind)] = weight
	}
	return w
}
