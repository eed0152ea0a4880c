package review

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds are the per-agent minimum average scores a deck must meet.
type Thresholds struct {
	Style     float64 `yaml:"style"`
	Narrative float64 `yaml:"narrative"`
	FactCheck float64 `yaml:"factCheck"`
}

// DefaultThresholds are applied when no archetype override matches.
func DefaultThresholds() Thresholds {
	return Thresholds{Style: 0.7, Narrative: 0.6, FactCheck: 0.7}
}

// ThresholdConfig holds the defaults plus per-deck-archetype overrides loaded
// from yaml. An archetype override only needs to name the thresholds it
// changes.
type ThresholdConfig struct {
	Default    Thresholds            `yaml:"default"`
	Archetypes map[string]Thresholds `yaml:"archetypes"`
}

// LoadThresholdConfig reads the yaml override file. An empty path yields the
// built-in defaults.
func LoadThresholdConfig(path string) (ThresholdConfig, error) {
	cfg := ThresholdConfig{Default: DefaultThresholds()}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read review config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse review config: %w", err)
	}
	cfg.Default = fillThresholds(cfg.Default)
	return cfg, nil
}

// ForArchetype resolves the thresholds for a deck archetype, falling back to
// the defaults for unknown archetypes and for any zero field in an override.
func (c ThresholdConfig) ForArchetype(archetype string) Thresholds {
	if archetype == "" || c.Archetypes == nil {
		return fillThresholds(c.Default)
	}
	override, ok := c.Archetypes[archetype]
	if !ok {
		return fillThresholds(c.Default)
	}
	base := fillThresholds(c.Default)
	if override.Style > 0 {
		base.Style = override.Style
	}
	if override.Narrative > 0 {
		base.Narrative = override.Narrative
	}
	if override.FactCheck > 0 {
		base.FactCheck = override.FactCheck
	}
	return base
}

func fillThresholds(t Thresholds) Thresholds {
	def := DefaultThresholds()
	if t.Style <= 0 {
		t.Style = def.Style
	}
	if t.Narrative <= 0 {
		t.Narrative = def.Narrative
	}
	if t.FactCheck <= 0 {
		t.FactCheck = def.FactCheck
	}
	return t
}
