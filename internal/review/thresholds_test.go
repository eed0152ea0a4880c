package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadThresholdConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.yaml")
	content := `default:
  style: 0.75
archetypes:
  pitch:
    factCheck: 0.9
  brainstorm:
    style: 0.5
    narrative: 0.4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadThresholdConfig(path)
	require.NoError(t, err)

	def := cfg.ForArchetype("")
	assert.InDelta(t, 0.75, def.Style, 1e-9)
	assert.InDelta(t, 0.6, def.Narrative, 1e-9, "unset defaults fall back to built-ins")
	assert.InDelta(t, 0.7, def.FactCheck, 1e-9)

	pitch := cfg.ForArchetype("pitch")
	assert.InDelta(t, 0.9, pitch.FactCheck, 1e-9)
	assert.InDelta(t, 0.75, pitch.Style, 1e-9, "unset override fields keep the default")

	brainstorm := cfg.ForArchetype("brainstorm")
	assert.InDelta(t, 0.5, brainstorm.Style, 1e-9)
	assert.InDelta(t, 0.4, brainstorm.Narrative, 1e-9)

	unknown := cfg.ForArchetype("nope")
	assert.Equal(t, def, unknown)
}

func TestLoadThresholdConfigEmptyPath(t *testing.T) {
	cfg, err := LoadThresholdConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), cfg.ForArchetype(""))
}

func TestLoadThresholdConfigMissingFile(t *testing.T) {
	_, err := LoadThresholdConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
