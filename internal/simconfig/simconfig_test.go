package simconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
name: constant-track
process:
  kind: constant
  value0: 1.0
sampleIntervalSeconds: 1.0
horizonSeconds: 60.0
filter:
  processNoise: 0.0
  observationNoise: 0.25
  initialVariance: 1.0
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidScenario(t *testing.T) {
	path := writeTemp(t, validYAML)
	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "constant-track", sc.Name)
	assert.Equal(t, "constant", sc.Process.Kind)
	assert.Equal(t, 1.0, sc.SampleIntervalSeconds)
	assert.Equal(t, 60.0, sc.HorizonSeconds)
}

func TestLoadRejectsUnknownProcessKind(t *testing.T) {
	path := writeTemp(t, `
name: bad
process:
  kind: exotic
sampleIntervalSeconds: 1.0
horizonSeconds: 10.0
filter:
  observationNoise: 1.0
  initialVariance: 1.0
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveHorizon(t *testing.T) {
	path := writeTemp(t, `
name: bad
process:
  kind: constant
sampleIntervalSeconds: 1.0
horizonSeconds: 0
filter:
  observationNoise: 1.0
  initialVariance: 1.0
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
