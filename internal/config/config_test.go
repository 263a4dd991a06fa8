package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource_adequacy/internal/adequacy"
)

func writeStudy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validStudy = `
system_dir: systems/base
window:
  start: 2030-01-01T00:00:00Z
  end: 2031-01-01T00:00:00Z
trials: 1000
seed: 42
metrics: [eue, lolh]
elcc:
  candidate_dir: systems/wind-farm
  metric: eue
  precision_mw: 0.05
  max_iterations: 30
`

func TestLoad_ValidStudy(t *testing.T) {
	s, err := Load(writeStudy(t, validStudy))
	require.NoError(t, err)

	assert.Equal(t, "systems/base", s.SystemDir)
	assert.Equal(t, 1000, s.Trials)
	assert.Equal(t, uint64(42), s.Seed)

	start, end, err := s.WindowBounds()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)))

	kinds, err := s.MetricKinds()
	require.NoError(t, err)
	assert.Equal(t, []adequacy.Metric{adequacy.ExpectedUnservedEnergy, adequacy.LossOfLoadHours}, kinds)

	require.NotNil(t, s.ELCC)
	assert.Equal(t, "systems/wind-farm", s.ELCC.CandidateDir)
	assert.InDelta(t, 0.05, s.ELCC.PrecisionMW, 0)
	assert.Equal(t, 30, s.ELCC.MaxIterations)
}

func TestStudy_Simulation(t *testing.T) {
	s, err := Load(writeStudy(t, validStudy))
	require.NoError(t, err)

	sim, err := s.Simulation()
	require.NoError(t, err)
	start, end := sim.Window()
	assert.True(t, end.After(start))
	assert.Equal(t, 1000, sim.Trials())
	assert.Equal(t, uint64(42), sim.Seed())
}

func TestLoad_MissingSystemDir(t *testing.T) {
	body := `
window:
  start: 2030-01-01T00:00:00Z
  end: 2030-02-01T00:00:00Z
metrics: [eue]
`
	_, err := Load(writeStudy(t, body))
	assert.ErrorContains(t, err, "system_dir")
}

func TestLoad_WindowOrder(t *testing.T) {
	body := `
system_dir: systems/base
window:
  start: 2030-02-01T00:00:00Z
  end: 2030-01-01T00:00:00Z
metrics: [eue]
`
	_, err := Load(writeStudy(t, body))
	assert.ErrorContains(t, err, "before")
}

func TestLoad_BadTimestamp(t *testing.T) {
	body := `
system_dir: systems/base
window:
  start: yesterday
  end: 2030-01-01T00:00:00Z
metrics: [eue]
`
	_, err := Load(writeStudy(t, body))
	assert.ErrorContains(t, err, "window.start")
}

func TestLoad_UnknownMetric(t *testing.T) {
	body := `
system_dir: systems/base
window:
  start: 2030-01-01T00:00:00Z
  end: 2030-02-01T00:00:00Z
metrics: [frequency-response]
`
	_, err := Load(writeStudy(t, body))
	assert.ErrorContains(t, err, "unknown metric")
}

func TestLoad_NoMetricsNoELCC(t *testing.T) {
	body := `
system_dir: systems/base
window:
  start: 2030-01-01T00:00:00Z
  end: 2030-02-01T00:00:00Z
`
	_, err := Load(writeStudy(t, body))
	assert.ErrorContains(t, err, "at least one metric")
}

func TestLoad_ELCCRequiresCandidate(t *testing.T) {
	body := `
system_dir: systems/base
window:
  start: 2030-01-01T00:00:00Z
  end: 2030-02-01T00:00:00Z
elcc:
  metric: eue
`
	_, err := Load(writeStudy(t, body))
	assert.ErrorContains(t, err, "candidate_dir")
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
