package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 384, cfg.Embedding.Dim)
	assert.Equal(t, 10000, cfg.VectorIndex.ExactThreshold)
	assert.InDelta(t, 0.7, cfg.Recommendation.SimWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Recommendation.PopWeight, 1e-9)
	assert.Equal(t, 2, cfg.Planner.RestaurantsPerDay)
	assert.Equal(t, 1, cfg.Planner.AccommodationsPerDay)
	assert.Equal(t, 2, cfg.Planner.MaxAttractionsPerDay)
	assert.Equal(t, 30*time.Second, cfg.Planner.LLMTimeout)
	assert.Equal(t, 10*time.Second, cfg.Maps.RequestTimeout)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "16")
	t.Setenv("HYBRID_SIM_WEIGHT", "1")
	t.Setenv("HYBRID_POP_WEIGHT", "0")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Embedding.Dim)
	assert.InDelta(t, 1.0, cfg.Recommendation.SimWeight, 1e-9)
	assert.InDelta(t, 0.0, cfg.Recommendation.PopWeight, 1e-9)
}

func TestLoadFrom_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("API_PORT=9090\nMAX_ATTRACTIONS_PER_DAY=3\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.Equal(t, 3, cfg.Planner.MaxAttractionsPerDay)
}

func TestLoadFrom_RejectsInvalidDim(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "0")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
