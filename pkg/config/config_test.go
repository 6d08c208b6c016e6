package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/helixdb/helixql/pkg/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadAppliesYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helixql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  data_dir: /var/lib/helixql
query:
  default_deadline: 5s
  worker_pool_size: 4
vectors:
  Emb:
    dim: 128
    metric: euclidean
`), 0o644))

	t.Setenv("HELIX_WORKER_POOL_SIZE", "16")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/var/lib/helixql", cfg.Database.DataDir)
	assert.Equal(t, 16, cfg.Query.WorkerPoolSize, "env override wins over YAML")

	vecs, err := cfg.VectorConfigs()
	require.NoError(t, err)
	assert.Equal(t, vectordb.MetricEuclidean, vecs["Emb"].Metric)
	assert.Equal(t, 128, vecs["Emb"].Dim)
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownMetric(t *testing.T) {
	cfg := Default()
	cfg.Vectors["Emb"] = VectorTypeConfig{Dim: 8, Metric: "manhattan"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveDim(t *testing.T) {
	cfg := Default()
	cfg.Vectors["Emb"] = VectorTypeConfig{Dim: 0, Metric: "cosine"}
	assert.Error(t, cfg.Validate())
}
