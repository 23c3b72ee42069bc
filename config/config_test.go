package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "flat", cfg.Index.Backend)
	assert.Equal(t, "l2", cfg.Index.Metric)
	assert.Equal(t, "fs", cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Segment.MinWords)
	assert.Equal(t, 100, cfg.Build.BatchSize)
	assert.Equal(t, time.Second, cfg.RetryDelay())

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_FillsZeroValuesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passage.yaml")
	doc := `
embedder:
  dimensions: 384
index:
  backend: vptree
  metric: cosine
store:
  backend: sqlite
  path: snapshots.db
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vptree", cfg.Index.Backend)
	assert.Equal(t, "cosine", cfg.Index.Metric)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "snapshots.db", cfg.Store.Path)
	assert.Equal(t, 384, cfg.Embedder.Dimensions)

	// Unset fields come from Default.
	assert.Equal(t, "embeddinggemma", cfg.Embedder.Model)
	assert.Equal(t, 3, cfg.Segment.MinWords)
	assert.Equal(t, 100, cfg.Build.BatchSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	require.NoError(t, cfg.Validate())
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [not, a, map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "passage.yaml")

	want := Default()
	want.Index.Backend = "vptree"
	want.Store.Path = "/var/lib/passage"
	want.Segment.Abbreviations = []string{"fig", "eq"}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *AppConfig)
		wantErr string
	}{
		{
			name:   "default config is valid",
			mutate: func(cfg *AppConfig) {},
		},
		{
			name:    "unknown index backend",
			mutate:  func(cfg *AppConfig) { cfg.Index.Backend = "rtree" },
			wantErr: "unknown index backend",
		},
		{
			name:    "unknown metric",
			mutate:  func(cfg *AppConfig) { cfg.Index.Metric = "manhattan" },
			wantErr: "metric",
		},
		{
			name:    "unknown store backend",
			mutate:  func(cfg *AppConfig) { cfg.Store.Backend = "redis" },
			wantErr: "unknown store backend",
		},
		{
			name:    "empty store path",
			mutate:  func(cfg *AppConfig) { cfg.Store.Path = "" },
			wantErr: "store.path",
		},
		{
			name:    "non-positive dimensions",
			mutate:  func(cfg *AppConfig) { cfg.Embedder.Dimensions = 0 },
			wantErr: "dimensions",
		},
		{
			name:    "negative min words",
			mutate:  func(cfg *AppConfig) { cfg.Segment.MinWords = -1 },
			wantErr: "min_words",
		},
		{
			name:    "zero batch size",
			mutate:  func(cfg *AppConfig) { cfg.Build.BatchSize = 0 },
			wantErr: "batch_size",
		},
		{
			name:    "zero retries",
			mutate:  func(cfg *AppConfig) { cfg.Build.MaxRetries = 0 },
			wantErr: "max_retries",
		},
		{
			name:    "negative retry delay",
			mutate:  func(cfg *AppConfig) { cfg.Build.RetryDelaySecs = -1 },
			wantErr: "retry_delay_secs",
		},
		{
			name:    "empty server addr",
			mutate:  func(cfg *AppConfig) { cfg.Server.Addr = "" },
			wantErr: "server.addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Embedder.APIKeyEnv = "PASSAGE_TEST_API_KEY"

	t.Run("unset variable falls back to none", func(t *testing.T) {
		assert.Equal(t, "none", cfg.APIKey())
	})

	t.Run("set variable wins", func(t *testing.T) {
		t.Setenv("PASSAGE_TEST_API_KEY", "sk-test")
		assert.Equal(t, "sk-test", cfg.APIKey())
	})

	t.Run("empty env name falls back to none", func(t *testing.T) {
		bare := Default()
		bare.Embedder.APIKeyEnv = ""
		assert.Equal(t, "none", bare.APIKey())
	})
}
