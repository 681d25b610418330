package skills

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("defaults validate", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty storage path", func(c *Config) { c.StoragePath = "" }},
			{"zero capacity", func(c *Config) { c.MaxSkills = 0 }},
			{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
			{"similarity above one", func(c *Config) { c.SimilarityThreshold = 1.5 }},
			{"negative top k", func(c *Config) { c.TopKSkills = -1 }},
			{"zero queue size", func(c *Config) { c.QueueSize = 0 }},
			{"zero shutdown timeout", func(c *Config) { c.WorkerShutdownTimeout = 0 }},
			{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				cfg := DefaultConfig()
				tc.mutate(&cfg)
				assert.Error(t, cfg.Validate())
			})
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults from yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.yaml")
		content := `
enabled: true
model: claude-sonnet-4-5
storage_path: /tmp/skills.json
async_learning: false
max_skills: 7
top_k_skills: 3
worker_shutdown_timeout: 2s
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
		assert.Equal(t, 7, cfg.MaxSkills)
		assert.Equal(t, 3, cfg.TopKSkills)
		assert.False(t, cfg.AsyncLearning)
		assert.Equal(t, Duration(2*time.Second), cfg.WorkerShutdownTimeout)
		// Untouched fields keep their defaults.
		assert.Equal(t, 0.85, cfg.SimilarityThreshold)
		assert.Equal(t, 100, cfg.QueueSize)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_skills: [nope"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values error after parse", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_skills: -3"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
