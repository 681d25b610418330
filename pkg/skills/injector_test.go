package skills

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	config := DefaultConfig()
	config.StoragePath = filepath.Join(t.TempDir(), "skills.json")
	config.AsyncLearning = false
	if mutate != nil {
		mutate(&config)
	}

	e, err := New(config, okReflector(), staticCurator(AddSkill{Content: "x"}))
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e
}

func TestInjectContext(t *testing.T) {
	t.Run("empty repository passes the prompt through", func(t *testing.T) {
		e := newTestEngine(t, nil)
		assert.Equal(t, "solve the task", e.InjectContext("solve the task"))
	})

	t.Run("disabled engine passes the prompt through", func(t *testing.T) {
		e, err := New(Config{Enabled: false}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "p", e.InjectContext("p"))
	})

	t.Run("full repository uses the grouped default rendering", func(t *testing.T) {
		e := newTestEngine(t, nil)
		e.repo.Replace([]Skill{
			{ID: "a", Content: "slow down", Section: "mistakes", Helpful: 1},
			{ID: "b", Content: "plan first", Section: "strategies", Helpful: 2},
		})

		got := e.InjectContext("go")
		assert.Equal(t, "go\n\n## Learned Strategies\n- [strategies] plan first (score: 2)\n- [mistakes] slow down (score: 1)", got)
	})

	t.Run("top-k keeps the highest scoring skills", func(t *testing.T) {
		e := newTestEngine(t, func(c *Config) { c.TopKSkills = 1 })
		e.repo.Replace([]Skill{
			{ID: "a", Content: "best strategy", Section: "strategies", Helpful: 5},
			{ID: "b", Content: "decent strategy", Section: "strategies", Helpful: 3},
			{ID: "c", Content: "weak strategy", Section: "strategies", Helpful: 1},
		})

		got := e.InjectContext("go")
		assert.Equal(t, "go\n\n## Learned Strategies (TOP-K)\n- [strategies] best strategy (score: 5)", got)
	})

	t.Run("top-k larger than repository renders everything", func(t *testing.T) {
		e := newTestEngine(t, func(c *Config) { c.TopKSkills = 10 })
		e.repo.Replace([]Skill{
			{ID: "a", Content: "only", Section: "s", Helpful: 1},
		})

		got := e.InjectContext("go")
		assert.Contains(t, got, "## Learned Strategies\n")
		assert.NotContains(t, got, "TOP-K")
	})

	t.Run("prompt is never mutated", func(t *testing.T) {
		e := newTestEngine(t, nil)
		e.repo.Replace([]Skill{{ID: "a", Content: "x", Section: "s"}})

		prompt := "base"
		_ = e.InjectContext(prompt)
		assert.Equal(t, "base", prompt)
	})

	t.Run("records inject telemetry", func(t *testing.T) {
		e := newTestEngine(t, nil)
		e.InjectContext("p")
		assert.Equal(t, int64(1), e.telemetry.Counters().Injections)
	})
}
