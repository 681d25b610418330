package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	t.Run("add assigns id and defaults section", func(t *testing.T) {
		repo := NewRepository(10)

		s := repo.Add("Check error returns", "strategies")
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "strategies", s.Section)
		assert.Equal(t, 1, s.Helpful)

		anon := repo.Add("No section given", "")
		assert.Equal(t, "general", anon.Section)
		assert.Equal(t, 2, repo.Len())
	})

	t.Run("remove preserves order", func(t *testing.T) {
		repo := NewRepository(10)
		a := repo.Add("first", "s")
		b := repo.Add("second", "s")
		c := repo.Add("third", "s")

		require.True(t, repo.Remove(b.ID))
		assert.False(t, repo.Remove(b.ID))

		got := repo.Skills()
		require.Len(t, got, 2)
		assert.Equal(t, a.ID, got[0].ID)
		assert.Equal(t, c.ID, got[1].ID)
	})

	t.Run("apply delta adjusts score", func(t *testing.T) {
		repo := NewRepository(10)
		s := repo.Add("strategy", "s")

		require.True(t, repo.ApplyDelta(s.ID, 4, 0))
		require.True(t, repo.ApplyDelta(s.ID, 0, 2))
		assert.False(t, repo.ApplyDelta("missing", 1, 0))

		got, ok := repo.Find(s.ID)
		require.True(t, ok)
		assert.Equal(t, 5, got.Helpful)
		assert.Equal(t, 2, got.Harmful)
		assert.Equal(t, 3, got.Score())
	})

	t.Run("skills returns a snapshot copy", func(t *testing.T) {
		repo := NewRepository(10)
		repo.Add("original", "s")

		snapshot := repo.Skills()
		snapshot[0].Content = "mutated"

		got := repo.Skills()
		assert.Equal(t, "original", got[0].Content)
	})

	t.Run("replace swaps the full set", func(t *testing.T) {
		repo := NewRepository(10)
		repo.Add("stale", "s")

		repo.Replace([]Skill{
			{ID: "a", Content: "fresh", Section: "s", Helpful: 2},
		})

		got := repo.Skills()
		require.Len(t, got, 1)
		assert.Equal(t, "fresh", got[0].Content)
	})

	t.Run("render formats prompt lines", func(t *testing.T) {
		repo := NewRepository(10)
		repo.Replace([]Skill{
			{ID: "a", Content: "Use table tests", Section: "testing", Helpful: 5, Harmful: 2},
		})

		assert.Equal(t, "## Learned Strategies\n- [testing] Use table tests (score: 3)", repo.Render())
		assert.Equal(t, "", RenderSkills("## Header", nil))
	})

	t.Run("render groups sections", func(t *testing.T) {
		repo := NewRepository(10)
		repo.Replace([]Skill{
			{ID: "a", Content: "Do not force-push", Section: "mistakes", Helpful: 1},
			{ID: "b", Content: "Commit early", Section: "strategies", Helpful: 2},
			{ID: "c", Content: "Read the failing test first", Section: "testing", Helpful: 1},
			{ID: "d", Content: "Commit often", Section: "strategies", Helpful: 1},
		})

		want := "## Learned Strategies\n" +
			"- [strategies] Commit early (score: 2)\n" +
			"- [strategies] Commit often (score: 1)\n" +
			"- [testing] Read the failing test first (score: 1)\n" +
			"- [mistakes] Do not force-push (score: 1)"
		assert.Equal(t, want, repo.Render())
	})
}

func TestRenderGrouped(t *testing.T) {
	t.Run("empty is empty", func(t *testing.T) {
		assert.Equal(t, "", RenderGrouped("## Header", nil))
	})

	t.Run("patterns follow strategies, mistakes trail", func(t *testing.T) {
		got := RenderGrouped("## H", []Skill{
			{ID: "a", Content: "m", Section: "mistakes", Helpful: 1},
			{ID: "b", Content: "p", Section: "patterns", Helpful: 1},
			{ID: "c", Content: "g", Section: "general", Helpful: 1},
			{ID: "d", Content: "s", Section: "strategies", Helpful: 1},
		})

		want := "## H\n" +
			"- [strategies] s (score: 1)\n" +
			"- [patterns] p (score: 1)\n" +
			"- [general] g (score: 1)\n" +
			"- [mistakes] m (score: 1)"
		assert.Equal(t, want, got)
	})

	t.Run("other sections keep first-appearance order", func(t *testing.T) {
		got := RenderGrouped("## H", []Skill{
			{ID: "a", Content: "t1", Section: "testing", Helpful: 1},
			{ID: "b", Content: "r1", Section: "reviewing", Helpful: 1},
			{ID: "c", Content: "t2", Section: "testing", Helpful: 1},
		})

		want := "## H\n" +
			"- [testing] t1 (score: 1)\n" +
			"- [testing] t2 (score: 1)\n" +
			"- [reviewing] r1 (score: 1)"
		assert.Equal(t, want, got)
	})
}
