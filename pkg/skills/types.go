package skills

import (
	"fmt"
	"time"
)

// Skill represents a single learned, reusable strategy.
type Skill struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Section string `json:"section"`
	Helpful int    `json:"helpful"`
	Harmful int    `json:"harmful"`
}

// Score returns the net usefulness of the skill.
func (s *Skill) Score() int {
	return s.Helpful - s.Harmful
}

// Render formats the skill as a single prompt line.
func (s *Skill) Render() string {
	return fmt.Sprintf("- [%s] %s (score: %d)", s.Section, s.Content, s.Score())
}

// LearningEvent is one execution outcome submitted for analysis.
// It is immutable once created and consumed exactly once by the worker.
type LearningEvent struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Output    string    `json:"output"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Trace     string    `json:"trace,omitempty"`
	Iteration int       `json:"iteration"`
	CreatedAt time.Time `json:"created_at"`
}

// Reflection is the analysis of an execution outcome produced by a
// reflection service. The engine treats it as an opaque value passed
// through to curation.
type Reflection struct {
	Summary string `json:"summary"`
	Lesson  string `json:"lesson"`
	Section string `json:"section"`
	Success bool   `json:"success"`
}

// SkillUpdate is a proposed repository mutation returned by a curation
// service. It is a closed sum; the pipeline dispatches on the concrete type.
type SkillUpdate interface {
	isSkillUpdate()
}

// AddSkill proposes a new skill. Helpful and Harmful are optional initial
// counters; both zero keeps the repository default of one helpful use.
type AddSkill struct {
	Content string
	Section string
	Helpful int
	Harmful int
}

// ModifySkill adjusts the counters of an existing skill.
type ModifySkill struct {
	SkillID      string
	HelpfulDelta int
	HarmfulDelta int
}

// RemoveSkill removes an existing skill.
type RemoveSkill struct {
	SkillID string
}

func (AddSkill) isSkillUpdate()    {}
func (ModifySkill) isSkillUpdate() {}
func (RemoveSkill) isSkillUpdate() {}
