package skills

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Repository is the ordered, capacity-bounded collection of skills.
//
// It performs no internal locking. All mutating calls and snapshot reads
// must happen while the caller holds the engine's repository mutex, so the
// curation pipeline can batch a read-modify-write cycle atomically.
type Repository struct {
	skills   []Skill
	capacity int
}

// NewRepository creates an empty repository with the given capacity.
func NewRepository(capacity int) *Repository {
	return &Repository{capacity: capacity}
}

// Len returns the number of skills.
func (r *Repository) Len() int {
	return len(r.skills)
}

// Capacity returns the configured capacity bound.
func (r *Repository) Capacity() int {
	return r.capacity
}

// Skills returns a snapshot copy, safe to iterate after the lock is released.
func (r *Repository) Skills() []Skill {
	out := make([]Skill, len(r.skills))
	copy(out, r.skills)
	return out
}

// Find returns a copy of the skill with the given id.
func (r *Repository) Find(id string) (Skill, bool) {
	for i := range r.skills {
		if r.skills[i].ID == id {
			return r.skills[i], true
		}
	}
	return Skill{}, false
}

// Add appends a new skill and returns it.
func (r *Repository) Add(content, section string) Skill {
	if section == "" {
		section = "general"
	}
	s := Skill{
		ID:      uuid.New().String(),
		Content: content,
		Section: section,
		Helpful: 1,
	}
	r.skills = append(r.skills, s)
	return s
}

// Remove deletes the skill with the given id, preserving order.
func (r *Repository) Remove(id string) bool {
	for i := range r.skills {
		if r.skills[i].ID == id {
			r.skills = append(r.skills[:i], r.skills[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyDelta adjusts the helpful/harmful counters of an existing skill.
func (r *Repository) ApplyDelta(id string, helpfulDelta, harmfulDelta int) bool {
	for i := range r.skills {
		if r.skills[i].ID == id {
			r.skills[i].Helpful += helpfulDelta
			r.skills[i].Harmful += harmfulDelta
			return true
		}
	}
	return false
}

// Replace swaps in a full skill set, e.g. after a load. The repository is
// replaced wholesale rather than mutated field by field.
func (r *Repository) Replace(skills []Skill) {
	r.skills = make([]Skill, len(skills))
	copy(r.skills, skills)
}

// Render formats the full skill list for context injection, grouped by
// section.
func (r *Repository) Render() string {
	return RenderGrouped("## Learned Strategies", r.skills)
}

// RenderSkills formats skills as prompt lines under a header, in the order
// given.
func RenderSkills(header string, skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(header)
	for i := range skills {
		sb.WriteString("\n")
		sb.WriteString(skills[i].Render())
	}
	return sb.String()
}

// RenderGrouped formats skills under a header with each section contiguous.
// Strategies and patterns lead, mistakes trail so the block ends on what to
// avoid; other sections keep first-appearance order between them. Within a
// section, insertion order.
func RenderGrouped(header string, skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}

	bySection := make(map[string][]Skill)
	var order []string
	for _, s := range skills {
		if _, seen := bySection[s.Section]; !seen {
			order = append(order, s.Section)
		}
		bySection[s.Section] = append(bySection[s.Section], s)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return sectionRank(order[i]) < sectionRank(order[j])
	})

	ordered := make([]Skill, 0, len(skills))
	for _, section := range order {
		ordered = append(ordered, bySection[section]...)
	}
	return RenderSkills(header, ordered)
}

func sectionRank(section string) int {
	switch section {
	case "strategies":
		return 0
	case "patterns":
		return 1
	case "mistakes":
		return 3
	default:
		return 2
	}
}
