package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/helicon-ai/skillforge/pkg/errors"
)

// ReflectionService analyzes one execution outcome. Implementations may be
// backed by a language model or any other oracle; failures are caught by
// the pipeline and never surface to the orchestration loop.
type ReflectionService interface {
	Reflect(ctx context.Context, event *LearningEvent) (*Reflection, error)
}

// CurationService turns a reflection and a repository snapshot into at most
// one proposed skill update. A nil update with a nil error means no change.
type CurationService interface {
	Curate(ctx context.Context, reflection *Reflection, snapshot []Skill, taskContext string) (SkillUpdate, error)
}

// TextGenerator is the capability the LLM-backed services need from a model
// client. pkg/llms provides the Anthropic implementation.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	ModelID() string
}

// HeuristicReflector derives a reflection from the outcome alone, without
// external calls. It keeps the engine functional when no model is available.
type HeuristicReflector struct{}

// NewHeuristicReflector creates the no-dependency reflection service.
func NewHeuristicReflector() *HeuristicReflector {
	return &HeuristicReflector{}
}

// Reflect produces a lesson from the event outcome.
func (h *HeuristicReflector) Reflect(ctx context.Context, event *LearningEvent) (*Reflection, error) {
	r := &Reflection{Success: event.Success}

	task := firstLine(event.Task)
	if event.Success {
		r.Summary = fmt.Sprintf("iteration %d succeeded", event.Iteration)
		r.Lesson = "Approach that worked for: " + task
		r.Section = "strategies"
		return r, nil
	}

	r.Summary = fmt.Sprintf("iteration %d failed", event.Iteration)
	r.Section = "mistakes"
	if event.Error != "" {
		r.Lesson = "Avoid recurring error: " + firstLine(event.Error)
	} else {
		r.Lesson = "Failed approach for: " + task
	}
	return r, nil
}

// HeuristicCurator proposes an add for any reflection carrying a lesson.
type HeuristicCurator struct{}

// NewHeuristicCurator creates the no-dependency curation service.
func NewHeuristicCurator() *HeuristicCurator {
	return &HeuristicCurator{}
}

// Curate maps a reflection to a skill update.
func (h *HeuristicCurator) Curate(ctx context.Context, reflection *Reflection, snapshot []Skill, taskContext string) (SkillUpdate, error) {
	if reflection == nil || reflection.Lesson == "" {
		return nil, nil
	}
	return AddSkill{Content: reflection.Lesson, Section: reflection.Section}, nil
}

// LLMReflector asks a model to analyze the execution outcome.
type LLMReflector struct {
	gen       TextGenerator
	maxTokens int
}

// NewLLMReflector creates a model-backed reflection service.
func NewLLMReflector(gen TextGenerator, maxTokens int) *LLMReflector {
	return &LLMReflector{gen: gen, maxTokens: maxTokens}
}

// Reflect prompts the model and parses its JSON reply.
func (l *LLMReflector) Reflect(ctx context.Context, event *LearningEvent) (*Reflection, error) {
	var sb strings.Builder
	sb.WriteString("Analyze this task execution and extract one reusable lesson.\n\n")
	fmt.Fprintf(&sb, "Task: %s\n", event.Task)
	fmt.Fprintf(&sb, "Iteration: %d\n", event.Iteration)
	fmt.Fprintf(&sb, "Succeeded: %t\n", event.Success)
	if event.Output != "" {
		fmt.Fprintf(&sb, "Output:\n%s\n", event.Output)
	}
	if event.Error != "" {
		fmt.Fprintf(&sb, "Error:\n%s\n", event.Error)
	}
	if event.Trace != "" {
		fmt.Fprintf(&sb, "Execution trace:\n%s\n", event.Trace)
	}
	sb.WriteString("\nRespond with exactly one JSON object: ")
	sb.WriteString(`{"summary": "...", "lesson": "...", "section": "strategies|mistakes|patterns"}`)

	raw, err := l.gen.Generate(ctx, sb.String(), l.maxTokens)
	if err != nil {
		return nil, err
	}

	var r Reflection
	if err := unmarshalJSONReply(raw, &r); err != nil {
		return nil, errors.Wrap(err, errors.ProcessingFailed, "reflection reply was not valid JSON")
	}
	r.Success = event.Success
	if r.Section == "" {
		r.Section = "strategies"
	}
	return &r, nil
}

// skillUpdateReply is the wire shape of a curation reply.
type skillUpdateReply struct {
	Action       string `json:"action"`
	Content      string `json:"content,omitempty"`
	Section      string `json:"section,omitempty"`
	SkillID      string `json:"skill_id,omitempty"`
	Helpful      int    `json:"helpful,omitempty"`
	Harmful      int    `json:"harmful,omitempty"`
	HelpfulDelta int    `json:"helpful_delta,omitempty"`
	HarmfulDelta int    `json:"harmful_delta,omitempty"`
}

// LLMCurator asks a model to propose a repository mutation.
type LLMCurator struct {
	gen       TextGenerator
	maxTokens int
}

// NewLLMCurator creates a model-backed curation service.
func NewLLMCurator(gen TextGenerator, maxTokens int) *LLMCurator {
	return &LLMCurator{gen: gen, maxTokens: maxTokens}
}

// Curate prompts the model with the reflection and the current repository
// snapshot, then decodes the proposed update into the SkillUpdate sum.
func (l *LLMCurator) Curate(ctx context.Context, reflection *Reflection, snapshot []Skill, taskContext string) (SkillUpdate, error) {
	var sb strings.Builder
	sb.WriteString("You curate a bounded repository of reusable skills for an agent.\n\n")
	fmt.Fprintf(&sb, "Latest reflection: %s\n", reflection.Summary)
	fmt.Fprintf(&sb, "Candidate lesson: %s\n", reflection.Lesson)
	if taskContext != "" {
		fmt.Fprintf(&sb, "Task context: %s\n", taskContext)
	}
	sb.WriteString("\nCurrent skills:\n")
	if len(snapshot) == 0 {
		sb.WriteString("(none)\n")
	}
	for i := range snapshot {
		fmt.Fprintf(&sb, "%s %s\n", snapshot[i].ID, snapshot[i].Render())
	}
	sb.WriteString("\nPropose at most one change. Respond with exactly one JSON object:\n")
	sb.WriteString(`{"action": "add", "content": "...", "section": "..."} or `)
	sb.WriteString(`{"action": "modify", "skill_id": "...", "helpful_delta": 1, "harmful_delta": 0} or `)
	sb.WriteString(`{"action": "remove", "skill_id": "..."} or {"action": "none"}`)

	raw, err := l.gen.Generate(ctx, sb.String(), l.maxTokens)
	if err != nil {
		return nil, err
	}

	var reply skillUpdateReply
	if err := unmarshalJSONReply(raw, &reply); err != nil {
		return nil, errors.Wrap(err, errors.ProcessingFailed, "curation reply was not valid JSON")
	}

	switch reply.Action {
	case "add":
		if reply.Content == "" {
			return nil, errors.New(errors.ProcessingFailed, "add update missing content")
		}
		return AddSkill{Content: reply.Content, Section: reply.Section, Helpful: reply.Helpful, Harmful: reply.Harmful}, nil
	case "modify":
		if reply.SkillID == "" {
			return nil, errors.New(errors.ProcessingFailed, "modify update missing skill_id")
		}
		return ModifySkill{SkillID: reply.SkillID, HelpfulDelta: reply.HelpfulDelta, HarmfulDelta: reply.HarmfulDelta}, nil
	case "remove":
		if reply.SkillID == "" {
			return nil, errors.New(errors.ProcessingFailed, "remove update missing skill_id")
		}
		return RemoveSkill{SkillID: reply.SkillID}, nil
	case "none", "":
		return nil, nil
	default:
		return nil, errors.WithFields(
			errors.New(errors.ProcessingFailed, "unknown curation action"),
			errors.Fields{"action": reply.Action})
	}
}

// unmarshalJSONReply decodes a model reply that may wrap its JSON object in
// code fences or surrounding prose.
func unmarshalJSONReply(raw string, v interface{}) error {
	s := strings.TrimSpace(raw)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return json.Unmarshal([]byte(s), v)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
