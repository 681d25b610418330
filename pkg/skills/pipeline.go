package skills

import (
	"context"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/helicon-ai/skillforge/pkg/logging"
)

// Preview caps applied to event fields before they reach the reflection
// service.
const (
	maxOutputPreview = 2000
	maxErrorPreview  = 500
	maxTracePreview  = 1000
)

// pipeline turns one learning event into at most one repository mutation:
// reflect, curate, deduplicate, apply, prune. Reflection and curation run
// before the repository mutex is acquired; no lock is held across an
// external service call.
type pipeline struct {
	config     Config
	repo       *Repository
	mu         *sync.Mutex
	reflection ReflectionService
	curation   CurationService
	similarity Similarity
	telemetry  *Telemetry
}

func newPipeline(config Config, repo *Repository, mu *sync.Mutex, reflection ReflectionService, curation CurationService, similarity Similarity, telemetry *Telemetry) *pipeline {
	return &pipeline{
		config:     config,
		repo:       repo,
		mu:         mu,
		reflection: reflection,
		curation:   curation,
		similarity: similarity,
		telemetry:  telemetry,
	}
}

// process runs the full pipeline for one event. Every step is independently
// failable; a reflect or curate failure abandons the event with no mutation.
func (p *pipeline) process(ctx context.Context, event *LearningEvent) {
	logger := logging.GetLogger()
	defer p.telemetry.AddProcessed(1)

	preview := previewEvent(event)

	start := time.Now()
	reflection, err := p.reflection.Reflect(ctx, preview)
	p.telemetry.Record(KindReflect, time.Since(start), err == nil, map[string]interface{}{
		"iteration": event.Iteration,
		"success":   event.Success,
	}, err)
	if err != nil {
		logger.Error(ctx, "reflection failed for iteration %d: %v", event.Iteration, err)
		return
	}

	p.mu.Lock()
	snapshot := p.repo.Skills()
	p.mu.Unlock()

	start = time.Now()
	update, err := p.curation.Curate(ctx, reflection, snapshot, firstLine(event.Task))
	if err != nil {
		p.telemetry.Record(KindError, time.Since(start), false, map[string]interface{}{
			"step":      "curate",
			"iteration": event.Iteration,
		}, err)
		logger.Error(ctx, "curation failed for iteration %d: %v", event.Iteration, err)
		return
	}
	if update == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// The skillUpdate timing covers the mutation phase only, not the
	// curation call above.
	start = time.Now()
	sizeBefore := p.repo.Len()

	if add, ok := update.(AddSkill); ok && p.config.DeduplicationEnabled {
		if p.isDuplicate(add.Content) {
			p.telemetry.AddDeduplicated(1)
			p.telemetry.Record(KindSkillUpdate, time.Since(start), true, map[string]interface{}{
				"deduplicated": true,
				"size_before":  sizeBefore,
				"size_after":   sizeBefore,
			}, nil)
			logger.Debug(ctx, "rejected near-duplicate skill: %s", add.Content)
			return
		}
	}

	p.apply(ctx, update)
	p.prunePass(ctx)

	sizeAfter := p.repo.Len()
	p.telemetry.Record(KindSkillUpdate, time.Since(start), true, map[string]interface{}{
		"size_before": sizeBefore,
		"size_after":  sizeAfter,
		"delta":       sizeAfter - sizeBefore,
	}, nil)
}

// isDuplicate checks the proposed content against every existing skill.
// Called with the repository mutex held; compares against the live set, not
// the pre-curation snapshot.
func (p *pipeline) isDuplicate(content string) bool {
	for _, existing := range p.repo.Skills() {
		if p.similarity.Score(content, existing.Content) >= p.config.SimilarityThreshold {
			return true
		}
	}
	return false
}

// apply performs the update on the repository. Called with the mutex held.
func (p *pipeline) apply(ctx context.Context, update SkillUpdate) {
	logger := logging.GetLogger()

	switch u := update.(type) {
	case AddSkill:
		s := p.repo.Add(u.Content, u.Section)
		if u.Helpful != 0 || u.Harmful != 0 {
			p.repo.ApplyDelta(s.ID, u.Helpful-s.Helpful, u.Harmful)
		}
		p.telemetry.AddSkillsAdded(1)
		logger.Debug(ctx, "added skill %s [%s]", s.ID, s.Section)
	case ModifySkill:
		if p.repo.ApplyDelta(u.SkillID, u.HelpfulDelta, u.HarmfulDelta) {
			p.telemetry.AddSkillsUpdated(1)
		} else {
			logger.Warn(ctx, "modify update for unknown skill %s", u.SkillID)
		}
	case RemoveSkill:
		if p.repo.Remove(u.SkillID) {
			p.telemetry.AddSkillsUpdated(1)
		} else {
			logger.Warn(ctx, "remove update for unknown skill %s", u.SkillID)
		}
	}
}

// prunePass enforces the capacity bound by removing the lowest-scoring
// skills. Equal scores keep insertion order, oldest pruned first. Called
// with the mutex held.
func (p *pipeline) prunePass(ctx context.Context) {
	excess := p.repo.Len() - p.config.MaxSkills
	if excess <= 0 {
		return
	}

	start := time.Now()
	current := p.repo.Skills()
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].Score() < current[j].Score()
	})

	pruned := make([]string, 0, excess)
	for i := 0; i < excess; i++ {
		p.repo.Remove(current[i].ID)
		pruned = append(pruned, current[i].ID)
	}

	p.telemetry.AddSkillsPruned(int64(len(pruned)))
	p.telemetry.Record(KindPrune, time.Since(start), true, map[string]interface{}{
		"pruned":   len(pruned),
		"capacity": p.config.MaxSkills,
	}, nil)
	logging.GetLogger().Debug(ctx, "pruned %d skills to stay within capacity %d", len(pruned), p.config.MaxSkills)
}

// previewEvent returns a copy of the event with oversized fields capped
// before they are handed to the reflection service.
func previewEvent(event *LearningEvent) *LearningEvent {
	preview := *event
	preview.Output = truncate(preview.Output, maxOutputPreview)
	preview.Error = truncate(preview.Error, maxErrorPreview)
	preview.Trace = truncate(preview.Trace, maxTracePreview)
	return &preview
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
