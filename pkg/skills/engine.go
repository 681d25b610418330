package skills

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/helicon-ai/skillforge/pkg/logging"
)

// Engine is the public face of the learning subsystem. The orchestration
// loop calls InjectContext before each iteration and LearnFromExecution
// after it; nothing the engine does ever raises back into the loop.
type Engine struct {
	config     Config
	repo       *Repository
	mu         sync.Mutex // guards repo
	store      Store
	telemetry  *Telemetry
	worker     *worker
	pipeline   *pipeline
	reflection ReflectionService
	curation   CurationService

	shutdownOnce sync.Once
}

// New creates an engine with explicit services. Nil services select the
// built-in heuristics. A disabled config yields an engine whose every
// public method is a no-op.
func New(config Config, reflection ReflectionService, curation CurationService) (*Engine, error) {
	e := &Engine{
		config:    config,
		telemetry: NewTelemetry(),
	}
	if !config.Enabled {
		return e, nil
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if reflection == nil {
		reflection = NewHeuristicReflector()
	}
	if curation == nil {
		curation = NewHeuristicCurator()
	}
	e.reflection = reflection
	e.curation = curation

	store, err := NewStore(config.StoragePath)
	if err != nil {
		return nil, err
	}
	e.store = store

	logger := logging.GetLogger()
	ctx := context.Background()

	start := time.Now()
	e.repo = NewRepository(config.MaxSkills)
	loaded, err := store.Load()
	if err != nil {
		// Unreadable storage is absorbed; the engine starts empty.
		logger.Error(ctx, "failed to load skill repository: %v", err)
		e.telemetry.Record(KindError, time.Since(start), false, map[string]interface{}{
			"step": "load", "path": store.Path(),
		}, err)
		loaded = []Skill{}
	}
	e.repo.Replace(loaded)
	e.telemetry.Record(KindInit, time.Since(start), true, map[string]interface{}{
		"skills": len(loaded),
		"path":   store.Path(),
		"async":  config.AsyncLearning,
	}, nil)

	e.pipeline = newPipeline(config, e.repo, &e.mu, reflection, curation, NewWordOverlap(), e.telemetry)

	if config.AsyncLearning {
		e.worker = newWorker(config.QueueSize, time.Duration(config.PollInterval), e.telemetry, e.pipeline.process)
		e.worker.start()
	}

	logger.Info(ctx, "learning engine started with %d skills (capacity %d)", len(loaded), config.MaxSkills)
	return e, nil
}

// Enabled reports whether the engine is live.
func (e *Engine) Enabled() bool {
	return e.config.Enabled
}

// LearnFromExecution submits one execution outcome for analysis. It is
// fire-and-forget: in async mode it enqueues and returns immediately,
// falling back to inline processing only when the queue is full. In sync
// mode it blocks until the curation pipeline completes.
func (e *Engine) LearnFromExecution(task, output string, success bool, errText, trace string, iteration int) {
	if !e.config.Enabled {
		return
	}

	event := &LearningEvent{
		ID:        uuid.New().String(),
		Task:      task,
		Output:    output,
		Success:   success,
		Error:     errText,
		Trace:     trace,
		Iteration: iteration,
		CreatedAt: time.Now(),
	}

	if e.worker != nil && e.worker.submit(event) {
		return
	}
	e.pipeline.process(context.Background(), event)
}

// Save persists the repository. Failures are logged and recorded as
// telemetry errors, never returned to the caller.
func (e *Engine) Save() {
	if !e.config.Enabled {
		return
	}

	e.mu.Lock()
	snapshot := e.repo.Skills()
	e.mu.Unlock()

	start := time.Now()
	err := e.store.Save(snapshot)
	e.telemetry.Record(KindSave, time.Since(start), err == nil, map[string]interface{}{
		"skills": len(snapshot),
		"path":   e.store.Path(),
	}, err)
	if err != nil {
		logging.GetLogger().Error(context.Background(), "failed to save skill repository: %v", err)
	}
}

// Shutdown stops the worker within the configured timeout and performs a
// final save. It is idempotent; repeated calls are no-ops.
func (e *Engine) Shutdown() {
	if !e.config.Enabled {
		return
	}

	e.shutdownOnce.Do(func() {
		if e.worker != nil {
			e.worker.stop(time.Duration(e.config.WorkerShutdownTimeout))
		}
		e.Save()
		if closer, ok := e.store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logging.GetLogger().Warn(context.Background(), "failed to close skill store: %v", err)
			}
		}
	})
}

// Stats describes the engine's current state. A disabled engine reports
// only Enabled=false.
type Stats struct {
	Enabled        bool     `json:"enabled"`
	SkillCount     int      `json:"skill_count,omitempty"`
	AsyncQueueSize int      `json:"async_queue_size,omitempty"`
	Counters       Counters `json:"counters,omitempty"`
	TopSkills      []Skill  `json:"top_skills,omitempty"`
}

// topSkillsCount bounds the skill sample returned by Stats.
const topSkillsCount = 5

// Stats returns the engine's aggregate state.
func (e *Engine) Stats() Stats {
	if !e.config.Enabled {
		return Stats{Enabled: false}
	}

	e.mu.Lock()
	snapshot := e.repo.Skills()
	e.mu.Unlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Score() > snapshot[j].Score()
	})
	top := snapshot
	if len(top) > topSkillsCount {
		top = top[:topSkillsCount]
	}

	queueSize := 0
	if e.worker != nil {
		queueSize = e.worker.queueLen()
	}

	return Stats{
		Enabled:        true,
		SkillCount:     len(snapshot),
		AsyncQueueSize: queueSize,
		Counters:       e.telemetry.Counters(),
		TopSkills:      top,
	}
}

// Events returns up to limit telemetry events, most recent first.
func (e *Engine) Events(limit int) []TelemetryEvent {
	if !e.config.Enabled {
		return nil
	}
	return e.telemetry.Events(limit)
}

// Summary returns aggregate telemetry: per-kind counts, success rate, and
// per-kind average durations.
func (e *Engine) Summary() Summary {
	if !e.config.Enabled {
		return Summary{}
	}
	return e.telemetry.Summary()
}

// Skills returns a snapshot of the current repository.
func (e *Engine) Skills() []Skill {
	if !e.config.Enabled {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repo.Skills()
}
