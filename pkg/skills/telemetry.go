package skills

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventKind classifies telemetry events.
type EventKind string

const (
	KindInit        EventKind = "init"
	KindInject      EventKind = "inject"
	KindReflect     EventKind = "reflect"
	KindSkillUpdate EventKind = "skillUpdate"
	KindPrune       EventKind = "prune"
	KindSave        EventKind = "save"
	KindError       EventKind = "error"
)

// TelemetryEvent is one timed, typed record of an engine operation.
type TelemetryEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Success   bool                   `json:"success"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Counters holds the aggregate telemetry counters.
type Counters struct {
	Reflections      int64 `json:"reflections"`
	SkillsAdded      int64 `json:"skills_added"`
	SkillsUpdated    int64 `json:"skills_updated"`
	SkillsPruned     int64 `json:"skills_pruned"`
	Deduplicated     int64 `json:"deduplicated"`
	Injections       int64 `json:"injections"`
	Errors           int64 `json:"errors"`
	TasksQueued      int64 `json:"tasks_queued"`
	TasksProcessed   int64 `json:"tasks_processed"`
	TotalProcessing  int64 `json:"total_processing_ms"`
}

// Summary aggregates the recorded events.
type Summary struct {
	EventCounts   map[EventKind]int     `json:"event_counts"`
	SuccessRate   float64               `json:"success_rate"`
	AvgDurationMs map[EventKind]float64 `json:"avg_duration_ms"`
}

// Telemetry records timed, typed events and aggregate counters. Event
// retention is unbounded; callers cap retrieval via the Events limit.
type Telemetry struct {
	mu     sync.Mutex
	events []TelemetryEvent

	reflections    atomic.Int64
	skillsAdded    atomic.Int64
	skillsUpdated  atomic.Int64
	skillsPruned   atomic.Int64
	deduplicated   atomic.Int64
	injections     atomic.Int64
	errors         atomic.Int64
	tasksQueued    atomic.Int64
	tasksProcessed atomic.Int64
	processingMs   atomic.Int64
}

// NewTelemetry creates an empty recorder.
func NewTelemetry() *Telemetry {
	return &Telemetry{}
}

// Record appends an event and updates the aggregate counters.
func (t *Telemetry) Record(kind EventKind, duration time.Duration, success bool, details map[string]interface{}, err error) {
	ev := TelemetryEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		Duration:  duration,
		Success:   success,
		Details:   details,
	}
	if err != nil {
		ev.Error = err.Error()
	}

	t.mu.Lock()
	t.events = append(t.events, ev)
	t.mu.Unlock()

	if !success || kind == KindError {
		t.errors.Add(1)
	}
	switch kind {
	case KindReflect:
		t.reflections.Add(1)
	case KindInject:
		t.injections.Add(1)
	}
	t.processingMs.Add(duration.Milliseconds())
}

// AddSkillsAdded and friends bump the repository mutation counters.
func (t *Telemetry) AddSkillsAdded(n int64)   { t.skillsAdded.Add(n) }
func (t *Telemetry) AddSkillsUpdated(n int64) { t.skillsUpdated.Add(n) }
func (t *Telemetry) AddSkillsPruned(n int64)  { t.skillsPruned.Add(n) }
func (t *Telemetry) AddDeduplicated(n int64)  { t.deduplicated.Add(n) }
func (t *Telemetry) AddQueued(n int64)        { t.tasksQueued.Add(n) }
func (t *Telemetry) AddProcessed(n int64)     { t.tasksProcessed.Add(n) }

// Counters returns a copy of the aggregate counters.
func (t *Telemetry) Counters() Counters {
	return Counters{
		Reflections:     t.reflections.Load(),
		SkillsAdded:     t.skillsAdded.Load(),
		SkillsUpdated:   t.skillsUpdated.Load(),
		SkillsPruned:    t.skillsPruned.Load(),
		Deduplicated:    t.deduplicated.Load(),
		Injections:      t.injections.Load(),
		Errors:          t.errors.Load(),
		TasksQueued:     t.tasksQueued.Load(),
		TasksProcessed:  t.tasksProcessed.Load(),
		TotalProcessing: t.processingMs.Load(),
	}
}

// Events returns up to limit events, most recent first. A non-positive
// limit returns all events.
func (t *Telemetry) Events(limit int) []TelemetryEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.events)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]TelemetryEvent, limit)
	for i := 0; i < limit; i++ {
		out[i] = t.events[n-1-i]
	}
	return out
}

// Summary computes per-kind counts, the overall success rate, and per-kind
// average durations.
func (t *Telemetry) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{
		EventCounts:   make(map[EventKind]int),
		AvgDurationMs: make(map[EventKind]float64),
	}

	if len(t.events) == 0 {
		return s
	}

	totalMs := make(map[EventKind]float64)
	succeeded := 0
	for _, ev := range t.events {
		s.EventCounts[ev.Kind]++
		totalMs[ev.Kind] += float64(ev.Duration.Milliseconds())
		if ev.Success {
			succeeded++
		}
	}

	for kind, count := range s.EventCounts {
		s.AvgDurationMs[kind] = totalMs[kind] / float64(count)
	}
	s.SuccessRate = float64(succeeded) / float64(len(t.events))

	return s
}
