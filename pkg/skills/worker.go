package skills

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/helicon-ai/skillforge/pkg/logging"
)

// Worker states. Transitions: Stopped -> Running -> StopRequested -> Stopped.
const (
	workerStopped int32 = iota
	workerRunning
	workerStopRequested
)

// worker is the single background consumer of the learning event queue.
// Events are processed strictly in submission order; exactly one event is
// in flight at a time.
type worker struct {
	queue        chan *LearningEvent
	state        atomic.Int32
	stopCh       chan struct{}
	doneCh       chan struct{}
	wg           conc.WaitGroup
	pollInterval time.Duration
	process      func(context.Context, *LearningEvent)
	telemetry    *Telemetry

	// Set by stop before stopCh closes; the close publishes it to the
	// consumer.
	drainDeadline time.Time
}

func newWorker(queueSize int, pollInterval time.Duration, telemetry *Telemetry, process func(context.Context, *LearningEvent)) *worker {
	return &worker{
		queue:        make(chan *LearningEvent, queueSize),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		pollInterval: pollInterval,
		process:      process,
		telemetry:    telemetry,
	}
}

// start spawns the consumer goroutine. Returns false if the worker was not
// in the Stopped state.
func (w *worker) start() bool {
	if !w.state.CompareAndSwap(workerStopped, workerRunning) {
		return false
	}
	w.wg.Go(w.run)
	return true
}

func (w *worker) run() {
	defer close(w.doneCh)

	for {
		// A pending stop takes priority over further queue reads, so an
		// expired deadline is always observed before the next event.
		select {
		case <-w.stopCh:
			w.drain()
			return
		default:
		}

		select {
		case <-w.stopCh:
			w.drain()
			return
		case event := <-w.queue:
			w.process(context.Background(), event)
		case <-time.After(w.pollInterval):
			// Poll tick; loop back to observe a stop request.
		}
	}
}

// drain processes whatever is already queued at stop time, up to the stop
// deadline. Anything still queued when the deadline passes is abandoned, so
// no mutation lands after stop has returned and the final save has run.
func (w *worker) drain() {
	for {
		if !w.drainDeadline.IsZero() && !time.Now().Before(w.drainDeadline) {
			return
		}
		select {
		case event := <-w.queue:
			w.process(context.Background(), event)
		default:
			return
		}
	}
}

// submit enqueues an event without blocking. Returns false when the worker
// is not running or the queue is full; the caller then processes the event
// synchronously so nothing is ever dropped.
func (w *worker) submit(event *LearningEvent) bool {
	if w.state.Load() != workerRunning {
		return false
	}
	select {
	case w.queue <- event:
		w.telemetry.AddQueued(1)
		return true
	default:
		return false
	}
}

// queueLen returns the number of events waiting in the queue.
func (w *worker) queueLen() int {
	return len(w.queue)
}

// stop requests shutdown and waits up to timeout for the consumer to finish
// its current item and exit. On timeout the remaining queue is abandoned.
func (w *worker) stop(timeout time.Duration) {
	if !w.state.CompareAndSwap(workerRunning, workerStopRequested) {
		return
	}
	w.drainDeadline = time.Now().Add(timeout)
	close(w.stopCh)

	logger := logging.GetLogger()
	select {
	case <-w.doneCh:
		if r := w.wg.WaitAndRecover(); r != nil {
			logger.Error(context.Background(), "learning worker panicked: %v", r.Value)
		}
	case <-time.After(timeout):
		logger.Warn(context.Background(), "learning worker did not stop within %s; abandoning %d queued events",
			timeout, len(w.queue))
	}

	w.state.Store(workerStopped)
}
