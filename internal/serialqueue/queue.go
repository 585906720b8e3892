// Package serialqueue gives a session a single FIFO work queue serviced by
// one worker goroutine (§5): all state-machine transitions, edge-detector
// updates, capture-callback post-processing, and transport callbacks for a
// session dispatch through here, producing a total order over state
// transitions without locks on the state itself.
//
// Adapted from internal/workerpool's bounded goroutine pool, specialized to
// exactly one worker and extended with cancelable delayed scheduling for the
// dwell, coalesce-flush, and activation timers §5 calls out as the only
// suspension points.
package serialqueue

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edenriquez/inputshare/internal/logging"
)

var log = logging.L("serialqueue")

// Task is a unit of work submitted to the queue.
type Task func()

// Queue is a single-worker FIFO task queue with a bounded backlog.
type Queue struct {
	queue     chan Task
	wg        sync.WaitGroup
	accepting atomic.Bool
	stopOnce  sync.Once
	closeOnce sync.Once
	stopChan  chan struct{}
}

// New creates a Queue with a task backlog of queueSize.
func New(queueSize int) *Queue {
	if queueSize < 1 {
		queueSize = 1
	}
	q := &Queue{
		queue:    make(chan Task, queueSize),
		stopChan: make(chan struct{}),
	}
	q.accepting.Store(true)
	go q.worker()
	return q
}

// Post enqueues a task. Returns false if the queue is stopped or full.
func (q *Queue) Post(task Task) bool {
	if !q.accepting.Load() {
		return false
	}
	q.wg.Add(1)
	select {
	case q.queue <- task:
		return true
	default:
		q.wg.Done()
		log.Warn("serial queue backlog full, task dropped")
		return false
	}
}

// Timer is a pending delayed task, cancelable before it fires.
type Timer struct {
	cancel chan struct{}
	once   sync.Once
}

// Cancel prevents a not-yet-fired Timer's task from running. If the task is
// already running or has run, Cancel has no effect.
func (t *Timer) Cancel() {
	t.once.Do(func() { close(t.cancel) })
}

// Schedule posts task onto the queue after delay elapses, unless canceled
// first. This is the dwell timer / coalescer flush ticker / activation
// timeout suspension point §5 describes: the delay itself happens on a
// throwaway goroutine, but the task body always runs serialized on this
// Queue's single worker.
func (q *Queue) Schedule(delay time.Duration, task Task) *Timer {
	t := &Timer{cancel: make(chan struct{})}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-t.cancel:
			return
		case <-timer.C:
			q.Post(task)
		}
	}()
	return t
}

// SchedulePeriodic posts task onto the queue every interval until the
// returned Timer is canceled. Used by the coalescer's periodic flusher.
func (q *Queue) SchedulePeriodic(interval time.Duration, task Task) *Timer {
	t := &Timer{cancel: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.cancel:
				return
			case <-ticker.C:
				q.Post(task)
			}
		}
	}()
	return t
}

// StopAccepting prevents new tasks from being posted.
func (q *Queue) StopAccepting() {
	q.accepting.Store(false)
}

// Drain waits for all in-flight and queued tasks to complete, respecting
// ctx's deadline, then shuts the worker down.
func (q *Queue) Drain(ctx context.Context) {
	q.stopOnce.Do(func() { close(q.stopChan) })

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("serial queue drain timed out")
	}

	q.closeOnce.Do(func() { close(q.queue) })
}

func (q *Queue) worker() {
	for {
		select {
		case task, ok := <-q.queue:
			if !ok {
				return
			}
			q.runTask(task)
		case <-q.stopChan:
			for {
				select {
				case task, ok := <-q.queue:
					if !ok {
						return
					}
					q.runTask(task)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) runTask(task Task) {
	defer q.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Error("serial queue task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
