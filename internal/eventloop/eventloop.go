// Package eventloop implements spec.md §4.8's cooperative event loop:
// a mutex-guarded timer queue, one goroutine per outstanding
// setTimeout/setInterval that only ever sleeps and enqueues, and a
// single-threaded drain loop that runs queued callbacks back on the
// interpreter goroutine between script execution and process exit.
//
// Grounded on the teacher's internal/concurrency package for the
// goroutine-per-unit-of-work idiom (WorkerPool/Worker there spawn a
// goroutine per job and coordinate through channels and a WaitGroup);
// adapted here to spec.md's much narrower contract — timers don't need
// a job queue or worker pool, just "sleep, then hand a callback back to
// the single interpreter thread" — and to SPEC_FULL.md's decision to
// track the outstanding goroutines with golang.org/x/sync/errgroup
// rather than a hand-rolled sync.WaitGroup, since errgroup already is
// the "vector of worker futures" spec.md §5 describes.
package eventloop

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nimbus/internal/object"
)

// Caller invokes a script value with no frame left over afterward; the
// VM's VM.CallSync satisfies this signature and is what VM.RunEventLoop
// passes to Run, keeping this package free of any dependency on
// internal/vm.
type Caller func(callee object.Value, args []object.Value) (object.Value, error)

// task is one callback waiting to run on the interpreter thread.
type task struct {
	callback object.Value
}

// Loop owns the timer queue, the set of live interval ids, and the
// group of worker goroutines that sleep and enqueue on its behalf. One
// Loop belongs to exactly one VM; spec.md §5 forbids any process-level
// singleton here.
type Loop struct {
	mu        sync.Mutex
	queue     []task
	intervals map[int]bool
	nextID    int

	// pendingTimeouts counts setTimeout workers that have been spawned
	// but haven't enqueued yet, so a worker still mid-sleep (invisible
	// to both queue and intervals) still holds the loop open.
	pendingTimeouts int

	group *errgroup.Group
}

func NewLoop() *Loop {
	return &Loop{
		intervals: make(map[int]bool),
		group:     &errgroup.Group{},
	}
}

func (l *Loop) enqueue(cb object.Value) {
	l.mu.Lock()
	l.queue = append(l.queue, task{callback: cb})
	l.mu.Unlock()
}

// SetTimeout spawns a worker that sleeps ms then enqueues cb. Per
// spec.md §4.8/§5, the worker never touches VM state directly — under
// the loop's mutex it only drops the pending-timeout count and appends
// cb to the queue.
func (l *Loop) SetTimeout(cb object.Value, ms float64) {
	d := time.Duration(ms) * time.Millisecond
	l.mu.Lock()
	l.pendingTimeouts++
	l.mu.Unlock()

	l.group.Go(func() error {
		time.Sleep(d)
		l.mu.Lock()
		l.pendingTimeouts--
		l.queue = append(l.queue, task{callback: cb})
		l.mu.Unlock()
		return nil
	})
}

// SetInterval registers a new interval id and spawns a worker that
// loops sleep-then-enqueue for as long as the id stays registered,
// returning the id so script code can later ClearInterval(id).
func (l *Loop) SetInterval(cb object.Value, ms float64) int {
	d := time.Duration(ms) * time.Millisecond

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.intervals[id] = true
	l.mu.Unlock()

	l.group.Go(func() error {
		for {
			time.Sleep(d)
			l.mu.Lock()
			live := l.intervals[id]
			l.mu.Unlock()
			if !live {
				return nil
			}
			l.enqueue(cb)
		}
	})
	return id
}

// ClearInterval removes id from the live set. The matching worker
// observes the removal on its next wake-up and exits; a task already
// enqueued before cancellation is still eligible to run, per spec.md
// §4.8's best-effort cancellation note.
func (l *Loop) ClearInterval(id int) {
	l.mu.Lock()
	delete(l.intervals, id)
	l.mu.Unlock()
}

// Pending reports whether the loop has unfinished work: a queued task,
// a live interval, or an outstanding worker goroutine neither of those
// two checks can see yet (one that's mid-sleep before its first
// enqueue). Run treats all three as reasons to keep waiting.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) > 0 || len(l.intervals) > 0 || l.pendingTimeouts > 0
}

func (l *Loop) drain() []task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	ready := l.queue
	l.queue = nil
	return ready
}

// Run drives the loop after the top-level script returns: wait up to
// 100ms, run every queued task via call, and repeat until the queue is
// empty, no interval remains registered, and every worker goroutine has
// returned. call is expected to leave the operand and frame stacks
// exactly as it found them, so nothing needs clearing between tasks.
func (l *Loop) Run(call Caller) error {
	for {
		ready := l.drain()
		for _, t := range ready {
			if _, err := call(t.callback, nil); err != nil {
				return err
			}
		}

		if !l.Pending() {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return l.group.Wait()
}
