// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

import "sync"

// Executor is the dispatch substrate a Timer uses to complete
// asynchronous waits.
//
// An Executor must be safe for concurrent posting from multiple
// goroutines. Implementations must not invoke f synchronously within
// Post; a Timer relies on this to guarantee that AsyncWait never
// re-enters the caller's stack.
type Executor interface {
	// Post schedules f for asynchronous invocation and returns
	// immediately. A nil return means the Executor has accepted f and
	// will eventually invoke it. A non-nil return means f will never
	// be invoked by this Executor.
	Post(f func()) error
}

// ExecutorFunc is a closure adapter for the Executor interface.
type ExecutorFunc func(func()) error

// Post invokes this closure.
func (ef ExecutorFunc) Post(f func()) error { return ef(f) }

// GoExecutor is an Executor that runs each posted callback on its own
// goroutine. It requires no lifecycle management, imposes no ordering
// between callbacks, and never fails.
type GoExecutor struct{}

// Post runs f on a new goroutine.
func (GoExecutor) Post(f func()) error {
	go f()
	return nil
}

// SerialExecutor is an Executor that invokes posted callbacks one at a
// time, in posting order, on a single worker goroutine.
//
// A SerialExecutor must be started before it accepts posts. Shutdown
// stops the intake of new callbacks, then blocks until every callback
// accepted before Shutdown has been invoked. Because Shutdown waits on
// the worker, it must not be called from within a posted callback.
type SerialExecutor struct {
	lock    sync.Mutex
	queue   []func()
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewSerialExecutor constructs a SerialExecutor. The returned executor
// is not running and must be started before use.
func NewSerialExecutor() *SerialExecutor {
	return new(SerialExecutor)
}

// Start spins up this executor's worker goroutine.
//
// This method is idempotent. If this executor is already running,
// this method does nothing and returns ErrExecutorStarted.
func (se *SerialExecutor) Start() error {
	defer se.lock.Unlock()
	se.lock.Lock()

	if se.running {
		return ErrExecutorStarted
	}

	se.running = true
	se.wake = make(chan struct{}, 1)
	se.quit = make(chan struct{})
	se.done = make(chan struct{})
	go se.run(se.wake, se.quit, se.done)
	return nil
}

// Post implements the Executor interface. If this executor is not
// running, Post rejects f with ErrExecutorClosed.
func (se *SerialExecutor) Post(f func()) error {
	defer se.lock.Unlock()
	se.lock.Lock()

	if !se.running {
		return ErrExecutorClosed
	}

	se.queue = append(se.queue, f)
	select {
	case se.wake <- struct{}{}:
	default:
	}

	return nil
}

// Shutdown stops intake of new callbacks and waits for the worker to
// drain every callback accepted before this call.
//
// This method is idempotent. If this executor is not running,
// this method does nothing and returns ErrExecutorClosed.
func (se *SerialExecutor) Shutdown() error {
	se.lock.Lock()
	if !se.running {
		se.lock.Unlock()
		return ErrExecutorClosed
	}

	se.running = false
	close(se.quit)
	done := se.done
	se.lock.Unlock()

	<-done
	return nil
}

// next pops the oldest queued callback, or returns nil if the queue
// is empty.
func (se *SerialExecutor) next() (f func()) {
	defer se.lock.Unlock()
	se.lock.Lock()

	if len(se.queue) > 0 {
		f = se.queue[0]
		se.queue[0] = nil
		se.queue = se.queue[1:]
	}

	return
}

// run is the worker loop. It drains the queue in FIFO order, sleeping
// on the wake channel when idle. Once quit is closed no further posts
// can arrive, so the loop runs whatever remains and exits.
func (se *SerialExecutor) run(wake, quit, done chan struct{}) {
	defer close(done)
	for {
		if f := se.next(); f != nil {
			f()
			continue
		}

		select {
		case <-wake:
		case <-quit:
			for {
				f := se.next()
				if f == nil {
					return
				}

				f()
			}
		}
	}
}

// ManualExecutor is an Executor that accumulates posted callbacks until
// the owner explicitly runs them. It never rejects a post.
//
// A ManualExecutor gives tests deterministic control over completion
// dispatch, the same way a chronon.FakeClock gives them control
// over time.
type ManualExecutor struct {
	lock  sync.Mutex
	queue []func()
}

// Post implements the Executor interface. The callback is queued until
// RunOne or RunPending is called.
func (me *ManualExecutor) Post(f func()) error {
	defer me.lock.Unlock()
	me.lock.Lock()

	me.queue = append(me.queue, f)
	return nil
}

// Len returns the count of callbacks queued and not yet run.
func (me *ManualExecutor) Len() int {
	defer me.lock.Unlock()
	me.lock.Lock()

	return len(me.queue)
}

// next pops the oldest queued callback, or returns nil if the queue
// is empty.
func (me *ManualExecutor) next() (f func()) {
	defer me.lock.Unlock()
	me.lock.Lock()

	if len(me.queue) > 0 {
		f = me.queue[0]
		me.queue[0] = nil
		me.queue = me.queue[1:]
	}

	return
}

// RunOne invokes the oldest queued callback. It returns false if no
// callback was queued.
func (me *ManualExecutor) RunOne() bool {
	f := me.next()
	if f == nil {
		return false
	}

	f()
	return true
}

// RunPending invokes queued callbacks in FIFO order until the queue is
// empty, returning the count invoked. Callbacks that post further
// callbacks are run in the same pass.
func (me *ManualExecutor) RunPending() (n int) {
	for me.RunOne() {
		n++
	}

	return
}
