// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xmidt-org/chronon"
)

// Timer is a one-shot deadline timer. It holds a single expiry instant
// and a FIFO queue of outstanding asynchronous waits, and completes
// those waits through the Executor it was constructed with.
//
// The zero time.Time is the unset-expiry sentinel. It lies in the past,
// so a Timer whose expiry was never configured behaves as already
// expired: Wait returns immediately and AsyncWait completes with
// success.
//
// All methods on a Timer are safe for concurrent use. The resolution of
// each wait is serialized under the Timer's internal lock, so for any
// interleaving of expiry, cancellation and rescheduling, each wait
// resolves exactly once and the first writer wins.
type Timer struct {
	// executor completes asynchronous waits. Referenced, not owned:
	// it must outlive this Timer.
	executor Executor

	// now is the strategy used to get the current time.
	// By default, time.Now is used.
	now now

	// newTimer is a factory for creating the timer channel and stop
	// function used to arm deadline wakeups. If unset, defaultNewTimer
	// is used.
	//
	// Tests can replace this function, via WithClock, to control
	// deadline behavior.
	newTimer newTimer

	// lock guards expiry, pending, armed, disarm, closed and every
	// Registration's state field.
	lock sync.Mutex

	expiry  time.Time
	pending []*Registration

	// armed reports whether a watcher goroutine is waiting on the
	// current expiry. armed implies pending is not empty.
	armed bool

	// disarm releases the current watcher when closed.
	disarm chan struct{}

	// done is closed by Close and releases any blocked Wait calls.
	done chan struct{}

	closed bool
}

// TimerOption is a configurable option for constructing a Timer.
type TimerOption interface {
	apply(*Timer) error
}

type timerOptionFunc func(*Timer) error

func (f timerOptionFunc) apply(t *Timer) error { return f(t) }

// WithClock sets the clock a Timer reads time through. If this option
// isn't used, the system clock is assumed.
//
// Supplying a chronon.FakeClock makes the Timer's behavior fully
// deterministic under test.
func WithClock(c chronon.Clock) TimerOption {
	return timerOptionFunc(func(t *Timer) error {
		if c == nil {
			return fmt.Errorf("%w: a nil chronon.Clock is not usable", ErrInvalidOption)
		}

		t.now = c.Now
		t.newTimer = clockTimer(c)
		return nil
	})
}

// WithExpiry sets the initial expiry instant for a Timer.
func WithExpiry(expiry time.Time) TimerOption {
	return timerOptionFunc(func(t *Timer) error {
		t.expiry = expiry
		return nil
	})
}

// WithExpiryAfter sets the initial expiry to the given duration past
// the current time. The current time is read from the Timer's clock, so
// any WithClock option must appear earlier in the option list.
func WithExpiryAfter(d time.Duration) TimerOption {
	return timerOptionFunc(func(t *Timer) error {
		t.expiry = t.now().Add(d)
		return nil
	})
}

// NewTimer constructs a Timer bound to the given Executor. The Executor
// is required and fixed for the Timer's lifetime; there is no implicit
// process-wide default.
//
// Unless WithExpiry or WithExpiryAfter is supplied, the new Timer's
// expiry is unset and treated as already past.
func NewTimer(e Executor, opts ...TimerOption) (*Timer, error) {
	if e == nil {
		return nil, ErrNoExecutor
	}

	t := &Timer{
		executor: e,
		now:      time.Now,
		newTimer: defaultNewTimer,
		done:     make(chan struct{}),
	}

	for _, o := range opts {
		if err := o.apply(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Expiry returns the currently configured expiry instant. The zero
// time.Time indicates that no expiry has been set.
func (t *Timer) Expiry() time.Time {
	defer t.lock.Unlock()
	t.lock.Lock()

	return t.expiry
}

// ExpiresFromNow returns the duration remaining until the configured
// expiry. The result is nonpositive if the expiry has already passed
// or was never set.
func (t *Timer) ExpiresFromNow() time.Duration {
	defer t.lock.Unlock()
	t.lock.Lock()

	return t.expiry.Sub(t.now())
}

// ExpiresAt replaces the expiry with the given absolute instant.
//
// Rescheduling invalidates every outstanding asynchronous wait: each
// one is resolved with ErrWaitCanceled, in FIFO order, before the new
// expiry takes effect. The count of waits canceled this way is
// returned. A return of 0 means no waits were pending, or that any
// remaining waits had already been resolved by expiry.
//
// A closed Timer ignores this call and returns 0.
func (t *Timer) ExpiresAt(expiry time.Time) int {
	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		return 0
	}

	canceled := t.takeLocked()
	t.expiry = expiry
	t.lock.Unlock()

	for _, r := range canceled {
		t.dispatch(r, ErrWaitCanceled)
	}

	return len(canceled)
}

// ExpiresAfter replaces the expiry with the instant the given duration
// past the current time. It is otherwise identical to ExpiresAt.
func (t *Timer) ExpiresAfter(d time.Duration) int {
	return t.ExpiresAt(t.now().Add(d))
}

// Wait blocks the calling goroutine until the clock passes the
// configured expiry, returning immediately if it already has or if no
// expiry was ever set. Wait does not interact with asynchronous waits
// or the Executor in any way.
//
// If the expiry is rescheduled while Wait is blocked, the new expiry is
// observed at the next wakeup: a later expiry extends the wait, while
// an earlier one takes effect once the previously armed deadline
// passes.
//
// Wait returns ErrTimerClosed if the Timer is closed before or while
// waiting, and nil otherwise.
func (t *Timer) Wait() error {
	return t.wait(context.Background())
}

// WaitContext is Wait with a context escape hatch: it additionally
// unblocks with ctx.Err() when the context is done.
func (t *Timer) WaitContext(ctx context.Context) error {
	return t.wait(ctx)
}

// wait implements Wait and WaitContext. The background context never
// unblocks the wait.
func (t *Timer) wait(ctx context.Context) error {
	for {
		t.lock.Lock()
		if t.closed {
			t.lock.Unlock()
			return ErrTimerClosed
		}

		remaining := t.expiry.Sub(t.now())
		t.lock.Unlock()

		if remaining <= 0 {
			return nil
		}

		ch, stop := t.newTimer(remaining)
		select {
		case <-ch:
			// reevaluate, as the expiry may have moved

		case <-ctx.Done():
			stopAndDrain(ch, stop)
			return ctx.Err()

		case <-t.done:
			stopAndDrain(ch, stop)
			return ErrTimerClosed
		}
	}
}

// AsyncWait registers f to be invoked exactly once with the wait's
// outcome: a nil error when the expiry is reached, or ErrWaitCanceled
// when the wait is canceled first. The callback is always invoked
// through the Timer's Executor, never synchronously within AsyncWait,
// including when the expiry has already passed at registration time.
//
// Each call registers an independent wait; concurrent registrations on
// the same Timer are all honored.
//
// A non-nil error return means no wait was registered and f will never
// be invoked: ErrTimerClosed for a closed Timer, ErrNilCallback for a
// nil callback, or an error wrapping ErrScheduling if an
// already-expired wait could not be posted to the Executor.
func (t *Timer) AsyncWait(f func(error)) (*Registration, error) {
	if f == nil {
		return nil, ErrNilCallback
	}

	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		return nil, ErrTimerClosed
	}

	r := &Registration{timer: t, f: f}
	if t.expiry.Sub(t.now()) <= 0 {
		// already expired: complete through the executor without
		// ever entering the pending queue
		r.state = StateCompleted
		t.lock.Unlock()

		if err := t.executor.Post(func() { f(nil) }); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScheduling, err)
		}

		return r, nil
	}

	t.pending = append(t.pending, r)
	t.armLocked()
	t.lock.Unlock()
	return r, nil
}

// Cancel resolves every outstanding asynchronous wait with
// ErrWaitCanceled, in FIFO order, and returns the count resolved. The
// configured expiry is untouched.
//
// A return of 0 means there was nothing left to cancel: any wait
// registered earlier has already been resolved (or is concurrently
// being resolved) by expiry, and its callback will still run, or has
// run, with a success outcome.
func (t *Timer) Cancel() int {
	t.lock.Lock()
	canceled := t.takeLocked()
	t.lock.Unlock()

	for _, r := range canceled {
		t.dispatch(r, ErrWaitCanceled)
	}

	return len(canceled)
}

// CancelOne resolves the oldest outstanding asynchronous wait with
// ErrWaitCanceled, returning 1, or returns 0 if no waits are
// outstanding. The configured expiry is untouched.
func (t *Timer) CancelOne() int {
	t.lock.Lock()
	if len(t.pending) == 0 {
		t.lock.Unlock()
		return 0
	}

	r := t.pending[0]
	t.pending = t.pending[1:]
	r.state = StateCanceled
	if len(t.pending) == 0 {
		t.unarmLocked()
	}

	t.lock.Unlock()
	t.dispatch(r, ErrWaitCanceled)
	return 1
}

// Close tears down this Timer. Every outstanding asynchronous wait is
// resolved with ErrWaitCanceled, in FIFO order, and the count resolved
// is returned. Unlike every other resolution path, these cancellation
// callbacks run inline on the caller's goroutine, so when Close returns
// no wait remains unresolved and nothing can later fire against this
// Timer. Waits that already completed by expiry may still have their
// success callbacks queued on the Executor; those callbacks hold only
// the outcome, not the Timer.
//
// Blocked Wait and WaitContext calls unblock with ErrTimerClosed.
// Subsequent AsyncWait calls fail with ErrTimerClosed, and subsequent
// configuration calls are ignored.
//
// Close is idempotent; a second call returns 0.
func (t *Timer) Close() int {
	t.lock.Lock()
	if t.closed {
		t.lock.Unlock()
		return 0
	}

	t.closed = true
	canceled := t.takeLocked()
	close(t.done)
	t.lock.Unlock()

	for _, r := range canceled {
		r.f(ErrWaitCanceled)
	}

	return len(canceled)
}

// takeLocked empties the pending queue, marking every taken wait
// canceled, and disarms any watcher. The caller must hold the lock and
// is responsible for delivering the cancellation outcome to each
// returned wait after releasing it.
func (t *Timer) takeLocked() (canceled []*Registration) {
	canceled = t.pending
	t.pending = nil
	for _, r := range canceled {
		r.state = StateCanceled
	}

	t.unarmLocked()
	return
}

// armLocked ensures a watcher goroutine is waiting on the current
// expiry. The caller must hold the lock, and the pending queue must be
// nonempty.
func (t *Timer) armLocked() {
	if t.armed {
		return
	}

	var (
		ch, stop = t.newTimer(t.expiry.Sub(t.now()))
		disarm   = make(chan struct{})
	)

	t.armed = true
	t.disarm = disarm
	go func() {
		select {
		case <-ch:
			t.sweep(disarm)

		case <-disarm:
			stopAndDrain(ch, stop)
		}
	}()
}

// unarmLocked releases any watcher goroutine. The caller must hold
// the lock.
func (t *Timer) unarmLocked() {
	if t.armed {
		close(t.disarm)
		t.armed = false
		t.disarm = nil
	}
}

// sweep is the expiry side of the race with cancellation. It runs on a
// watcher goroutine once the armed deadline fires, resolves whatever is
// still pending with success, and posts the completions. The disarm
// channel identifies the arming that scheduled this sweep; if it is no
// longer current, the wakeup is stale and everything it would have
// swept has been, or is being, resolved by a cancellation path.
func (t *Timer) sweep(disarm chan struct{}) {
	t.lock.Lock()
	if !t.armed || t.disarm != disarm {
		t.lock.Unlock()
		return
	}

	completed := t.pending
	t.pending = nil
	for _, r := range completed {
		r.state = StateCompleted
	}

	t.armed = false
	t.disarm = nil
	t.lock.Unlock()

	for _, r := range completed {
		t.dispatch(r, nil)
	}
}

// dispatch posts the resolution outcome for a wait that has already
// been removed from the pending queue. If the Executor refuses the
// post, the callback is invoked inline with an error wrapping both
// ErrScheduling and the Executor's error, preserving the exactly-once
// guarantee.
func (t *Timer) dispatch(r *Registration, outcome error) {
	f := r.f
	if err := t.executor.Post(func() { f(outcome) }); err != nil {
		f(fmt.Errorf("%w: %w", ErrScheduling, err))
	}
}

// stopAndDrain releases a timer channel that is no longer being waited
// on. If the timer already fired, the buffered tick is consumed so a
// fake clock blocked on delivery is not wedged.
func stopAndDrain(ch <-chan time.Time, stop func() bool) {
	if !stop() {
		select {
		case <-ch:
		default:
		}
	}
}
