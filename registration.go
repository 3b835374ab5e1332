// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

// Registration is one outstanding asynchronous wait on a Timer. A
// Registration is resolved exactly once: either its Timer's expiry is
// reached and the callback receives a nil error, or the wait is
// canceled and the callback receives ErrWaitCanceled.
//
// Registrations are created by Timer.AsyncWait and are safe for
// concurrent use.
type Registration struct {
	// timer is the owning Timer. Fixed at creation.
	timer *Timer

	// f is the completion callback. Invoked exactly once, always
	// through the owning Timer's Executor except during Timer.Close
	// or when the Executor itself refuses a post.
	f func(error)

	// state is the resolution state. Guarded by the owning
	// Timer's lock.
	state State
}

// State returns the current resolution state of this wait.
//
// Note that StateCompleted and StateCanceled indicate that the outcome
// has been decided, not that the callback has already run: the callback
// may still be in flight on the Timer's Executor.
func (r *Registration) State() State {
	defer r.timer.lock.Unlock()
	r.timer.lock.Lock()

	return r.state
}

// Cancel resolves this single wait with ErrWaitCanceled, leaving any
// other waits on the same Timer untouched. It returns true if this
// call resolved the wait, and false if the wait had already been
// resolved by expiry or by another form of cancellation.
func (r *Registration) Cancel() bool {
	t := r.timer
	t.lock.Lock()

	found := false
	for i, pending := range t.pending {
		if pending == r {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			found = true
			break
		}
	}

	if !found {
		t.lock.Unlock()
		return false
	}

	r.state = StateCanceled
	if len(t.pending) == 0 {
		t.unarmLocked()
	}

	t.lock.Unlock()
	t.dispatch(r, ErrWaitCanceled)
	return true
}
