// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package expiry provides a one-shot deadline timer driven by an Executor.
//
// A Timer holds a single expiry instant and a FIFO queue of outstanding
// asynchronous waits. Callers may block until the expiry with Wait, or
// register callbacks with AsyncWait that are completed through the Timer's
// Executor once the deadline passes. Waits can be canceled individually,
// in bulk, or implicitly by rescheduling the expiry. Every registered
// callback is invoked exactly once, with either a success or a
// cancellation outcome.
//
// Timers read time through a pluggable clock. By default the system clock
// is used; tests can supply a chronon.FakeClock via WithClock to exercise
// deadline behavior deterministically.
package expiry
