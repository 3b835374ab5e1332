// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

import "errors"

var (
	// ErrNoExecutor is returned by NewTimer when no Executor is supplied.
	// A Timer always completes asynchronous waits through its Executor,
	// so one is required at construction.
	ErrNoExecutor = errors.New("an executor is required")

	// ErrNilCallback is returned by Timer.AsyncWait when given a nil callback.
	ErrNilCallback = errors.New("a completion callback is required")

	// ErrInvalidOption is wrapped by errors returned from NewTimer when
	// an option is misconfigured.
	ErrInvalidOption = errors.New("invalid timer option")

	// ErrTimerClosed is returned by Timer operations invoked after Close.
	ErrTimerClosed = errors.New("the timer has been closed")

	// ErrWaitCanceled is the outcome delivered to an asynchronous wait's
	// callback when the wait was resolved by cancellation rather than by
	// the expiry being reached. It is a normal completion outcome, not
	// a fault.
	ErrWaitCanceled = errors.New("the wait has been canceled")

	// ErrScheduling indicates that a Timer's Executor refused or failed
	// to schedule a callback. Errors delivered through a wait callback
	// that wrap ErrScheduling also wrap the Executor's own error.
	ErrScheduling = errors.New("the executor could not schedule a callback")

	// ErrExecutorStarted is returned by SerialExecutor.Start to indicate
	// that the executor is already running.
	ErrExecutorStarted = errors.New("the executor has been started")

	// ErrExecutorClosed is returned by SerialExecutor.Post when the
	// executor is not running, and by SerialExecutor.Shutdown when there
	// is nothing to shut down.
	ErrExecutorClosed = errors.New("the executor has been shutdown")
)
