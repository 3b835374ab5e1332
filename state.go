// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

//go:generate stringer -type=State -linecomment

// State describes the resolution state of a single wait Registration.
type State uint8

const (
	// StatePending indicates a wait that has not yet been resolved.
	StatePending State = iota // pending

	// StateCompleted indicates a wait resolved because the expiry was reached.
	StateCompleted // completed

	// StateCanceled indicates a wait resolved by cancellation before the
	// expiry was reached.
	StateCanceled // canceled
)

// MarshalText produces the string value of this State.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
