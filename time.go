// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

import (
	"time"

	"github.com/xmidt-org/chronon"
)

// now is a closure used to produce the current time.
// By default, time.Now is used.
type now func() time.Time

// newTimer is a factory closure for a timer channel and the associated Stop function.
type newTimer func(time.Duration) (<-chan time.Time, func() bool)

// defaultNewTimer is the default newTimer closure used to produce
// a timer channel and stop function.
func defaultNewTimer(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// clockTimer adapts a chronon.Clock into a newTimer closure. Supplying
// a chronon.FakeClock makes a Timer's deadline behavior fully controllable.
func clockTimer(c chronon.Clock) newTimer {
	return func(d time.Duration) (<-chan time.Time, func() bool) {
		ct := c.NewTimer(d)
		return ct.C(), ct.Stop
	}
}
