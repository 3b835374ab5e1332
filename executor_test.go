// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type GoExecutorTestSuite struct {
	suite.Suite
}

func (suite *GoExecutorTestSuite) TestPost() {
	ran := make(chan struct{})
	suite.NoError(GoExecutor{}.Post(func() {
		close(ran)
	}))

	select {
	case <-ran:
	case <-time.After(eventuallyTimeout):
		suite.Fail("the posted callback never ran")
	}
}

func TestGoExecutor(t *testing.T) {
	suite.Run(t, new(GoExecutorTestSuite))
}

type ExecutorFuncTestSuite struct {
	suite.Suite
}

func (suite *ExecutorFuncTestSuite) TestPost() {
	suite.Run("Accept", func() {
		var posted bool
		e := ExecutorFunc(func(f func()) error {
			posted = true
			return nil
		})

		suite.NoError(e.Post(func() {}))
		suite.True(posted)
	})

	suite.Run("Reject", func() {
		expected := errors.New("expected")
		e := ExecutorFunc(func(func()) error { return expected })
		suite.ErrorIs(e.Post(func() {}), expected)
	})
}

func TestExecutorFunc(t *testing.T) {
	suite.Run(t, new(ExecutorFuncTestSuite))
}

type ManualExecutorTestSuite struct {
	suite.Suite
}

func (suite *ManualExecutorTestSuite) TestEmpty() {
	me := new(ManualExecutor)
	suite.Zero(me.Len())
	suite.False(me.RunOne())
	suite.Zero(me.RunPending())
}

func (suite *ManualExecutorTestSuite) TestFIFO() {
	var (
		me      = new(ManualExecutor)
		results []int
	)

	for i := 0; i < 3; i++ {
		i := i
		suite.NoError(me.Post(func() {
			results = append(results, i)
		}))
	}

	suite.Equal(3, me.Len())
	suite.Empty(results) // nothing runs until pumped

	suite.True(me.RunOne())
	suite.Equal([]int{0}, results)
	suite.Equal(2, me.Len())

	suite.Equal(2, me.RunPending())
	suite.Equal([]int{0, 1, 2}, results)
	suite.Zero(me.Len())
}

func (suite *ManualExecutorTestSuite) TestNestedPost() {
	var (
		me      = new(ManualExecutor)
		results []string
	)

	suite.NoError(me.Post(func() {
		results = append(results, "outer")
		suite.NoError(me.Post(func() {
			results = append(results, "inner")
		}))
	}))

	// a callback posted during the pass runs in the same pass
	suite.Equal(2, me.RunPending())
	suite.Equal([]string{"outer", "inner"}, results)
}

func TestManualExecutor(t *testing.T) {
	suite.Run(t, new(ManualExecutorTestSuite))
}

type SerialExecutorTestSuite struct {
	suite.Suite
}

// newStarted creates and starts a SerialExecutor, shutting it down when
// the enclosing (sub) test finishes.
func (suite *SerialExecutorTestSuite) newStarted() *SerialExecutor {
	se := NewSerialExecutor()
	suite.Require().NoError(se.Start())
	suite.T().Cleanup(func() {
		_ = se.Shutdown()
	})

	return se
}

func (suite *SerialExecutorTestSuite) TestLifecycle() {
	suite.Run("StartIdempotent", func() {
		se := suite.newStarted()
		suite.ErrorIs(se.Start(), ErrExecutorStarted)
	})

	suite.Run("ShutdownIdempotent", func() {
		se := NewSerialExecutor()
		suite.ErrorIs(se.Shutdown(), ErrExecutorClosed)

		suite.NoError(se.Start())
		suite.NoError(se.Shutdown())
		suite.ErrorIs(se.Shutdown(), ErrExecutorClosed)
	})

	suite.Run("Restart", func() {
		se := NewSerialExecutor()
		suite.NoError(se.Start())
		suite.NoError(se.Shutdown())

		suite.NoError(se.Start())
		ran := make(chan struct{})
		suite.NoError(se.Post(func() { close(ran) }))
		select {
		case <-ran:
		case <-time.After(eventuallyTimeout):
			suite.Fail("a restarted executor did not run its callback")
		}

		suite.NoError(se.Shutdown())
	})
}

func (suite *SerialExecutorTestSuite) TestPost() {
	suite.Run("BeforeStart", func() {
		se := NewSerialExecutor()
		suite.ErrorIs(se.Post(func() {}), ErrExecutorClosed)
	})

	suite.Run("AfterShutdown", func() {
		se := NewSerialExecutor()
		suite.NoError(se.Start())
		suite.NoError(se.Shutdown())
		suite.ErrorIs(se.Post(func() {
			suite.Fail("a rejected callback must never run")
		}), ErrExecutorClosed)
	})

	suite.Run("FIFO", func() {
		se := NewSerialExecutor()
		suite.NoError(se.Start())

		// the worker serializes callbacks, and Shutdown drains what
		// was accepted, so results needs no extra synchronization
		var results []int
		for i := 0; i < 10; i++ {
			i := i
			suite.NoError(se.Post(func() {
				results = append(results, i)
			}))
		}

		suite.NoError(se.Shutdown())
		suite.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, results)
	})
}

func (suite *SerialExecutorTestSuite) TestShutdownDrains() {
	se := NewSerialExecutor()
	suite.Require().NoError(se.Start())

	var (
		release = make(chan struct{})
		ran     = make(chan int, 3)
	)

	// hold the worker so subsequent posts pile up in the queue
	suite.NoError(se.Post(func() { <-release }))
	for i := 0; i < 3; i++ {
		i := i
		suite.NoError(se.Post(func() { ran <- i }))
	}

	close(release)
	suite.NoError(se.Shutdown())

	// every accepted callback ran before Shutdown returned
	suite.Len(ran, 3)
	for expected := 0; expected < 3; expected++ {
		suite.Equal(expected, <-ran)
	}
}

func TestSerialExecutor(t *testing.T) {
	suite.Run(t, new(SerialExecutorTestSuite))
}
