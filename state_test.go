// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package expiry

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StateTestSuite struct {
	suite.Suite
}

func (suite *StateTestSuite) TestDistinctStrings() {
	// we don't care what the string values are, just that they're distinct
	m := make(map[string]bool)
	m[StatePending.String()] = true
	m[StateCompleted.String()] = true
	m[StateCanceled.String()] = true
	suite.Len(m, 3)
}

func (suite *StateTestSuite) TestMarshalText() {
	for _, s := range []State{StatePending, StateCompleted, StateCanceled} {
		text, err := s.MarshalText()
		suite.Require().NoError(err)
		suite.Equal(s.String(), string(text))
	}
}

func TestState(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}
