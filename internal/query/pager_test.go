package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextWithoutCursorIsNoop(t *testing.T) {
	s := respond(Default(testNow), "")

	next, ok := s.Next()

	assert.False(t, ok)
	assert.Equal(t, s.Request(), next.Request())
	assert.Equal(t, 1, next.Page())
}

func TestPrevOnFirstPageIsNoop(t *testing.T) {
	s := respond(Default(testNow), "t1")

	prev, ok := s.Prev()

	assert.False(t, ok)
	assert.Equal(t, 1, prev.Page())
}

func TestStackDepthMatchesPage(t *testing.T) {
	s := Default(testNow)
	for i := 1; i <= 5; i++ {
		s = respond(s, fmt.Sprintf("t%d", i))
		var ok bool
		s, ok = s.Next()
		require.True(t, ok)
		assert.Equal(t, i+1, s.Page())
		assert.Len(t, s.stack, s.Page()-1)
	}
	for s.CanPrev() {
		s, _ = s.Prev()
		assert.Len(t, s.stack, s.Page()-1)
	}
	assert.Equal(t, 1, s.Page())
}

func TestNextThenPrevReplaysRequest(t *testing.T) {
	s := Default(testNow)
	for i := 1; i <= 3; i++ {
		s = respond(s, fmt.Sprintf("t%d", i))
		s, _ = s.Next()
	}
	pageN := s.Request()

	s = respond(s, "t4")
	s, ok := s.Next()
	require.True(t, ok)
	s, ok = s.Prev()
	require.True(t, ok)

	assert.Equal(t, pageN, s.Request())
}

func TestThreeNextTwoPrevScenario(t *testing.T) {
	s := respond(Default(testNow), "t1")

	s, _ = s.Next()
	afterFirstNext := s.Request()
	require.Equal(t, "t1", afterFirstNext.After)

	s = respond(s, "t2")
	s, _ = s.Next()
	s = respond(s, "t3")
	s, _ = s.Next()
	require.Equal(t, 4, s.Page())

	s, _ = s.Prev()
	assert.Equal(t, "t2", s.Request().After)
	s, _ = s.Prev()

	assert.Equal(t, afterFirstNext, s.Request())
	assert.Equal(t, 2, s.Page())
}

func TestPrevToFirstPageDropsCursors(t *testing.T) {
	s := respond(Default(testNow), "t1")
	s, _ = s.Next()

	s, ok := s.Prev()
	require.True(t, ok)
	req := s.Request()

	assert.Equal(t, 1, s.Page())
	assert.Empty(t, req.After)
	assert.Empty(t, req.Before)
	assert.Nil(t, s.stack)
}

func TestRequestNeverCarriesBothCursors(t *testing.T) {
	s := Default(testNow)
	steps := []func(State) State{
		func(s State) State { n, _ := respond(s, "a").Next(); return n },
		func(s State) State { n, _ := respond(s, "b").Next(); return n },
		func(s State) State { n, _ := s.Prev(); return n },
		func(s State) State { return s.ToggleSort("price") },
		func(s State) State { n, _ := respond(s, "c").Next(); return n },
		func(s State) State { n, _ := s.Prev(); return n },
	}
	for i, step := range steps {
		s = step(s)
		req := s.Request()
		assert.False(t, req.After != "" && req.Before != "", "step %d", i)
		assert.Empty(t, req.Before, "step %d", i)
	}
}

func TestTransitionsDoNotShareStack(t *testing.T) {
	s := respond(Default(testNow), "t1")
	s, _ = s.Next()
	base := respond(s, "t2")

	a, _ := base.Next()
	b, _ := respond(base, "other").Next()

	assert.Equal(t, "t2", a.Request().After)
	assert.Equal(t, "other", b.Request().After)
}
