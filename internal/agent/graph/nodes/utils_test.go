package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cs-support-assistant/server/internal/agent/model"
)

func TestNormalizeMaxToolCalls(t *testing.T) {
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(0))
	assert.Equal(t, DefaultMaxToolCalls, normalizeMaxToolCalls(-5))
	assert.Equal(t, 3, normalizeMaxToolCalls(3))
}

func TestCheckAndMarkToolLimit(t *testing.T) {
	state := &model.AppState{ToolCallCount: 2}
	assert.False(t, checkAndMarkToolLimit(state, 3))
	assert.False(t, state.ToolCallLimitReached)

	state.ToolCallCount = 3
	assert.True(t, checkAndMarkToolLimit(state, 3))
	assert.True(t, state.ToolCallLimitReached)

	// Already marked: not marked "now" again.
	assert.False(t, checkAndMarkToolLimit(state, 3))
}

func TestIncrementToolCallAndCheck(t *testing.T) {
	state := &model.AppState{}

	for i := 1; i <= 3; i++ {
		exceeded := incrementToolCallAndCheck(state, 3)
		assert.False(t, exceeded, "call %d within limit", i)
	}

	assert.True(t, incrementToolCallAndCheck(state, 3))
	assert.True(t, state.ToolCallLimitReached)
	assert.Equal(t, 4, state.ToolCallCount)
}
