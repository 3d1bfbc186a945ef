package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetInput(t *testing.T) {
	require.NoError(t, EventSystemShutdown())
	require.NoError(t, InputInitialize())
	inputState = &InputState{}
	inputInitialized = true
}

func TestInputKeyPressedEdge(t *testing.T) {
	resetInput(t)

	// Fresh press: down now, not down last frame.
	require.NoError(t, InputProcessKey(KEY_F2, true))
	assert.True(t, InputIsKeyDown(KEY_F2))
	assert.False(t, InputWasKeyDown(KEY_F2))

	// After the rollover the press is no longer an edge.
	require.NoError(t, InputUpdate(0.016))
	assert.True(t, InputIsKeyDown(KEY_F2))
	assert.True(t, InputWasKeyDown(KEY_F2))

	require.NoError(t, InputProcessKey(KEY_F2, false))
	assert.False(t, InputIsKeyDown(KEY_F2))
	assert.True(t, InputWasKeyDown(KEY_F2))
}

func TestInputMousePositionRollover(t *testing.T) {
	resetInput(t)

	require.NoError(t, InputProcessMouseMove(100, 50))
	require.NoError(t, InputUpdate(0.016))
	require.NoError(t, InputProcessMouseMove(140, 80))

	x, y := InputGetMousePosition()
	assert.Equal(t, int32(140), x)
	assert.Equal(t, int32(80), y)

	px, py := InputGetPreviousMousePosition()
	assert.Equal(t, int32(100), px)
	assert.Equal(t, int32(50), py)
}

func TestInputButtonState(t *testing.T) {
	resetInput(t)

	assert.False(t, InputIsButtonDown(BUTTON_LEFT))
	require.NoError(t, InputProcessButton(BUTTON_LEFT, true))
	assert.True(t, InputIsButtonDown(BUTTON_LEFT))
	assert.False(t, InputIsButtonDown(BUTTON_RIGHT))

	require.NoError(t, InputProcessButton(BUTTON_LEFT, false))
	assert.False(t, InputIsButtonDown(BUTTON_LEFT))
}

func TestInputQueriesSafeWhenUninitialized(t *testing.T) {
	resetInput(t)
	require.NoError(t, InputShutdown())

	assert.False(t, InputIsKeyDown(KEY_ESCAPE))
	assert.False(t, InputWasKeyDown(KEY_ESCAPE))
	assert.False(t, InputIsButtonDown(BUTTON_LEFT))
	x, y := InputGetMousePosition()
	assert.Zero(t, x)
	assert.Zero(t, y)
	px, py := InputGetPreviousMousePosition()
	assert.Zero(t, px)
	assert.Zero(t, py)
	assert.NoError(t, InputUpdate(0.016))
}
