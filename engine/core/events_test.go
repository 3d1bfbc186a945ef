package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSystemInitializeOnce(t *testing.T) {
	require.NoError(t, EventSystemShutdown())

	assert.True(t, EventSystemInitialize())
	assert.False(t, EventSystemInitialize())

	require.NoError(t, EventSystemShutdown())
}

func TestEventFireDispatchesInRegistrationOrder(t *testing.T) {
	require.NoError(t, EventSystemShutdown())
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()

	var order []int
	EventRegister(EVENT_CODE_RESIZED, func(context EventContext) {
		order = append(order, 1)
	})
	EventRegister(EVENT_CODE_RESIZED, func(context EventContext) {
		order = append(order, 2)
	})
	EventRegister(EVENT_CODE_RESIZED, func(context EventContext) {
		order = append(order, 3)
	})

	EventFire(EventContext{Type: EVENT_CODE_RESIZED})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestEventFireCarriesData(t *testing.T) {
	require.NoError(t, EventSystemShutdown())
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()

	var got *SystemEvent
	EventRegister(EVENT_CODE_RESIZED, func(context EventContext) {
		got = context.Data.(*SystemEvent)
	})

	EventFire(EventContext{
		Type: EVENT_CODE_RESIZED,
		Data: &SystemEvent{WindowWidth: 1280, WindowHeight: 720},
	})

	require.NotNil(t, got)
	assert.Equal(t, uint32(1280), got.WindowWidth)
	assert.Equal(t, uint32(720), got.WindowHeight)
}

func TestEventFireOnlyMatchingCode(t *testing.T) {
	require.NoError(t, EventSystemShutdown())
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()

	fired := 0
	EventRegister(EVENT_CODE_KEY_PRESSED, func(context EventContext) {
		fired++
	})

	EventFire(EventContext{Type: EVENT_CODE_KEY_RELEASED})
	assert.Equal(t, 0, fired)

	EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED})
	assert.Equal(t, 1, fired)
}

func TestEventSystemUninitializedIsSafe(t *testing.T) {
	require.NoError(t, EventSystemShutdown())

	// Neither call may panic without an initialized system.
	EventRegister(EVENT_CODE_APPLICATION_QUIT, func(context EventContext) {})
	EventFire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
}
