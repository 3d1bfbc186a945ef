package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierAcquireAndRelease(t *testing.T) {
	Owners = nil

	owner := struct{ name string }{"mesh"}
	first := IdentifierAquireNewID(&owner)
	second := IdentifierAquireNewID(&owner)
	assert.NotEqual(t, first, second)

	// A released slot is handed out again.
	require.NoError(t, IdentifierReleaseID(first))
	third := IdentifierAquireNewID(&owner)
	assert.Equal(t, first, third)
}

func TestIdentifierReleaseOutOfRange(t *testing.T) {
	Owners = nil
	IdentifierAquireNewID("a")

	assert.Error(t, IdentifierReleaseID(1 << 20))
}

func TestIdentifierReleaseBeforeAcquire(t *testing.T) {
	Owners = nil
	assert.Error(t, IdentifierReleaseID(0))
}
