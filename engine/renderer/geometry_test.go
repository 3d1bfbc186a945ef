package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxGeometry(t *testing.T) {
	vertices, indices := BoxGeometry()

	require.Len(t, vertices, 8)
	require.Len(t, indices, 36)

	// Every corner sits on the unit cube.
	for i, v := range vertices {
		assert.Equal(t, float32(1.0), abs32(v.Position.X), "vertex %d", i)
		assert.Equal(t, float32(1.0), abs32(v.Position.Y), "vertex %d", i)
		assert.Equal(t, float32(1.0), abs32(v.Position.Z), "vertex %d", i)
	}

	// Corners are distinct, so each gets its own colour.
	seen := map[[3]float32]bool{}
	for _, v := range vertices {
		seen[[3]float32{v.Position.X, v.Position.Y, v.Position.Z}] = true
	}
	assert.Len(t, seen, 8)

	for i, idx := range indices {
		assert.Less(t, int(idx), len(vertices), "index %d", i)
	}

	// Triangles are non-degenerate.
	for tri := 0; tri < len(indices); tri += 3 {
		a, b, c := indices[tri], indices[tri+1], indices[tri+2]
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, b, c)
		assert.NotEqual(t, a, c)
	}

	// Twelve triangles use each corner at least three times in total.
	counts := map[uint16]int{}
	for _, idx := range indices {
		counts[idx]++
	}
	for i := uint16(0); i < 8; i++ {
		assert.GreaterOrEqual(t, counts[i], 3, "corner %d", i)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
