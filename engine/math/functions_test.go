package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = float32(1.0e-5)

func assertVec3Near(t *testing.T, expected, actual Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, float64(tolerance))
	assert.InDelta(t, expected.Y, actual.Y, float64(tolerance))
	assert.InDelta(t, expected.Z, actual.Z, float64(tolerance))
}

func TestVec3Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	assertVec3Near(t, NewVec3(5, 7, 9), a.Add(b))
	assertVec3Near(t, NewVec3(-3, -3, -3), a.Sub(b))
	assertVec3Near(t, NewVec3(2, 4, 6), a.MulScalar(2))

	assert.InDelta(t, 32.0, float64(a.Dot(b)), float64(tolerance))
	assert.InDelta(t, 14.0, float64(a.LengthSquared()), float64(tolerance))
}

func TestVec3Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := NewVec3(0, 0, 1)

	assertVec3Near(t, z, x.Cross(y))
	assertVec3Near(t, x, y.Cross(z))
	assertVec3Near(t, y, z.Cross(x))
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalized()
	assert.InDelta(t, 1.0, float64(v.Length()), float64(tolerance))
	assertVec3Near(t, NewVec3(0.6, 0, 0.8), v)
}

func TestMat4IdentityMul(t *testing.T) {
	id := NewMat4Identity()
	m := NewMat4Perspective(K_QUARTER_PI, 4.0/3.0, 1.0, 1000.0)

	assert.Equal(t, m, m.Mul(id))
	assert.Equal(t, m, id.Mul(m))
}

func TestMat4MulNotCommutative(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, -5), NewVec3Zero(), NewVec3Up())
	proj := NewMat4Perspective(K_QUARTER_PI, 1.0, 1.0, 1000.0)

	assert.NotEqual(t, view.Mul(proj), proj.Mul(view))
}

func TestMat4Perspective(t *testing.T) {
	// fov of 90 degrees makes tan(fov/2) == 1, so the diagonal is easy
	// to check by hand.
	m := NewMat4Perspective(K_HALF_PI, 1.0, 1.0, 1000.0)

	assert.InDelta(t, 1.0, float64(m.Data[0]), float64(tolerance))
	assert.InDelta(t, 1.0, float64(m.Data[5]), float64(tolerance))
	assert.InDelta(t, -1001.0/999.0, float64(m.Data[10]), float64(tolerance))
	assert.InDelta(t, -1.0, float64(m.Data[11]), float64(tolerance))
	assert.InDelta(t, -2000.0/999.0, float64(m.Data[14]), float64(tolerance))
	assert.Equal(t, float32(0), m.Data[15])
}

func TestMat4PerspectiveAspect(t *testing.T) {
	square := NewMat4Perspective(K_QUARTER_PI, 1.0, 1.0, 1000.0)
	wide := NewMat4Perspective(K_QUARTER_PI, 2.0, 1.0, 1000.0)

	// A wider aspect squeezes x, leaves y alone.
	assert.InDelta(t, float64(square.Data[0])/2.0, float64(wide.Data[0]), float64(tolerance))
	assert.InDelta(t, float64(square.Data[5]), float64(wide.Data[5]), float64(tolerance))
}

func TestMat4LookAtMapsEyeAndTarget(t *testing.T) {
	eye := NewVec3(0, 0, -5)
	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())

	// The eye lands at the view-space origin.
	atEye := eye.Transform(view)
	assert.InDelta(t, 0.0, float64(atEye.X), float64(tolerance))
	assert.InDelta(t, 0.0, float64(atEye.Y), float64(tolerance))
	assert.InDelta(t, 0.0, float64(atEye.Z), float64(tolerance))

	// The target sits straight ahead, five units down the view axis.
	atTarget := NewVec3Zero().Transform(view)
	assert.InDelta(t, 0.0, float64(atTarget.X), float64(tolerance))
	assert.InDelta(t, 0.0, float64(atTarget.Y), float64(tolerance))
	assert.InDelta(t, -5.0, float64(atTarget.Z), float64(tolerance))
}

func TestMat4TransposedIsInvolution(t *testing.T) {
	m := NewMat4LookAt(NewVec3(1, 2, 3), NewVec3Zero(), NewVec3Up())
	assert.Equal(t, m, NewMat4Transposed(NewMat4Transposed(m)))

	tr := NewMat4Transposed(m)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			assert.Equal(t, m.Data[row*4+col], tr.Data[col*4+row])
		}
	}
}

// Runs the startup scene through the full transform chain: camera on
// its home spherical position, an 800x600 viewport, and a cube corner
// that must land inside the clip volume.
func TestCubeCornerInsideClipVolume(t *testing.T) {
	radius := float32(5.0)
	polar := K_QUARTER_PI
	azimuth := 1.5 * K_PI

	eye := NewVec3(
		radius*ksin(polar)*kcos(azimuth),
		radius*kcos(polar),
		radius*ksin(polar)*ksin(azimuth),
	)
	assertVec3Near(t, NewVec3(0, 3.535534, -3.535534), eye)

	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())
	proj := NewMat4Perspective(K_QUARTER_PI, 800.0/600.0, 1.0, 1000.0)
	viewProj := view.Mul(proj)

	for _, corner := range []Vec3{
		NewVec3(1, 1, 1),
		NewVec3(-1, -1, -1),
		NewVec3(1, -1, 1),
		NewVec3(-1, 1, -1),
	} {
		clip := corner.Transform(viewProj)
		assert.Greater(t, clip.W, float32(0))
		assert.LessOrEqual(t, kabs(clip.X/clip.W), float32(1.0))
		assert.LessOrEqual(t, kabs(clip.Y/clip.W), float32(1.0))
		assert.LessOrEqual(t, kabs(clip.Z/clip.W), float32(1.0))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(3), Clamp(float32(2), 3, 15))
	assert.Equal(t, float32(15), Clamp(float32(20), 3, 15))
	assert.Equal(t, float32(7), Clamp(float32(7), 3, 15))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}
