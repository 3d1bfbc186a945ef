package renderer

import (
	"testing"

	"github.com/spinvector/orbit/engine/math"
	"github.com/stretchr/testify/assert"
)

func TestOrbitCameraDefaults(t *testing.T) {
	c := NewOrbitCamera()

	assert.Equal(t, float32(5.0), c.Radius)
	assert.InDelta(t, float64(math.K_QUARTER_PI), float64(c.Polar), 1e-6)
	assert.InDelta(t, float64(1.5*math.K_PI), float64(c.Azimuth), 1e-6)

	pos := c.Position()
	assert.InDelta(t, 0.0, float64(pos.X), 1e-5)
	assert.InDelta(t, 3.535534, float64(pos.Y), 1e-5)
	assert.InDelta(t, -3.535534, float64(pos.Z), 1e-5)
}

func TestOrbitCameraRotate(t *testing.T) {
	c := NewOrbitCamera()
	startAzimuth := c.Azimuth
	startPolar := c.Polar

	// A 4-pixel drag moves one degree.
	c.Rotate(4, 4)
	assert.InDelta(t, float64(startAzimuth)+float64(math.K_PI)/180.0, float64(c.Azimuth), 1e-6)
	assert.InDelta(t, float64(startPolar)+float64(math.K_PI)/180.0, float64(c.Polar), 1e-6)
}

func TestOrbitCameraPolarClamp(t *testing.T) {
	c := NewOrbitCamera()

	c.Rotate(0, -100000)
	assert.InDelta(t, 0.1, float64(c.Polar), 1e-6)

	c.Rotate(0, 100000)
	assert.InDelta(t, float64(math.K_PI)-0.1, float64(c.Polar), 1e-6)
}

func TestOrbitCameraZoomClamp(t *testing.T) {
	c := NewOrbitCamera()

	c.Zoom(-100000)
	assert.Equal(t, float32(3.0), c.Radius)

	c.Zoom(100000)
	assert.Equal(t, float32(15.0), c.Radius)

	c.Zoom(-200) // 200 px * 0.005 = 1.0
	assert.InDelta(t, 14.0, float64(c.Radius), 1e-6)
}

func TestOrbitCameraAzimuthUnclamped(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(100000, 0)
	// Full revolutions are allowed; only polar and radius clamp.
	assert.Greater(t, c.Azimuth, 2*math.K_PI)
}

func TestOrbitCameraViewLooksAtOrigin(t *testing.T) {
	c := NewOrbitCamera()
	c.Rotate(37, -12)
	c.Zoom(150)

	view := c.View()

	// The camera position maps to the view-space origin.
	atEye := c.Position().Transform(view)
	assert.InDelta(t, 0.0, float64(atEye.X), 1e-4)
	assert.InDelta(t, 0.0, float64(atEye.Y), 1e-4)
	assert.InDelta(t, 0.0, float64(atEye.Z), 1e-4)

	// The origin sits straight ahead at the camera's radius.
	atOrigin := math.NewVec3Zero().Transform(view)
	assert.InDelta(t, 0.0, float64(atOrigin.X), 1e-4)
	assert.InDelta(t, 0.0, float64(atOrigin.Y), 1e-4)
	assert.InDelta(t, -float64(c.Radius), float64(atOrigin.Z), 1e-4)
}

func TestOrbitCameraViewIsCached(t *testing.T) {
	c := NewOrbitCamera()
	first := c.View()
	second := c.View()
	assert.Equal(t, first, second)

	c.Rotate(10, 0)
	assert.NotEqual(t, first, c.View())
}
