package renderer

import (
	"github.com/spinvector/orbit/engine/math"
)

const (
	// Degrees of rotation applied per pixel of mouse drag.
	orbitRotateSpeed float32 = 0.25 * math.K_PI / 180.0
	// Radius change per pixel of right-button drag.
	orbitZoomSpeed float32 = 0.005

	orbitMinPolar  float32 = 0.1
	orbitMaxPolar  float32 = math.K_PI - 0.1
	orbitMinRadius float32 = 3.0
	orbitMaxRadius float32 = 15.0
)

/**
 * @brief A camera constrained to a sphere around the origin. Position
 * is derived from the spherical coordinates; the view matrix always
 * looks at the origin with +Y up.
 */
type OrbitCamera struct {
	Radius  float32
	Polar   float32
	Azimuth float32

	// Internal flag used to determine when the view matrix needs to be rebuilt.
	isDirty    bool
	viewMatrix math.Mat4
}

func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Radius:  5.0,
		Polar:   math.K_PI / 4.0,
		Azimuth: 1.5 * math.K_PI,
		isDirty: true,
	}
}

// Rotate orbits the camera by a mouse delta in pixels. Vertical motion
// changes the polar angle, horizontal motion the azimuth. The polar
// angle is clamped away from the poles to keep the up vector valid.
func (c *OrbitCamera) Rotate(dxPixels, dyPixels float32) {
	c.Azimuth += dxPixels * orbitRotateSpeed
	c.Polar += dyPixels * orbitRotateSpeed
	c.Polar = math.Clamp(c.Polar, orbitMinPolar, orbitMaxPolar)
	c.isDirty = true
}

// Zoom moves the camera along its radius by a mouse delta in pixels.
func (c *OrbitCamera) Zoom(dPixels float32) {
	c.Radius += dPixels * orbitZoomSpeed
	c.Radius = math.Clamp(c.Radius, orbitMinRadius, orbitMaxRadius)
	c.isDirty = true
}

// Position converts the spherical coordinates to Cartesian space.
func (c *OrbitCamera) Position() math.Vec3 {
	return math.NewVec3(
		c.Radius*math.Sin(c.Polar)*math.Cos(c.Azimuth),
		c.Radius*math.Cos(c.Polar),
		c.Radius*math.Sin(c.Polar)*math.Sin(c.Azimuth),
	)
}

// View returns the look-at matrix toward the origin, rebuilt lazily
// after a Rotate or Zoom.
func (c *OrbitCamera) View() math.Mat4 {
	if c.isDirty {
		c.viewMatrix = math.NewMat4LookAt(c.Position(), math.NewVec3Zero(), math.NewVec3Up())
		c.isDirty = false
	}
	return c.viewMatrix
}
