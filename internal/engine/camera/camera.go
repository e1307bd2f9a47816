// Package camera provides the orbit camera the globe viewer is driven with.
package camera

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/globe/pkg/math"
)

// Controller selects how input reaches the camera.
type Controller int

const (
	// ControllerSmooth eases the camera toward its goal every frame.
	ControllerSmooth Controller = iota
	// ControllerDirect applies input immediately.
	ControllerDirect
)

// ParseController parses a controller name from configuration.
func ParseController(s string) (Controller, error) {
	switch s {
	case "", "smooth":
		return ControllerSmooth, nil
	case "direct":
		return ControllerDirect, nil
	default:
		return 0, fmt.Errorf("unknown camera controller %q", s)
	}
}

func (c Controller) String() string {
	if c == ControllerDirect {
		return "direct"
	}
	return "smooth"
}

// Settings holds orbit controller tuning.
type Settings struct {
	RotateSensitivity    float32
	TranslateSensitivity float32
	ZoomSensitivity      float32
	SmoothingWeight      float32
}

// DefaultSettings returns the stock orbit controller tuning.
func DefaultSettings() Settings {
	return Settings{
		RotateSensitivity:    0.08,
		TranslateSensitivity: 0.1,
		ZoomSensitivity:      0.2,
		SmoothingWeight:      0.8,
	}
}

const pitchLimit = math32.Pi/2 - 0.01

// OrbitCamera orbits a target point with Y up.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates of the eye around Target
	Distance  float32
	RotationX float32 // Pitch (radians)
	RotationY float32 // Yaw (radians)

	MinDistance float32
	MaxDistance float32

	FovY float32
	Near float32
	Far  float32

	Settings   Settings
	Controller Controller

	// Smoothed eye and target actually used for rendering
	eye, target math.Vec3
}

// NewOrbitCamera creates a camera at eye looking at target.
func NewOrbitCamera(eye, target math.Vec3, ctrl Controller, s Settings) *OrbitCamera {
	c := &OrbitCamera{
		Target:      target,
		MinDistance: 0.001,
		MaxDistance: 1e6,
		FovY:        math32.Pi / 4,
		Near:        0.1,
		Far:         1000,
		Settings:    s,
		Controller:  ctrl,
	}
	offset := eye.Sub(target)
	c.Distance = offset.Length()
	if c.Distance > 0 {
		dir := offset.Scale(1 / c.Distance)
		c.RotationX = math32.Asin(clamp(dir.Y, -1, 1))
		c.RotationY = math32.Atan2(dir.X, dir.Z)
	}
	c.RotationX = clamp(c.RotationX, -pitchLimit, pitchLimit)
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
	c.Snap()
	return c
}

// Position returns the goal eye position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinP, cosP := math32.Sincos(c.RotationX)
	sinY, cosY := math32.Sincos(c.RotationY)
	return c.Target.Add(math.Vec3{
		X: c.Distance * cosP * sinY,
		Y: c.Distance * sinP,
		Z: c.Distance * cosP * cosY,
	})
}

// Eye returns the smoothed eye position used for rendering.
func (c *OrbitCamera) Eye() math.Vec3 { return c.eye }

// Snap jumps the rendered camera to its goal.
func (c *OrbitCamera) Snap() {
	c.eye = c.Position()
	c.target = c.Target
}

// HandleDrag orbits around the target from a mouse delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY, dt float32) {
	s := c.Settings.RotateSensitivity * dt
	c.RotationY -= deltaX * s
	c.RotationX = clamp(c.RotationX+deltaY*s, -pitchLimit, pitchLimit)
}

// HandlePan moves the target in the view plane, opposite to the mouse.
func (c *OrbitCamera) HandlePan(deltaX, deltaY, dt float32) {
	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(math.Vec3Y).Normalize()
	up := right.Cross(forward)

	s := c.Settings.TranslateSensitivity * dt
	c.Target = c.Target.
		Add(right.Scale(-deltaX * s)).
		Add(up.Scale(deltaY * s))
}

// HandleZoom scales the distance by the scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance *= 1 - delta*c.Settings.ZoomSensitivity
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// Update advances smoothing by one frame.
func (c *OrbitCamera) Update() {
	if c.Controller == ControllerDirect {
		c.Snap()
		return
	}
	w := clamp(c.Settings.SmoothingWeight, 0, 0.999)
	c.eye = c.Position().Lerp(c.eye, w)
	c.target = c.Target.Lerp(c.target, w)
}

// ViewMatrix returns the view matrix for the rendered camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.eye, c.target, math.Vec3Y)
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
