package main

import "github.com/charmbracelet/harmonica"

// orbitAxis is one orbit angle's velocity, decayed toward rest by a spring.
type orbitAxis struct {
	Velocity  float64 // Degrees per frame
	velSpring harmonica.Spring
	velAccel  float64 // Spring velocity of Velocity itself
}

func newOrbitAxis(fps int) orbitAxis {
	// Frequency 4, damping 1: critically damped, so the orbit never swings back.
	return orbitAxis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Step returns this frame's angle change and decays the velocity.
func (a *orbitAxis) Step() float64 {
	d := a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return d
}

// orbitState holds the yaw and pitch inertia of the preview camera.
type orbitState struct {
	Yaw, Pitch orbitAxis
	fps        int
}

func newOrbitState(fps int) *orbitState {
	return &orbitState{Yaw: newOrbitAxis(fps), Pitch: newOrbitAxis(fps), fps: fps}
}

// Impulse adds velocity in degrees per frame.
func (o *orbitState) Impulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

// Step returns the frame's yaw and pitch deltas.
func (o *orbitState) Step() (dYaw, dPitch float64) {
	return o.Yaw.Step(), o.Pitch.Step()
}

// Moving reports whether either axis still has visible velocity.
func (o *orbitState) Moving() bool {
	const rest = 1e-3
	return abs(o.Yaw.Velocity) > rest || abs(o.Pitch.Velocity) > rest
}

func (o *orbitState) Reset() {
	o.Yaw = newOrbitAxis(o.fps)
	o.Pitch = newOrbitAxis(o.fps)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
