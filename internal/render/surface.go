package render

import (
	"math"
	"time"
)

// Frame is one snapshot of the rotary pendulum handed to a surface.
type Frame struct {
	Theta    float64
	Alpha    float64
	ThetaDot float64
	AlphaDot float64
	Voltage  float64
	Reward   float64
	Time     float64
	Step     int
	Episode  int
	Backend  string

	ArmLength      float64
	PendulumLength float64
}

// Surface is a human-visible render target.
type Surface interface {
	// Draw presents f; surfaces may drop frames to honour their frame rate.
	Draw(f Frame) error
	// Done is closed when the user dismisses the surface.
	Done() <-chan struct{}
	Close() error
}

// gate drops frames that arrive faster than the configured rate.
type gate struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func newGate(fps int) gate {
	if fps <= 0 {
		fps = 30
	}
	return gate{interval: time.Second / time.Duration(fps), now: time.Now}
}

func (g *gate) allow() bool {
	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Point is a projected 2D position in scene units, y pointing up.
type Point struct{ X, Y float64 }

// Vec3 is a scene position: x right, y up, z towards the viewer.
type Vec3 struct{ X, Y, Z float64 }

// Rig returns the arm tip and pendulum tip of the frame in scene
// coordinates with the arm pivot at the origin.
func (f Frame) Rig() (arm, bob Vec3) {
	lr, lp := f.ArmLength, f.PendulumLength
	if lr == 0 {
		lr = 0.085
	}
	if lp == 0 {
		lp = 0.129
	}
	st, ct := math.Sincos(f.Theta)
	sa, ca := math.Sincos(f.Alpha)

	arm = Vec3{X: lr * st, Y: 0, Z: lr * ct}
	// The pendulum swings in the plane perpendicular to the arm.
	bob = Vec3{
		X: arm.X + lp*sa*ct,
		Y: lp * ca,
		Z: arm.Z - lp*sa*st,
	}
	return arm, bob
}

// Project maps a scene position to an oblique 2D view.
func Project(v Vec3) Point {
	const depth = 0.35
	return Point{X: v.X + depth*v.Z, Y: v.Y + depth*v.Z}
}
