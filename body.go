package orrery

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gonum/matrix/mat64"
)

// InitialConditions defines where a body is observed at the first frame.
type InitialConditions struct {
	X, Y          float64 // world position
	SemiMajorAxis float64
	Radius        float64 // visual size only
}

// OrbitalBody is a body travelling along a fixed ellipse.
type OrbitalBody struct {
	Ellipse
	radius      float64
	θ           float64
	translation []float64
	rot         *mat64.Dense
	std, world  *mat64.Vector
	x, y        float64 // last world position
	direction   Direction
	policy      StepPolicy
	logger      kitlog.Logger
}

// Radius returns the visual radius.
func (b *OrbitalBody) Radius() float64 {
	return b.radius
}

// RotationAngle returns the angle between the major axis and the world x-axis.
func (b *OrbitalBody) RotationAngle() float64 {
	return b.θ
}

// Translation returns a copy of the world offset of the standard frame.
func (b *OrbitalBody) Translation() []float64 {
	return []float64{b.translation[0], b.translation[1]}
}

// StandardPosition returns the current position in the standard frame.
func (b *OrbitalBody) StandardPosition() (x, y float64) {
	return b.std.At(0, 0), b.std.At(1, 0)
}

// Position returns the current world position.
func (b *OrbitalBody) Position() (x, y float64) {
	return b.x, b.y
}

// Direction returns the current direction of travel.
func (b *OrbitalBody) Direction() Direction {
	return b.direction
}

// Tick advances the body by one step and returns its new world position.
// Panics with an InvariantError if the body leaves [-a, a] along x.
func (b *OrbitalBody) Tick() (x, y float64) {
	sx := b.std.At(0, 0)
	prev := b.direction
	b.direction = transition(b.direction, sx, b.a)
	limit := b.direction.remaining(sx, b.a)
	step := b.policy.Step(b.Ellipse, sx, b.direction, limit)
	var nx float64
	if step >= limit {
		// Land exactly on the apsis, the flip happens on the next tick.
		step = limit
		nx = b.direction.apsis(b.a)
	} else {
		nx = sx + b.direction.sign()*step
	}
	// Also catches a NaN step.
	if !(nx >= -b.a && nx <= b.a) {
		panic(InvariantError{nx, b.a, b.direction})
	}
	b.std.SetVec(0, nx)
	b.std.SetVec(1, b.Y(nx, b.direction))
	b.toWorld()
	if b.logger != nil {
		if prev != b.direction {
			level.Debug(b.logger).Log("flip", b.direction, "x", sx)
		}
		level.Debug(b.logger).Log("step", step, "x", nx, "wx", b.x, "wy", b.y)
	}
	return b.x, b.y
}

// toWorld rotates the standard position and removes the translation.
func (b *OrbitalBody) toWorld() {
	b.world.MulVec(b.rot, b.std)
	b.x = b.world.At(0, 0) - b.translation[0]
	b.y = b.world.At(1, 0) - b.translation[1]
}

// String implements the stringer interface.
func (b *OrbitalBody) String() string {
	return fmt.Sprintf("%s θ=%.3f r=%.3f (%.4f, %.4f) %s", b.Ellipse, Rad2deg(b.θ), b.radius, b.x, b.y, b.direction)
}

// NewOrbitalBody derives the orbit passing through the initial position.
// The logger may be nil, in which case nothing is traced.
func NewOrbitalBody(ic InitialConditions, policy StepPolicy, logger kitlog.Logger) (*OrbitalBody, error) {
	if !finite(ic.X, ic.Y, ic.SemiMajorAxis, ic.Radius) {
		return nil, ErrNonFinite
	}
	a := ic.SemiMajorAxis
	if a <= 0 {
		return nil, ErrSemiMajorAxis
	}
	rP := Perihelion(ic.X, ic.Y)
	if rP >= a {
		return nil, ErrUnboundOrbit
	}
	if policy == nil {
		policy = DefaultStepPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step policy: %w", err)
	}
	rA := Aphelion(rP, a)
	e := Radii2e(rA, rP)
	θ := RotationAngle(ic.X, ic.Y)
	b := &OrbitalBody{
		Ellipse:     NewEllipse(a, e),
		radius:      ic.Radius,
		θ:           θ,
		translation: Translation(a, θ, ic.X, ic.Y),
		rot:         Rot2D(θ),
		std:         mat64.NewVector(2, []float64{a, 0}),
		world:       mat64.NewVector(2, nil),
		direction:   Decreasing,
		policy:      policy,
		logger:      logger,
	}
	b.toWorld()
	if logger != nil {
		// The observed point must map back onto the standard start (a, 0).
		start := World2Standard(θ, b.translation, []float64{ic.X, ic.Y})
		level.Debug(logger).Log("perihelion", rP, "aphelion", rA, "eccentricity", e, "a", a, "b", b.b,
			"angle", θ, "tx", b.translation[0], "ty", b.translation[1], "sx", start[0], "sy", start[1])
	}
	return b, nil
}
