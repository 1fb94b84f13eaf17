package orrery

import (
	"errors"
	"math"
)

const (
	// DefaultStep is the initial candidate x step of the default policy.
	DefaultStep = 1e-2
	// DefaultTolerance is the maximum y displacement per tick of the default policy.
	DefaultTolerance = 1e-2
	// DefaultShrink is the factor applied to a rejected candidate step.
	DefaultShrink = 0.9
)

// StepPolicy chooses how far along the x-axis a body moves in one tick.
// The returned step must be positive and must not exceed limit, the distance
// left before the apsis the body is heading to.
type StepPolicy interface {
	Step(o Ellipse, x float64, dir Direction, limit float64) float64
	Validate() error
}

// DefaultStepPolicy returns the adaptive policy with default parameters.
func DefaultStepPolicy() StepPolicy {
	return AdaptiveStep{Initial: DefaultStep, Tolerance: DefaultTolerance, Shrink: DefaultShrink}
}

// AdaptiveStep starts from Initial and shrinks the candidate step by Shrink
// until the resulting y displacement is within Tolerance. This keeps the
// apparent speed even near the apsides, where the ellipse curves sharply.
type AdaptiveStep struct {
	Initial, Tolerance, Shrink float64
}

// Step implements the StepPolicy interface.
func (p AdaptiveStep) Step(o Ellipse, x float64, dir Direction, limit float64) float64 {
	step := math.Min(p.Initial, limit)
	y := o.Y(x, dir)
	for math.Abs(o.Y(x+dir.sign()*step, dir)-y) > p.Tolerance {
		step *= p.Shrink
	}
	return step
}

// Validate implements the StepPolicy interface.
func (p AdaptiveStep) Validate() error {
	if !finite(p.Initial, p.Tolerance, p.Shrink) {
		return errors.New("adaptive step parameters must be finite")
	}
	if p.Initial <= 0 {
		return errors.New("initial step must be positive")
	}
	if p.Tolerance <= 0 {
		return errors.New("tolerance must be positive")
	}
	if p.Shrink <= 0 || p.Shrink >= 1 {
		return errors.New("shrink factor must be within (0, 1)")
	}
	return nil
}

// TieredStep uses Near within Threshold of either apsis and Far elsewhere.
// It does not bound the y displacement.
type TieredStep struct {
	Near, Far, Threshold float64
}

// Step implements the StepPolicy interface.
func (p TieredStep) Step(o Ellipse, x float64, dir Direction, limit float64) float64 {
	step := p.Far
	if o.a-math.Abs(x) <= p.Threshold {
		step = p.Near
	}
	return math.Min(step, limit)
}

// Validate implements the StepPolicy interface.
func (p TieredStep) Validate() error {
	if !finite(p.Near, p.Far, p.Threshold) {
		return errors.New("tiered step parameters must be finite")
	}
	if p.Near <= 0 || p.Far <= 0 {
		return errors.New("steps must be positive")
	}
	if p.Threshold < 0 {
		return errors.New("threshold cannot be negative")
	}
	return nil
}
