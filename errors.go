package orrery

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundOrbit is returned when the perihelion is not within the semi major axis.
	ErrUnboundOrbit = errors.New("perihelion distance must be less than the semi major axis")
	// ErrSemiMajorAxis is returned for a non positive semi major axis.
	ErrSemiMajorAxis = errors.New("semi major axis must be positive")
	// ErrNonFinite is returned when an initial condition is NaN or infinite.
	ErrNonFinite = errors.New("initial conditions must be finite")
)

// ConfigError identifies the body whose initial conditions are invalid.
type ConfigError struct {
	Index int
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("body %d: %s", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InvariantError is the panic value raised when a body leaves its ellipse.
type InvariantError struct {
	X, SemiMajorAxis float64
	Direction        Direction
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("standard x=%g escaped [-%g, %g] while %s", e.X, e.SemiMajorAxis, e.SemiMajorAxis, e.Direction)
}
