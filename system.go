package orrery

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// RecordSize is the number of float32 per body in the export buffer: radius, x, y.
const RecordSize = 3

// OrbitSystem owns an ordered collection of bodies and the flat buffer
// exported to the renderer.
//
// The slice returned by Tick and Buffer is the system's own storage: it is
// only valid until the next call to Tick, Add or Remove.
type OrbitSystem struct {
	bodies []*OrbitalBody
	buffer []float32
	policy StepPolicy
	logger kitlog.Logger
	ticks  uint64
}

// NewOrbitSystem builds one body per initial condition, in order. The first
// invalid body aborts the construction with a *ConfigError.
// A nil policy uses DefaultStepPolicy, a nil logger disables tracing.
func NewOrbitSystem(conditions []InitialConditions, policy StepPolicy, logger kitlog.Logger) (*OrbitSystem, error) {
	if policy == nil {
		policy = DefaultStepPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid step policy: %w", err)
	}
	s := &OrbitSystem{bodies: make([]*OrbitalBody, 0, len(conditions)), policy: policy, logger: logger}
	for i, ic := range conditions {
		b, err := NewOrbitalBody(ic, policy, s.bodyLogger(i))
		if err != nil {
			return nil, &ConfigError{i, err}
		}
		s.bodies = append(s.bodies, b)
	}
	s.buffer = make([]float32, RecordSize*len(s.bodies))
	s.pack()
	if logger != nil {
		level.Debug(logger).Log("bodies", len(s.bodies), "buffer", len(s.buffer))
	}
	return s, nil
}

func (s *OrbitSystem) bodyLogger(i int) kitlog.Logger {
	if s.logger == nil {
		return nil
	}
	return kitlog.With(s.logger, "body", i)
}

// Tick advances every body in insertion order and returns the refreshed buffer.
func (s *OrbitSystem) Tick() []float32 {
	for _, b := range s.bodies {
		b.Tick()
	}
	s.ticks++
	s.pack()
	return s.buffer
}

// Buffer returns the current buffer without advancing the bodies.
func (s *OrbitSystem) Buffer() []float32 {
	return s.buffer
}

// Ticks returns the number of ticks since construction.
func (s *OrbitSystem) Ticks() uint64 {
	return s.ticks
}

// Len returns the number of bodies.
func (s *OrbitSystem) Len() int {
	return len(s.bodies)
}

// Body returns the i-th body.
func (s *OrbitSystem) Body(i int) *OrbitalBody {
	return s.bodies[i]
}

// Add appends a body built from the provided initial conditions.
// The body starts at its initial position regardless of the current tick.
func (s *OrbitSystem) Add(ic InitialConditions) error {
	i := len(s.bodies)
	b, err := NewOrbitalBody(ic, s.policy, s.bodyLogger(i))
	if err != nil {
		return &ConfigError{i, err}
	}
	s.bodies = append(s.bodies, b)
	s.resize()
	return nil
}

// Remove deletes the i-th body, preserving the order of the others.
func (s *OrbitSystem) Remove(i int) error {
	if i < 0 || i >= len(s.bodies) {
		return fmt.Errorf("no body at index %d (have %d)", i, len(s.bodies))
	}
	copy(s.bodies[i:], s.bodies[i+1:])
	s.bodies[len(s.bodies)-1] = nil
	s.bodies = s.bodies[:len(s.bodies)-1]
	s.resize()
	return nil
}

// resize keeps the buffer at exactly RecordSize floats per live body.
func (s *OrbitSystem) resize() {
	n := RecordSize * len(s.bodies)
	if n <= cap(s.buffer) {
		s.buffer = s.buffer[:n]
	} else {
		s.buffer = make([]float32, n)
	}
	s.pack()
}

// pack rewrites every record of the buffer.
func (s *OrbitSystem) pack() {
	for i, b := range s.bodies {
		x, y := b.Position()
		rec := s.buffer[i*RecordSize : (i+1)*RecordSize]
		rec[0] = float32(b.radius)
		rec[1] = float32(x)
		rec[2] = float32(y)
	}
}
