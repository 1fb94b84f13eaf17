package orrery

import (
	"errors"
	"fmt"
	"math"

	"github.com/gonum/floats"
)

const (
	eccentricityε = 1e-9
	angleε        = 1e-9
	distanceε     = 1e-9
)

// Ellipse defines the geometry of a closed orbit in its standard frame, i.e.
// centered on the origin with the major axis along the x-axis.
type Ellipse struct {
	a, b, e float64
}

// SemiMajorAxis returns a.
func (o Ellipse) SemiMajorAxis() float64 {
	return o.a
}

// SemiMinorAxis returns b.
func (o Ellipse) SemiMinorAxis() float64 {
	return o.b
}

// Eccentricity returns e.
func (o Ellipse) Eccentricity() float64 {
	return o.e
}

// Apoapsis returns the apoapsis distance.
func (o Ellipse) Apoapsis() float64 {
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis distance.
func (o Ellipse) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// Y returns the ordinate of the ellipse at x on the half traversed when moving
// in the provided direction.
func (o Ellipse) Y(x float64, dir Direction) float64 {
	// Rounding at the apsides can produce a tiny negative radicand.
	y := (o.b / o.a) * math.Sqrt(math.Max(0, o.a*o.a-x*x))
	return dir.half() * y
}

// String implements the stringer interface.
func (o Ellipse) String() string {
	return fmt.Sprintf("a=%.4f b=%.4f e=%.4f", o.a, o.b, o.e)
}

// Equals returns whether two ellipses are identical.
func (o Ellipse) Equals(o1 Ellipse) (bool, error) {
	if !floats.EqualWithinAbs(o.a, o1.a, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !floats.EqualWithinAbs(o.b, o1.b, distanceε) {
		return false, errors.New("semi minor axis invalid")
	}
	if !floats.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	return true, nil
}

// NewEllipse returns the ellipse of semi major axis a and eccentricity e.
// An eccentricity of exactly one degenerates to the segment [-a, a].
// Panics if the orbit is not closed.
func NewEllipse(a, e float64) Ellipse {
	if e < 0 || e > 1 {
		panic(fmt.Errorf("eccentricity %f does not define a closed orbit", e))
	}
	return Ellipse{a, a * math.Sqrt(1-e*e), e}
}

// Helper functions go here.

// Perihelion returns the perihelion distance of an orbit observed at (x, y).
// A point on the world x-axis is taken as lying on the major axis, any other
// point is taken as the perihelion itself.
func Perihelion(x, y float64) float64 {
	if y == 0 {
		return math.Abs(x)
	}
	return math.Hypot(x, y)
}

// Aphelion returns the aphelion distance from the perihelion and the semi major axis.
func Aphelion(rP, a float64) float64 {
	return 2*a - rP
}

// Radii2e returns the eccentricity from the radii.
func Radii2e(rA, rP float64) float64 {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	return (rA - rP) / (rA + rP)
}

// RotationAngle returns the angle, in radians, between the major axis of an
// orbit observed at (x, y) and the world x-axis. It is the angle at the origin
// of the triangle formed by the origin, (x, y) and (|x|, 0).
func RotationAngle(x, y float64) float64 {
	if y == 0 {
		return 0
	}
	adj := math.Abs(x)
	if adj == 0 {
		// Degenerate triangle: the point sits on the world y-axis.
		return math.Pi / 2
	}
	opp := math.Abs(y)
	hyp := math.Hypot(x, y)
	cosθ := (adj*adj + hyp*hyp - opp*opp) / (2 * adj * hyp)
	if abscosθ := math.Abs(cosθ); abscosθ > 1 && floats.EqualWithinAbs(abscosθ, 1, 1e-12) {
		cosθ = sign(cosθ)
	}
	return math.Acos(cosθ)
}

// Translation returns the world offset which maps the standard start (a, 0),
// once rotated by θ, onto the observed point (x, y).
func Translation(a, θ, x, y float64) []float64 {
	start := MxV22(Rot2D(θ), []float64{a, 0})
	return []float64{start[0] - x, start[1] - y}
}
