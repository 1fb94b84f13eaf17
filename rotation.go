package orrery

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// Rot2D returns the counter-clockwise rotation by θ in the plane.
func Rot2D(θ float64) *mat64.Dense {
	s, c := math.Sincos(θ)
	return mat64.NewDense(2, 2, []float64{c, -s, s, c})
}

// MxV22 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV22(m *mat64.Dense, v []float64) []float64 {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0)}
}

// Standard2World converts a vector from the standard frame of an orbit rotated
// by θ and offset by T to world coordinates.
func Standard2World(θ float64, T, v []float64) []float64 {
	w := MxV22(Rot2D(θ), v)
	return []float64{w[0] - T[0], w[1] - T[1]}
}

// World2Standard is the inverse of Standard2World.
func World2Standard(θ float64, T, v []float64) []float64 {
	return MxV22(Rot2D(-θ), []float64{v[0] + T[0], v[1] + T[1]})
}
