package orrery

import (
	"math"
	"testing"
)

func TestRot2D(t *testing.T) {
	if v := MxV22(Rot2D(math.Pi/2), []float64{1, 0}); !vectorsEqual(v, []float64{0, 1}) {
		t.Fatalf("quarter turn of i gave %v", v)
	}
	if v := MxV22(Rot2D(math.Pi), []float64{1, 2}); !vectorsEqual(v, []float64{-1, -2}) {
		t.Fatalf("half turn gave %v", v)
	}
	θ := 0.3
	s, c := math.Sincos(θ)
	x, y := 0.7, -0.4
	if v := MxV22(Rot2D(θ), []float64{x, y}); !vectorsEqual(v, []float64{x*c - y*s, y*c + x*s}) {
		t.Fatalf("rotation by %f gave %v", θ, v)
	}
}

func TestStandardWorld(t *testing.T) {
	T := []float64{0.25, -1}
	for θ := -math.Pi; θ < math.Pi; θ += 0.1 {
		v := []float64{1.2, -0.3}
		w := Standard2World(θ, T, v)
		if back := World2Standard(θ, T, w); !vectorsEqual(back, v) {
			t.Fatalf("θ=%f: %v -> %v -> %v", θ, v, w, back)
		}
	}
	if w := Standard2World(0, T, []float64{0, 0}); !vectorsEqual(w, []float64{-0.25, 1}) {
		t.Fatalf("translation not removed: %v", w)
	}
}
