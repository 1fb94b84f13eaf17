package orrery

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/gonum/floats"
	"github.com/soniakeys/meeus/v3/julian"
)

func testSystem(t *testing.T) *OrbitSystem {
	s, err := NewOrbitSystem([]InitialConditions{
		{X: 0, Y: 0, SemiMajorAxis: 1.0, Radius: 0.1},
		{X: 0.2, Y: 0.5, SemiMajorAxis: 1.5, Radius: 0.2},
	}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTrajectoryWriter(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	w := NewTrajectoryWriter(&out, epoch, time.Hour)
	if jd := w.JD(0); jd != julian.TimeToJD(epoch) {
		t.Fatalf("tick 0 at JD %f", jd)
	}
	if !floats.EqualWithinAbs(w.JD(24)-w.JD(0), 1, 1e-9) {
		t.Fatal("24 one hour ticks should span one day")
	}
	s := testSystem(t)
	if err := Record(s, 3, w); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1+4*s.Len() {
		t.Fatalf("%d rows written", len(rows))
	}
	if rows[0][0] != "tick" || rows[0][5] != "y" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "0" || rows[1][2] != "0" || rows[1][3] != "0.1" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	last := rows[len(rows)-1]
	if last[0] != "3" || last[2] != "1" {
		t.Fatalf("unexpected last row %v", last)
	}
	buf := s.Buffer()
	for i, col := range last[3:] {
		v, err := strconv.ParseFloat(col, 32)
		if err != nil {
			t.Fatal(err)
		}
		if float32(v) != buf[RecordSize+i] {
			t.Fatalf("column %d: %s != %f", i+3, col, buf[RecordSize+i])
		}
	}
	if err := w.Write(4, buf[:4]); err == nil {
		t.Fatal("partial record accepted")
	}
}

func TestGeometry(t *testing.T) {
	s := testSystem(t)
	var out bytes.Buffer
	if err := WriteGeometry(&out, s, []string{"sun"}); err != nil {
		t.Fatal(err)
	}
	var g []BodyGeometry
	if err := json.Unmarshal(out.Bytes(), &g); err != nil {
		t.Fatal(err)
	}
	if len(g) != 2 {
		t.Fatalf("%d bodies exported", len(g))
	}
	if g[0].Name != "sun" || g[1].Name != "" || g[1].Index != 1 {
		t.Fatalf("unexpected names %+v", g)
	}
	if g[0].Eccentricity != 1 || g[0].SemiMinorAxis != 0 {
		t.Fatalf("a body at the origin should have a segment orbit: %+v", g[0])
	}
	b := s.Body(1)
	if g[1].SemiMajorAxis != 1.5 || g[1].Eccentricity != b.Eccentricity() || g[1].RotationAngle != b.RotationAngle() {
		t.Fatalf("unexpected geometry %+v", g[1])
	}
	if !vectorsEqual(g[1].Translation, b.Translation()) {
		t.Fatalf("unexpected translation %v", g[1].Translation)
	}
	if !floats.EqualWithinAbs(g[1].Periapsis+g[1].Apoapsis, 3, 1e-12) {
		t.Fatal("apsides do not span the major axis")
	}
}
