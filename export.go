package orrery

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const j2000 = 2451545.0

// TrajectoryWriter writes the export buffer of successive ticks as CSV, one
// row per body: tick, JD, body, radius, x, y. Each tick is stamped at
// epoch + tick*frame.
type TrajectoryWriter struct {
	w      *csv.Writer
	epoch  time.Time
	frame  time.Duration
	header bool
	row    []string
}

// NewTrajectoryWriter returns a new TrajectoryWriter.
func NewTrajectoryWriter(w io.Writer, epoch time.Time, frame time.Duration) *TrajectoryWriter {
	return &TrajectoryWriter{w: csv.NewWriter(w), epoch: epoch, frame: frame, row: make([]string, 6)}
}

// JD returns the Julian date of the provided tick.
func (t *TrajectoryWriter) JD(tick uint64) float64 {
	return julian.TimeToJD(t.epoch.Add(time.Duration(tick) * t.frame))
}

// Write writes one row per record of buf.
func (t *TrajectoryWriter) Write(tick uint64, buf []float32) error {
	if len(buf)%RecordSize != 0 {
		return fmt.Errorf("buffer length %d is not a multiple of %d", len(buf), RecordSize)
	}
	if !t.header {
		if err := t.w.Write([]string{"tick", "jd", "body", "radius", "x", "y"}); err != nil {
			return err
		}
		t.header = true
	}
	t.row[0] = strconv.FormatUint(tick, 10)
	t.row[1] = strconv.FormatFloat(t.JD(tick), 'f', 6, 64)
	for i := 0; i < len(buf); i += RecordSize {
		t.row[2] = strconv.Itoa(i / RecordSize)
		t.row[3] = strconv.FormatFloat(float64(buf[i]), 'g', -1, 32)
		t.row[4] = strconv.FormatFloat(float64(buf[i+1]), 'g', -1, 32)
		t.row[5] = strconv.FormatFloat(float64(buf[i+2]), 'g', -1, 32)
		if err := t.w.Write(t.row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying CSV writer.
func (t *TrajectoryWriter) Flush() error {
	t.w.Flush()
	return t.w.Error()
}

// Record writes the current buffer of the system and then the buffer after
// each of the following ticks.
func Record(s *OrbitSystem, ticks int, t *TrajectoryWriter) error {
	if err := t.Write(s.Ticks(), s.Buffer()); err != nil {
		return err
	}
	for i := 0; i < ticks; i++ {
		buf := s.Tick()
		if err := t.Write(s.Ticks(), buf); err != nil {
			return err
		}
	}
	return t.Flush()
}

// BodyGeometry summarizes the derived orbit of a body.
type BodyGeometry struct {
	Index         int       `json:"index"`
	Name          string    `json:"name,omitempty"`
	Radius        float64   `json:"radius"`
	SemiMajorAxis float64   `json:"semiMajorAxis"`
	SemiMinorAxis float64   `json:"semiMinorAxis"`
	Eccentricity  float64   `json:"eccentricity"`
	Periapsis     float64   `json:"periapsis"`
	Apoapsis      float64   `json:"apoapsis"`
	RotationAngle float64   `json:"rotationAngle"`
	Translation   []float64 `json:"translation"`
}

// Geometry returns the geometry of every body of the system. Names are
// optional and matched by index.
func Geometry(s *OrbitSystem, names []string) []BodyGeometry {
	g := make([]BodyGeometry, s.Len())
	for i := range g {
		b := s.Body(i)
		g[i] = BodyGeometry{
			Index:         i,
			Radius:        b.Radius(),
			SemiMajorAxis: b.SemiMajorAxis(),
			SemiMinorAxis: b.SemiMinorAxis(),
			Eccentricity:  b.Eccentricity(),
			Periapsis:     b.Periapsis(),
			Apoapsis:      b.Apoapsis(),
			RotationAngle: b.RotationAngle(),
			Translation:   b.Translation(),
		}
		if i < len(names) {
			g[i].Name = names[i]
		}
	}
	return g
}

// WriteGeometry writes the geometry of the system as indented JSON.
func WriteGeometry(w io.Writer, s *OrbitSystem, names []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Geometry(s, names))
}
