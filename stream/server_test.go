package stream

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testServer(t *testing.T) (*httptest.Server, *Driver, *Hub, *Metrics) {
	s := testSystem(t)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hub := NewHub(4, m, kitlog.NewNopLogger())
	srv := NewServer(s, []string{"sun", "inner"}, hub, reg, kitlog.NewNopLogger())
	d := NewDriver(s, hub, 60, m, kitlog.NewNopLogger())
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return ts, d, hub, m
}

func get(t *testing.T, url string) []byte {
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestServerBodies(t *testing.T) {
	ts, d, _, _ := testServer(t)
	initial := append([]float32(nil), d.system.Buffer()...)
	// Later ticks do not alter the initial snapshot.
	d.Step()
	var bodies Bodies
	if err := json.Unmarshal(get(t, ts.URL+"/bodies"), &bodies); err != nil {
		t.Fatal(err)
	}
	if bodies.Stride != 3 || len(bodies.Records) != len(initial) {
		t.Fatalf("unexpected bodies %+v", bodies)
	}
	for i, v := range initial {
		if bodies.Records[i] != v {
			t.Fatalf("records %v != %v", bodies.Records, initial)
		}
	}
	if len(bodies.Geometry) != 2 || bodies.Geometry[1].Name != "inner" || bodies.Geometry[1].SemiMajorAxis != 1.5 {
		t.Fatalf("unexpected geometry %+v", bodies.Geometry)
	}
}

func TestServerHealthAndMetrics(t *testing.T) {
	ts, d, _, _ := testServer(t)
	var health healthResponse
	if err := json.Unmarshal(get(t, ts.URL+"/health"), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" {
		t.Fatalf("unexpected health %+v", health)
	}
	d.Step()
	metrics := string(get(t, ts.URL+"/metrics"))
	for _, name := range []string{"orrery_ticks_total 1", "orrery_bodies 2", "orrery_tick_duration_seconds_count 1"} {
		if !strings.Contains(metrics, name) {
			t.Fatalf("`%s` not exported:\n%s", name, metrics)
		}
	}
}

func TestServerFrames(t *testing.T) {
	ts, d, hub, m := testServer(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/frames", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("consumer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := testutil.ToFloat64(m.clients); n != 1 {
		t.Fatalf("%f clients recorded", n)
	}
	sent := d.Step()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("frame sent as message type %d", kind)
	}
	if string(frame) != string(sent) {
		t.Fatal("received frame differs from the broadcast one")
	}
	tick, buf, err := DecodeFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if tick != 1 || len(buf) != 6 || buf[3] != 0.2 {
		t.Fatalf("unexpected frame %d %v", tick, buf)
	}
	if n := testutil.ToFloat64(m.frames.WithLabelValues("sent")); n != 1 {
		t.Fatalf("%f frames sent", n)
	}
	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("consumer never unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerFramesRequiresUpgrade(t *testing.T) {
	ts, _, hub, _ := testServer(t)
	resp, err := http.Get(ts.URL + "/frames")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("plain request answered with %d", resp.StatusCode)
	}
	if hub.Len() != 0 {
		t.Fatal("plain request registered as a consumer")
	}
}

func TestServerNilLogger(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := NewHub(1, NewMetrics(reg), nil)
	ts := httptest.NewServer(NewServer(testSystem(t), nil, hub, reg, nil))
	defer ts.Close()
	// A failed upgrade is logged by the hub.
	resp, err := http.Get(ts.URL + "/frames")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("plain request answered with %d", resp.StatusCode)
	}
	var bodies Bodies
	if err := json.Unmarshal(get(t, ts.URL+"/bodies"), &bodies); err != nil {
		t.Fatal(err)
	}
}
