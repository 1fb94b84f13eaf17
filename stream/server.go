package stream

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ChristopherRabotin/orrery"
	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bodies is the initial data a renderer needs before the first frame.
type Bodies struct {
	Stride   int                   `json:"stride"`
	Records  []float32             `json:"records"`
	Geometry []orrery.BodyGeometry `json:"geometry"`
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Server exposes the hub and the initial system data over HTTP.
type Server struct {
	mux    *http.ServeMux
	bodies Bodies
	logger kitlog.Logger
}

// NewServer snapshots the initial data of the system; it must be called
// before the driver starts ticking.
func NewServer(system *orrery.OrbitSystem, names []string, hub *Hub, gatherer prometheus.Gatherer, logger kitlog.Logger) *Server {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	initial := make([]float32, len(system.Buffer()))
	copy(initial, system.Buffer())
	s := &Server{
		mux: http.NewServeMux(),
		bodies: Bodies{
			Stride:   orrery.RecordSize,
			Records:  initial,
			Geometry: orrery.Geometry(system, names),
		},
		logger: logger,
	}
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.HandleFunc("/bodies", s.bodiesHandler)
	s.mux.Handle("/frames", hub)
	s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, healthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) bodiesHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.bodies)
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		level.Error(s.logger).Log("msg", "failed to write response", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
