package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChristopherRabotin/orrery"
	"github.com/ChristopherRabotin/orrery/stream"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

// This serves the frames of a scenario to websocket renderers.

var (
	scenario string
	address  string
	debug    bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file (defaults to $"+orrery.ConfigEnv+"/orrery.toml)")
	flag.StringVar(&address, "addr", "", "listen address (overrides stream.address)")
	flag.BoolVar(&debug, "debug", false, "trace every tick (really verbose)")
}

func main() {
	flag.Parse()
	logger := orrery.NewLogger(os.Stdout, debug)

	sc, err := orrery.LoadScenario(scenario)
	if err != nil {
		level.Error(logger).Log("msg", "could not load scenario", "err", err)
		os.Exit(1)
	}
	if address != "" {
		sc.Stream.Address = address
	}
	var traces = logger
	if !debug {
		traces = nil
	}
	system, err := sc.System(traces)
	if err != nil {
		level.Error(logger).Log("msg", "invalid scenario", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	metrics := stream.NewMetrics(reg)
	hub := stream.NewHub(sc.Stream.Buffer, metrics, logger)
	server := stream.NewServer(system, sc.Names, hub, reg, logger)
	driver := stream.NewDriver(system, hub, sc.Stream.Rate, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              sc.Stream.Address,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", sc.Stream.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			level.Error(logger).Log("msg", "server failed", "err", err)
			stop()
		}
	}()

	driver.Run(ctx)
	hub.Close()
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		level.Error(logger).Log("msg", "shutdown failed", "err", err)
	}
}
