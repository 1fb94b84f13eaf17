package main

import (
	"flag"
	"io"
	"os"

	"github.com/ChristopherRabotin/orrery"
	"github.com/go-kit/kit/log/level"
)

// This runs a scenario for a number of ticks and writes the trajectory as CSV.

var (
	scenario string
	output   string
	geometry string
	ticks    int
	debug    bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file (defaults to $"+orrery.ConfigEnv+"/orrery.toml)")
	flag.StringVar(&output, "out", "", "CSV output file (defaults to stdout)")
	flag.StringVar(&geometry, "geometry", "", "also write the derived geometry of every body to this JSON file")
	flag.IntVar(&ticks, "ticks", 1000, "number of ticks to run")
	flag.BoolVar(&debug, "debug", false, "trace every tick (really verbose)")
}

func main() {
	flag.Parse()
	logger := orrery.NewLogger(os.Stderr, debug)
	if ticks < 0 {
		level.Error(logger).Log("msg", "number of ticks cannot be negative", "ticks", ticks)
		os.Exit(1)
	}

	sc, err := orrery.LoadScenario(scenario)
	if err != nil {
		level.Error(logger).Log("msg", "could not load scenario", "err", err)
		os.Exit(1)
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

	if geometry != "" {
		f, err := os.Create(geometry)
		if err != nil {
			level.Error(logger).Log("msg", "could not create geometry file", "err", err)
			os.Exit(1)
		}
		err = orrery.WriteGeometry(f, system, sc.Names)
		f.Close()
		if err != nil {
			level.Error(logger).Log("msg", "could not write geometry", "err", err)
			os.Exit(1)
		}
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			level.Error(logger).Log("msg", "could not create output", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := orrery.Record(system, ticks, orrery.NewTrajectoryWriter(w, sc.Export.Epoch, sc.Export.Frame)); err != nil {
		level.Error(logger).Log("msg", "could not write trajectory", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "done", "bodies", system.Len(), "ticks", system.Ticks())
}
