package stream

import (
	"context"
	"time"

	"github.com/ChristopherRabotin/orrery"
	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"golang.org/x/time/rate"
)

// Driver ticks an orbit system at a fixed cadence and hands every refreshed
// buffer to the hub. It is the only user of the system once running.
type Driver struct {
	system  *orrery.OrbitSystem
	hub     *Hub
	limiter *rate.Limiter
	metrics *Metrics
	logger  kitlog.Logger
}

// NewDriver returns a driver ticking the system tickRate times per second.
func NewDriver(system *orrery.OrbitSystem, hub *Hub, tickRate float64, metrics *Metrics, logger kitlog.Logger) *Driver {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Driver{
		system:  system,
		hub:     hub,
		limiter: rate.NewLimiter(rate.Limit(tickRate), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// Run ticks until the context is done.
func (d *Driver) Run(ctx context.Context) error {
	level.Info(d.logger).Log("msg", "driver started", "bodies", d.system.Len(), "rate", float64(d.limiter.Limit()))
	for {
		if err := d.limiter.Wait(ctx); err != nil {
			level.Info(d.logger).Log("msg", "driver stopped", "ticks", d.system.Ticks())
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		d.Step()
	}
}

// Step ticks the system once, broadcasts the frame and returns it.
// The buffer is copied into the frame before the next tick can touch it.
func (d *Driver) Step() []byte {
	start := time.Now()
	buf := d.system.Tick()
	d.metrics.RecordTick(d.system.Len(), time.Since(start))
	frame := EncodeFrame(make([]byte, 0, headerSize+4*len(buf)), d.system.Ticks(), buf)
	d.hub.Broadcast(frame)
	return frame
}
