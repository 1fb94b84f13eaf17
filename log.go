package orrery

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// NewLogger returns a logfmt logger writing to w. Debug entries, which
// include the integrator traces, are only kept when debug is set.
func NewLogger(w io.Writer, debug bool) kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	klog = kitlog.With(klog, "ts", kitlog.DefaultTimestampUTC)
	if debug {
		return level.NewFilter(klog, level.AllowDebug())
	}
	return level.NewFilter(klog, level.AllowInfo())
}
