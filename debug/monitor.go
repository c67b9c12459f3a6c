// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/drake/canvas/listener"
	"github.com/drake/canvas/network"
)

// Enabled returns true if debug mode is active (CANVAS_DEBUG=1).
func Enabled() bool {
	return os.Getenv("CANVAS_DEBUG") == "1"
}

// Sources are the components the monitor reports on. Only Listener is
// required.
type Sources struct {
	Listener *listener.Listener
	Server   *network.Server
	Chunks   func() int // Compiled handler chunks, e.g. (*script.Engine).CachedChunks
}

// Monitor periodically logs listener and transport statistics when debug
// mode is enabled.
type Monitor struct {
	sources  Sources
	interval time.Duration
	ctx      context.Context
	logger   *slog.Logger
}

// NewMonitor creates a new monitor. If debug mode is not enabled, returns nil.
func NewMonitor(ctx context.Context, sources Sources, logger *slog.Logger) *Monitor {
	if !Enabled() {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		sources:  sources,
		interval: 5 * time.Second,
		ctx:      ctx,
		logger:   logger.With("component", "debug"),
	}
}

// Start begins the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	if m == nil {
		return
	}
	go m.run()
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("monitor started", "interval", m.interval)

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	ls := m.sources.Listener.Stats()
	attrs := []any{
		"received", ls.Received,
		"processed", ls.Processed,
		"ignored", ls.Ignored,
		"dropped", ls.Dropped,
		"timers", ls.Timers,
		"goroutines", runtime.NumGoroutine(),
	}

	if m.sources.Server != nil {
		ns := m.sources.Server.Stats()
		attrs = append(attrs,
			"conns", ns.Connections,
			"accepted", ns.Accepted,
			"read", ns.BytesRead,
			"written", ns.BytesWritten,
		)
	}
	if m.sources.Chunks != nil {
		attrs = append(attrs, "lua_chunks", m.sources.Chunks())
	}

	m.logger.Info("stats", attrs...)
}
