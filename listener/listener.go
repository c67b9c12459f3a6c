// Package listener routes raw transport events to menus. It is the one piece
// that must be running for clicks to have any effect: transports submit
// events, the listener dispatches them on a single goroutine and hands every
// finalized outcome back to the transport.
package listener

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drake/canvas/event"
	"github.com/drake/canvas/internal/buffer"
	"github.com/drake/canvas/menu"
	"github.com/drake/canvas/timer"
)

// Applier realizes a click outcome on the transport's own container
// (content, cursor, screen) before the next event is dispatched.
type Applier interface {
	Apply(v menu.Viewer, info *menu.ClickInformation)
}

// Config holds listener configuration.
type Config struct {
	Applier Applier      // Receives every finalized click; may be nil
	Display menu.Display // Resolves events that carry no menu; may be nil
	Logger  *slog.Logger

	// IdleWarning logs a warning every IdleWarning while no event at all has
	// been submitted since Run started. Zero disables the check.
	IdleWarning time.Duration

	// QueueLimit bounds the pending event queue. The oldest event is dropped
	// past it. Defaults to 10000.
	QueueLimit int
}

// Stats is a snapshot of listener counters.
type Stats struct {
	Received  int64 // Submitted by transports
	Processed int64 // Dispatched to a menu
	Ignored   int64 // Stale or foreign events
	Dropped   int64 // Lost to the queue limit
	Timers    int
}

// Listener serializes raw events and dispatches them to menus.
type Listener struct {
	applier Applier
	display menu.Display
	logger  *slog.Logger
	idle    time.Duration

	in  chan<- event.Event
	out <-chan event.Event

	timer       *timer.Service
	timerEvents chan timer.Event
	idleTimer   int

	received  atomic.Int64
	processed atomic.Int64
	ignored   atomic.Int64
	dropped   atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Listener. It is passive until Run is called.
func New(cfg Config) *Listener {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = 10000
	}

	timerEvents := make(chan timer.Event, 16)
	l := &Listener{
		applier:     cfg.Applier,
		display:     cfg.Display,
		logger:      cfg.Logger,
		idle:        cfg.IdleWarning,
		timer:       timer.NewService(timerEvents),
		timerEvents: timerEvents,
		done:        make(chan struct{}),
	}
	l.in, l.out = buffer.Unbounded(l.done, 64, cfg.QueueLimit, func(ev event.Event) {
		l.dropped.Add(1)
		l.logger.Warn("event queue full, dropping oldest event", "type", ev.Type.String(), "limit", cfg.QueueLimit)
	})
	return l
}

// Submit queues an event for dispatch. It never blocks on dispatch itself,
// so transports can call it from their read loops. Events submitted after
// Stop are discarded.
func (l *Listener) Submit(ev event.Event) {
	l.received.Add(1)
	select {
	case <-l.done:
	case l.in <- ev:
	}
}

// Run dispatches events until ctx is cancelled or Stop is called.
func (l *Listener) Run(ctx context.Context) error {
	defer l.timer.CancelAll()

	if l.idle > 0 {
		l.idleTimer = l.timer.Every("idle", l.idle)
	}

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case ev := <-l.out:
			l.handle(ev)
		case te := <-l.timerEvents:
			l.onTimer(te)
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (l *Listener) Stop() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Stats returns current counters.
func (l *Listener) Stats() Stats {
	return Stats{
		Received:  l.received.Load(),
		Processed: l.processed.Load(),
		Ignored:   l.ignored.Load(),
		Dropped:   l.dropped.Load(),
		Timers:    l.timer.Active(),
	}
}

// handle runs one event to completion on the listener goroutine.
func (l *Listener) handle(ev event.Event) {
	l.stopIdleWatch()

	if ev.Viewer == nil {
		l.ignore(ev, "event without viewer")
		return
	}

	switch ev.Type {
	case event.Click:
		l.click(ev)
	case event.Close:
		l.close(ev)
	case event.Disconnect:
		l.disconnect(ev)
	default:
		l.ignore(ev, "unknown event type")
	}
}

func (l *Listener) click(ev event.Event) {
	m := l.resolve(ev)
	if m == nil || !m.IsViewing(ev.Viewer) {
		l.ignore(ev, "viewer is not viewing menu")
		return
	}

	info, ok := m.Click(ev.Viewer, ev.Slot, ev.Click)
	if !ok {
		l.ignore(ev, "slot outside menu")
		return
	}
	if l.applier != nil {
		l.applier.Apply(ev.Viewer, info)
	}
	l.processed.Add(1)
}

// close closes the menu and falls back to its parent, if any.
func (l *Listener) close(ev event.Event) {
	m := l.resolve(ev)
	if m == nil {
		l.ignore(ev, "no menu to close")
		return
	}
	if err := m.Close(ev.Viewer); err != nil {
		l.ignore(ev, err.Error())
		return
	}
	if parent, ok := m.Parent(); ok {
		parent.Open(ev.Viewer)
	}
	l.processed.Add(1)
}

// disconnect closes whatever the viewer had open without falling back.
func (l *Listener) disconnect(ev event.Event) {
	m := l.resolve(ev)
	if m == nil {
		l.processed.Add(1)
		return
	}
	if err := m.Close(ev.Viewer); err != nil {
		l.ignore(ev, err.Error())
		return
	}
	l.processed.Add(1)
}

// resolve returns the event's menu, asking the display when the transport
// did not say.
func (l *Listener) resolve(ev event.Event) *menu.Menu {
	if ev.Menu != nil {
		return ev.Menu
	}
	if l.display == nil {
		return nil
	}
	m, _ := l.display.Current(ev.Viewer)
	return m
}

func (l *Listener) ignore(ev event.Event, reason string) {
	l.ignored.Add(1)
	attrs := []any{"type", ev.Type.String(), "reason", reason}
	if ev.Viewer != nil {
		attrs = append(attrs, "viewer", ev.Viewer.ID())
	}
	l.logger.Debug("ignoring event", attrs...)
}

func (l *Listener) onTimer(te timer.Event) {
	if te.ID != l.idleTimer {
		return
	}
	if l.received.Load() > 0 {
		l.stopIdleWatch()
		return
	}
	l.logger.Warn("no interaction events received; menus will not react to clicks until a transport submits events",
		"waited", time.Duration(te.Count)*l.idle)
}

// stopIdleWatch cancels the idle warning once traffic has been seen.
func (l *Listener) stopIdleWatch() {
	if l.idleTimer == 0 {
		return
	}
	l.timer.Cancel(l.idleTimer)
	l.idleTimer = 0
}
