package network

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muesli/termenv"

	"github.com/drake/canvas/event"
	"github.com/drake/canvas/menu"
	"github.com/drake/canvas/render"
	"github.com/drake/canvas/session"
)

// Compile-time interface checks
var (
	_ menu.Viewer    = (*Conn)(nil)
	_ session.Screen = (*Conn)(nil)
)

// Submitter accepts raw events; *listener.Listener satisfies it.
type Submitter interface {
	Submit(ev event.Event)
}

// ConnStats holds counters of one connection.
type ConnStats struct {
	BytesRead    uint64
	BytesWritten uint64
	Commands     uint64
	Dropped      uint64 // Frames lost to a full send queue
	LastReadTime time.Time
}

const helpText = "commands: <click type> <slot> (pickup 4, swap 0, ...), !! (repeat), history, close, look, help, quit"

// Conn is one telnet viewer. It turns input lines into listener events and
// draws menus it is shown.
type Conn struct {
	id       string
	conn     net.Conn
	telnet   *TelnetBuffer
	events   Submitter
	sessions *session.Registry
	logger   *slog.Logger
	history  *history

	renderMu sync.Mutex
	grid     *render.Grid

	writeMu   sync.Mutex // Serializes writes and their deadlines
	sendQueue chan string
	done      chan struct{}
	closeOnce sync.Once

	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
	commands     atomic.Uint64
	dropped      atomic.Uint64
	lastReadTime atomic.Int64 // Unix nano
}

func newConn(id string, nc net.Conn, events Submitter, sessions *session.Registry, profile termenv.Profile, logger *slog.Logger) *Conn {
	c := &Conn{
		id:        id,
		conn:      nc,
		telnet:    NewTelnetBuffer(),
		events:    events,
		sessions:  sessions,
		logger:    logger.With("viewer", id),
		history:   newHistory(historyLimit),
		sendQueue: make(chan string, 64),
		done:      make(chan struct{}),
	}
	c.grid = render.ForWriter(nc, profile)
	return c
}

// ID implements menu.Viewer.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Stats returns the connection counters.
func (c *Conn) Stats() ConnStats {
	var last time.Time
	if ns := c.lastReadTime.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return ConnStats{
		BytesRead:    c.bytesRead.Load(),
		BytesWritten: c.bytesWritten.Load(),
		Commands:     c.commands.Load(),
		Dropped:      c.dropped.Load(),
		LastReadTime: last,
	}
}

// Render implements session.Screen.
func (c *Conn) Render(m *menu.Menu, cursor menu.Item) {
	c.renderMu.Lock()
	if w := c.telnet.Width(); w > 0 {
		c.grid.SetCellWidth(cellWidthFor(w, m.Dimensions().Columns))
	}
	frame := c.grid.Render(m, render.Options{Selected: -1, Cursor: cursor})
	c.renderMu.Unlock()

	c.send(frame)
}

// Blank implements session.Screen.
func (c *Conn) Blank() {
	c.send("(no menu open)")
}

// Close drops the connection. The read loop reports the disconnect.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// cellWidthFor fits columns cells of a window width wide terminal.
// Every cell takes two border columns besides its label.
func cellWidthFor(width, columns int) int {
	if columns <= 0 {
		return render.DefaultCellWidth
	}
	w := width/columns - 2
	if w > render.DefaultCellWidth {
		w = render.DefaultCellWidth
	}
	return w
}

// send queues text for the write loop, converting line endings to CRLF.
// A stalled client loses frames rather than blocking the listener.
func (c *Conn) send(text string) {
	text = strings.ReplaceAll(text, "\n", "\r\n") + "\r\n"
	select {
	case <-c.done:
	case c.sendQueue <- text:
	default:
		c.dropped.Add(1)
		c.logger.Warn("send queue full, dropping frame")
	}
}

// serve runs the connection until it is closed. It blocks.
func (c *Conn) serve(onConnect func(*Conn)) {
	go c.writeLoop()
	c.write(Greeting())
	if onConnect != nil {
		onConnect(c)
	}
	c.readLoop()
}

// readLoop reads input until the connection fails, then reports the viewer
// gone and forgets its session.
func (c *Conn) readLoop() {
	defer c.shutdown()

	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			c.logger.Debug("connection closed", "err", err)
			c.disconnect()
			return
		}

		c.bytesRead.Add(uint64(n))
		c.lastReadTime.Store(time.Now().UnixNano())

		c.renderMu.Lock()
		lines, replies := c.telnet.ProcessBytes(buf[:n])
		c.renderMu.Unlock()

		if len(replies) > 0 {
			c.write(replies)
		}
		for _, line := range lines {
			if !c.command(strings.TrimSpace(line)) {
				c.conn.Close()
			}
		}
	}
}

// writeLoop sends queued frames.
func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case text := <-c.sendQueue:
			if !c.write([]byte(text)) {
				c.conn.Close()
				return
			}
		}
	}
}

// write sends data synchronously. The read loop (negotiation replies, the
// farewell) and the write loop both use it.
func (c *Conn) write(data []byte) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	n, err := c.conn.Write(data)
	c.conn.SetWriteDeadline(time.Time{})
	c.bytesWritten.Add(uint64(n))
	return err == nil
}

func (c *Conn) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// disconnect tells the listener the viewer left, naming the menu it had
// open so the close still happens after the session is forgotten.
func (c *Conn) disconnect() {
	ev := event.NewDisconnect(c)
	if m, ok := c.sessions.Current(c); ok {
		ev.Menu = m
	}
	c.events.Submit(ev)
	c.sessions.Detach(c)
}

// command runs one input line. It returns false when the viewer quits.
func (c *Conn) command(line string) bool {
	if line == "" {
		return true
	}
	c.commands.Add(1)

	fields := strings.Fields(line)
	switch verb := strings.ToLower(fields[0]); verb {
	case "quit", "exit":
		c.write([]byte("bye\r\n"))
		return false

	case "help", "?":
		c.send(helpText)

	case "look", "l":
		c.look()

	case "!!":
		last, ok := c.history.last()
		if !ok {
			c.send("no previous click")
			return true
		}
		return c.command(last)

	case "history":
		lines := c.history.list()
		if len(lines) == 0 {
			c.send("no clicks yet")
			return true
		}
		c.send(strings.Join(lines, "\n"))

	case "close":
		m, ok := c.sessions.Current(c)
		if !ok {
			c.send("no menu open")
			return true
		}
		c.events.Submit(event.NewClose(c, m))

	default:
		t, err := menu.ParseClickType(verb)
		if err != nil {
			c.send(fmt.Sprintf("unknown command %q; type help", verb))
			return true
		}
		if len(fields) != 2 {
			c.send(fmt.Sprintf("usage: %s <slot>", t))
			return true
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil {
			c.send(fmt.Sprintf("bad slot %q", fields[1]))
			return true
		}
		m, ok := c.sessions.Current(c)
		if !ok {
			c.send("no menu open")
			return true
		}
		c.history.add(fmt.Sprintf("%s %d", t, slot))
		c.events.Submit(event.NewClick(c, m, slot, t))
	}
	return true
}

func (c *Conn) look() {
	s, ok := c.sessions.Lookup(c)
	if !ok {
		c.Blank()
		return
	}
	m, ok := s.Current()
	if !ok {
		c.Blank()
		return
	}
	c.Render(m, s.Cursor())
}
