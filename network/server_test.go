package network

import (
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/drake/canvas/event"
	"github.com/drake/canvas/menu"
	"github.com/drake/canvas/session"
)

// recorder is a Submitter that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Submit(ev event.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

// waitEvent polls until n events have been recorded and returns the last.
func (r *recorder) waitEvent(t *testing.T, n int) event.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if evs := r.snapshot(); len(evs) >= n {
			return evs[n-1]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for event %d, have %d", n, len(r.snapshot()))
	return event.Event{}
}

// client reads everything the server writes.
type client struct {
	conn net.Conn
	mu   sync.Mutex
	out  bytes.Buffer
}

func newClient(conn net.Conn) *client {
	c := &client{conn: conn}
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			c.mu.Lock()
			c.out.Write(buf[:n])
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	return c
}

func (c *client) send(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(c.conn, line+"\r\n"); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

func (c *client) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func (c *client) waitFor(t *testing.T, text string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(c.output(), text) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q; output:\n%s", text, c.output())
}

// setupServer connects one piped client to a server whose new viewers are
// shown a 1x3 "Shop" menu.
func setupServer(t *testing.T) (*Server, *client, *recorder, *session.Registry, *menu.Menu) {
	t.Helper()

	reg := session.NewRegistry(nil)
	m, err := menu.NewBuilder(1, 3).Title("Shop").Display(reg).Build()
	if err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	srv := NewServer(Config{
		Events:    rec,
		Sessions:  reg,
		Profile:   termenv.Ascii,
		OnConnect: func(c *Conn) { m.Open(c) },
	})

	clientSide, serverSide := net.Pipe()
	done := make(chan struct{})
	go func() {
		srv.ServeConn(serverSide)
		close(done)
	}()
	c := newClient(clientSide)
	t.Cleanup(func() {
		clientSide.Close()
		<-done
	})
	return srv, c, rec, reg, m
}

func TestServerShowsMenuOnConnect(t *testing.T) {
	srv, c, _, _, m := setupServer(t)

	c.waitFor(t, "Shop (1x3)")
	if !strings.Contains(c.output(), "\r\n") {
		t.Error("expected CRLF line endings")
	}
	if !bytes.HasPrefix([]byte(c.output()), Greeting()) {
		t.Error("expected telnet greeting first")
	}

	conns := srv.Conns()
	if len(conns) != 1 || conns[0].ID() != "telnet-1" {
		t.Fatalf("unexpected conns %v", conns)
	}
	if !m.IsViewing(conns[0]) {
		t.Error("viewer should be viewing the menu")
	}
}

func TestServerSubmitsCommands(t *testing.T) {
	_, c, rec, _, m := setupServer(t)
	c.waitFor(t, "Shop (1x3)")

	c.send(t, "pickup 1")
	ev := rec.waitEvent(t, 1)
	if ev.Type != event.Click || ev.Slot != 1 || ev.Click != menu.PickUp || ev.Menu != m {
		t.Errorf("unexpected click event %+v", ev)
	}
	if ev.Viewer.ID() != "telnet-1" {
		t.Errorf("viewer = %s", ev.Viewer.ID())
	}

	c.send(t, "Number-Key 7")
	ev = rec.waitEvent(t, 2)
	if ev.Click != menu.NumberKey || ev.Slot != 7 {
		t.Errorf("unexpected click event %+v", ev)
	}

	c.send(t, "close")
	ev = rec.waitEvent(t, 3)
	if ev.Type != event.Close || ev.Menu != m {
		t.Errorf("unexpected close event %+v", ev)
	}
}

func TestServerRejectsBadCommands(t *testing.T) {
	_, c, rec, _, _ := setupServer(t)
	c.waitFor(t, "Shop (1x3)")

	c.send(t, "dance")
	c.waitFor(t, `unknown command "dance"`)
	c.send(t, "drop")
	c.waitFor(t, "usage: drop <slot>")
	c.send(t, "drop x")
	c.waitFor(t, `bad slot "x"`)
	c.send(t, "help")
	c.waitFor(t, "commands:")

	if evs := rec.snapshot(); len(evs) != 0 {
		t.Errorf("bad commands submitted events: %+v", evs)
	}
}

func TestServerLookRedraws(t *testing.T) {
	_, c, _, _, m := setupServer(t)
	c.waitFor(t, "Shop (1x3)")

	slot, _ := m.Slot(2)
	slot.SetItem("emerald")
	c.send(t, "look")
	c.waitFor(t, "emerald")
}

func TestServerQuitDisconnects(t *testing.T) {
	_, c, rec, reg, m := setupServer(t)
	c.waitFor(t, "Shop (1x3)")

	c.send(t, "quit")
	c.waitFor(t, "bye")

	ev := rec.waitEvent(t, 1)
	if ev.Type != event.Disconnect || ev.Menu != m {
		t.Errorf("unexpected disconnect event %+v", ev)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(reg.Sessions()) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("session not detached after quit")
}

func TestServerCommandsWithoutMenu(t *testing.T) {
	_, c, rec, _, m := setupServer(t)
	c.waitFor(t, "Shop (1x3)")

	// Close from the menu side, as the listener would.
	for _, v := range m.Viewers() {
		if err := m.Close(v); err != nil {
			t.Fatal(err)
		}
	}
	c.waitFor(t, "(no menu open)")

	c.send(t, "pickup 0")
	c.waitFor(t, "no menu open\r\n")
	if evs := rec.snapshot(); len(evs) != 0 {
		t.Errorf("expected no events, got %+v", evs)
	}
}

func TestServerRepeatsLastClick(t *testing.T) {
	_, c, rec, _, _ := setupServer(t)
	c.waitFor(t, "Shop (1x3)")

	c.send(t, "!!")
	c.waitFor(t, "no previous click")

	c.send(t, "swap 2")
	rec.waitEvent(t, 1)
	c.send(t, "!!")
	ev := rec.waitEvent(t, 2)
	if ev.Type != event.Click || ev.Click != menu.Swap || ev.Slot != 2 {
		t.Errorf("unexpected repeated event %+v", ev)
	}

	c.send(t, "history")
	c.waitFor(t, "swap 2\r\n")
}

// overlapConn flags deadline changes or writes made while another write is
// in flight.
type overlapConn struct {
	net.Conn
	inFlight atomic.Int32
	overlaps atomic.Int32
}

func (c *overlapConn) Write(p []byte) (int, error) {
	if c.inFlight.Add(1) > 1 {
		c.overlaps.Add(1)
	}
	defer c.inFlight.Add(-1)
	time.Sleep(50 * time.Microsecond)
	return c.Conn.Write(p)
}

func (c *overlapConn) SetWriteDeadline(t time.Time) error {
	if c.inFlight.Load() > 0 {
		c.overlaps.Add(1)
	}
	return c.Conn.SetWriteDeadline(t)
}

func TestRepliesAndFramesDoNotOverlap(t *testing.T) {
	reg := session.NewRegistry(nil)
	m, err := menu.NewBuilder(1, 3).Title("Shop").Display(reg).Build()
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(Config{
		Events:    &recorder{},
		Sessions:  reg,
		Profile:   termenv.Ascii,
		OnConnect: func(c *Conn) { m.Open(c) },
	})

	clientSide, serverSide := net.Pipe()
	wrapped := &overlapConn{Conn: serverSide}
	done := make(chan struct{})
	go func() {
		srv.ServeConn(wrapped)
		close(done)
	}()
	c := newClient(clientSide)
	defer func() {
		clientSide.Close()
		<-done
	}()
	c.waitFor(t, "Shop (1x3)")

	// Every option request is refused with a reply from the read loop while
	// each look queues a frame for the write loop.
	for i := 0; i < 50; i++ {
		req := append([]byte{IAC, WILL, byte(100 + i)}, "look\r\n"...)
		if _, err := clientSide.Write(req); err != nil {
			t.Fatal(err)
		}
	}
	c.waitFor(t, string([]byte{IAC, DONT, 149}))

	deadline := time.Now().Add(2 * time.Second)
	for strings.Count(c.output(), "Shop (1x3)") < 51 {
		if time.Now().After(deadline) {
			t.Fatalf("frames missing, got %d", strings.Count(c.output(), "Shop (1x3)"))
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := wrapped.overlaps.Load(); n != 0 {
		t.Errorf("%d writes or deadline changes overlapped another write", n)
	}
}
