// Package network serves menus to telnet clients. Every connection is a
// viewer: it types click commands and is sent the grid of the menu it has
// open after every change.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muesli/termenv"

	"github.com/drake/canvas/session"
)

// Config holds server configuration.
type Config struct {
	Events   Submitter         // Receives click, close and disconnect events
	Sessions *session.Registry // Display every connection is attached to
	Logger   *slog.Logger

	// Profile is the color profile grids are drawn with. The zero value is
	// termenv.TrueColor.
	Profile termenv.Profile

	// OnConnect runs once a connection is attached, before its first input
	// is read. Typically it opens the root menu for the new viewer.
	OnConnect func(*Conn)
}

// Stats holds server counters.
type Stats struct {
	Connections  int
	Accepted     uint64
	BytesRead    uint64
	BytesWritten uint64
}

// Server accepts telnet connections.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]*Conn

	accepted atomic.Uint64
	wg       sync.WaitGroup
}

// NewServer creates a Server.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		conns:  make(map[string]*Conn),
	}
}

// ListenAndServe listens on the TCP address addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes every
// connection and waits for them to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("telnet server listening", "addr", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeAll()
	})
	defer stop()

	for {
		nc, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		if tcp, ok := nc.(*net.TCPConn); ok {
			tcp.SetKeepAlive(true)
			tcp.SetKeepAlivePeriod(30 * time.Second)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(nc)
		}()
	}
}

// ServeConn runs one already established connection until it closes.
func (s *Server) ServeConn(nc net.Conn) {
	id := fmt.Sprintf("telnet-%d", s.accepted.Add(1))
	c := newConn(id, nc, s.cfg.Events, s.cfg.Sessions, s.cfg.Profile, s.logger)

	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
	}()

	s.logger.Info("viewer connected", "viewer", id, "remote", nc.RemoteAddr().String())
	s.cfg.Sessions.Attach(c, c)
	c.serve(s.cfg.OnConnect)
	s.logger.Info("viewer disconnected", "viewer", id)
}

// Conns returns the live connections ordered by ID.
func (s *Server) Conns() []*Conn {
	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	sort.Slice(conns, func(i, j int) bool { return conns[i].id < conns[j].id })
	return conns
}

// Stats sums the counters of every live connection.
func (s *Server) Stats() Stats {
	st := Stats{Accepted: s.accepted.Load()}
	for _, c := range s.Conns() {
		cs := c.Stats()
		st.Connections++
		st.BytesRead += cs.BytesRead
		st.BytesWritten += cs.BytesWritten
	}
	return st
}

func (s *Server) closeAll() {
	for _, c := range s.Conns() {
		c.Close()
	}
}
