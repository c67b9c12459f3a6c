package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/muesli/termenv"

	"github.com/drake/canvas/config"
	"github.com/drake/canvas/debug"
	"github.com/drake/canvas/listener"
	"github.com/drake/canvas/network"
	"github.com/drake/canvas/script"
	"github.com/drake/canvas/session"
	"github.com/drake/canvas/ui"
)

func main() {
	listen := flag.String("listen", ":4000", "telnet listen address (empty disables)")
	local := flag.Bool("local", false, "run the terminal UI for a local viewer")
	scriptPath := flag.String("script", "", "Lua handler script (default: "+config.InitFile()+" when present)")
	idle := flag.Duration("idle", 30*time.Second, "warn when no events arrive this long after start (0 disables)")
	flag.Parse()

	if err := run(*listen, *local, *scriptPath, *idle); err != nil {
		fmt.Fprintln(os.Stderr, "canvas:", err)
		os.Exit(1)
	}
}

func run(listen string, local bool, scriptPath string, idle time.Duration) error {
	if listen == "" && !local {
		return fmt.Errorf("nothing to serve: set -listen or -local")
	}

	// The terminal UI owns stdout, so logs go to a file in local mode.
	var logOut io.Writer = os.Stderr
	if local {
		f, err := os.OpenFile(filepath.Join(os.TempDir(), "canvas.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	level := slog.LevelInfo
	if debug.Enabled() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := script.NewEngine(logger)
	if err := engine.Init(); err != nil {
		return err
	}
	defer engine.Close()
	if path := config.ScriptFile(scriptPath); path != "" {
		if err := engine.DoFile(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		logger.Info("loaded handler script", "path", path)
	}

	registry := session.NewRegistry(logger)
	l := listener.New(listener.Config{
		Applier:     registry,
		Display:     registry,
		Logger:      logger,
		IdleWarning: idle,
	})

	d, err := buildDemo(registry, engine, logger)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := l.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("listener stopped", "err", err)
		}
	}()

	var srv *network.Server
	if listen != "" {
		srv = network.NewServer(network.Config{
			Events:    l,
			Sessions:  registry,
			Logger:    logger,
			Profile:   termenv.ANSI256,
			OnConnect: func(c *network.Conn) { d.shop.Open(c) },
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx, listen); err != nil {
				logger.Error("telnet server stopped", "err", err)
				stop()
			}
		}()
	}

	debug.NewMonitor(ctx, debug.Sources{
		Listener: l,
		Server:   srv,
		Chunks:   engine.CachedChunks,
	}, logger).Start()

	if local {
		term := ui.NewTerminal("local", l)
		registry.Attach(term, term)
		d.shop.Open(term)

		go func() {
			<-ctx.Done()
			term.Quit()
		}()
		err := term.Run()
		stop()
		wg.Wait()
		return err
	}

	<-ctx.Done()
	wg.Wait()
	return nil
}
