package session

import (
	"context"
	"testing"
	"time"

	"github.com/drake/canvas/listener"
)

// startListener runs l until the test ends.
func startListener(t *testing.T, l *listener.Listener) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(cancel)
}

// waitHandled blocks until the listener has dispatched or ignored n events.
func waitHandled(t *testing.T, l *listener.Listener, n int64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		st := l.Stats()
		if st.Processed+st.Ignored >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("listener handled %d events, want %d", st.Processed+st.Ignored, n)
		}
		time.Sleep(time.Millisecond)
	}
}
