package network

// historyLimit is how many click commands a connection remembers.
const historyLimit = 20

// history keeps the click commands of one connection so they can be
// listed and repeated. Only the read loop touches it.
type history struct {
	lines []string
	limit int
}

func newHistory(limit int) *history {
	return &history{lines: make([]string, 0, limit), limit: limit}
}

// add records cmd, skipping a repeat of the last entry.
func (h *history) add(cmd string) {
	if cmd == "" {
		return
	}
	if n := len(h.lines); n > 0 && h.lines[n-1] == cmd {
		return
	}
	h.lines = append(h.lines, cmd)
	if len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
	}
}

// last returns the most recent command.
func (h *history) last() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	return h.lines[len(h.lines)-1], true
}

// list returns a copy, oldest first.
func (h *history) list() []string {
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}
