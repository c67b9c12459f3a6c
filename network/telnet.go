package network

import (
	"bytes"
	"encoding/binary"
)

// Telnet command constants (RFC 854)
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Subnegotiation Begin
	GA   byte = 249 // Go Ahead
	EL   byte = 248 // Erase Line
	EC   byte = 247 // Erase Character
	AYT  byte = 246 // Are You There
	AO   byte = 245 // Abort Output
	IP   byte = 244 // Interrupt Process
	BRK  byte = 243 // Break
	DM   byte = 242 // Data Mark
	NOP  byte = 241 // No Operation
	SE   byte = 240 // Subnegotiation End
)

// Telnet option codes
const (
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptNAWS            byte = 31 // Negotiate About Window Size
)

// maxLine bounds a single input line; longer input is cut into pieces.
const maxLine = 1024

// Greeting is what the server sends right after accepting a connection:
// it offers to suppress go-ahead and asks for the window size.
func Greeting() []byte {
	return []byte{IAC, WILL, OptSuppressGoAhead, IAC, DO, OptNAWS}
}

// TelnetBuffer is the server-side input state machine of one connection.
// It strips protocol sequences, answers option requests, tracks the
// window width reported through NAWS and splits the rest into lines.
// Sequences split across reads are kept until the rest arrives.
type TelnetBuffer struct {
	pending []byte // Incomplete IAC sequence from the previous read
	line    bytes.Buffer
	lastCR  bool

	width int
}

// NewTelnetBuffer creates a buffer for a freshly accepted connection.
func NewTelnetBuffer() *TelnetBuffer {
	return &TelnetBuffer{}
}

// Width returns the client's window width, or 0 if it never reported one.
func (tb *TelnetBuffer) Width() int {
	return tb.width
}

// ProcessBytes consumes raw connection data. It returns the complete lines
// found and any negotiation replies to write back.
func (tb *TelnetBuffer) ProcessBytes(data []byte) (lines []string, replies []byte) {
	if len(tb.pending) > 0 {
		data = append(tb.pending, data...)
		tb.pending = nil
	}

	i := 0
	for i < len(data) {
		b := data[i]
		if b != IAC {
			if line, ok := tb.dataByte(b); ok {
				lines = append(lines, line)
			}
			i++
			continue
		}

		n, reply := tb.command(data[i:])
		if n == 0 {
			tb.pending = append([]byte(nil), data[i:]...)
			break
		}
		replies = append(replies, reply...)
		i += n
	}
	return lines, replies
}

// dataByte adds one plain byte to the current line, reporting a finished
// line when b ends one. Lines end in \r\n, \n, \r\x00 or a lone \r.
func (tb *TelnetBuffer) dataByte(b byte) (string, bool) {
	if tb.lastCR {
		tb.lastCR = false
		if b == '\n' || b == 0 {
			return "", false
		}
	}

	switch b {
	case '\r':
		tb.lastCR = true
		return tb.flush(), true
	case '\n':
		return tb.flush(), true
	case '\b', 0x7f:
		if n := tb.line.Len(); n > 0 {
			tb.line.Truncate(n - 1)
		}
	default:
		if b < 0x20 && b != '\t' {
			return "", false
		}
		tb.line.WriteByte(b)
		if tb.line.Len() >= maxLine {
			return tb.flush(), true
		}
	}
	return "", false
}

func (tb *TelnetBuffer) flush() string {
	line := tb.line.String()
	tb.line.Reset()
	return line
}

// command handles the IAC sequence at the start of data. It returns the
// number of bytes consumed, 0 when the sequence is incomplete.
func (tb *TelnetBuffer) command(data []byte) (int, []byte) {
	if len(data) < 2 {
		return 0, nil
	}

	switch cmd := data[1]; cmd {
	case IAC:
		// Escaped 255 byte; not valid in a command line, drop it
		return 2, nil

	case WILL, WONT, DO, DONT:
		if len(data) < 3 {
			return 0, nil
		}
		return 3, negotiate(cmd, data[2])

	case SB:
		end := subnegEnd(data)
		if end == -1 {
			return 0, nil
		}
		tb.subnegotiation(unescape(data[2 : end-2]))
		return end, nil

	case EC:
		if n := tb.line.Len(); n > 0 {
			tb.line.Truncate(n - 1)
		}
		return 2, nil

	case EL:
		tb.line.Reset()
		return 2, nil

	default:
		// GA, NOP, DM, BRK, IP, AO, AYT and unknown commands
		return 2, nil
	}
}

// negotiate answers a client option request. Only the options the server
// offered in Greeting are accepted; everything else is refused. Refusals
// and acknowledgements of options already off get no reply.
func negotiate(cmd, opt byte) []byte {
	switch cmd {
	case WILL:
		if opt == OptNAWS {
			return nil
		}
		return []byte{IAC, DONT, opt}
	case DO:
		if opt == OptSuppressGoAhead {
			return nil
		}
		return []byte{IAC, WONT, opt}
	}
	return nil
}

// subnegotiation applies a payload of the form <option> <data...>.
func (tb *TelnetBuffer) subnegotiation(payload []byte) {
	if len(payload) == 5 && payload[0] == OptNAWS {
		tb.width = int(binary.BigEndian.Uint16(payload[1:3]))
	}
}

// subnegEnd returns the index just past IAC SE, or -1 if incomplete.
func subnegEnd(data []byte) int {
	for i := 2; i < len(data)-1; i++ {
		if data[i] != IAC {
			continue
		}
		if data[i+1] == SE {
			return i + 2
		}
		i++ // Skip escaped IAC IAC
	}
	return -1
}

func unescape(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte{IAC, IAC}, []byte{IAC})
}
