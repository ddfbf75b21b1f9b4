// Package input turns the raw terminal byte stream into per-frame input:
// held arrow keys, one-shot commands and SGR mouse pointer reports.
package input

import (
	"bufio"
	"time"

	"github.com/tomz197/birdtreats/internal/physics"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// maxPartial caps an unfinished escape sequence carried to the next frame.
const maxPartial = 32

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Left    bool // Held
	Right   bool // Held
	Pause   bool // Pressed this frame
	Restart bool // Pressed this frame
	// MouseCol is the 1-based terminal column of the latest pointer report
	// this frame, or 0 if the pointer did not move.
	MouseCol int
	Pressed  []byte
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
}

// Stream delivers input bytes via a channel and tracks key state for holds.
type Stream struct {
	ch      chan byte
	state   keyState
	closed  bool
	partial []byte // Unfinished escape sequence from the previous frame
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The stream closes when r returns an error.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
// A closed stream reads as Quit.
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.parse(buf, time.Now())
	if s.closed {
		in.Quit = true
	}
	return in
}

// parse interprets one frame's bytes and updates held-key timestamps.
func (s *Stream) parse(buf []byte, now time.Time) Input {
	var in Input

	if len(s.partial) > 0 {
		buf = append(append([]byte(nil), s.partial...), buf...)
		s.partial = nil
	}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && unfinishedEscape(buf[i:]) {
			s.partial = append(s.partial, buf[i:]...)
			buf = buf[:i]
			break
		}

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'C': // Right arrow
				s.state.right = now
				i += 2
				continue
			case 'D': // Left arrow
				s.state.left = now
				i += 2
				continue
			case '<':
				if col, n, ok := parseSGRMouse(buf[i:]); ok {
					in.MouseCol = col
					i += n - 1
					continue
				}
			}
		}

		switch b {
		case 'q', 'Q', '\x03':
			in.Quit = true
		case 'a', 'A', 'h', 'H':
			s.state.left = now
		case 'd', 'D', 'l', 'L':
			s.state.right = now
		case 'p', 'P':
			in.Pause = true
		case ' ', '\n', '\r', 'r', 'R':
			in.Restart = true
		}
	}

	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	in.Pressed = buf
	return in
}

// unfinishedEscape reports whether buf, starting at ESC, ends inside an
// arrow key or SGR mouse sequence.
func unfinishedEscape(buf []byte) bool {
	if len(buf) > maxPartial {
		return false
	}
	switch {
	case len(buf) == 1:
		return true
	case buf[1] != '[':
		return false
	case len(buf) == 2:
		return true
	case buf[2] != '<':
		return false
	}
	for _, c := range buf[3:] {
		if (c < '0' || c > '9') && c != ';' {
			return false
		}
	}
	return true
}

// parseSGRMouse parses an SGR mouse report "ESC [ < b ; col ; row M|m" at the
// start of buf. It returns the column and the number of bytes consumed.
func parseSGRMouse(buf []byte) (col, n int, ok bool) {
	if len(buf) < 3 || buf[0] != '\x1b' || buf[1] != '[' || buf[2] != '<' {
		return 0, 0, false
	}
	var fields [3]int
	field := 0
	digits := 0
	for i := 3; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c >= '0' && c <= '9':
			fields[field] = fields[field]*10 + int(c-'0')
			digits++
		case c == ';':
			if digits == 0 || field == 2 {
				return 0, 0, false
			}
			field++
			digits = 0
		case c == 'M' || c == 'm':
			if field != 2 || digits == 0 {
				return 0, 0, false
			}
			return fields[1], i + 1, true
		default:
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// Tracker keeps the horizontal target the bird follows, in play-field units.
type Tracker struct {
	x         float64
	halfWidth float64
	nudge     float64
}

// NewTracker creates a tracker centred on the field.
func NewTracker(halfWidth, nudge float64) *Tracker {
	return &Tracker{halfWidth: halfWidth, nudge: nudge}
}

// Update applies one frame of input. colToX maps a 1-based terminal column to
// play-field x; pointer reports win over the held keys' previous position,
// then held keys nudge from there.
func (t *Tracker) Update(in Input, colToX func(col int) float64) float64 {
	if in.MouseCol > 0 && colToX != nil {
		t.x = colToX(in.MouseCol)
	}
	if in.Left {
		t.x -= t.nudge
	}
	if in.Right {
		t.x += t.nudge
	}
	t.x = physics.Clamp(t.x, -t.halfWidth, t.halfWidth)
	return t.x
}

// X returns the current target.
func (t *Tracker) X() float64 {
	return t.x
}

// Reset centres the target.
func (t *Tracker) Reset() {
	t.x = 0
}
