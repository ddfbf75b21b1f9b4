package input

import (
	"bufio"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseSGRMouse(t *testing.T) {
	tests := []struct {
		in      string
		wantCol int
		wantN   int
		wantOK  bool
	}{
		{"\x1b[<35;42;10M", 42, 12, true},
		{"\x1b[<0;1;1m", 1, 9, true},
		{"\x1b[<35;42;10Mq", 42, 12, true},
		{"\x1b[<35;42M", 0, 0, false},
		{"\x1b[<35;42;10", 0, 0, false},
		{"\x1b[<;4;5M", 0, 0, false},
		{"\x1b[C", 0, 0, false},
	}
	for _, tt := range tests {
		col, n, ok := parseSGRMouse([]byte(tt.in))
		if col != tt.wantCol || n != tt.wantN || ok != tt.wantOK {
			t.Errorf("parseSGRMouse(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.in, col, n, ok, tt.wantCol, tt.wantN, tt.wantOK)
		}
	}
}

func TestParseKeys(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		in   string
		want Input
	}{
		{"quit", "q", Input{Quit: true}},
		{"ctrl-c", "\x03", Input{Quit: true}},
		{"pause", "p", Input{Pause: true}},
		{"restart space", " ", Input{Restart: true}},
		{"restart enter", "\r", Input{Restart: true}},
		{"left arrow", "\x1b[D", Input{Left: true}},
		{"right key", "l", Input{Right: true}},
		{"mouse then key", "\x1b[<35;7;3Mp", Input{MouseCol: 7, Pause: true}},
		{"last mouse report wins", "\x1b[<35;7;3M\x1b[<35;9;3M", Input{MouseCol: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stream{}
			got := s.parse([]byte(tt.in), now)
			got.Pressed = nil
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeSplitAcrossFrames(t *testing.T) {
	tests := []struct {
		name   string
		frames []string
		want   Input // Input of the last frame
	}{
		{"arrow after ESC", []string{"\x1b", "[D"}, Input{Left: true}},
		{"arrow after ESC [", []string{"\x1b[", "D"}, Input{Left: true}},
		{"mouse report", []string{"\x1b[<35;1", "2;4M"}, Input{MouseCol: 12}},
		{"lone ESC then key", []string{"\x1b", "p"}, Input{Pause: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now()
			s := &Stream{}
			var got Input
			for i, f := range tt.frames {
				got = s.parse([]byte(f), now)
				if i < len(tt.frames)-1 && (got.Right || got.Left || got.MouseCol != 0) {
					t.Fatalf("frame %d acted on a partial sequence: %+v", i, got)
				}
			}
			got.Pressed = nil
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("last frame = %+v, want %+v", got, tt.want)
			}
			if len(s.partial) != 0 {
				t.Fatalf("partial = %q, want empty", s.partial)
			}
		})
	}
}

func TestHeldKeyExpires(t *testing.T) {
	now := time.Now()
	s := &Stream{}

	if in := s.parse([]byte("a"), now); !in.Left {
		t.Fatal("left not held on the frame it was pressed")
	}
	if in := s.parse(nil, now.Add(10*time.Millisecond)); !in.Left {
		t.Fatal("left released before the hold duration")
	}
	if in := s.parse(nil, now.Add(keyHoldDuration)); in.Left {
		t.Fatal("left still held after the hold duration")
	}
}

func TestClosedStreamQuits(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("")))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ReadInput(s).Quit {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("closed stream never reported Quit")
}

func TestTracker(t *testing.T) {
	tr := NewTracker(5, 0.5)
	colToX := func(col int) float64 { return float64(col) - 10 }

	if x := tr.Update(Input{MouseCol: 12}, colToX); x != 2 {
		t.Fatalf("pointer: x = %v, want 2", x)
	}
	if x := tr.Update(Input{Left: true}, colToX); x != 1.5 {
		t.Fatalf("nudge left: x = %v, want 1.5", x)
	}
	if x := tr.Update(Input{MouseCol: 40}, colToX); x != 5 {
		t.Fatalf("pointer past edge: x = %v, want clamped 5", x)
	}
	if x := tr.Update(Input{Right: true}, nil); x != 5 {
		t.Fatalf("nudge at edge: x = %v, want 5", x)
	}
	tr.Reset()
	if tr.X() != 0 {
		t.Fatalf("after Reset x = %v, want 0", tr.X())
	}
}
