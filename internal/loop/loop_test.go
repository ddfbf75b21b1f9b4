package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/game"
	"github.com/tomz197/birdtreats/internal/input"
	"github.com/tomz197/birdtreats/internal/object"
)

type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func newTestClient(t *testing.T, tuning config.Tuning, opts Options) (*Client, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts.Tuning = tuning
	opts.Profile = termenv.Ascii
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = fixedSize(100, 40)
	}
	if opts.Rand == nil {
		opts.Rand = constRand(0.99)
	}
	return newClient(&out, opts), &out
}

// frame runs one Input → Update → Draw cycle and returns what was written.
func frame(t *testing.T, c *Client, out *bytes.Buffer, in input.Input, now time.Time) string {
	t.Helper()
	out.Reset()
	c.processInput(in, now)
	c.updateScreen()
	c.update(now, config.TargetFrameTime)
	if err := c.drawFrame(); err != nil {
		t.Fatalf("drawFrame: %v", err)
	}
	return out.String()
}

var epoch = time.Unix(1_700_000_000, 0)

func TestClientTitleStartsGame(t *testing.T) {
	c, out := newTestClient(t, config.DefaultTuning(), Options{})

	got := frame(t, c, out, input.Input{}, epoch)
	if c.state.Phase != PhaseTitle || !strings.Contains(got, "B I R D   T R E A T S") {
		t.Fatalf("phase = %v, want title screen drawn", c.state.Phase)
	}

	got = frame(t, c, out, input.Input{Restart: true, Pressed: []byte(" ")}, epoch)
	if c.state.Phase != PhasePlaying || c.session == nil {
		t.Fatalf("phase = %v, want playing", c.state.Phase)
	}
	if !strings.Contains(got, "Score: 0") || !strings.Contains(got, "Level 1") {
		t.Fatalf("HUD missing from frame output")
	}
}

func TestClientPauseToggles(t *testing.T) {
	c, out := newTestClient(t, config.DefaultTuning(), Options{})
	c.startGame(epoch)

	got := frame(t, c, out, input.Input{Pause: true, Pressed: []byte("p")}, epoch)
	if c.session.State() != game.StatePaused {
		t.Fatalf("state = %v, want paused", c.session.State())
	}
	if !strings.Contains(got, "PAUSED") {
		t.Fatal("pause panel not drawn")
	}

	frame(t, c, out, input.Input{Pause: true, Pressed: []byte("p")}, epoch.Add(time.Second))
	if c.session.State() != game.StatePlaying {
		t.Fatalf("state = %v, want playing", c.session.State())
	}
}

func TestClientGameOverAndPlayAgain(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.FallSpeed = 1
	c, out := newTestClient(t, tuning, Options{})
	c.startGame(epoch)

	now := epoch
	var got string
	for i := 0; i < 200 && c.session.State() != game.StateGameOver; i++ {
		now = now.Add(time.Second)
		got = frame(t, c, out, input.Input{}, now)
	}
	if c.session.State() != game.StateGameOver {
		t.Fatal("game never ended")
	}
	got = frame(t, c, out, input.Input{}, now.Add(time.Second))
	if !c.effects.GameOver || !strings.Contains(got, "G A M E   O V E R") || !strings.Contains(got, "Final score: 0") {
		t.Fatalf("game over panel not drawn (GameOver=%v)", c.effects.GameOver)
	}

	frame(t, c, out, input.Input{Restart: true, Pressed: []byte(" ")}, now.Add(2*time.Second))
	if c.session.State() != game.StatePlaying {
		t.Fatalf("state after Play Again = %v, want playing", c.session.State())
	}
	if c.effects.GameOver || c.effects.Lives != tuning.InitialLives {
		t.Fatalf("effects not reset: %+v", c.effects)
	}
}

func TestClientExtraSinkReceivesEvents(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.FallSpeed = 1
	sink := &countingSink{}
	c, out := newTestClient(t, tuning, Options{Sink: sink})
	c.startGame(epoch)

	now := epoch
	for i := 0; i < 5; i++ {
		now = now.Add(time.Second)
		frame(t, c, out, input.Input{}, now)
	}
	if sink.reports != 5 {
		t.Fatalf("extra sink got %d reports, want 5", sink.reports)
	}
}

type countingSink struct {
	game.NopSink
	reports int
}

func (s *countingSink) ReportState(score, lives, level int) { s.reports++ }

func TestClientInactivity(t *testing.T) {
	c, _ := newTestClient(t, config.DefaultTuning(), Options{Inactivity: true})
	c.lastInput = epoch

	c.processInput(input.Input{}, epoch.Add(91*time.Second))
	if !c.state.isInactive || !c.state.Running {
		t.Fatal("want inactivity warning after 91s")
	}

	c.processInput(input.Input{Pressed: []byte("x")}, epoch.Add(95*time.Second))
	if c.state.isInactive {
		t.Fatal("warning not cleared by input")
	}

	c.processInput(input.Input{}, epoch.Add(95*time.Second+121*time.Second))
	if c.state.Running {
		t.Fatal("want disconnect after 121s idle")
	}
}

func TestClientWithoutInactivityNeverDisconnects(t *testing.T) {
	c, _ := newTestClient(t, config.DefaultTuning(), Options{})
	c.lastInput = epoch

	c.processInput(input.Input{}, epoch.Add(time.Hour))
	if !c.state.Running || c.state.isInactive {
		t.Fatal("idle local player was warned or disconnected")
	}
}

func TestClientShutdownCountdown(t *testing.T) {
	c, out := newTestClient(t, config.DefaultTuning(), Options{})
	c.startGame(epoch)
	c.beginShutdown()

	got := frame(t, c, out, input.Input{}, epoch)
	if !strings.Contains(got, "SERVER SHUTTING DOWN") {
		t.Fatal("shutdown notice not drawn")
	}

	c.update(epoch, time.Duration(ShutdownDisplaySeconds*float64(time.Second)))
	if c.state.Running {
		t.Fatal("client still running after the shutdown notice")
	}
}

func TestClientRunEndsAfterShutdownNotice(t *testing.T) {
	c, _ := newTestClient(t, config.DefaultTuning(), Options{})
	pr, pw := io.Pipe()
	defer pw.Close()
	c.inputStream = input.StartStream(bufio.NewReader(pr))
	c.state.Phase = PhaseShutdown
	c.state.shutdownTimer = 0.05

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestClientResizeRedraws(t *testing.T) {
	w, h := 100, 40
	c, out := newTestClient(t, config.DefaultTuning(), Options{
		TermSizeFunc: func() (int, int, error) { return w, h, nil },
	})
	frame(t, c, out, input.Input{}, epoch)

	w, h = 200, 60
	got := frame(t, c, out, input.Input{}, epoch)
	if c.canvas.TerminalWidth() != config.MaxTermWidth || c.canvas.OffsetCol() != 20 {
		t.Fatalf("canvas %d cols at offset %d, want %d at 20",
			c.canvas.TerminalWidth(), c.canvas.OffsetCol(), config.MaxTermWidth)
	}
	if !strings.Contains(got, "┌") {
		t.Fatal("border not drawn around the centred field")
	}
}

func TestProjectorMapsFieldToCanvas(t *testing.T) {
	tuning := config.DefaultTuning()
	p := newProjector(tuning)

	tl := p.toLogical(object.Vec{X: -tuning.HalfWidth, Y: tuning.SpawnY + viewMargin})
	if tl.X != 0 || tl.Y != 0 {
		t.Fatalf("top-left = %+v, want origin", tl)
	}
	br := p.toLogical(object.Vec{X: tuning.HalfWidth, Y: tuning.MissY - viewMargin})
	if br.X != config.ViewWidth || br.Y != config.ViewHeight {
		t.Fatalf("bottom-right = %+v, want view size", br)
	}
	if x := p.fieldX(p.toLogical(object.Vec{X: 2.5}).X); math.Abs(x-2.5) > 1e-9 {
		t.Fatalf("fieldX round trip = %v, want 2.5", x)
	}
}

func TestPointerMapsColumnToField(t *testing.T) {
	c, _ := newTestClient(t, config.DefaultTuning(), Options{})

	if x := c.pointerX(1); x > -4.9 {
		t.Fatalf("left column -> %v, want near -5", x)
	}
	if x := c.pointerX(51); math.Abs(x) > 0.1 {
		t.Fatalf("middle column -> %v, want near 0", x)
	}
	if x := c.pointerX(100); x < 4.9 {
		t.Fatalf("right column -> %v, want near 5", x)
	}
}
