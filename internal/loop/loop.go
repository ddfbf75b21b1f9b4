// Package loop runs one terminal game per connection with the fixed-rate
// Input → Update → Draw cycle, and renders the session with its effects.
package loop

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/draw"
	"github.com/tomz197/birdtreats/internal/game"
	"github.com/tomz197/birdtreats/internal/input"
	"github.com/tomz197/birdtreats/internal/object"
)

// Options configures the client.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Tuning       config.Tuning
	Rand         object.Rand     // Nil seeds from the clock
	Sink         game.Sink       // Extra sink next to the on-screen effects, e.g. audio
	Profile      termenv.Profile // Colour encoding of the terminal
	Logger       *log.Logger
	Inactivity   bool // Warn and disconnect idle players
	Username     string
}

// Client handles rendering and input for a single connection.
type Client struct {
	opts         Options
	state        *ClientState
	session      *game.Session
	effects      *Effects
	clouds       *Clouds
	tracker      *input.Tracker
	proj         projector
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
	treatBuf     []object.Treat
	borderDirty  bool // Border must be redrawn after a clear
}

// NewClient creates a client reading keys from r and drawing to w.
func NewClient(r *bufio.Reader, w io.Writer, opts Options) *Client {
	c := newClient(w, opts)
	c.inputStream = input.StartStream(r)
	return c
}

func newClient(w io.Writer, opts Options) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Username != "" {
		logger = logger.With("user", opts.Username)
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight, opts.Profile)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		opts:         opts,
		state:        NewClientState(),
		effects:      NewEffects(opts.Rand, opts.Tuning),
		clouds:       NewClouds(opts.Rand, config.CloudCount, config.ViewWidth, config.ViewHeight),
		tracker:      input.NewTracker(opts.Tuning.HalfWidth, config.KeyboardNudge),
		proj:         newProjector(opts.Tuning),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w),
		writer:       w,
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
		logger:       logger,
		borderDirty:  true,
	}
}

// Run starts the client loop. Blocks until the player quits, the input
// closes, or ctx is cancelled and the shutdown notice has been shown.
func (c *Client) Run(ctx context.Context) error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		if ctx.Err() != nil && c.state.Phase != PhaseShutdown {
			c.beginShutdown()
		}

		// ===== INPUT PHASE =====
		c.processInput(input.ReadInput(c.inputStream), frameStart)

		// ===== UPDATE PHASE =====
		c.updateScreen()
		c.update(frameStart, delta)

		// ===== DRAW PHASE =====
		if err := c.drawFrame(); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		elapsed := time.Since(frameStart)
		if elapsed < config.TargetFrameTime {
			time.Sleep(config.TargetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// processInput records the frame's input and tracks inactivity.
func (c *Client) processInput(in input.Input, now time.Time) {
	c.state.Input = in

	if len(in.Pressed) > 0 {
		c.lastInput = now
		c.state.isInactive = false
	} else if c.opts.Inactivity {
		idle := now.Sub(c.lastInput).Seconds()
		if idle > config.InactivityDisconnectUser {
			c.logger.Info("disconnecting idle player", "idle", time.Duration(idle*float64(time.Second)).Round(time.Second))
			c.state.Running = false
		} else if idle > config.InactivityWarnUser {
			c.state.isInactive = true
		}
	}

	if in.Quit {
		c.state.Running = false
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual cells
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := draw.ClampTermSize(termWidth, termHeight, config.MaxTermWidth, config.MaxTermHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.Resize(renderWidth, renderHeight)
		c.canvas.SetOffset(offsetCol, offsetRow)
		c.canvas.ForceRedraw()
		c.borderDirty = true
	}
}

// update advances the current phase by one frame.
func (c *Client) update(now time.Time, delta time.Duration) {
	in := c.state.Input

	switch c.state.Phase {
	case PhaseTitle:
		if in.Restart {
			c.startGame(now)
		}
		c.clouds.Update()

	case PhasePlaying:
		if in.Pause {
			c.session.TogglePause(now)
		}
		if in.Restart && c.session.State() == game.StateGameOver {
			c.startGame(now)
		}

		target := c.tracker.Update(in, c.pointerX)
		c.session.Tick(now, target)

		if c.session.State() != game.StatePaused {
			c.effects.Update(delta.Seconds())
			c.clouds.Update()
		}

	case PhaseShutdown:
		c.state.shutdownTimer -= delta.Seconds()
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
		}
	}
}

// pointerX maps an absolute terminal column to a field x.
func (c *Client) pointerX(col int) float64 {
	return c.proj.fieldX(c.canvas.TerminalToLogical(col - c.canvas.OffsetCol()))
}

// startGame starts a fresh session. Effects and the target reset with it.
func (c *Client) startGame(now time.Time) {
	c.effects.Reset(c.opts.Tuning)
	c.tracker.Reset()

	sink := game.Sink(c.effects)
	if c.opts.Sink != nil {
		sink = game.MultiSink{c.effects, c.opts.Sink}
	}
	c.session = game.NewSession(c.opts.Tuning, c.opts.Rand, sink, now)
	c.state.Phase = PhasePlaying
	c.logger.Debug("game started")
}

func (c *Client) beginShutdown() {
	c.state.Phase = PhaseShutdown
	c.state.shutdownTimer = ShutdownDisplaySeconds
	if c.session != nil {
		p := c.session.Progression()
		c.logger.Info("session interrupted by shutdown", "score", p.Score, "level", p.Level)
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	screen := c.screenName()
	if screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.borderDirty = true
		c.state.prevScreen = screen
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	c.clouds.Draw(c.canvas)

	if c.state.Phase == PhasePlaying {
		snap := c.session.Snapshot(c.treatBuf)
		c.treatBuf = snap.Treats
		drawWorld(c.canvas, c.proj, c.opts.Tuning.MissY, snap, c.effects.BirdColor)
		drawFlash(c.canvas, c.effects.FlashStrength())
	}

	c.drawUI()

	c.canvas.Render(c.chunkWriter)
	if err := c.chunkWriter.Flush(); err != nil {
		return err
	}

	// Draw border when terminal exceeds max render resolution
	if c.borderDirty {
		c.canvas.RenderBorder(c.writer)
		c.borderDirty = false
	}
	return nil
}
