package web

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/game"
	"github.com/tomz197/birdtreats/internal/object"
	"github.com/tomz197/birdtreats/internal/physics"
)

// Sender delivers messages to one browser.
type Sender interface {
	SendMessage(msg any) error
}

// Runner owns one browser's game session. Messages arrive from the read
// pump on another goroutine and are applied at the start of the next tick.
type Runner struct {
	tuning  config.Tuning
	field   FieldInfo
	session *game.Session
	out     Sender
	logger  *log.Logger
	now     func() time.Time

	commands chan ClientMessage
	targetX  float64
	pending  []EventMessage
	treatBuf []object.Treat
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Tuning config.Tuning
	Rand   object.Rand // Nil seeds from the clock
	Logger *log.Logger
	Now    func() time.Time // Nil uses time.Now
}

// NewRunner starts a session that reports to out.
func NewRunner(out Sender, opts RunnerOptions) *Runner {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Runner{
		tuning: opts.Tuning,
		field: FieldInfo{
			HalfWidth:     opts.Tuning.HalfWidth,
			SpawnY:        opts.Tuning.SpawnY,
			MissY:         opts.Tuning.MissY,
			CaptureRadius: opts.Tuning.CaptureRadius,
		},
		out:      out,
		logger:   opts.Logger,
		now:      opts.Now,
		commands: make(chan ClientMessage, 64),
	}
	r.session = game.NewSession(opts.Tuning, opts.Rand, r, r.now())
	return r
}

// HandleMessage decodes a browser message and queues it for the next tick.
func (r *Runner) HandleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		r.logger.Warn("bad message", "err", err)
		r.reply(ErrorMessage{Type: MessageTypeError, Code: "BAD_MESSAGE", Message: "message is not valid JSON"})
		return
	}

	switch msg.Type {
	case MessageTypeTarget:
		if msg.X == nil {
			r.reply(ErrorMessage{Type: MessageTypeError, Code: "MISSING_X", Message: "target message needs x"})
			return
		}
	case MessageTypePause, MessageTypeRestart:
	default:
		r.reply(ErrorMessage{Type: MessageTypeError, Code: "UNKNOWN_MESSAGE_TYPE", Message: "Unknown message type received"})
		return
	}

	select {
	case r.commands <- msg:
	default:
		r.logger.Debug("dropping input, queue full", "type", msg.Type)
	}
}

// Run ticks the session at the frame rate until ctx is cancelled or a send
// fails.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(config.TargetFrameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Step(); err != nil {
				return err
			}
		}
	}
}

// Step runs one tick: apply queued input, advance the session, send the
// frame and then the events raised during the tick.
func (r *Runner) Step() error {
	now := r.now()
	r.applyCommands(now)
	r.session.Tick(now, r.targetX)

	snap := r.session.Snapshot(r.treatBuf)
	r.treatBuf = snap.Treats
	if err := r.out.SendMessage(newFrame(snap, r.field)); err != nil {
		return err
	}

	for _, ev := range r.pending {
		if err := r.out.SendMessage(ev); err != nil {
			return err
		}
	}
	clear(r.pending)
	r.pending = r.pending[:0]
	return nil
}

func (r *Runner) applyCommands(now time.Time) {
	for {
		select {
		case msg := <-r.commands:
			switch msg.Type {
			case MessageTypeTarget:
				r.targetX = physics.Clamp(*msg.X, -r.tuning.HalfWidth, r.tuning.HalfWidth)
			case MessageTypePause:
				r.session.TogglePause(now)
			case MessageTypeRestart:
				if r.session.State() == game.StateGameOver {
					r.session.Restart(now)
					r.targetX = 0
				}
			}
		default:
			return
		}
	}
}

func (r *Runner) reply(msg ErrorMessage) {
	if err := r.out.SendMessage(msg); err != nil {
		r.logger.Debug("reply failed", "err", err)
	}
}

// Session returns the runner's session. Only safe between Steps.
func (r *Runner) Session() *game.Session {
	return r.session
}

// The Runner is the session's sink: events are queued and sent after the
// frame of the tick that raised them.

func (r *Runner) ReportState(score, lives, level int) {}

func (r *Runner) NotifyCollected(pos object.Vec) {
	x, y := pos.X, pos.Y
	r.pending = append(r.pending, EventMessage{Type: MessageTypeEvent, Event: EventCollected, X: &x, Y: &y})
}

func (r *Runner) NotifyMissed() {
	r.pending = append(r.pending, EventMessage{Type: MessageTypeEvent, Event: EventMissed})
}

func (r *Runner) NotifyLevelUp(level int) {
	r.pending = append(r.pending, EventMessage{Type: MessageTypeEvent, Event: EventLevelUp, Level: &level})
}

func (r *Runner) NotifyGameOver(score, level int) {
	r.pending = append(r.pending, EventMessage{Type: MessageTypeEvent, Event: EventGameOver, Score: &score, Level: &level})
}
