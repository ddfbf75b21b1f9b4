package game

import (
	"time"

	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/object"
)

// Session is one game from the first tick to game over. It is not safe for
// concurrent use: a single goroutine calls Tick once per frame and applies
// input between ticks.
type Session struct {
	tuning config.Tuning
	rng    object.Rand
	sink   Sink

	state    State
	progress Progression
	bird     *object.Bird
	treats   []*object.Treat
	spawner  *object.Spawner

	started     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration // Excluded from the bob clock
	ticks       uint64        // Playing ticks since start
}

// NewSession starts a game at now. A nil sink discards events.
func NewSession(t config.Tuning, rng object.Rand, sink Sink, now time.Time) *Session {
	if sink == nil {
		sink = NopSink{}
	}
	s := &Session{
		tuning: t,
		rng:    rng,
		sink:   sink,
	}
	s.reset(now)
	return s
}

func (s *Session) reset(now time.Time) {
	s.state = StatePlaying
	s.progress = NewProgression(s.tuning)
	s.bird = object.NewBird()
	s.treats = nil
	s.spawner = object.NewSpawner(s.rng, s.tuning)
	s.started = now
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.ticks = 0
}

// Tick advances the session by one frame. targetX is the horizontal position
// the bird should follow.
func (s *Session) Tick(now time.Time, targetX float64) {
	switch s.state {
	case StatePaused:
		return
	case StateGameOver:
		s.tickGameOver()
		return
	}

	s.ticks++
	s.bird.Bob(now.Sub(s.started)-s.pausedTotal, s.tuning.BobAmplitude, s.tuning.BobFrequency)

	if treat, ok := s.spawner.MaybeSpawn(now, s.progress.SpawnInterval, s.progress.Level); ok {
		s.treats = append(s.treats, treat)
	}

	var result StepResult
	s.treats, result = Advance(s.bird, targetX, s.treats, s.progress.FallSpeed, s.tuning)

	// Catches count before misses, so a treat caught in the tick that costs
	// the last life still scores.
	for _, tr := range result.Collected() {
		s.sink.NotifyCollected(tr.Pos)
		var events []Event
		s.progress, events = OnCollected(s.progress, s.tuning)
		s.dispatch(events)
	}
	for range result.Missed() {
		if s.state == StateGameOver {
			break // progression is frozen for the rest of the tick
		}
		var events []Event
		s.progress, events = OnMissed(s.progress)
		s.dispatch(events)
	}

	s.sink.ReportState(s.progress.Score, s.progress.Lives, s.progress.Level)
}

func (s *Session) dispatch(events []Event) {
	for _, ev := range events {
		switch ev.Type {
		case EventLevelUp:
			s.sink.NotifyLevelUp(ev.Level)
		case EventLifeLost:
			s.sink.NotifyMissed()
		case EventGameOverRequested:
			s.enterGameOver()
		}
	}
}

func (s *Session) enterGameOver() {
	s.state = StateGameOver
	s.progress.FallSpeed = s.tuning.GameOverFallSpeed
	s.bird.StartDeath(s.tuning.DeathFall)
	s.sink.NotifyGameOver(s.progress.Score, s.progress.Level)
}

// tickGameOver plays the death spiral. Remaining treats drift at the slowed
// speed without being resolved and vanish below the miss line.
func (s *Session) tickGameOver() {
	s.bird.UpdateDeath(s.tuning.DeathSpin, s.tuning.DeathDrag, s.tuning.MissY)

	kept := s.treats[:0]
	for _, tr := range s.treats {
		tr.Fall(s.progress.FallSpeed)
		if !tr.Below(s.tuning.MissY) {
			kept = append(kept, tr)
		}
	}
	clear(s.treats[len(kept):])
	s.treats = kept
}

// TogglePause switches between Playing and Paused. On resume the spawn
// cadence and the bob clock continue from where they stopped. It does
// nothing after game over.
func (s *Session) TogglePause(now time.Time) {
	switch s.state {
	case StatePlaying:
		s.state = StatePaused
		s.pausedAt = now
	case StatePaused:
		paused := now.Sub(s.pausedAt)
		if paused < 0 {
			paused = 0
		}
		s.spawner.Shift(paused)
		s.pausedTotal += paused
		s.pausedAt = time.Time{}
		s.state = StatePlaying
	}
}

// Restart discards the session and starts a new game at now.
func (s *Session) Restart(now time.Time) {
	s.reset(now)
}

// State returns the current phase.
func (s *Session) State() State {
	return s.state
}

// Progression returns a copy of the score and difficulty state.
func (s *Session) Progression() Progression {
	return s.progress
}

// Ticks returns the number of Playing ticks since the session started.
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// Snapshot is a copy of the session for renderers.
type Snapshot struct {
	State       State
	Progression Progression
	Bird        object.Bird
	Dying       bool
	Treats      []object.Treat
	Ticks       uint64
}

// Snapshot copies the visible state. buf is reused for the treat list when
// it has enough capacity.
func (s *Session) Snapshot(buf []object.Treat) Snapshot {
	treats := buf[:0]
	for _, tr := range s.treats {
		treats = append(treats, *tr)
	}
	return Snapshot{
		State:       s.state,
		Progression: s.progress,
		Bird:        *s.bird,
		Dying:       s.bird.Dying(),
		Treats:      treats,
		Ticks:       s.ticks,
	}
}
