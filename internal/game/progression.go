// Package game holds the simulation core: per-tick treat and bird updates,
// collision classification, progression rules and the Playing/Paused/GameOver
// state machine. It performs no I/O; presentation happens through a Sink.
package game

import (
	"time"

	"github.com/tomz197/birdtreats/internal/config"
)

// Progression is the score, lives and difficulty of a session.
type Progression struct {
	Score             int
	Lives             int
	Level             int
	TreatsCollected   int // Since the last level-up
	TreatsToNextLevel int
	FallSpeed         float64       // Units per tick, shared by all live treats
	SpawnInterval     time.Duration // Never below the tuning floor
}

// NewProgression returns the level 1 state.
func NewProgression(t config.Tuning) Progression {
	return Progression{
		Lives:             t.InitialLives,
		Level:             1,
		TreatsToNextLevel: t.TreatsToNextLevel,
		FallSpeed:         t.FallSpeed,
		SpawnInterval:     t.SpawnInterval,
	}
}

// EventType identifies a progression outcome.
type EventType int

const (
	EventLifeLost EventType = iota
	EventLevelUp
	EventGameOverRequested
)

// String returns the event name.
func (e EventType) String() string {
	switch e {
	case EventLifeLost:
		return "life_lost"
	case EventLevelUp:
		return "level_up"
	case EventGameOverRequested:
		return "game_over_requested"
	default:
		return "unknown"
	}
}

// Event is emitted by the progression rules.
type Event struct {
	Type  EventType
	Level int // Set for EventLevelUp
}

// OnCollected scores a caught treat and applies the level-up rule.
func OnCollected(p Progression, t config.Tuning) (Progression, []Event) {
	p.Score += t.Reward
	p.TreatsCollected++

	if p.TreatsCollected < p.TreatsToNextLevel {
		return p, nil
	}

	p.Level++
	p.TreatsCollected = 0
	p.FallSpeed += t.SpeedIncrement
	p.SpawnInterval -= t.IntervalDecrement
	if p.SpawnInterval < t.MinSpawnInterval {
		p.SpawnInterval = t.MinSpawnInterval
	}
	return p, []Event{{Type: EventLevelUp, Level: p.Level}}
}

// OnMissed takes a life. Reaching zero requests game over instead of
// reporting a lost life.
func OnMissed(p Progression) (Progression, []Event) {
	p.Lives--
	if p.Lives <= 0 {
		p.Lives = 0
		return p, []Event{{Type: EventGameOverRequested}}
	}
	return p, []Event{{Type: EventLifeLost}}
}
