// Package web serves the game to browsers: one session per WebSocket
// connection, with pointer input in and JSON frames and events out.
package web

import (
	"github.com/tomz197/birdtreats/internal/game"
)

// MessageType defines the type of message being sent
type MessageType string

const (
	// Client to server
	MessageTypeTarget  MessageType = "target"
	MessageTypePause   MessageType = "pause"
	MessageTypeRestart MessageType = "restart"

	// Server to client
	MessageTypeFrame MessageType = "frame"
	MessageTypeEvent MessageType = "event"
	MessageTypeError MessageType = "error"
)

// EventName names a game event in an event message.
type EventName string

const (
	EventCollected EventName = "collected"
	EventMissed    EventName = "missed"
	EventLevelUp   EventName = "levelup"
	EventGameOver  EventName = "gameover"
)

// ClientMessage is any message from the browser. X is set for target
// messages, in play-field units.
type ClientMessage struct {
	Type MessageType `json:"type"`
	X    *float64    `json:"x,omitempty"`
}

// FieldInfo tells the browser the play-field geometry.
type FieldInfo struct {
	HalfWidth     float64 `json:"halfWidth"`
	SpawnY        float64 `json:"spawnY"`
	MissY         float64 `json:"missY"`
	CaptureRadius float64 `json:"captureRadius"`
}

// BirdState is the bird as drawn in one frame.
type BirdState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Dying    bool    `json:"dying"`
}

// TreatState is one live treat.
type TreatState struct {
	ID    uint64  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// FrameMessage is sent once per tick.
type FrameMessage struct {
	Type   MessageType  `json:"type"`
	State  string       `json:"state"`
	Score  int          `json:"score"`
	Lives  int          `json:"lives"`
	Level  int          `json:"level"`
	Bird   BirdState    `json:"bird"`
	Treats []TreatState `json:"treats"`
	Field  FieldInfo    `json:"field"`
	Tick   uint64       `json:"tick"`
}

// EventMessage reports a game event. Only the fields relevant to the event
// are set.
type EventMessage struct {
	Type  MessageType `json:"type"`
	Event EventName   `json:"event"`
	X     *float64    `json:"x,omitempty"`
	Y     *float64    `json:"y,omitempty"`
	Score *int        `json:"score,omitempty"`
	Level *int        `json:"level,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// newFrame builds the frame message for a snapshot.
func newFrame(snap game.Snapshot, field FieldInfo) FrameMessage {
	treats := make([]TreatState, len(snap.Treats))
	for i, tr := range snap.Treats {
		treats[i] = TreatState{ID: tr.ID, X: tr.Pos.X, Y: tr.Pos.Y, Color: tr.Tag.Hex()}
	}
	p := snap.Progression
	return FrameMessage{
		Type:  MessageTypeFrame,
		State: snap.State.String(),
		Score: p.Score,
		Lives: p.Lives,
		Level: p.Level,
		Bird: BirdState{
			X:        snap.Bird.Pos.X,
			Y:        snap.Bird.Pos.Y,
			Rotation: snap.Bird.Rotation,
			Dying:    snap.Dying,
		},
		Treats: treats,
		Field:  field,
		Tick:   snap.Ticks,
	}
}
