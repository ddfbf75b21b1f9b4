package loop

import (
	"github.com/tomz197/birdtreats/internal/input"
)

// Phase is the client's screen, around the session's own state machine.
type Phase int

const (
	PhaseTitle    Phase = iota // Title screen, no session yet
	PhasePlaying               // A session is running (playing, paused or over)
	PhaseShutdown              // Server is shutting down
)

func (p Phase) String() string {
	switch p {
	case PhaseTitle:
		return "title"
	case PhasePlaying:
		return "playing"
	case PhaseShutdown:
		return "shutdown"
	}
	return "unknown"
}

// ClientState holds per-connection presentation state.
type ClientState struct {
	Input         input.Input
	Phase         Phase
	Running       bool
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool    // Whether the inactivity warning is showing

	// Last drawn screen, to clear the terminal on transitions
	prevScreen  string
	wasInactive bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Phase:   PhaseTitle,
		Running: true,
	}
}
