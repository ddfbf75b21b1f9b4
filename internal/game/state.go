package game

// State is the session phase.
type State int

const (
	StatePlaying  State = iota // Simulation runs every tick
	StatePaused                // Ticks are skipped entirely
	StateGameOver              // Terminal; only the death spiral animates
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}
