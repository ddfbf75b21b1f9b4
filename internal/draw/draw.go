// Package draw renders the play field to ANSI terminals: a scaled half-block
// canvas with per-pixel colour, a text layer for overlays, and chunked
// output suited to SSH sessions.
package draw

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a "#rrggbb" colour. The empty string means unset.
type Color string

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
