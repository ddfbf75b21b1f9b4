package object

import (
	"math"
	"time"

	"github.com/tomz197/birdtreats/internal/physics"
)

// deathMinFall ends the death spiral once the bird has all but stopped.
// The fall is a geometric series, so without it a bird that died high enough
// would hover just above the floor forever.
const deathMinFall = 5e-4

// Bird is the player-controlled catcher. It follows a target x with
// exponential smoothing and, once the game is lost, plays a one-shot death
// spiral that ends below the floor line.
type Bird struct {
	Pos      Vec
	TargetX  float64
	Rotation float64 // Radians around the view axis; only the death spiral changes it

	dying     bool
	deathFall float64 // Current fall per tick during the death spiral
}

// NewBird creates a bird at the centre of the field.
func NewBird() *Bird {
	return &Bird{}
}

// Follow moves the bird a fraction of the way toward targetX.
func (b *Bird) Follow(targetX, smoothing float64) {
	b.TargetX = targetX
	b.Pos.X = physics.Approach(b.Pos.X, targetX, smoothing)
}

// Bob sets the idle hover offset for the given time since session start.
func (b *Bird) Bob(elapsed time.Duration, amplitude, frequency float64) {
	ms := float64(elapsed) / float64(time.Millisecond)
	b.Pos.Y = math.Sin(ms*frequency) * amplitude
}

// StartDeath begins the death spiral with the given initial fall per tick.
func (b *Bird) StartDeath(fall float64) {
	b.dying = true
	b.deathFall = fall
}

// Dying reports whether the death spiral is still running.
func (b *Bird) Dying() bool {
	return b.dying
}

// UpdateDeath advances the death spiral by one tick. The spiral stops for
// good once the bird is below floorY or its fall has decayed away. Returns
// whether it is still running.
func (b *Bird) UpdateDeath(spin, drag, floorY float64) bool {
	if !b.dying {
		return false
	}
	b.Rotation += spin
	b.Pos.Y -= b.deathFall
	b.deathFall *= drag
	if b.Pos.Y < floorY || b.deathFall < deathMinFall {
		b.dying = false
	}
	return b.dying
}
