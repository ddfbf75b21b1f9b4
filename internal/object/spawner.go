package object

import (
	"time"

	"github.com/tomz197/birdtreats/internal/config"
)

// Spawner drops treats at the top of the field on a wall-clock cadence.
type Spawner struct {
	rng            Rand
	lastSpawn      time.Time // Zero until the first spawn, so the first check fires
	nextID         uint64
	halfWidth      float64
	spawnY         float64
	randomTagLevel int
}

// NewSpawner creates a spawner for the field described by t.
func NewSpawner(rng Rand, t config.Tuning) *Spawner {
	return &Spawner{
		rng:            rng,
		nextID:         1,
		halfWidth:      t.HalfWidth,
		spawnY:         t.SpawnY,
		randomTagLevel: t.RandomTagLevel,
	}
}

// MaybeSpawn creates a treat when more than interval has passed since the
// previous spawn, and records now as the new spawn time.
func (s *Spawner) MaybeSpawn(now time.Time, interval time.Duration, level int) (*Treat, bool) {
	if !s.lastSpawn.IsZero() && now.Sub(s.lastSpawn) <= interval {
		return nil, false
	}
	s.lastSpawn = now

	treat := &Treat{
		ID:  s.nextID,
		Pos: Vec{X: (s.rng.Float64() - 0.5) * 2 * s.halfWidth, Y: s.spawnY},
		Tag: s.pickTag(level),
	}
	s.nextID++
	return treat, true
}

// pickTag returns a red/green coin flip below randomTagLevel and a random
// hue from it on.
func (s *Spawner) pickTag(level int) Tag {
	if level >= s.randomTagLevel {
		return HueTag(s.rng.Float64())
	}
	if s.rng.Float64() > 0.5 {
		return NewTag(TagRed)
	}
	return NewTag(TagGreen)
}

// Shift moves the last spawn time forward by d. Used after a pause so the
// cadence resumes where it stopped.
func (s *Spawner) Shift(d time.Duration) {
	if s.lastSpawn.IsZero() {
		return
	}
	s.lastSpawn = s.lastSpawn.Add(d)
}

// LastSpawn returns the time of the most recent spawn.
func (s *Spawner) LastSpawn() time.Time {
	return s.lastSpawn
}
