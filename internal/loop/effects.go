package loop

import (
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/game"
	"github.com/tomz197/birdtreats/internal/object"
)

const (
	floatRise        = 1.5 // Field units per second
	defaultBirdColor = "#ffd23f"
)

// floatingText is a score popup rising from the point of collection.
type floatingText struct {
	Pos  object.Vec
	Text string
	Age  float64 // Seconds
}

// Effects is the terminal presentation sink. It records what the session
// reports and turns events into short-lived visual effects.
type Effects struct {
	rng    object.Rand
	reward int

	Score, Lives, Level int

	Floats      []floatingText
	Flash       float64 // Remaining seconds of the life-lost flash
	Banner      float64 // Remaining seconds of the level-up banner
	BannerLevel int
	BirdColor   colorful.Color

	GameOver   bool
	FinalScore int
	FinalLevel int
}

var _ game.Sink = (*Effects)(nil)

// NewEffects creates the sink. rng picks the bird's hue on level-up.
func NewEffects(rng object.Rand, t config.Tuning) *Effects {
	e := &Effects{rng: rng, reward: t.Reward}
	e.Reset(t)
	return e
}

// Reset clears all effects for a new game.
func (e *Effects) Reset(t config.Tuning) {
	bird, _ := colorful.Hex(defaultBirdColor)
	*e = Effects{
		rng:       e.rng,
		reward:    t.Reward,
		Lives:     t.InitialLives,
		Level:     1,
		Floats:    e.Floats[:0],
		BirdColor: bird,
	}
}

func (e *Effects) ReportState(score, lives, level int) {
	e.Score, e.Lives, e.Level = score, lives, level
}

func (e *Effects) NotifyCollected(pos object.Vec) {
	e.Floats = append(e.Floats, floatingText{Pos: pos, Text: "+" + strconv.Itoa(e.reward)})
}

func (e *Effects) NotifyMissed() {
	e.Flash = config.LifeLostFlashSeconds
}

func (e *Effects) NotifyLevelUp(level int) {
	e.Banner = config.LevelUpBannerSeconds
	e.BannerLevel = level
	e.BirdColor = colorful.Hsl(e.rng.Float64()*360, 1, 0.5)
}

func (e *Effects) NotifyGameOver(score, level int) {
	e.Flash = config.LifeLostFlashSeconds
	e.Banner = 0
	e.GameOver = true
	e.FinalScore = score
	e.FinalLevel = level
	e.Lives = 0
}

// Update ages every effect by dt seconds and drops the expired ones.
func (e *Effects) Update(dt float64) {
	kept := e.Floats[:0]
	for _, f := range e.Floats {
		f.Age += dt
		f.Pos.Y += floatRise * dt
		if f.Age < config.FloatingTextSeconds {
			kept = append(kept, f)
		}
	}
	clear(e.Floats[len(kept):])
	e.Floats = kept

	e.Flash = max(0, e.Flash-dt)
	e.Banner = max(0, e.Banner-dt)
}

// FlashStrength returns the flash intensity in [0, 1].
func (e *Effects) FlashStrength() float64 {
	return e.Flash / config.LifeLostFlashSeconds
}
