package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTuning is returned by Tuning.Validate for unusable parameters.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning holds every gameplay parameter. Units are play-field units
// (the field spans [-HalfWidth, HalfWidth] horizontally) and ticks.
type Tuning struct {
	// Play field
	HalfWidth float64 `yaml:"half_width"` // Spawn x range and input mapping
	SpawnY    float64 `yaml:"spawn_y"`    // Treats appear here
	MissY     float64 `yaml:"miss_y"`     // Treats below this are missed

	// Player
	Smoothing     float64 `yaml:"smoothing"`      // Fraction of the distance to target covered per tick
	CaptureRadius float64 `yaml:"capture_radius"` // Collection distance
	BobAmplitude  float64 `yaml:"bob_amplitude"`
	BobFrequency  float64 `yaml:"bob_frequency"` // Radians per millisecond

	// Progression
	InitialLives      int           `yaml:"initial_lives"`
	Reward            int           `yaml:"reward"`
	TreatsToNextLevel int           `yaml:"treats_to_next_level"`
	FallSpeed         float64       `yaml:"fall_speed"`      // Units per tick at level 1
	SpeedIncrement    float64       `yaml:"speed_increment"` // Added per level
	SpawnInterval     time.Duration `yaml:"spawn_interval"`
	IntervalDecrement time.Duration `yaml:"interval_decrement"`
	MinSpawnInterval  time.Duration `yaml:"min_spawn_interval"`
	RandomTagLevel    int           `yaml:"random_tag_level"` // From this level on treats get random hues

	// Game over
	GameOverFallSpeed float64 `yaml:"game_over_fall_speed"`
	DeathSpin         float64 `yaml:"death_spin"` // Radians per tick
	DeathFall         float64 `yaml:"death_fall"` // Initial units per tick
	DeathDrag         float64 `yaml:"death_drag"` // Fall speed multiplier per tick
}

// DefaultTuning returns the classic parameters.
func DefaultTuning() Tuning {
	return Tuning{
		HalfWidth: 5,
		SpawnY:    8,
		MissY:     -5,

		Smoothing:     0.05,
		CaptureRadius: 1.5,
		BobAmplitude:  0.1,
		BobFrequency:  0.003,

		InitialLives:      3,
		Reward:            10,
		TreatsToNextLevel: 10,
		FallSpeed:         0.05,
		SpeedIncrement:    0.02,
		SpawnInterval:     2000 * time.Millisecond,
		IntervalDecrement: 200 * time.Millisecond,
		MinSpawnInterval:  500 * time.Millisecond,
		RandomTagLevel:    3,

		GameOverFallSpeed: 0.01,
		DeathSpin:         0.03,
		DeathFall:         0.05,
		DeathDrag:         0.99,
	}
}

// LoadTuning returns DefaultTuning overlaid with the YAML file at path.
// Keys absent from the file keep their defaults. An empty path skips the file.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, t.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects parameters that would make the simulation degenerate.
func (t Tuning) Validate() error {
	switch {
	case t.HalfWidth <= 0:
		return fmt.Errorf("%w: half_width must be positive", ErrInvalidTuning)
	case t.SpawnY <= t.MissY:
		return fmt.Errorf("%w: spawn_y must be above miss_y", ErrInvalidTuning)
	case t.Smoothing <= 0 || t.Smoothing > 1:
		return fmt.Errorf("%w: smoothing must be in (0, 1]", ErrInvalidTuning)
	case t.CaptureRadius <= 0:
		return fmt.Errorf("%w: capture_radius must be positive", ErrInvalidTuning)
	case t.BobAmplitude < 0:
		return fmt.Errorf("%w: bob_amplitude must not be negative", ErrInvalidTuning)
	case t.InitialLives <= 0:
		return fmt.Errorf("%w: initial_lives must be positive", ErrInvalidTuning)
	case t.Reward < 0:
		return fmt.Errorf("%w: reward must not be negative", ErrInvalidTuning)
	case t.TreatsToNextLevel <= 0:
		return fmt.Errorf("%w: treats_to_next_level must be positive", ErrInvalidTuning)
	case t.FallSpeed <= 0:
		return fmt.Errorf("%w: fall_speed must be positive", ErrInvalidTuning)
	case t.SpeedIncrement < 0:
		return fmt.Errorf("%w: speed_increment must not be negative", ErrInvalidTuning)
	case t.MinSpawnInterval <= 0:
		return fmt.Errorf("%w: min_spawn_interval must be positive", ErrInvalidTuning)
	case t.SpawnInterval < t.MinSpawnInterval:
		return fmt.Errorf("%w: spawn_interval below min_spawn_interval", ErrInvalidTuning)
	case t.IntervalDecrement < 0:
		return fmt.Errorf("%w: interval_decrement must not be negative", ErrInvalidTuning)
	case t.GameOverFallSpeed < 0:
		return fmt.Errorf("%w: game_over_fall_speed must not be negative", ErrInvalidTuning)
	case t.DeathFall < 0 || t.DeathDrag < 0 || t.DeathDrag > 1:
		return fmt.Errorf("%w: death animation parameters out of range", ErrInvalidTuning)
	}
	return nil
}
