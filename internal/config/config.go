package config

import "time"

// Environment variable names shared by all front ends.
const (
	EnvTuningFile = "BIRDTREATS_TUNING"
	EnvLogLevel   = "BIRDTREATS_LOG_LEVEL"
	EnvLogFile    = "BIRDTREATS_LOG_FILE" // Local play only
	EnvSeed       = "BIRDTREATS_SEED"
	EnvAudio      = "BIRDTREATS_AUDIO"  // Local play only
	EnvVolume     = "BIRDTREATS_VOLUME" // Percent
)

// View resolution - the visible play field in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Render area limits. Larger terminals get a centered, bordered field.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Client rendering
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
)

// Input
const (
	KeyboardNudge = 0.25 // Target-x step per frame while an arrow key is held
)

// Inactivity (SSH sessions only)
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Effects
const (
	FloatingTextSeconds  = 1.0
	LifeLostFlashSeconds = 0.6
	LevelUpBannerSeconds = 2.5
	CloudCount           = 10
)
