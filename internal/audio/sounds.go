package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Sound identifies one event cue.
type Sound int

const (
	SoundCollect Sound = iota
	SoundMiss
	SoundLevelUp
	SoundGameOver
)

func (s Sound) String() string {
	switch s {
	case SoundCollect:
		return "collect"
	case SoundMiss:
		return "miss"
	case SoundLevelUp:
		return "levelup"
	case SoundGameOver:
		return "gameover"
	}
	return "unknown"
}

// note is one shaped tone of a cue.
func note(freq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// collectSound is a two-note chime rising a fifth.
func collectSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		note(880, 60*time.Millisecond, WaveSquare, rate),
		note(1318.51, 110*time.Millisecond, WaveSquare, rate),
	)
}

// missSound is a short low saw buzz.
func missSound(rate beep.SampleRate) beep.Streamer {
	d := 180 * time.Millisecond
	return NewEnvelope(NewSweep(160, 90, d, WaveSaw, rate), d, 5*time.Millisecond, 120*time.Millisecond, rate)
}

// levelUpSound is a major arpeggio with a bell overtone on the last note.
func levelUpSound(rate beep.SampleRate) beep.Streamer {
	d := 90 * time.Millisecond
	last := 300 * time.Millisecond
	return beep.Seq(
		note(523.25, d, WaveSine, rate),
		note(659.25, d, WaveSine, rate),
		note(783.99, d, WaveSine, rate),
		beep.Mix(
			newVolume(note(1046.5, last, WaveSine, rate), 0.7),
			newVolume(note(2093, last, WaveSine, rate), 0.3),
		),
	)
}

// gameOverSound is a slow falling sweep.
func gameOverSound(rate beep.SampleRate) beep.Streamer {
	d := 900 * time.Millisecond
	return NewEnvelope(NewSweep(440, 55, d, WaveSquare, rate), d, 10*time.Millisecond, 400*time.Millisecond, rate)
}

// newSound builds a fresh streamer for s.
func newSound(s Sound, rate beep.SampleRate) beep.Streamer {
	switch s {
	case SoundCollect:
		return collectSound(rate)
	case SoundMiss:
		return missSound(rate)
	case SoundLevelUp:
		return levelUpSound(rate)
	case SoundGameOver:
		return gameOverSound(rate)
	}
	return nil
}
