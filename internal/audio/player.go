package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/tomz197/birdtreats/internal/game"
	"github.com/tomz197/birdtreats/internal/object"
)

const (
	sampleRate    = beep.SampleRate(48000)
	bufferLatency = 100 * time.Millisecond
)

// Player is a game.Sink that turns events into sound cues. It mixes every
// cue into a single beep.Mixer that the speaker drains.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	volume  float64
	started bool
	played  map[Sound]int
}

var _ game.Sink = (*Player)(nil)

// NewPlayer creates a player at the given linear volume in [0, 1]. Cues are
// mixed but not heard until Start.
func NewPlayer(volume float64) *Player {
	return &Player{
		mixer:  &beep.Mixer{},
		volume: volume,
		played: make(map[Sound]int),
	}
}

// Start opens the speaker and begins draining the mixer.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(bufferLatency)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.started = true
	return nil
}

// Close stops every cue and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		p.mixer.Clear()
		return
	}
	speaker.Clear()
	speaker.Close()
	p.started = false
}

// Play mixes in a fresh instance of s.
func (p *Player) Play(s Sound) {
	st := newSound(s, sampleRate)
	if st == nil {
		return
	}
	st = newVolume(st, p.volume)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.played[s]++
	if p.started {
		speaker.Lock()
		p.mixer.Add(st)
		speaker.Unlock()
		return
	}
	p.mixer.Add(st)
}

// Played returns how many times s was queued.
func (p *Player) Played(s Sound) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[s]
}

// ReportState is silent.
func (p *Player) ReportState(score, lives, level int) {}

func (p *Player) NotifyCollected(pos object.Vec) { p.Play(SoundCollect) }

func (p *Player) NotifyMissed() { p.Play(SoundMiss) }

func (p *Player) NotifyLevelUp(level int) { p.Play(SoundLevelUp) }

func (p *Player) NotifyGameOver(score, level int) { p.Play(SoundGameOver) }
