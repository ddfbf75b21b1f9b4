package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/tomz197/birdtreats/internal/object"
)

// drain streams s to the end and returns the sample count and peak level.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatal("streamer never drained")
	return 0, 0
}

func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	n, peak := drain(t, NewOscillator(440, 100*time.Millisecond, WaveSine, rate))

	if n != rate.N(100*time.Millisecond) {
		t.Fatalf("streamed %d samples, want %d", n, rate.N(100*time.Millisecond))
	}
	if peak > 1 || peak < 0.99 {
		t.Fatalf("peak = %v, want about 1", peak)
	}
}

func TestSquareWaveValues(t *testing.T) {
	osc := NewOscillator(220, 50*time.Millisecond, WaveSquare, beep.SampleRate(44100))
	samples := make([][2]float64, 200)
	n, _ := osc.Stream(samples)
	for i := 0; i < n; i++ {
		if v := samples[i][0]; v != -1 && v != 1 {
			t.Fatalf("square sample %d = %v, want ±1", i, v)
		}
	}
}

func TestSweepChangesPitch(t *testing.T) {
	rate := beep.SampleRate(8000)
	osc := NewSweep(100, 1000, time.Second, WaveSaw, rate)
	buf := make([][2]float64, rate.N(time.Second))
	n, _ := osc.Stream(buf)

	// A saw only falls where its phase wraps, once per cycle.
	cycles := func(s [][2]float64) int {
		c := 0
		for i := 1; i < len(s); i++ {
			if s[i-1][0] > s[i][0] {
				c++
			}
		}
		return c
	}
	tenth := n / 10
	first, last := cycles(buf[:tenth]), cycles(buf[n-tenth:n])
	if last <= first*5 {
		t.Fatalf("cycles first=%d last=%d, want the end much higher", first, last)
	}
}

func TestEnvelopeShapesAttackAndRelease(t *testing.T) {
	rate := beep.SampleRate(1000)
	d := 100 * time.Millisecond
	s := NewEnvelope(NewOscillator(0, d, WaveSquare, rate), d, 10*time.Millisecond, 20*time.Millisecond, rate)

	buf := make([][2]float64, 100)
	n, _ := s.Stream(buf)
	if n != 100 {
		t.Fatalf("streamed %d samples, want 100", n)
	}
	if buf[0][0] != 0 {
		t.Fatalf("first sample = %v, want 0 at the start of the attack", buf[0][0])
	}
	if buf[50][0] != 1 {
		t.Fatalf("sustain sample = %v, want 1", buf[50][0])
	}
	if v := buf[95][0]; v <= 0 || v >= 0.5 {
		t.Fatalf("release sample = %v, want in (0, 0.5)", v)
	}
}

func TestSoundsDrain(t *testing.T) {
	for _, s := range []Sound{SoundCollect, SoundMiss, SoundLevelUp, SoundGameOver} {
		t.Run(s.String(), func(t *testing.T) {
			n, peak := drain(t, newSound(s, sampleRate))
			if n == 0 || peak == 0 {
				t.Fatalf("%v: %d samples, peak %v", s, n, peak)
			}
			if n > sampleRate.N(2*time.Second) {
				t.Fatalf("%v lasts %d samples, want under 2s", s, n)
			}
		})
	}
}

func TestPlayerMapsEventsToSounds(t *testing.T) {
	p := NewPlayer(0.5)
	defer p.Close()

	p.ReportState(0, 3, 1)
	p.NotifyCollected(object.Vec{})
	p.NotifyCollected(object.Vec{})
	p.NotifyMissed()
	p.NotifyLevelUp(2)
	p.NotifyGameOver(20, 2)

	want := map[Sound]int{SoundCollect: 2, SoundMiss: 1, SoundLevelUp: 1, SoundGameOver: 1}
	for s, n := range want {
		if got := p.Played(s); got != n {
			t.Errorf("Played(%v) = %d, want %d", s, got, n)
		}
	}
	if p.mixer.Len() != 5 {
		t.Fatalf("mixer holds %d streamers, want 5", p.mixer.Len())
	}
}

func TestPlayerSilentAtZeroVolume(t *testing.T) {
	p := NewPlayer(0)
	p.Play(SoundCollect)

	buf := make([][2]float64, 512)
	p.mixer.Stream(buf)
	for i, smp := range buf {
		if smp[0] != 0 {
			t.Fatalf("sample %d = %v, want silence", i, smp[0])
		}
	}
}
