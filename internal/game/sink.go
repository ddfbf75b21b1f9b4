package game

import "github.com/tomz197/birdtreats/internal/object"

// Sink receives everything the presentation layer needs from a session.
// Calls are fire-and-forget and happen on the goroutine that ticks the
// session.
type Sink interface {
	// ReportState is called once per Playing tick.
	ReportState(score, lives, level int)
	// NotifyCollected receives the field position where a treat was caught.
	// Projecting it to screen space is up to the sink.
	NotifyCollected(pos object.Vec)
	// NotifyMissed is called for a miss that cost a life but did not end the game.
	NotifyMissed()
	NotifyLevelUp(level int)
	NotifyGameOver(score, level int)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) ReportState(int, int, int)  {}
func (NopSink) NotifyCollected(object.Vec) {}
func (NopSink) NotifyMissed()              {}
func (NopSink) NotifyLevelUp(int)          {}
func (NopSink) NotifyGameOver(int, int)    {}

// MultiSink forwards every call to each sink in order.
type MultiSink []Sink

func (m MultiSink) ReportState(score, lives, level int) {
	for _, s := range m {
		s.ReportState(score, lives, level)
	}
}

func (m MultiSink) NotifyCollected(pos object.Vec) {
	for _, s := range m {
		s.NotifyCollected(pos)
	}
}

func (m MultiSink) NotifyMissed() {
	for _, s := range m {
		s.NotifyMissed()
	}
}

func (m MultiSink) NotifyLevelUp(level int) {
	for _, s := range m {
		s.NotifyLevelUp(level)
	}
}

func (m MultiSink) NotifyGameOver(score, level int) {
	for _, s := range m {
		s.NotifyGameOver(score, level)
	}
}

var (
	_ Sink = NopSink{}
	_ Sink = MultiSink(nil)
)
