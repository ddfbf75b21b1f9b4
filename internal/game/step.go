package game

import (
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/object"
	"github.com/tomz197/birdtreats/internal/physics"
)

// Outcome is how a treat left the field.
type Outcome int

const (
	OutcomeCollected Outcome = iota
	OutcomeMissed
)

// Resolution records one treat resolved during a step.
type Resolution struct {
	Treat   *object.Treat
	Outcome Outcome
}

// StepResult lists the treats resolved by a step in iteration order.
type StepResult struct {
	Resolved []Resolution
}

// Collected returns the caught treats.
func (r StepResult) Collected() []*object.Treat {
	return r.filter(OutcomeCollected)
}

// Missed returns the treats that fell past the miss line.
func (r StepResult) Missed() []*object.Treat {
	return r.filter(OutcomeMissed)
}

func (r StepResult) filter(o Outcome) []*object.Treat {
	var out []*object.Treat
	for _, res := range r.Resolved {
		if res.Outcome == o {
			out = append(out, res.Treat)
		}
	}
	return out
}

// Advance runs one simulation tick: the bird follows targetX, every treat
// falls by fallSpeed, and treats are classified. A treat within the capture
// radius is collected even if it is also past the miss line. Resolved treats
// are removed; the returned slice reuses the backing array of treats.
func Advance(bird *object.Bird, targetX float64, treats []*object.Treat, fallSpeed float64, t config.Tuning) ([]*object.Treat, StepResult) {
	bird.Follow(targetX, t.Smoothing)

	var result StepResult
	kept := treats[:0] // reuse backing array
	for _, tr := range treats {
		tr.Fall(fallSpeed)

		switch {
		case physics.WithinRadius(tr.Pos.X, tr.Pos.Y, bird.Pos.X, bird.Pos.Y, t.CaptureRadius):
			result.Resolved = append(result.Resolved, Resolution{Treat: tr, Outcome: OutcomeCollected})
		case tr.Below(t.MissY):
			result.Resolved = append(result.Resolved, Resolution{Treat: tr, Outcome: OutcomeMissed})
		default:
			kept = append(kept, tr)
		}
	}
	clear(treats[len(kept):])

	return kept, result
}
