// Package object defines the entities of the play field: falling treats, the
// bird that catches them and the spawner that drops them.
package object

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/tomz197/birdtreats/internal/physics"
)

// Vec is a position on the play field. Y grows upward; the field is centred
// on x = 0 and the depth axis is fixed, so it is omitted.
type Vec struct {
	X, Y float64
}

// DistanceTo returns the Euclidean distance between two positions.
func (v Vec) DistanceTo(o Vec) float64 {
	return physics.Distance(v.X, v.Y, o.X, o.Y)
}

// Rand is the random source used for spawning. *rand.Rand satisfies it;
// tests inject a seeded or scripted source.
type Rand interface {
	Float64() float64
}

// TagKind is the visual category of a treat.
type TagKind int

const (
	TagRed   TagKind = iota // Early levels: red or green
	TagGreen
	TagHue                  // Later levels: any fully saturated hue
)

// String returns the category name.
func (k TagKind) String() string {
	switch k {
	case TagRed:
		return "red"
	case TagGreen:
		return "green"
	case TagHue:
		return "hue"
	default:
		return "unknown"
	}
}

// Tag is the visual tag of a treat. The simulation never reads it; it is
// carried for renderers.
type Tag struct {
	Kind  TagKind
	Color colorful.Color
}

var (
	tagRedColor   = colorful.Color{R: 1, G: 0, B: 0}
	tagGreenColor = colorful.Color{R: 0, G: 1, B: 0}
)

// NewTag builds a fixed-category tag.
func NewTag(kind TagKind) Tag {
	if kind == TagGreen {
		return Tag{Kind: TagGreen, Color: tagGreenColor}
	}
	return Tag{Kind: TagRed, Color: tagRedColor}
}

// HueTag builds a tag with the given hue (0..1), full saturation and half
// lightness.
func HueTag(hue float64) Tag {
	return Tag{Kind: TagHue, Color: colorful.Hsl(hue*360, 1, 0.5)}
}

// Hex returns the tag colour as #rrggbb.
func (t Tag) Hex() string {
	return t.Color.Clamped().Hex()
}
