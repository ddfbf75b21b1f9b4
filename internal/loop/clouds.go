package loop

import (
	"github.com/tomz197/birdtreats/internal/draw"
	"github.com/tomz197/birdtreats/internal/object"
)

const cloudColor draw.Color = "#3a4a5c"

// cloud is a background puff in logical canvas coordinates.
type cloud struct {
	X, Y   float64
	Radius float64
	Speed  float64 // Logical units per tick
}

// Clouds drift right across the field and wrap around.
type Clouds struct {
	items []cloud
	width float64
}

// NewClouds scatters n clouds over a width x height logical area.
func NewClouds(rng object.Rand, n int, width, height float64) *Clouds {
	c := &Clouds{width: width, items: make([]cloud, n)}
	for i := range c.items {
		c.items[i] = cloud{
			X:      rng.Float64() * width,
			Y:      height * (0.05 + rng.Float64()*0.6),
			Radius: 3 + rng.Float64()*4,
			Speed:  0.02 + rng.Float64()*0.06,
		}
	}
	return c
}

// Update moves every cloud one tick.
func (c *Clouds) Update() {
	for i := range c.items {
		cl := &c.items[i]
		cl.X += cl.Speed
		if cl.X-cl.Radius*2 > c.width {
			cl.X = -cl.Radius * 2
		}
	}
}

// Draw paints the clouds as clusters of three circles.
func (c *Clouds) Draw(canvas *draw.Canvas) {
	for _, cl := range c.items {
		canvas.FillCircle(cl.X, cl.Y, cl.Radius, cloudColor)
		canvas.FillCircle(cl.X-cl.Radius, cl.Y+cl.Radius*0.3, cl.Radius*0.7, cloudColor)
		canvas.FillCircle(cl.X+cl.Radius, cl.Y+cl.Radius*0.3, cl.Radius*0.7, cloudColor)
	}
}
