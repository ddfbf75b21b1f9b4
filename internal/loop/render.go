package loop

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/draw"
	"github.com/tomz197/birdtreats/internal/game"
	"github.com/tomz197/birdtreats/internal/object"
)

const (
	viewMargin   = 1.0 // Field units shown above spawn and below the miss line
	treatRadius  = 2.5 // Logical units
	birdBodySize = 4.0 // Logical units
	flapPeriod   = 12  // Ticks per wing beat

	beakColor     draw.Color = "#ff8c1a"
	eyeColor      draw.Color = "#101010"
	missLineColor draw.Color = "#5a1f1f"
	flashColor    draw.Color = "#ff2020"
)

// projector maps play-field units (y up) to logical canvas units (y down).
type projector struct {
	halfWidth float64
	top       float64
	bottom    float64
}

func newProjector(t config.Tuning) projector {
	return projector{
		halfWidth: t.HalfWidth,
		top:       t.SpawnY + viewMargin,
		bottom:    t.MissY - viewMargin,
	}
}

// toLogical converts a field position to canvas coordinates.
func (p projector) toLogical(v object.Vec) draw.Point {
	return draw.Point{
		X: (v.X + p.halfWidth) / (2 * p.halfWidth) * config.ViewWidth,
		Y: (p.top - v.Y) / (p.top - p.bottom) * config.ViewHeight,
	}
}

// fieldX converts a logical canvas x back to a field x.
func (p projector) fieldX(lx float64) float64 {
	return lx/config.ViewWidth*2*p.halfWidth - p.halfWidth
}

// drawWorld paints the miss line, treats and bird of one snapshot.
func drawWorld(canvas *draw.Canvas, proj projector, missY float64, snap game.Snapshot, birdColor colorful.Color) {
	line := proj.toLogical(object.Vec{Y: missY}).Y
	canvas.DrawLine(draw.Point{X: 0, Y: line}, draw.Point{X: config.ViewWidth - 1, Y: line}, missLineColor)

	for _, tr := range snap.Treats {
		p := proj.toLogical(tr.Pos)
		canvas.FillCircle(p.X, p.Y, treatRadius, draw.Color(tr.Tag.Hex()))
	}

	drawBird(canvas, proj.toLogical(snap.Bird.Pos), snap.Bird.Rotation, snap.Ticks, birdColor)
}

// drawBird draws a round body, a flapping wing, a beak and an eye, all
// rotated by rot around the body centre.
func drawBird(canvas *draw.Canvas, at draw.Point, rot float64, ticks uint64, color colorful.Color) {
	body := draw.Color(color.Clamped().Hex())
	wing := draw.Color(color.BlendLab(colorful.Color{}, 0.35).Clamped().Hex())
	sin, cos := math.Sincos(rot)
	place := func(x, y float64) draw.Point {
		return draw.Point{X: at.X + x*cos - y*sin, Y: at.Y + x*sin + y*cos}
	}

	canvas.FillCircle(at.X, at.Y, birdBodySize, body)

	flap := -2.0
	if (ticks/flapPeriod)%2 == 1 {
		flap = 2.0
	}
	pts := canvas.BorrowPoints(3)
	pts[0] = place(-2, 0)
	pts[1] = place(2, 0)
	pts[2] = place(-1, flap-1)
	canvas.DrawPolygon(pts, true, wing)

	pts = canvas.BorrowPoints(3)
	pts[0] = place(birdBodySize-0.5, -1.5)
	pts[1] = place(birdBodySize+3, 0)
	pts[2] = place(birdBodySize-0.5, 1.5)
	canvas.DrawPolygon(pts, true, beakColor)

	eye := place(birdBodySize*0.4, -birdBodySize*0.4)
	canvas.Set(eye.X, eye.Y, eyeColor)
}

// drawFlash frames the canvas in red while a life-lost flash is active.
func drawFlash(canvas *draw.Canvas, strength float64) {
	if strength <= 0 {
		return
	}
	red, _ := colorful.Hex(string(flashColor))
	c := draw.Color(colorful.Color{}.BlendRgb(red, strength).Clamped().Hex())
	w, h := float64(config.ViewWidth-1), float64(config.ViewHeight-1)
	for i := 0.0; i < 2; i++ {
		pts := canvas.BorrowPoints(4)
		pts[0] = draw.Point{X: i, Y: i}
		pts[1] = draw.Point{X: w - i, Y: i}
		pts[2] = draw.Point{X: w - i, Y: h - i}
		pts[3] = draw.Point{X: i, Y: h - i}
		canvas.DrawPolygon(pts, false, c)
	}
}
