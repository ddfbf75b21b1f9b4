package draw

import (
	"io"
	"math"
	"sort"
	"strings"

	"github.com/muesli/termenv"
)

// cell is one terminal character as it was last written.
type cell struct {
	ch   rune
	fg   Color
	bg   Color
	bold bool
}

// Canvas is a colour drawing buffer with 2x vertical resolution using
// half-block characters, plus a text layer on top. Render only rewrites the
// cells that changed since the previous frame.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x], "" if unset
	text           []cell  // Text layer: [row * termWidth + col], ch 0 if unset
	shown          []cell  // What the terminal currently displays
	redraw         bool    // Rewrite every cell on the next Render

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64 // In sub-pixels
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets for centering the render area when the
	// terminal is larger than the max resolution.
	offsetCol int
	offsetRow int

	profile termenv.Profile

	// Reusable buffers to reduce allocations
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// profile decides how colours are encoded; termenv.Ascii drops them.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64, profile termenv.Profile) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		profile:       profile,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
// A size change forces a full redraw.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]Color, c.subPixelHeight*termWidth)
		c.text = make([]cell, termHeight*termWidth)
		c.shown = make([]cell, termHeight*termWidth)
		c.redraw = true
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.redraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render rewrite every cell, e.g. after the
// screen was cleared.
func (c *Canvas) ForceRedraw() {
	c.redraw = true
}

// Clear resets the pixel and text layers. The terminal keeps its content
// until the next Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
	clear(c.text)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, color Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

// Set sets a pixel at logical coordinates (applies scaling).
func (c *Canvas) Set(x, y float64, color Color) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), color)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, color Color) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1, color)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon on the canvas.
// If filled is true, the interior is filled using scanline algorithm.
func (c *Canvas) DrawPolygon(points []Point, filled bool, color Color) {
	if len(points) < 3 {
		return
	}
	if filled {
		c.fillPolygon(points, color)
	}
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], color)
	}
}

// fillPolygon fills a polygon using scanline algorithm in pixel space.
func (c *Canvas) fillPolygon(points []Point, color Color) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]
	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections

		sort.Float64s(intersections)
		for i := 0; i+1 < len(intersections); i += 2 {
			for x := int(math.Ceil(intersections[i])); x <= int(math.Floor(intersections[i+1])); x++ {
				c.setPixel(x, y, color)
			}
		}
	}
}

// FillCircle fills a circle of logical radius r. The radius is scaled on
// each axis separately, so circles stay round on screen only when the
// logical space has the terminal's aspect ratio.
func (c *Canvas) FillCircle(cx, cy, r float64, color Color) {
	pcx, pcy := cx*c.scaleX, cy*c.scaleY
	rx, ry := r*c.scaleX, r*c.scaleY
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := int(math.Floor(pcy - ry)); y <= int(math.Ceil(pcy+ry)); y++ {
		dy := (float64(y) - pcy) / ry
		if dy < -1 || dy > 1 {
			continue
		}
		half := rx * math.Sqrt(1-dy*dy)
		for x := int(math.Round(pcx - half)); x <= int(math.Round(pcx+half)); x++ {
			c.setPixel(x, y, color)
		}
	}
	c.setPixel(int(math.Round(pcx)), int(math.Round(pcy)), color)
}

// Text writes s on the text layer starting at the 1-based canvas cell
// (col, row). Runes outside the canvas are dropped. Text hides pixels.
func (c *Canvas) Text(col, row int, s string, fg Color, bold bool) {
	r := row - 1
	if r < 0 || r >= c.termHeight {
		return
	}
	x := col - 1
	for _, ch := range s {
		if x >= 0 && x < c.termWidth {
			c.text[r*c.termWidth+x] = cell{ch: ch, fg: fg, bold: bold}
		}
		x++
	}
}

// TextCentered writes s centred horizontally on the given 1-based row.
func (c *Canvas) TextCentered(row int, s string, fg Color, bold bool) {
	col := (c.termWidth-len([]rune(s)))/2 + 1
	c.Text(col, row, s, fg, bold)
}

// compose returns the cell to display at (col, row), both 0-based.
func (c *Canvas) compose(col, row int) cell {
	if t := c.text[row*c.termWidth+col]; t.ch != 0 {
		return t
	}
	top := c.pixels[row*2*c.termWidth+col]
	var bottom Color
	if row*2+1 < c.subPixelHeight {
		bottom = c.pixels[(row*2+1)*c.termWidth+col]
	}
	switch {
	case top != "" && top == bottom:
		return cell{ch: BlockFull, fg: top}
	case top != "" && bottom != "":
		return cell{ch: BlockUpperHalf, fg: top, bg: bottom}
	case top != "":
		return cell{ch: BlockUpperHalf, fg: top}
	case bottom != "":
		return cell{ch: BlockLowerHalf, fg: bottom}
	}
	return cell{ch: BlockEmpty}
}

// styled encodes a single cell with the canvas colour profile.
func (c *Canvas) styled(ce cell) string {
	s := c.profile.String(string(ce.ch))
	if ce.fg != "" {
		s = s.Foreground(c.profile.Color(string(ce.fg)))
	}
	if ce.bg != "" {
		s = s.Background(c.profile.Color(string(ce.bg)))
	}
	if ce.bold {
		s = s.Bold()
	}
	return s.String()
}

// Render writes the cells that changed since the last Render to cw and
// returns how many were written.
func (c *Canvas) Render(cw *ChunkWriter) int {
	written := 0
	for row := 0; row < c.termHeight; row++ {
		lastCol := -2
		for col := 0; col < c.termWidth; col++ {
			ce := c.compose(col, row)
			idx := row*c.termWidth + col
			if !c.redraw && c.shown[idx] == ce {
				continue
			}
			c.shown[idx] = ce
			if col != lastCol+1 {
				cw.MoveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			}
			if ce.fg == "" && ce.bg == "" && !ce.bold {
				cw.WriteString(string(ce.ch))
			} else {
				cw.WriteString(c.styled(ce))
			}
			lastCol = col
			written++
		}
	}
	c.redraw = false
	return written
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	cw := NewChunkWriter(w)
	line := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			cw.MoveCursor(left, top)
			cw.WriteString("┌" + line + "┐")
			cw.MoveCursor(left, bottom)
			cw.WriteString("└" + line + "┘")
		} else {
			cw.MoveCursor(c.offsetCol+1, top)
			cw.WriteString(line)
			cw.MoveCursor(c.offsetCol+1, bottom)
			cw.WriteString(line)
		}
	}

	if hasH {
		startRow, endRow := top+1, bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			cw.MoveCursor(left, row)
			cw.WriteString("│")
			cw.MoveCursor(right, row)
			cw.WriteString("│")
		}
	}

	cw.Flush()
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height, in sub-pixels.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the canvas column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the canvas row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based canvas cell
// (col, row), for placing text next to canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

// TerminalToLogical converts a 1-based canvas column to a logical x.
func (c *Canvas) TerminalToLogical(col int) float64 {
	return (float64(col) - 0.5) / c.scaleX
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}
