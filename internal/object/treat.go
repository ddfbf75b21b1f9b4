package object

// Treat is a falling collectible. Its fall speed is not stored here: every
// live treat falls at the session's shared speed.
type Treat struct {
	ID  uint64
	Pos Vec
	Tag Tag
}

// Fall moves the treat down by speed units.
func (t *Treat) Fall(speed float64) {
	t.Pos.Y -= speed
}

// Below reports whether the treat has dropped under the line y.
func (t *Treat) Below(y float64) bool {
	return t.Pos.Y < y
}
