package loop

import "github.com/tomz197/birdtreats/internal/draw"

// Text colours
const (
	colorText   draw.Color = "#e8e8e8"
	colorDim    draw.Color = "#8a8a8a"
	colorTitle  draw.Color = "#ffd23f"
	colorLives  draw.Color = "#ff4d6d"
	colorWarn   draw.Color = "#ff8c1a"
	colorPrompt draw.Color = "#7ee787"
)

// Shutdown
const (
	ShutdownDisplaySeconds = 5.0 // Seconds to show the shutdown notice before disconnecting
)
