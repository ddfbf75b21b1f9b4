package loop

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tomz197/birdtreats/internal/config"
	"github.com/tomz197/birdtreats/internal/draw"
	"github.com/tomz197/birdtreats/internal/game"
)

// layout lays out panels as plain text; the canvas colours them.
var layout = newLayoutRenderer()

func newLayoutRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

var panelStyle = layout.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(1, 3).
	Align(lipgloss.Center)

// panel boxes lines into a centred panel and returns its rows.
func panel(lines ...string) []string {
	return strings.Split(panelStyle.Render(strings.Join(lines, "\n")), "\n")
}

// drawPanel writes a panel centred on the canvas. highlight picks the rows
// (by content line index) drawn in the accent colour.
func drawPanel(canvas *draw.Canvas, rows []string, accent draw.Color, highlight map[int]bool) {
	top := (canvas.TerminalHeight()-len(rows))/2 + 1
	for i, row := range rows {
		col := (canvas.TerminalWidth()-lipgloss.Width(row))/2 + 1
		fg := colorText
		// Rows 0-1 are the border and top padding.
		if highlight[i-2] {
			fg = accent
		}
		canvas.Text(col, top+i, row, fg, highlight[i-2])
	}
}

// blinkOn alternates every 600ms.
func blinkOn() bool {
	return time.Now().UnixMilli()/600%2 == 0
}

// drawTitleScreen draws the title screen.
func (c *Client) drawTitleScreen() {
	prompt := ">>  Press SPACE to Start  <<"
	if !blinkOn() {
		prompt = strings.Repeat(" ", len(prompt))
	}
	rows := panel(
		"B I R D   T R E A T S",
		"",
		"Catch the falling treats. Miss three and it's over.",
		"",
		"Mouse / A D / < >  . .  Move",
		"P  . . . . . . . . . .  Pause",
		"Q  . . . . . . . . . .   Quit",
		"",
		prompt,
	)
	drawPanel(c.canvas, rows, colorTitle, map[int]bool{0: true, 8: true})
}

// drawPlayingHUD draws score, level and lives on the top row.
func (c *Client) drawPlayingHUD() {
	e := c.effects
	w := c.canvas.TerminalWidth()

	c.canvas.Text(2, 1, fmt.Sprintf("Score: %d", e.Score), colorText, true)

	level := fmt.Sprintf("Level %d", e.Level)
	c.canvas.Text((w-len(level))/2+1, 1, level, colorDim, false)

	lives := strings.TrimSpace(strings.Repeat("♥ ", e.Lives))
	c.canvas.Text(w-lipgloss.Width(lives), 1, lives, colorLives, true)
}

// drawFloats draws the rising score popups, fading as they age.
func (c *Client) drawFloats() {
	for _, f := range c.effects.Floats {
		lp := c.proj.toLogical(f.Pos)
		col, row := c.canvas.LogicalToTerminal(lp.X, lp.Y)
		fg := colorPrompt
		if f.Age > config.FloatingTextSeconds/2 {
			fg = colorDim
		}
		c.canvas.Text(col-len(f.Text)/2, row-2, f.Text, fg, true)
	}
}

// drawLevelUpBanner draws the level-up banner in the bird's new colour.
func (c *Client) drawLevelUpBanner() {
	if c.effects.Banner <= 0 {
		return
	}
	color := draw.Color(c.effects.BirdColor.Clamped().Hex())
	row := c.canvas.TerminalHeight() / 3
	c.canvas.TextCentered(row, "LEVEL UP!", color, true)
	c.canvas.TextCentered(row+1, fmt.Sprintf("Level %d", c.effects.BannerLevel), colorText, false)
}

// drawPausedScreen draws the pause notice.
func (c *Client) drawPausedScreen() {
	rows := panel("PAUSED", "", "Press P to resume")
	drawPanel(c.canvas, rows, colorTitle, map[int]bool{0: true})
}

// drawGameOverScreen draws the final score panel with the Play Again action.
func (c *Client) drawGameOverScreen() {
	prompt := ">>  Play Again: SPACE  <<"
	if !blinkOn() {
		prompt = strings.Repeat(" ", len(prompt))
	}
	rows := panel(
		"G A M E   O V E R",
		"",
		fmt.Sprintf("Final score: %d", c.effects.FinalScore),
		fmt.Sprintf("Level reached: %d", c.effects.FinalLevel),
		"",
		prompt,
	)
	drawPanel(c.canvas, rows, colorLives, map[int]bool{0: true, 5: true})
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen() {
	left := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
	rows := panel(
		"INACTIVITY WARNING",
		"",
		fmt.Sprintf("You will be disconnected in %d seconds.", max(left, 0)),
		"",
		"Press any key to continue",
	)
	drawPanel(c.canvas, rows, colorWarn, map[int]bool{0: true})
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen() {
	rows := panel(
		"SERVER SHUTTING DOWN",
		"",
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %d seconds...", int(c.state.shutdownTimer)+1),
		"Press Q to disconnect now",
	)
	drawPanel(c.canvas, rows, colorWarn, map[int]bool{0: true})
}

// screenName identifies what drawUI shows, so transitions clear the terminal.
func (c *Client) screenName() string {
	switch {
	case c.state.Phase != PhasePlaying:
		return c.state.Phase.String()
	case c.state.isInactive:
		return "inactive"
	}
	return c.session.State().String()
}

// drawUI draws the overlay for the current screen.
func (c *Client) drawUI() {
	switch c.state.Phase {
	case PhaseShutdown:
		c.drawShutdownScreen()
		return
	case PhaseTitle:
		c.drawTitleScreen()
		return
	}

	c.drawPlayingHUD()
	if c.state.isInactive {
		c.drawInactivityScreen()
		return
	}

	c.drawFloats()
	switch c.session.State() {
	case game.StatePlaying:
		c.drawLevelUpBanner()
	case game.StatePaused:
		c.drawPausedScreen()
	case game.StateGameOver:
		c.drawGameOverScreen()
	}
}
