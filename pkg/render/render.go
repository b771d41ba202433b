// Package render turns a game snapshot into the plain text grid served over HTTP.
package render

import (
	"fmt"
	"strings"

	"github.com/cbodonnell/snek/pkg/game"
)

const (
	GlyphEmpty = "░"
	GlyphSnake = "█"
	GlyphFood  = "®"

	lineBreak = "\r\n"
)

// Render writes the score line followed by the grid, row by row from top to
// bottom and left to right within a row. The game is not modified.
func Render(g *game.Game) string {
	grid := make([][]string, g.Height)
	for y := range grid {
		grid[y] = make([]string, g.Width)
		for x := range grid[y] {
			grid[y][x] = GlyphEmpty
		}
	}

	if g.Snake != nil {
		for _, p := range g.Snake.Body {
			if p.X < g.Width && p.Y < g.Height {
				grid[p.Y][p.X] = GlyphSnake
			}
		}
	}

	if g.Food != nil && g.Food.X < g.Width && g.Food.Y < g.Height {
		grid[g.Food.Y][g.Food.X] = GlyphFood
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d %s", g.Score, lineBreak)
	for _, row := range grid {
		for _, glyph := range row {
			b.WriteString(" ")
			b.WriteString(glyph)
			b.WriteString(" ")
		}
		b.WriteString(lineBreak)
	}
	return b.String()
}
