package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ochaos/entropy/internal/game"
)

var colourStyles = map[game.Colour]lipgloss.Style{
	game.Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	game.Orange: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	game.Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	game.Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	game.Blue:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
	game.Indigo: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	game.Violet: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
}

var emptyCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// RenderBoard draws board as a 7x7 grid of coloured glyphs, one space apart,
// centered to the terminal width when stdout is a terminal.
func RenderBoard(board *game.BoardState) string {
	var rows []string
	for r := 0; r < game.BoardSize; r++ {
		var cells []string
		for c := 0; c < game.BoardSize; c++ {
			cells = append(cells, styledGlyph(board.Cell(game.RC(r, c))))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	grid := strings.Join(rows, "\n")
	return centerToTerminalWidth(grid)
}

func styledGlyph(c game.Colour) string {
	if c == game.Empty {
		return emptyCellStyle.Render(c.String())
	}
	return colourStyles[c].Render(c.String())
}

func centerToTerminalWidth(block string) string {
	width, _, err := term.GetSize(0)
	if err != nil || width <= 0 {
		return block
	}
	lines := strings.Split(block, "\n")
	var out []string
	for _, line := range lines {
		out = append(out, lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
	}
	return strings.Join(out, "\n")
}

// ResultBanner renders the final score after a game ends.
func ResultBanner(board *game.BoardState) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	return style.Render(fmt.Sprintf("Final score: %d", board.TotalScore()))
}
