package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/grille/internal/puzzle"
	"github.com/starford/grille/internal/session"
)

// Render draws a session snapshot as plain text: a header, the grid with
// '#' for blocks and '.' for empty cells, the focus line and the clue list.
func Render(snap session.Snapshot) string {
	var b strings.Builder

	name := snap.Name
	if name == "" {
		name = snap.PuzzleID
	}
	fmt.Fprintf(&b, "%s (session %s)\n", name, snap.ID)
	fmt.Fprintf(&b, "%d/%d answered", snap.Answered, snap.Total)
	if snap.Complete {
		b.WriteString(", complete")
	}
	b.WriteString("\n\n")

	b.WriteString("   ")
	for x := 0; x < snap.Cols; x++ {
		fmt.Fprintf(&b, "%2d", x)
	}
	b.WriteByte('\n')
	for y := 0; y < snap.Rows; y++ {
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x < snap.Cols; x++ {
			c := snap.Cells[x][y]
			ch := "."
			switch {
			case !c.IsEditable:
				ch = "#"
			case c.Value != "":
				ch = c.Value
			}
			fmt.Fprintf(&b, "%2s", ch)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if snap.Focus.Focused {
		fmt.Fprintf(&b, "focus: (%d,%d) %s", snap.Focus.Cell.X, snap.Focus.Cell.Y, snap.Focus.Direction)
		if snap.ClueInFocus != "" {
			fmt.Fprintf(&b, ", clue %s", snap.ClueInFocus)
		}
		b.WriteByte('\n')
	} else {
		b.WriteString("focus: none\n")
	}

	for _, dir := range []puzzle.Direction{puzzle.Across, puzzle.Down} {
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(dir.String()))
		for _, c := range snap.Clues {
			if c.Direction != dir {
				continue
			}
			mark := " "
			if c.Answered {
				mark = "x"
			}
			sel := ""
			if c.Selected {
				sel = " <"
			}
			fmt.Fprintf(&b, "[%s] %s %s: %s%s\n", mark, c.HumanNumber, c.ID, c.Text, sel)
		}
	}
	return b.String()
}
