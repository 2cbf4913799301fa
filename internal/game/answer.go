package game

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/starford/grille/internal/grid"
	"github.com/starford/grille/internal/puzzle"
)

// inputPattern accepts one ASCII letter or digit, or one Latin-1 letter.
var inputPattern = regexp.MustCompile(`^[A-Za-z0-9\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{00FF}]$`)

// ValidInput reports whether ch would be accepted by InsertCharacter. The
// pattern is matched against the uppercased form: ÿ, whose capital is
// outside Latin-1, and ß, which has no single-letter capital, are refused.
func ValidInput(ch string) bool {
	return ch != "ß" && inputPattern.MatchString(strings.ToUpper(ch))
}

// InsertCharacter writes ch, uppercased, into the focused cell and advances
// focus. Anything but a single accepted character is ignored.
func (g *Game) InsertCharacter(ch string) bool {
	s := g.nav.State()
	if !s.Focused || !ValidInput(ch) {
		return false
	}
	g.setValue(s.Cell.X, s.Cell.Y, strings.ToUpper(ch))
	g.save()
	g.nav.FocusNext()
	return true
}

// DeleteAtFocus clears the focused cell. On an already empty cell it moves
// focus back one cell instead.
func (g *Game) DeleteAtFocus() bool {
	s := g.nav.State()
	if !s.Focused {
		return false
	}
	if g.grid.At(s.Cell.X, s.Cell.Y).Value == "" {
		return g.nav.FocusPrevious()
	}
	g.setValue(s.Cell.X, s.Cell.Y, "")
	g.save()
	return true
}

// HasBeenAnswered reports whether every cell of c holds a character.
func (g *Game) HasBeenAnswered(c *puzzle.Clue) bool {
	for _, p := range c.Cells() {
		if !filled(g.grid.At(p.X, p.Y).Value) {
			return false
		}
	}
	return true
}

func filled(v string) bool {
	return utf8.RuneCountInString(v) == 1
}

// CheckClue clears every filled cell of c that disagrees with its solution
// and flags it as an error. The flagged cells are returned. Entries without
// a solution are left alone.
func (g *Game) CheckClue(c *puzzle.Clue) []puzzle.Position {
	bad := g.check(c)
	g.save()
	return bad
}

// CheckAll checks every entry of the puzzle.
func (g *Game) CheckAll() []puzzle.Position {
	var bad []puzzle.Position
	for i := range g.puzzle.Entries {
		bad = append(bad, g.check(&g.puzzle.Entries[i])...)
	}
	g.save()
	return bad
}

// CheckGroup checks every entry of the compound answer c belongs to.
func (g *Game) CheckGroup(c *puzzle.Clue) []puzzle.Position {
	if c == nil {
		return nil
	}
	var bad []puzzle.Position
	for _, e := range g.puzzle.GroupEntries(c) {
		bad = append(bad, g.check(e)...)
	}
	g.save()
	return bad
}

// CheckFocusGroup checks every entry of the focused compound answer.
func (g *Game) CheckFocusGroup() []puzzle.Position {
	var bad []puzzle.Position
	for i := range g.puzzle.Entries {
		c := &g.puzzle.Entries[i]
		if g.nav.IsInFocusGroup(c) {
			bad = append(bad, g.check(c)...)
		}
	}
	g.save()
	return bad
}

func (g *Game) check(c *puzzle.Clue) []puzzle.Position {
	if c == nil || !c.HasSolution() {
		return nil
	}
	solution := []rune(c.Solution)
	var bad []puzzle.Position
	for i, p := range c.Cells() {
		if i >= len(solution) {
			break
		}
		v := g.grid.At(p.X, p.Y).Value
		if filled(v) && v != string(solution[i]) {
			bad = append(bad, p)
		}
	}
	for _, p := range bad {
		g.setValue(p.X, p.Y, "")
	}
	g.grid = g.grid.MarkErrors(bad)
	return bad
}

// ClearableCells returns the cells of c, or of every member of c's group,
// that can be blanked without losing a finished answer of an unrelated
// crossing clue. A cell is clearable when no clue crosses it, when the
// crossing clue is grouped with the clue being cleared, or when the
// crossing clue is not fully answered.
func (g *Game) ClearableCells(c *puzzle.Clue) []puzzle.Position {
	if !c.InGroup() {
		return g.clearableForEntry(c)
	}
	seen := make(map[puzzle.Position]struct{})
	var out []puzzle.Position
	for _, e := range g.puzzle.GroupEntries(c) {
		for _, p := range g.clearableForEntry(e) {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) clearableForEntry(c *puzzle.Clue) []puzzle.Position {
	var out []puzzle.Position
	for _, p := range c.Cells() {
		crossing := g.index.Clue(p.X, p.Y, c.Direction.Other())
		if crossing == nil || c.GroupedWith(crossing) || !g.HasBeenAnswered(crossing) {
			out = append(out, p)
		}
	}
	return out
}

// ClearClue blanks the clearable cells of c's compound answer.
func (g *Game) ClearClue(c *puzzle.Clue) bool {
	if c == nil {
		return false
	}
	for _, p := range g.ClearableCells(c) {
		g.setValue(p.X, p.Y, "")
	}
	g.save()
	return true
}

// ClearSingle blanks the clearable cells of the focused compound answer.
func (g *Game) ClearSingle() bool {
	return g.ClearClue(g.nav.ClueInFocus())
}

// ClearAll blanks every cell of the grid.
func (g *Game) ClearAll() {
	next, changes := g.grid.MapCells(func(c grid.Cell, _, _ int) grid.Cell {
		c.Value = ""
		return c
	})
	g.grid = next
	for _, ch := range changes {
		g.emit(ch)
	}
	g.save()
}
