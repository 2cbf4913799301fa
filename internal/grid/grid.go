// Package grid materialises the editable cell matrix of a puzzle.
//
// A Grid is an immutable value: every transform returns a new Grid that
// shares untouched columns with its predecessor, so a snapshot handed to an
// observer never changes underneath it.
package grid

import (
	"fmt"
	"unicode/utf8"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/puzzle"
)

// Cell is one square of the grid.
type Cell struct {
	Value      string `json:"value"`
	Number     int    `json:"number,omitempty"`
	IsEditable bool   `json:"editable"`
	IsError    bool   `json:"error,omitempty"`

	// Presentation flags. Nothing in the engine reads them.
	IsHighlighted bool `json:"highlighted,omitempty"`
	IsAnimating   bool `json:"animating,omitempty"`
}

// Change records one committed cell value change.
type Change struct {
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Value         string `json:"value"`
	PreviousValue string `json:"previousValue"`
}

// Grid is a cols×rows matrix indexed [x][y].
type Grid struct {
	cells [][]Cell
	cols  int
	rows  int
}

// Build creates the grid for entries. Covered cells become editable and take
// their value from saved[x][y] when present; start cells get the clue
// number. Cells covered by no clue stay blocks with no value.
func Build(rows, cols int, entries []puzzle.Clue, saved [][]string) (Grid, error) {
	if rows < 1 || cols < 1 {
		return Grid{}, fmt.Errorf("%w: grid is %dx%d", apperr.ErrInvalidPuzzle, cols, rows)
	}
	cells := make([][]Cell, cols)
	for x := range cells {
		cells[x] = make([]Cell, rows)
	}

	for i := range entries {
		e := &entries[i]
		if !e.InBounds(cols, rows) {
			return Grid{}, fmt.Errorf("%w: entry %q at %v length %d leaves the %dx%d grid",
				apperr.ErrInvalidPuzzle, e.ID, e.Position, e.Length, cols, rows)
		}
		start := &cells[e.Position.X][e.Position.Y]
		// Across and down starting on one cell share a number in well-formed
		// data; keep the smaller if they ever disagree.
		if start.Number == 0 || e.Number < start.Number {
			start.Number = e.Number
		}
		for _, p := range e.Cells() {
			cells[p.X][p.Y].IsEditable = true
		}
	}

	for x := range cells {
		for y := range cells[x] {
			if cells[x][y].IsEditable {
				cells[x][y].Value = savedValue(saved, x, y)
			}
		}
	}

	return Grid{cells: cells, cols: cols, rows: rows}, nil
}

func savedValue(saved [][]string, x, y int) string {
	if x >= len(saved) || y >= len(saved[x]) {
		return ""
	}
	v := saved[x][y]
	if utf8.RuneCountInString(v) > 1 {
		r, _ := utf8.DecodeRuneInString(v)
		return string(r)
	}
	return v
}

func (g Grid) Cols() int { return g.cols }
func (g Grid) Rows() int { return g.rows }

// InBounds reports whether (x, y) is a cell of the grid.
func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

// At returns the cell at (x, y). Out-of-bounds positions yield a zero block.
func (g Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Cell{}
	}
	return g.cells[x][y]
}

func (g Grid) Editable(x, y int) bool {
	return g.At(x, y).IsEditable
}

// SetValue returns a grid identical to g except that (x, y) holds value and
// has its error flag cleared. The bool reports whether the value changed.
func (g Grid) SetValue(x, y int, value string) (Grid, Change, bool) {
	if !g.InBounds(x, y) {
		return g, Change{}, false
	}
	out := g.shallowCopy()
	col := make([]Cell, g.rows)
	copy(col, g.cells[x])
	out.cells[x] = col
	ch, changed := write(&col[y], x, y, value)
	col[y].IsError = false
	return out, ch, changed
}

// MapCells applies fn to every cell and returns the resulting grid along
// with one Change per cell whose value fn altered. Value changes clear the
// error flag exactly as SetValue does.
func (g Grid) MapCells(fn func(c Cell, x, y int) Cell) (Grid, []Change) {
	out := Grid{cells: make([][]Cell, g.cols), cols: g.cols, rows: g.rows}
	var changes []Change
	for x := range g.cells {
		out.cells[x] = make([]Cell, g.rows)
		for y, c := range g.cells[x] {
			next := fn(c, x, y)
			value := next.Value
			next.Value = c.Value
			if ch, changed := write(&next, x, y, value); changed {
				changes = append(changes, ch)
			}
			out.cells[x][y] = next
		}
	}
	return out, changes
}

// MarkErrors flags the given cells as failed verification.
func (g Grid) MarkErrors(cells []puzzle.Position) Grid {
	if len(cells) == 0 {
		return g
	}
	out := g.shallowCopy()
	copied := make(map[int]bool)
	for _, p := range cells {
		if !g.InBounds(p.X, p.Y) {
			continue
		}
		if !copied[p.X] {
			col := make([]Cell, g.rows)
			copy(col, g.cells[p.X])
			out.cells[p.X] = col
			copied[p.X] = true
		}
		out.cells[p.X][p.Y].IsError = true
	}
	return out
}

// Values returns the saved-state form of the grid: a column-major matrix of
// cell values.
func (g Grid) Values() [][]string {
	out := make([][]string, g.cols)
	for x := range g.cells {
		out[x] = make([]string, g.rows)
		for y, c := range g.cells[x] {
			out[x][y] = c.Value
		}
	}
	return out
}

// Cells returns a copy of the cell matrix for renderers.
func (g Grid) Cells() [][]Cell {
	out := make([][]Cell, g.cols)
	for x := range g.cells {
		out[x] = make([]Cell, g.rows)
		copy(out[x], g.cells[x])
	}
	return out
}

func (g Grid) shallowCopy() Grid {
	cols := make([][]Cell, len(g.cells))
	copy(cols, g.cells)
	return Grid{cells: cols, cols: g.cols, rows: g.rows}
}

// write is the single place a cell value is assigned.
func write(c *Cell, x, y int, value string) (Change, bool) {
	prev := c.Value
	if prev == value {
		return Change{}, false
	}
	c.Value = value
	c.IsError = false
	return Change{X: x, Y: y, Value: value, PreviousValue: prev}, true
}
