// Package focus implements the focus and navigation state machine: which
// cell is active, in which direction answers are being entered, and how
// keyboard and pointer input move that focus around the grid.
package focus

import (
	"github.com/starford/grille/internal/clueindex"
	"github.com/starford/grille/internal/puzzle"
)

// Event is emitted on every successful focus change.
type Event struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	ClueID string `json:"clueId"`
}

// State is the current focus. The zero value is unfocused.
type State struct {
	Focused   bool             `json:"focused"`
	Cell      puzzle.Position  `json:"cell"`
	Direction puzzle.Direction `json:"direction"`
}

// Navigator owns the focus state of one puzzle.
type Navigator struct {
	puzzle  *puzzle.Puzzle
	index   *clueindex.Index
	state   State
	onFocus func(Event)
}

// NewNavigator returns an unfocused navigator. onFocus may be nil.
func NewNavigator(p *puzzle.Puzzle, ix *clueindex.Index, onFocus func(Event)) *Navigator {
	return &Navigator{puzzle: p, index: ix, onFocus: onFocus}
}

// State returns the current focus.
func (n *Navigator) State() State {
	return n.state
}

// FocusClue focuses (x, y) in direction d if a clue runs through the cell in
// that direction. It reports whether focus changed.
func (n *Navigator) FocusClue(x, y int, d puzzle.Direction) bool {
	c := n.index.Clue(x, y, d)
	if c == nil {
		return false
	}
	n.state = State{Focused: true, Cell: puzzle.Position{X: x, Y: y}, Direction: d}
	if n.onFocus != nil {
		n.onFocus(Event{X: x, Y: y, ClueID: c.ID})
	}
	return true
}

// FocusFirstCell focuses the first cell of c.
func (n *Navigator) FocusFirstCell(c *puzzle.Clue) bool {
	return n.FocusClue(c.Position.X, c.Position.Y, c.Direction)
}

// FocusClueByID focuses the first cell of the entry with the given id.
func (n *Navigator) FocusClueByID(id string) bool {
	c := n.puzzle.ClueByID(id)
	if c == nil {
		return false
	}
	return n.FocusFirstCell(c)
}

// Select handles direct activation of a cell.
//
// Activating the focused cell again flips to the crossing clue when one
// exists. Activating another cell of the focused clue keeps the direction.
// Otherwise the direction is down when the cell starts a down clue but no
// across clue, else across when an across clue covers it, else down.
func (n *Navigator) Select(x, y int) bool {
	entry, ok := n.index.CluesFor(x, y)
	if !ok {
		return false
	}
	p := puzzle.Position{X: x, Y: y}

	if n.state.Focused && n.state.Cell == p {
		other := n.state.Direction.Other()
		if entry.Get(other) != nil {
			return n.FocusClue(x, y, other)
		}
		return false
	}

	if focused := n.ClueInFocus(); focused != nil && focused.Contains(p) {
		return n.FocusClue(x, y, n.state.Direction)
	}

	isStart := func(c *puzzle.Clue) bool { return c != nil && c.Position == p }
	var d puzzle.Direction
	switch {
	case !isStart(entry.Across) && isStart(entry.Down):
		d = puzzle.Down
	case entry.Across != nil:
		d = puzzle.Across
	default:
		d = puzzle.Down
	}
	return n.FocusClue(x, y, d)
}

// MoveFocus moves one step along a single axis, wrapping at the grid edges
// and skipping block cells. dx and dy are -1, 0 or 1 with exactly one of
// them non-zero.
func (n *Navigator) MoveFocus(dx, dy int) bool {
	if !n.state.Focused {
		return false
	}
	p, ok := n.nextEditable(dx, dy)
	if !ok {
		return false
	}
	entry, _ := n.index.CluesFor(p.X, p.Y)
	d := puzzle.Down
	if (dx != 0 && entry.Across != nil) || (dy != 0 && entry.Down == nil) {
		d = puzzle.Across
	}
	return n.FocusClue(p.X, p.Y, d)
}

func (n *Navigator) nextEditable(dx, dy int) (puzzle.Position, bool) {
	p := n.state.Cell
	var steps int
	switch {
	case dy == 1 || dy == -1:
		steps = n.puzzle.Rows()
	case dx == 1 || dx == -1:
		steps = n.puzzle.Cols()
	default:
		return p, false
	}
	// The focused cell is editable, so a full cycle always finds one.
	for range steps {
		if dy != 0 {
			p.Y = wrap(p.Y+dy, n.puzzle.Rows())
		} else {
			p.X = wrap(p.X+dx, n.puzzle.Cols())
		}
		if n.index.Editable(p.X, p.Y) {
			return p, true
		}
	}
	return p, false
}

func wrap(i, size int) int {
	switch {
	case i == -1:
		return size - 1
	case i == size:
		return 0
	default:
		return i
	}
}

// FocusNext advances to the next cell of the answer being entered. From the
// last cell of a clue it continues into the next clue of the group, if any.
func (n *Navigator) FocusNext() bool {
	c := n.ClueInFocus()
	if c == nil {
		return false
	}
	if c.IsLastCell(n.state.Cell) {
		next := n.puzzle.NextInGroup(c)
		if next == nil {
			return false
		}
		return n.FocusFirstCell(next)
	}
	return n.step(1)
}

// FocusPrevious retreats to the previous cell of the answer being entered.
// From the first cell of a clue it continues into the last cell of the
// previous clue of the group, if any.
func (n *Navigator) FocusPrevious() bool {
	c := n.ClueInFocus()
	if c == nil {
		return false
	}
	if c.IsFirstCell(n.state.Cell) {
		prev := n.puzzle.PreviousInGroup(c)
		if prev == nil {
			return false
		}
		last := prev.LastCell()
		return n.FocusClue(last.X, last.Y, prev.Direction)
	}
	return n.step(-1)
}

func (n *Navigator) step(delta int) bool {
	switch n.state.Direction {
	case puzzle.Across:
		return n.MoveFocus(delta, 0)
	default:
		return n.MoveFocus(0, delta)
	}
}

// FocusNextClue jumps to the first cell of the entry after the focused one,
// wrapping to the first entry.
func (n *Navigator) FocusNextClue() bool {
	return n.jumpClue(1)
}

// FocusPreviousClue jumps to the first cell of the entry before the focused
// one, wrapping to the last entry.
func (n *Navigator) FocusPreviousClue() bool {
	return n.jumpClue(-1)
}

func (n *Navigator) jumpClue(delta int) bool {
	i := n.puzzle.IndexOf(n.ClueInFocus())
	if i < 0 {
		return false
	}
	count := len(n.puzzle.Entries)
	next := &n.puzzle.Entries[(i+delta+count)%count]
	return n.FocusFirstCell(next)
}

// ClueInFocus returns the clue the focus points at, or nil.
func (n *Navigator) ClueInFocus() *puzzle.Clue {
	if !n.state.Focused {
		return nil
	}
	return n.index.Clue(n.state.Cell.X, n.state.Cell.Y, n.state.Direction)
}

// IsInFocusGroup reports whether c belongs to the focused clue's group.
func (n *Navigator) IsInFocusGroup(c *puzzle.Clue) bool {
	focused := n.ClueInFocus()
	if focused == nil {
		return false
	}
	return c.GroupedWith(focused)
}

// IsHighlighted reports whether (x, y) belongs to any clue of the focused
// group.
func (n *Navigator) IsHighlighted(x, y int) bool {
	focused := n.ClueInFocus()
	if focused == nil {
		return false
	}
	p := puzzle.Position{X: x, Y: y}
	for _, c := range n.puzzle.GroupEntries(focused) {
		if c.Contains(p) {
			return true
		}
	}
	return false
}
