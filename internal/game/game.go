// Package game ties the grid, the clue index and the focus navigator
// together and implements answer entry, checking and clearing.
//
// A Game is not safe for concurrent use; callers serialise access.
package game

import (
	"fmt"

	"github.com/starford/grille/internal/clueindex"
	"github.com/starford/grille/internal/focus"
	"github.com/starford/grille/internal/grid"
	"github.com/starford/grille/internal/puzzle"
)

// Move is a committed cell value change.
type Move = grid.Change

// StateStore persists grid values between plays. Save is fire-and-forget:
// implementations handle their own failures.
type StateStore interface {
	Load(puzzleID string) ([][]string, bool)
	Save(puzzleID string, values [][]string)
}

// Option configures a Game.
type Option func(*Game)

// WithStateStore loads saved values at construction and saves after every
// mutating operation.
func WithStateStore(s StateStore) Option {
	return func(g *Game) {
		g.store = s
	}
}

// WithOnMove registers the move listener, called once per changed cell.
func WithOnMove(fn func(Move)) Option {
	return func(g *Game) {
		g.onMove = fn
	}
}

// WithOnFocus registers the focus listener, called on every focus change.
func WithOnFocus(fn func(focus.Event)) Option {
	return func(g *Game) {
		g.onFocus = fn
	}
}

// WithInitialClue focuses the first cell of the given entry once the game is
// built. Unknown ids are ignored.
func WithInitialClue(id string) Option {
	return func(g *Game) {
		g.initialClue = id
	}
}

// Game is one play of a puzzle.
type Game struct {
	puzzle *puzzle.Puzzle
	index  *clueindex.Index
	grid   grid.Grid
	nav    *focus.Navigator

	store       StateStore
	onMove      func(Move)
	onFocus     func(focus.Event)
	initialClue string
}

// New builds a game for p, which must have been prepared (puzzle.Parse
// does that).
func New(p *puzzle.Puzzle, opts ...Option) (*Game, error) {
	g := &Game{puzzle: p}
	for _, opt := range opts {
		opt(g)
	}

	ix, err := clueindex.New(p)
	if err != nil {
		return nil, fmt.Errorf("game: index %s: %w", p.ID, err)
	}
	g.index = ix

	var saved [][]string
	if g.store != nil {
		if v, ok := g.store.Load(p.ID); ok {
			saved = v
		}
	}
	g.grid, err = grid.Build(p.Rows(), p.Cols(), p.Entries, saved)
	if err != nil {
		return nil, fmt.Errorf("game: grid %s: %w", p.ID, err)
	}

	g.nav = focus.NewNavigator(p, ix, g.focusChanged)
	if g.initialClue != "" {
		g.nav.FocusClueByID(g.initialClue)
	}
	return g, nil
}

func (g *Game) focusChanged(e focus.Event) {
	if g.onFocus != nil {
		g.onFocus(e)
	}
}

func (g *Game) Puzzle() *puzzle.Puzzle { return g.puzzle }
func (g *Game) Index() *clueindex.Index { return g.index }
func (g *Game) Grid() grid.Grid { return g.grid }
func (g *Game) Focus() focus.State { return g.nav.State() }
func (g *Game) HasSolutions() bool { return g.puzzle.HasSolutions() }
func (g *Game) ClueInFocus() *puzzle.Clue { return g.nav.ClueInFocus() }

// Navigation.

func (g *Game) Select(x, y int) bool { return g.nav.Select(x, y) }
func (g *Game) MoveFocus(dx, dy int) bool { return g.nav.MoveFocus(dx, dy) }
func (g *Game) FocusNext() bool { return g.nav.FocusNext() }
func (g *Game) FocusPrevious() bool { return g.nav.FocusPrevious() }
func (g *Game) FocusNextClue() bool { return g.nav.FocusNextClue() }
func (g *Game) FocusPreviousClue() bool { return g.nav.FocusPreviousClue() }
func (g *Game) FocusClue(x, y int, d puzzle.Direction) bool { return g.nav.FocusClue(x, y, d) }
func (g *Game) FocusClueByID(id string) bool { return g.nav.FocusClueByID(id) }
func (g *Game) IsInFocusGroup(c *puzzle.Clue) bool { return g.nav.IsInFocusGroup(c) }
func (g *Game) IsHighlighted(x, y int) bool { return g.nav.IsHighlighted(x, y) }

// ActivateClue focuses an entry picked from the clue list, remembering the
// scroll position the list was at so the caller can return to it.
func (g *Game) ActivateClue(id string, vp *focus.Viewport, scroll int) bool {
	vp.Remember(scroll)
	return g.nav.FocusClueByID(id)
}

// Blur hands back the scroll position remembered by ActivateClue, if any.
func (g *Game) Blur(vp *focus.Viewport) (int, bool) {
	return vp.Return()
}

// CurrentValue is the value of the focused cell.
func (g *Game) CurrentValue() string {
	s := g.nav.State()
	if !s.Focused {
		return ""
	}
	return g.grid.At(s.Cell.X, s.Cell.Y).Value
}

// Cells returns the cell matrix with the highlight flag set on every cell of
// the focused group.
func (g *Game) Cells() [][]grid.Cell {
	cells := g.grid.Cells()
	for x := range cells {
		for y := range cells[x] {
			cells[x][y].IsHighlighted = g.nav.IsHighlighted(x, y)
		}
	}
	return cells
}

// ClueStatus is one row of the clue list.
type ClueStatus struct {
	Clue     *puzzle.Clue `json:"clue"`
	Answered bool         `json:"answered"`
	Selected bool         `json:"selected"`
}

// Clues lists every entry with its answered and selected flags.
func (g *Game) Clues() []ClueStatus {
	out := make([]ClueStatus, len(g.puzzle.Entries))
	for i := range g.puzzle.Entries {
		c := &g.puzzle.Entries[i]
		out[i] = ClueStatus{
			Clue:     c,
			Answered: g.HasBeenAnswered(c),
			Selected: g.nav.IsInFocusGroup(c),
		}
	}
	return out
}

// IsComplete reports whether every entry has been filled in. It says nothing
// about correctness.
func (g *Game) IsComplete() bool {
	for i := range g.puzzle.Entries {
		if !g.HasBeenAnswered(&g.puzzle.Entries[i]) {
			return false
		}
	}
	return true
}

// Progress returns how many entries are filled in, out of the total.
func (g *Game) Progress() (answered, total int) {
	for i := range g.puzzle.Entries {
		if g.HasBeenAnswered(&g.puzzle.Entries[i]) {
			answered++
		}
	}
	return answered, len(g.puzzle.Entries)
}

// setValue routes every value change through the grid's single writer and
// notifies the move listener.
func (g *Game) setValue(x, y int, value string) {
	next, ch, changed := g.grid.SetValue(x, y, value)
	g.grid = next
	if changed {
		g.emit(ch)
	}
}

func (g *Game) emit(m Move) {
	if g.onMove != nil {
		g.onMove(m)
	}
}

func (g *Game) save() {
	if g.store != nil {
		g.store.Save(g.puzzle.ID, g.grid.Values())
	}
}
