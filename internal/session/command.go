package session

import (
	"fmt"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/focus"
	"github.com/starford/grille/internal/game"
	"github.com/starford/grille/internal/puzzle"
)

// Op names a play operation.
type Op string

const (
	OpSelect       Op = "select"
	OpMove         Op = "move"
	OpInput        Op = "input"
	OpDelete       Op = "delete"
	OpNext         Op = "next"
	OpPrevious     Op = "previous"
	OpNextClue     Op = "next-clue"
	OpPreviousClue Op = "previous-clue"
	OpFocus        Op = "focus"
	OpBlur         Op = "blur"
	OpCheck        Op = "check"
	OpCheckAll     Op = "check-all"
	OpClear        Op = "clear"
	OpClearAll     Op = "clear-all"
)

// Ops lists every operation in routing order.
var Ops = []Op{
	OpSelect, OpMove, OpInput, OpDelete, OpNext, OpPrevious, OpNextClue,
	OpPreviousClue, OpFocus, OpBlur, OpCheck, OpCheckAll, OpClear, OpClearAll,
}

// Command is one play operation with its arguments. Only the fields the
// operation reads need to be set.
type Command struct {
	Op        Op     `json:"op"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	DX        int    `json:"dx"`
	DY        int    `json:"dy"`
	Char      string `json:"char"`
	ClueID    string `json:"clue_id"`
	Direction string `json:"direction"`
	Scroll    int    `json:"scroll"`
	Confirm   bool   `json:"confirm"`
}

// Result reports what a command did.
type Result struct {
	// Applied is false when the engine ignored the input.
	Applied bool `json:"applied"`
	// Errors lists the cells cleared by a check.
	Errors []puzzle.Position `json:"errors,omitempty"`
	// ReturnScroll is the clue list position to restore after a blur.
	ReturnScroll *int     `json:"return_scroll,omitempty"`
	Snapshot     Snapshot `json:"snapshot"`
}

var errNoSolutions = fmt.Errorf("puzzle has no solutions: %w", apperr.ErrConflict)

// mutates reports whether op can change cell values.
func (op Op) mutates() bool {
	switch op {
	case OpInput, OpDelete, OpCheck, OpCheckAll, OpClear, OpClearAll:
		return true
	}
	return false
}

// apply runs c against g. The caller holds the session lock.
func apply(g *game.Game, vp *focus.Viewport, c Command) (Result, error) {
	var r Result
	switch c.Op {
	case OpSelect:
		r.Applied = g.Select(c.X, c.Y)
	case OpMove:
		if abs(c.DX)+abs(c.DY) != 1 {
			return r, fmt.Errorf("move: exactly one of dx, dy must be ±1: %w", apperr.ErrInvalidCommand)
		}
		r.Applied = g.MoveFocus(c.DX, c.DY)
	case OpInput:
		r.Applied = g.InsertCharacter(c.Char)
	case OpDelete:
		r.Applied = g.DeleteAtFocus()
	case OpNext:
		r.Applied = g.FocusNext()
	case OpPrevious:
		r.Applied = g.FocusPrevious()
	case OpNextClue:
		r.Applied = g.FocusNextClue()
	case OpPreviousClue:
		r.Applied = g.FocusPreviousClue()
	case OpFocus:
		if c.Direction != "" {
			d, err := puzzle.ParseDirection(c.Direction)
			if err != nil {
				return r, fmt.Errorf("focus: %v: %w", err, apperr.ErrInvalidCommand)
			}
			r.Applied = g.FocusClue(c.X, c.Y, d)
			break
		}
		if g.Puzzle().ClueByID(c.ClueID) == nil {
			return r, fmt.Errorf("clue %q: %w", c.ClueID, apperr.ErrNotFound)
		}
		r.Applied = g.ActivateClue(c.ClueID, vp, c.Scroll)
	case OpBlur:
		if pos, ok := g.Blur(vp); ok {
			r.ReturnScroll = &pos
		}
		r.Applied = true
	case OpCheck:
		if !g.HasSolutions() {
			return r, errNoSolutions
		}
		if c.ClueID == "" {
			if g.ClueInFocus() == nil {
				return r, fmt.Errorf("no clue in focus: %w", apperr.ErrConflict)
			}
			r.Errors = g.CheckFocusGroup()
		} else {
			clue, err := targetClue(g, c.ClueID)
			if err != nil {
				return r, err
			}
			r.Errors = g.CheckGroup(clue)
		}
		r.Applied = true
	case OpCheckAll:
		if !g.HasSolutions() {
			return r, errNoSolutions
		}
		if !c.Confirm {
			return r, apperr.ErrConfirmationRequired
		}
		r.Errors = g.CheckAll()
		r.Applied = true
	case OpClear:
		clue, err := targetClue(g, c.ClueID)
		if err != nil {
			return r, err
		}
		r.Applied = g.ClearClue(clue)
	case OpClearAll:
		if !c.Confirm {
			return r, apperr.ErrConfirmationRequired
		}
		g.ClearAll()
		r.Applied = true
	default:
		return r, fmt.Errorf("unknown operation %q: %w", c.Op, apperr.ErrInvalidCommand)
	}
	return r, nil
}

// targetClue resolves an explicit clue id, falling back to the clue in
// focus.
func targetClue(g *game.Game, id string) (*puzzle.Clue, error) {
	if id != "" {
		c := g.Puzzle().ClueByID(id)
		if c == nil {
			return nil, fmt.Errorf("clue %q: %w", id, apperr.ErrNotFound)
		}
		return c, nil
	}
	c := g.ClueInFocus()
	if c == nil {
		return nil, fmt.Errorf("no clue in focus: %w", apperr.ErrConflict)
	}
	return c, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
