package focus

import (
	"testing"

	"github.com/starford/grille/internal/clueindex"
	"github.com/starford/grille/internal/puzzle"
)

func pos(x, y int) puzzle.Position { return puzzle.Position{X: x, Y: y} }

func newNavigator(t *testing.T, p *puzzle.Puzzle) (*Navigator, *[]Event) {
	t.Helper()
	p.Prepare()
	ix, err := clueindex.New(p)
	if err != nil {
		t.Fatalf("clueindex.New: %v", err)
	}
	var events []Event
	return NewNavigator(p, ix, func(e Event) { events = append(events, e) }), &events
}

// catCow is a 3x3 grid with 1 across and 1 down sharing the top-left cell.
func catCow() *puzzle.Puzzle {
	return &puzzle.Puzzle{
		ID:         "cat-cow",
		Dimensions: puzzle.Dimensions{Cols: 3, Rows: 3},
		Entries: []puzzle.Clue{
			{ID: "1-across", Number: 1, Direction: puzzle.Across, Position: pos(0, 0), Length: 3, Solution: "CAT"},
			{ID: "1-down", Number: 1, Direction: puzzle.Down, Position: pos(0, 0), Length: 3, Solution: "COW"},
		},
	}
}

// grouped is a 5x3 grid: 1 across (row 0, length 3) continues into 2 down
// (column 4, length 3); 3 across is a standalone clue on row 2.
func grouped() *puzzle.Puzzle {
	group := []string{"1-across", "2-down"}
	return &puzzle.Puzzle{
		ID:         "grouped",
		Dimensions: puzzle.Dimensions{Cols: 5, Rows: 3},
		Entries: []puzzle.Clue{
			{ID: "1-across", Number: 1, Direction: puzzle.Across, Position: pos(0, 0), Length: 3, Group: group},
			{ID: "2-down", Number: 2, Direction: puzzle.Down, Position: pos(4, 0), Length: 3, Group: group},
			{ID: "3-across", Number: 3, Direction: puzzle.Across, Position: pos(0, 2), Length: 3},
		},
	}
}

func assertFocus(t *testing.T, n *Navigator, want puzzle.Position, d puzzle.Direction) {
	t.Helper()
	s := n.State()
	if !s.Focused {
		t.Fatalf("expected focus at %v %v, got unfocused", want, d)
	}
	if s.Cell != want || s.Direction != d {
		t.Fatalf("focus = %v %v, want %v %v", s.Cell, s.Direction, want, d)
	}
}

func TestFocusClue_EmitsEvent(t *testing.T) {
	n, events := newNavigator(t, catCow())
	if !n.FocusClue(1, 0, puzzle.Across) {
		t.Fatal("FocusClue should succeed")
	}
	if len(*events) != 1 || (*events)[0] != (Event{X: 1, Y: 0, ClueID: "1-across"}) {
		t.Errorf("events = %+v", *events)
	}
	if n.FocusClue(1, 0, puzzle.Down) {
		t.Error("no down clue at 1,0")
	}
	if n.FocusClue(1, 1, puzzle.Across) {
		t.Error("block cell cannot take focus")
	}
	if len(*events) != 1 {
		t.Errorf("failed focus must not emit, events = %+v", *events)
	}
	assertFocus(t, n, pos(1, 0), puzzle.Across)
}

func TestSelect_TogglesDirection(t *testing.T) {
	n, _ := newNavigator(t, catCow())
	n.Select(0, 0)
	assertFocus(t, n, pos(0, 0), puzzle.Across)
	n.Select(0, 0)
	assertFocus(t, n, pos(0, 0), puzzle.Down)
	n.Select(0, 0)
	assertFocus(t, n, pos(0, 0), puzzle.Across)
}

func TestSelect_SameCellWithoutCrossingClue(t *testing.T) {
	n, events := newNavigator(t, catCow())
	n.Select(2, 0)
	if n.Select(2, 0) {
		t.Error("no down clue at 2,0 to flip to")
	}
	assertFocus(t, n, pos(2, 0), puzzle.Across)
	if len(*events) != 1 {
		t.Errorf("events = %d, want 1", len(*events))
	}
}

func TestSelect_KeepsDirectionInsideFocusedClue(t *testing.T) {
	n, _ := newNavigator(t, catCow())
	n.FocusClue(0, 1, puzzle.Down)
	n.Select(0, 0)
	assertFocus(t, n, pos(0, 0), puzzle.Down)
}

func TestSelect_PrefersDownStart(t *testing.T) {
	// 1 across runs along row 1; 2 down starts at (1,1) inside it, so (1,1)
	// starts a down clue but not an across clue.
	p := &puzzle.Puzzle{
		ID:         "p",
		Dimensions: puzzle.Dimensions{Cols: 3, Rows: 3},
		Entries: []puzzle.Clue{
			{ID: "1-across", Number: 1, Direction: puzzle.Across, Position: pos(0, 1), Length: 3},
			{ID: "2-down", Number: 2, Direction: puzzle.Down, Position: pos(1, 1), Length: 2},
			{ID: "3-down", Number: 3, Direction: puzzle.Down, Position: pos(2, 0), Length: 3},
		},
	}
	n, _ := newNavigator(t, p)
	n.Select(1, 1)
	assertFocus(t, n, pos(1, 1), puzzle.Down)

	// (2,1) is covered by both but starts neither: across wins.
	n.Select(2, 1)
	assertFocus(t, n, pos(2, 1), puzzle.Across)

	// (2,0) only carries 3 down.
	n.Select(2, 0)
	assertFocus(t, n, pos(2, 0), puzzle.Down)
}

func TestSelect_BlockCellIgnored(t *testing.T) {
	n, events := newNavigator(t, catCow())
	if n.Select(1, 1) {
		t.Error("block cell select should be ignored")
	}
	if n.State().Focused || len(*events) != 0 {
		t.Error("state must not change")
	}
}

func TestMoveFocus_WrapsAroundRow(t *testing.T) {
	p := &puzzle.Puzzle{
		ID:         "row",
		Dimensions: puzzle.Dimensions{Cols: 5, Rows: 1},
		Entries:    []puzzle.Clue{{ID: "1-across", Number: 1, Direction: puzzle.Across, Length: 5}},
	}
	n, _ := newNavigator(t, p)
	n.FocusClue(2, 0, puzzle.Across)
	for range 5 {
		n.MoveFocus(1, 0)
	}
	assertFocus(t, n, pos(2, 0), puzzle.Across)

	n.FocusClue(0, 0, puzzle.Across)
	n.MoveFocus(-1, 0)
	assertFocus(t, n, pos(4, 0), puzzle.Across)
}

func TestMoveFocus_SkipsBlocksAndPicksDirection(t *testing.T) {
	n, _ := newNavigator(t, catCow())
	n.FocusClue(0, 1, puzzle.Down)

	// Row 1 only has (0,1) editable: moving right wraps back onto it. Moving
	// horizontally with no across clue there selects down.
	n.MoveFocus(1, 0)
	assertFocus(t, n, pos(0, 1), puzzle.Down)

	// Moving up from (0,1) reaches (0,0), which has a down clue.
	n.MoveFocus(0, -1)
	assertFocus(t, n, pos(0, 0), puzzle.Down)

	// Moving right from (0,0) lands on (1,0): across.
	n.MoveFocus(1, 0)
	assertFocus(t, n, pos(1, 0), puzzle.Across)

	// Moving down from (1,0) skips the blocks and wraps back to (1,0);
	// no down clue there, so across.
	n.MoveFocus(0, 1)
	assertFocus(t, n, pos(1, 0), puzzle.Across)
}

func TestMoveFocus_Unfocused(t *testing.T) {
	n, _ := newNavigator(t, catCow())
	if n.MoveFocus(1, 0) {
		t.Error("unfocused navigator should not move")
	}
}

func TestFocusNext_WithinAndAcrossGroup(t *testing.T) {
	n, _ := newNavigator(t, grouped())
	n.FocusClue(0, 0, puzzle.Across)
	n.FocusNext()
	assertFocus(t, n, pos(1, 0), puzzle.Across)
	n.FocusNext()
	assertFocus(t, n, pos(2, 0), puzzle.Across)

	// Last cell of 1 across: continue at the start of 2 down.
	n.FocusNext()
	assertFocus(t, n, pos(4, 0), puzzle.Down)
	n.FocusNext()
	n.FocusNext()
	assertFocus(t, n, pos(4, 2), puzzle.Down)

	// End of the group: nothing happens.
	if n.FocusNext() {
		t.Error("FocusNext at the end of a group should be a no-op")
	}
	assertFocus(t, n, pos(4, 2), puzzle.Down)
}

func TestFocusPrevious_WithinAndAcrossGroup(t *testing.T) {
	n, _ := newNavigator(t, grouped())
	n.FocusClue(4, 1, puzzle.Down)
	n.FocusPrevious()
	assertFocus(t, n, pos(4, 0), puzzle.Down)

	// First cell of 2 down: continue at the last cell of 1 across.
	n.FocusPrevious()
	assertFocus(t, n, pos(2, 0), puzzle.Across)

	n.FocusClue(0, 0, puzzle.Across)
	if n.FocusPrevious() {
		t.Error("FocusPrevious at the start of a group should be a no-op")
	}
}

func TestFocusNextClue_Cycles(t *testing.T) {
	n, _ := newNavigator(t, grouped())
	n.FocusClue(1, 0, puzzle.Across)
	n.FocusNextClue()
	assertFocus(t, n, pos(4, 0), puzzle.Down)
	n.FocusNextClue()
	assertFocus(t, n, pos(0, 2), puzzle.Across)
	n.FocusNextClue()
	assertFocus(t, n, pos(0, 0), puzzle.Across)

	n.FocusPreviousClue()
	assertFocus(t, n, pos(0, 2), puzzle.Across)
}

func TestFocusClueByID(t *testing.T) {
	n, events := newNavigator(t, grouped())
	if !n.FocusClueByID("2-down") {
		t.Fatal("FocusClueByID should succeed")
	}
	assertFocus(t, n, pos(4, 0), puzzle.Down)
	if n.FocusClueByID("missing") {
		t.Error("unknown id should be ignored")
	}
	if len(*events) != 1 {
		t.Errorf("events = %d, want 1", len(*events))
	}
}

func TestFocusGroupQueries(t *testing.T) {
	p := grouped()
	n, _ := newNavigator(t, p)
	if n.ClueInFocus() != nil {
		t.Fatal("unfocused navigator has no clue in focus")
	}
	n.FocusClue(4, 2, puzzle.Down)
	if c := n.ClueInFocus(); c == nil || c.ID != "2-down" {
		t.Fatalf("ClueInFocus = %v", c)
	}
	if !n.IsInFocusGroup(p.ClueByID("1-across")) {
		t.Error("1 across is in the focused group")
	}
	if n.IsInFocusGroup(p.ClueByID("3-across")) {
		t.Error("3 across is not in the focused group")
	}
	if !n.IsHighlighted(1, 0) || !n.IsHighlighted(4, 1) {
		t.Error("all cells of the group should be highlighted")
	}
	if n.IsHighlighted(1, 2) {
		t.Error("3 across should not be highlighted")
	}
}

func TestViewport(t *testing.T) {
	var v Viewport
	if _, ok := v.Return(); ok {
		t.Fatal("empty viewport has no return position")
	}
	v.Remember(420)
	got, ok := v.Return()
	if !ok || got != 420 {
		t.Fatalf("Return = %d, %v", got, ok)
	}
	if _, ok := v.Return(); ok {
		t.Error("Return should forget the position")
	}
}
