package game

import (
	"reflect"
	"testing"

	"github.com/starford/grille/internal/focus"
	"github.com/starford/grille/internal/puzzle"
)

func pos(x, y int) puzzle.Position { return puzzle.Position{X: x, Y: y} }

type memStore struct {
	values map[string][][]string
	saves  int
}

func (m *memStore) Load(id string) ([][]string, bool) {
	v, ok := m.values[id]
	return v, ok
}

func (m *memStore) Save(id string, values [][]string) {
	if m.values == nil {
		m.values = make(map[string][][]string)
	}
	m.values[id] = values
	m.saves++
}

func catCow() *puzzle.Puzzle {
	p := &puzzle.Puzzle{
		ID:         "cat-cow",
		Dimensions: puzzle.Dimensions{Cols: 3, Rows: 3},
		Entries: []puzzle.Clue{
			{ID: "1-across", Number: 1, Direction: puzzle.Across, Position: pos(0, 0), Length: 3, Solution: "CAT"},
			{ID: "1-down", Number: 1, Direction: puzzle.Down, Position: pos(0, 0), Length: 3, Solution: "COW"},
		},
	}
	p.Prepare()
	return p
}

type recorder struct {
	moves []Move
	focus []focus.Event
	store *memStore
}

func newGame(t *testing.T, p *puzzle.Puzzle, opts ...Option) (*Game, *recorder) {
	t.Helper()
	rec := &recorder{store: &memStore{}}
	all := append([]Option{
		WithStateStore(rec.store),
		WithOnMove(func(m Move) { rec.moves = append(rec.moves, m) }),
		WithOnFocus(func(e focus.Event) { rec.focus = append(rec.focus, e) }),
	}, opts...)
	g, err := New(p, all...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g, rec
}

func value(g *Game, x, y int) string { return g.Grid().At(x, y).Value }

func typeWord(g *Game, word string) {
	for _, r := range word {
		g.InsertCharacter(string(r))
	}
}

func TestScenario_TypeAndCheckAcross(t *testing.T) {
	p := catCow()
	g, rec := newGame(t, p)
	across, down := p.ClueByID("1-across"), p.ClueByID("1-down")

	g.Select(0, 0)
	if !g.InsertCharacter("c") {
		t.Fatal("InsertCharacter should accept c")
	}
	if s := g.Focus(); s.Cell != pos(1, 0) || s.Direction != puzzle.Across {
		t.Fatalf("focus = %+v, want 1,0 across", s)
	}
	typeWord(g, "AT")
	if got := value(g, 0, 0) + value(g, 1, 0) + value(g, 2, 0); got != "CAT" {
		t.Fatalf("across reads %q, want CAT", got)
	}
	if !g.HasBeenAnswered(across) {
		t.Error("across should be answered")
	}
	if g.HasBeenAnswered(down) {
		t.Error("down should not be answered")
	}

	before := g.Grid().Values()
	if bad := g.CheckClue(across); len(bad) != 0 {
		t.Errorf("CheckClue(across) flagged %v", bad)
	}
	if bad := g.CheckClue(down); len(bad) != 0 {
		t.Errorf("CheckClue(down) flagged %v", bad)
	}
	if !reflect.DeepEqual(before, g.Grid().Values()) {
		t.Error("checking correct answers must not change the grid")
	}
	if len(rec.moves) != 3 {
		t.Errorf("moves = %d, want 3", len(rec.moves))
	}
}

func TestScenario_CheckClearsWrongLetter(t *testing.T) {
	p := catCow()
	g, rec := newGame(t, p)
	down := p.ClueByID("1-down")

	g.FocusClue(0, 0, puzzle.Down)
	g.InsertCharacter("C")
	if s := g.Focus(); s.Cell != pos(0, 1) {
		t.Fatalf("focus = %+v, want 0,1", s)
	}
	g.InsertCharacter("X")

	rec.moves = nil
	bad := g.CheckClue(down)
	if !reflect.DeepEqual(bad, []puzzle.Position{pos(0, 1)}) {
		t.Fatalf("bad cells = %v, want [0,1]", bad)
	}
	if v := value(g, 0, 1); v != "" {
		t.Errorf("wrong letter not cleared: %q", v)
	}
	if !g.Grid().At(0, 1).IsError {
		t.Error("cleared cell should be flagged")
	}
	if v := value(g, 0, 0); v != "C" {
		t.Errorf("correct letter changed: %q", v)
	}
	if len(rec.moves) != 1 || rec.moves[0] != (Move{X: 0, Y: 1, Value: "", PreviousValue: "X"}) {
		t.Errorf("moves = %+v", rec.moves)
	}
}

func TestCheckClue_Idempotent(t *testing.T) {
	p := catCow()
	g, _ := newGame(t, p)
	g.FocusClue(0, 0, puzzle.Across)
	typeWord(g, "CUT")
	across := p.ClueByID("1-across")

	g.CheckClue(across)
	once := g.Cells()
	g.CheckClue(across)
	if !reflect.DeepEqual(once, g.Cells()) {
		t.Error("second check changed the grid")
	}
}

func TestCheckClue_NoSolution(t *testing.T) {
	p := catCow()
	p.Entries[0].Solution = ""
	g, _ := newGame(t, p)
	g.FocusClue(0, 0, puzzle.Across)
	typeWord(g, "XYZ")
	if bad := g.CheckClue(p.ClueByID("1-across")); bad != nil {
		t.Errorf("bad = %v, want none", bad)
	}
	if value(g, 1, 0) != "Y" {
		t.Error("clue without solution must not be checked")
	}
}

func TestCheckAllAndFocusGroup(t *testing.T) {
	p := catCow()
	g, _ := newGame(t, p)
	g.FocusClue(0, 0, puzzle.Across)
	typeWord(g, "CUT")
	g.FocusClue(0, 1, puzzle.Down)
	typeWord(g, "XW")

	if bad := g.CheckFocusGroup(); !reflect.DeepEqual(bad, []puzzle.Position{pos(0, 1)}) {
		t.Errorf("CheckFocusGroup = %v", bad)
	}
	if value(g, 1, 0) != "U" {
		t.Error("CheckFocusGroup must not touch other groups")
	}
	if bad := g.CheckAll(); !reflect.DeepEqual(bad, []puzzle.Position{pos(1, 0)}) {
		t.Errorf("CheckAll = %v", bad)
	}
}

func TestInsertCharacter_RejectsInvalid(t *testing.T) {
	g, rec := newGame(t, catCow())
	if g.InsertCharacter("A") {
		t.Error("unfocused game should ignore input")
	}
	g.Select(0, 0)
	for _, in := range []string{"", "AB", "-", " ", "×", "÷", "字", "ÿ", "ß"} {
		if g.InsertCharacter(in) {
			t.Errorf("input %q should be rejected", in)
		}
	}
	if len(rec.moves) != 0 || rec.store.saves != 0 {
		t.Error("rejected input must not mutate or save")
	}
	if !g.InsertCharacter("é") {
		t.Fatal("accented letters are accepted")
	}
	if v := value(g, 0, 0); v != "É" {
		t.Errorf("value = %q, want É", v)
	}
	if !g.InsertCharacter("ø") || value(g, 1, 0) != "Ø" {
		t.Errorf("value = %q, want Ø", value(g, 1, 0))
	}
}

func TestDeleteAtFocus(t *testing.T) {
	g, rec := newGame(t, catCow())
	g.Select(0, 0)
	typeWord(g, "CA")
	if s := g.Focus(); s.Cell != pos(2, 0) {
		t.Fatalf("focus = %+v", s)
	}

	// Empty cell: move back without touching data.
	saves := rec.store.saves
	g.DeleteAtFocus()
	if s := g.Focus(); s.Cell != pos(1, 0) {
		t.Fatalf("focus = %+v, want 1,0", s)
	}
	if value(g, 1, 0) != "A" || rec.store.saves != saves {
		t.Error("delete on empty cell must not change data")
	}

	// Filled cell: clear in place.
	g.DeleteAtFocus()
	if value(g, 1, 0) != "" {
		t.Error("expected cell cleared")
	}
	if s := g.Focus(); s.Cell != pos(1, 0) {
		t.Errorf("focus moved to %+v", s)
	}
	if rec.store.saves != saves+1 {
		t.Error("delete should save")
	}
}

func TestClearableCells_ProtectsAnsweredCrossing(t *testing.T) {
	p := catCow()
	g, _ := newGame(t, p)
	across, down := p.ClueByID("1-across"), p.ClueByID("1-down")

	g.FocusClue(0, 0, puzzle.Down)
	typeWord(g, "COW")
	g.FocusClue(1, 0, puzzle.Across)
	typeWord(g, "AT")

	cells := g.ClearableCells(across)
	if !reflect.DeepEqual(cells, []puzzle.Position{pos(1, 0), pos(2, 0)}) {
		t.Fatalf("clearable = %v", cells)
	}

	g.FocusClue(1, 0, puzzle.Across)
	g.ClearSingle()
	if value(g, 0, 0) != "C" {
		t.Error("shared cell of the answered down clue was cleared")
	}
	if value(g, 1, 0) != "" || value(g, 2, 0) != "" {
		t.Error("across cells should be cleared")
	}
	if !g.HasBeenAnswered(down) {
		t.Error("down should still be answered")
	}
}

func TestClearableCells_UnansweredCrossing(t *testing.T) {
	p := catCow()
	g, _ := newGame(t, p)
	g.FocusClue(0, 0, puzzle.Across)
	typeWord(g, "CAT")
	if cells := g.ClearableCells(p.ClueByID("1-across")); len(cells) != 3 {
		t.Errorf("clearable = %v, want all three", cells)
	}
}

func TestClearableCells_Group(t *testing.T) {
	// 1 across and 1 down form one compound answer sharing (0,0).
	p := catCow()
	group := []string{"1-across", "1-down"}
	p.Entries[0].Group = group
	p.Entries[1].Group = group
	g, _ := newGame(t, p)
	g.FocusClue(0, 0, puzzle.Down)
	typeWord(g, "COW")

	cells := g.ClearableCells(p.ClueByID("1-across"))
	if len(cells) != 5 {
		t.Fatalf("clearable = %v, want the 5 cells of the group", cells)
	}
	seen := map[puzzle.Position]bool{}
	for _, c := range cells {
		if seen[c] {
			t.Fatalf("duplicate cell %v", c)
		}
		seen[c] = true
	}
}

func TestClearAll(t *testing.T) {
	g, rec := newGame(t, catCow())
	g.Select(0, 0)
	typeWord(g, "CAT")
	rec.moves = nil
	g.ClearAll()
	for _, col := range g.Grid().Values() {
		for _, v := range col {
			if v != "" {
				t.Fatalf("cell not cleared: %q", v)
			}
		}
	}
	if len(rec.moves) != 3 {
		t.Errorf("moves = %d, want 3", len(rec.moves))
	}
}

func TestSavedStateLoaded(t *testing.T) {
	p := catCow()
	store := &memStore{values: map[string][][]string{
		"cat-cow": {{"C", "O", "W"}, {"A", "", ""}, {"T", "", ""}},
	}}
	g, err := New(p, WithStateStore(store))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !g.IsComplete() {
		t.Error("saved state fills every entry")
	}
	answered, total := g.Progress()
	if answered != 2 || total != 2 {
		t.Errorf("progress = %d/%d", answered, total)
	}
}

func TestInitialClueAndClueList(t *testing.T) {
	p := catCow()
	g, rec := newGame(t, p, WithInitialClue("1-down"))
	if s := g.Focus(); !s.Focused || s.Direction != puzzle.Down {
		t.Fatalf("focus = %+v", s)
	}
	if len(rec.focus) != 1 || rec.focus[0].ClueID != "1-down" {
		t.Errorf("focus events = %+v", rec.focus)
	}
	list := g.Clues()
	if len(list) != 2 || list[0].Selected || !list[1].Selected {
		t.Errorf("clue list = %+v", list)
	}
	cells := g.Cells()
	if !cells[0][2].IsHighlighted || cells[2][0].IsHighlighted {
		t.Error("only the down clue should be highlighted")
	}
}

func TestActivateClueAndBlur(t *testing.T) {
	p := catCow()
	g, _ := newGame(t, p)
	var vp focus.Viewport
	if !g.ActivateClue("1-down", &vp, 900) {
		t.Fatal("ActivateClue should focus")
	}
	back, ok := g.Blur(&vp)
	if !ok || back != 900 {
		t.Errorf("Blur = %d, %v", back, ok)
	}
	if _, ok := g.Blur(&vp); ok {
		t.Error("return position is consumed")
	}
	if g.CurrentValue() != "" {
		t.Error("empty cell has no value")
	}
}
