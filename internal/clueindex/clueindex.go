// Package clueindex builds the cell-keyed lookups over a puzzle's clues: which
// across and down clue pass through a cell, and which compound-answer
// separator sits at a cell. Both maps are keyed by puzzle.Position and are
// read-only once built.
package clueindex

import (
	"fmt"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/puzzle"
)

// Entry holds the clues covering one cell.
type Entry struct {
	Across *puzzle.Clue
	Down   *puzzle.Clue
}

// Get returns the clue in direction d, or nil.
func (e Entry) Get(d puzzle.Direction) *puzzle.Clue {
	switch d {
	case puzzle.Across:
		return e.Across
	default:
		return e.Down
	}
}

func (e *Entry) set(c *puzzle.Clue) {
	switch c.Direction {
	case puzzle.Across:
		e.Across = c
	default:
		e.Down = c
	}
}

// ClueMap maps a cell to the clues covering it.
type ClueMap map[puzzle.Position]Entry

// SeparatorMark is a separator rendered before a cell.
type SeparatorMark struct {
	Direction puzzle.Direction `json:"direction"`
	Separator puzzle.Separator `json:"separator"`
}

// SeparatorMap maps a cell to the separator drawn before it.
type SeparatorMap map[puzzle.Position]SeparatorMark

// BuildClueMap records every clue under each cell it covers. The entries
// slice must outlive the map: values point into it.
func BuildClueMap(entries []puzzle.Clue) ClueMap {
	m := make(ClueMap)
	for i := range entries {
		c := &entries[i]
		for _, p := range c.Cells() {
			e := m[p]
			e.set(c)
			m[p] = e
		}
	}
	return m
}

// BuildSeparatorMap places every separator on an absolute cell.
//
// Separator offsets count characters of the whole group's concatenated
// answer. For each offset the group members are walked in order,
// accumulating their lengths, until the member containing the offset is
// found; the mark lands on that member's cell. Offsets past the end of the
// group are dropped.
func BuildSeparatorMap(entries []puzzle.Clue) SeparatorMap {
	byID := make(map[string]*puzzle.Clue, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}

	m := make(SeparatorMap)
	for i := range entries {
		c := &entries[i]
		members := groupMembers(c, byID)
		for sep, offsets := range c.SeparatorLocations {
			for _, off := range offsets {
				member, local, ok := locate(members, off)
				if !ok {
					continue
				}
				p := member.Direction.Advance(member.Position, local)
				m[p] = SeparatorMark{Direction: member.Direction, Separator: sep}
			}
		}
	}
	return m
}

func groupMembers(c *puzzle.Clue, byID map[string]*puzzle.Clue) []*puzzle.Clue {
	out := make([]*puzzle.Clue, 0, len(c.Group))
	for _, id := range c.Group {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		out = append(out, c)
	}
	return out
}

// locate finds the member holding group offset off and the offset within it.
func locate(members []*puzzle.Clue, off int) (*puzzle.Clue, int, bool) {
	if off < 0 {
		return nil, 0, false
	}
	prior := 0
	for _, m := range members {
		if off < prior+m.Length {
			return m, off - prior, true
		}
		prior += m.Length
	}
	return nil, 0, false
}

// Index bundles the clue and separator maps of one puzzle.
type Index struct {
	clues      ClueMap
	separators SeparatorMap
}

// New indexes p. It fails with apperr.ErrInvalidPuzzle when a clue leaves
// the grid.
func New(p *puzzle.Puzzle) (*Index, error) {
	for i := range p.Entries {
		e := &p.Entries[i]
		if !e.InBounds(p.Cols(), p.Rows()) {
			return nil, fmt.Errorf("%w: entry %q at %v length %d leaves the %dx%d grid",
				apperr.ErrInvalidPuzzle, e.ID, e.Position, e.Length, p.Cols(), p.Rows())
		}
	}
	return &Index{
		clues:      BuildClueMap(p.Entries),
		separators: BuildSeparatorMap(p.Entries),
	}, nil
}

// CluesFor returns the clues covering (x, y). ok is false for block cells.
func (ix *Index) CluesFor(x, y int) (Entry, bool) {
	e, ok := ix.clues[puzzle.Position{X: x, Y: y}]
	return e, ok
}

// Clue returns the clue at (x, y) in direction d, or nil.
func (ix *Index) Clue(x, y int, d puzzle.Direction) *puzzle.Clue {
	e, ok := ix.CluesFor(x, y)
	if !ok {
		return nil
	}
	return e.Get(d)
}

// Editable reports whether any clue covers (x, y).
func (ix *Index) Editable(x, y int) bool {
	_, ok := ix.CluesFor(x, y)
	return ok
}

// SeparatorAt returns the separator drawn before (x, y), if any.
func (ix *Index) SeparatorAt(x, y int) (SeparatorMark, bool) {
	s, ok := ix.separators[puzzle.Position{X: x, Y: y}]
	return s, ok
}

// Separators returns a copy of the separator map keyed by the text form of
// each position.
func (ix *Index) Separators() map[string]SeparatorMark {
	out := make(map[string]SeparatorMark, len(ix.separators))
	for p, s := range ix.separators {
		out[p.String()] = s
	}
	return out
}
