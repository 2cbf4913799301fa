// Package puzzle defines the crossword data model: directions, positions,
// clues and the puzzle definition they belong to.
package puzzle

import "slices"

// Dimensions is the grid size of a puzzle.
type Dimensions struct {
	Cols int `json:"cols" yaml:"cols"`
	Rows int `json:"rows" yaml:"rows"`
}

// Puzzle is a loaded puzzle definition. Call Prepare (Parse does) before
// using the id-based queries.
type Puzzle struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Type       string     `json:"crosswordType,omitempty" yaml:"crosswordType,omitempty"`
	Dimensions Dimensions `json:"dimensions" yaml:"dimensions"`
	Entries    []Clue     `json:"entries" yaml:"entries"`

	byID map[string]int
}

// Prepare fills defaults and builds the id lookup.
func (p *Puzzle) Prepare() {
	p.byID = make(map[string]int, len(p.Entries))
	for i := range p.Entries {
		e := &p.Entries[i]
		if len(e.Group) == 0 {
			e.Group = []string{e.ID}
		}
		if e.HumanNumber == "" && e.Number > 0 {
			e.HumanNumber = itoa(e.Number)
		}
		p.byID[e.ID] = i
	}
}

func (p *Puzzle) Cols() int { return p.Dimensions.Cols }
func (p *Puzzle) Rows() int { return p.Dimensions.Rows }

// ClueByID returns the entry with the given id, or nil.
func (p *Puzzle) ClueByID(id string) *Clue {
	if p.byID == nil {
		p.Prepare()
	}
	i, ok := p.byID[id]
	if !ok {
		return nil
	}
	return &p.Entries[i]
}

// IndexOf returns the position of c in the entry list, or -1.
func (p *Puzzle) IndexOf(c *Clue) int {
	if c == nil {
		return -1
	}
	if p.byID == nil {
		p.Prepare()
	}
	i, ok := p.byID[c.ID]
	if !ok {
		return -1
	}
	return i
}

// NextInGroup returns the clue following c in its group, or nil.
func (p *Puzzle) NextInGroup(c *Clue) *Clue {
	i := slices.Index(c.Group, c.ID)
	if i < 0 || i+1 >= len(c.Group) {
		return nil
	}
	return p.ClueByID(c.Group[i+1])
}

// PreviousInGroup returns the clue preceding c in its group, or nil.
func (p *Puzzle) PreviousInGroup(c *Clue) *Clue {
	i := slices.Index(c.Group, c.ID)
	if i < 1 {
		return nil
	}
	return p.ClueByID(c.Group[i-1])
}

// GroupEntries resolves c's group to clues, skipping unknown ids.
func (p *Puzzle) GroupEntries(c *Clue) []*Clue {
	out := make([]*Clue, 0, len(c.Group))
	for _, id := range c.Group {
		if e := p.ClueByID(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// GroupLength is the total length of the compound answer c belongs to.
func (p *Puzzle) GroupLength(c *Clue) int {
	n := 0
	for _, e := range p.GroupEntries(c) {
		n += e.Length
	}
	return n
}

// GroupSeparators merges the separator offsets of every member of c's group.
func (p *Puzzle) GroupSeparators(c *Clue) map[Separator][]int {
	out := make(map[Separator][]int)
	for _, e := range p.GroupEntries(c) {
		for sep, locs := range e.SeparatorLocations {
			for _, l := range locs {
				if !slices.Contains(out[sep], l) {
					out[sep] = append(out[sep], l)
				}
			}
		}
	}
	for sep := range out {
		slices.Sort(out[sep])
	}
	return out
}

// GroupText returns the clue text shown for c's compound answer: the text of
// the first group member.
func (p *Puzzle) GroupText(c *Clue) string {
	if g := p.GroupEntries(c); len(g) > 0 {
		return g[0].Text
	}
	return c.Text
}

// GroupNumber returns the display number of c's compound answer.
func (p *Puzzle) GroupNumber(c *Clue) string {
	if g := p.GroupEntries(c); len(g) > 0 {
		return g[0].HumanNumber
	}
	return c.HumanNumber
}

// HasSolutions reports whether any entry carries a solution. Checking is only
// offered when it does.
func (p *Puzzle) HasSolutions() bool {
	for i := range p.Entries {
		if p.Entries[i].HasSolution() {
			return true
		}
	}
	return false
}
