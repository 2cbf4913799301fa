package puzzle

import "slices"

// Separator is a word break rendered inside a compound answer.
type Separator string

const (
	Comma  Separator = ","
	Hyphen Separator = "-"
)

// Clue is one answer slot of the puzzle. Clues are immutable once loaded.
type Clue struct {
	ID          string    `json:"id" yaml:"id"`
	Number      int       `json:"number" yaml:"number"`
	HumanNumber string    `json:"humanNumber" yaml:"humanNumber"`
	Text        string    `json:"clue" yaml:"clue"`
	Direction   Direction `json:"direction" yaml:"direction"`
	Position    Position  `json:"position" yaml:"position"`
	Length      int       `json:"length" yaml:"length"`
	// Group lists the ids of the clues forming one compound answer, in
	// answer order. A standalone clue's group is just its own id.
	Group []string `json:"group" yaml:"group"`
	// SeparatorLocations holds offsets within the group's concatenated
	// answer. A separator at offset n breaks before the n-th character.
	SeparatorLocations map[Separator][]int `json:"separatorLocations,omitempty" yaml:"separatorLocations,omitempty"`
	Solution           string              `json:"solution,omitempty" yaml:"solution,omitempty"`
}

// Cells returns the Length positions covered by the clue, in answer order.
func (c *Clue) Cells() []Position {
	cells := make([]Position, c.Length)
	for i := range cells {
		cells[i] = c.Direction.Advance(c.Position, i)
	}
	return cells
}

// LastCell returns the final position of the clue.
func (c *Clue) LastCell() Position {
	return c.Direction.Advance(c.Position, c.Length-1)
}

func (c *Clue) IsFirstCell(p Position) bool {
	return c.Direction.Along(p) == c.Direction.Along(c.Position)
}

func (c *Clue) IsLastCell(p Position) bool {
	return c.Direction.Along(p) == c.Direction.Along(c.Position)+c.Length-1
}

// Contains reports whether p is one of the clue's cells.
func (c *Clue) Contains(p Position) bool {
	d := c.Direction
	if d.Along(p) < d.Along(c.Position) || d.Along(p) >= d.Along(c.Position)+c.Length {
		return false
	}
	return d.Other().Along(p) == d.Other().Along(c.Position)
}

// InGroup reports whether the clue is part of a multi-clue answer.
func (c *Clue) InGroup() bool {
	return len(c.Group) != 1
}

// GroupedWith reports whether c belongs to other's group.
func (c *Clue) GroupedWith(other *Clue) bool {
	return slices.Contains(other.Group, c.ID)
}

func (c *Clue) HasSolution() bool {
	return c.Solution != ""
}

// InBounds reports whether every cell of the clue lies on a cols×rows grid.
func (c *Clue) InBounds(cols, rows int) bool {
	if c.Length < 1 {
		return false
	}
	first, last := c.Position, c.LastCell()
	return first.X >= 0 && first.Y >= 0 && last.X < cols && last.Y < rows
}
