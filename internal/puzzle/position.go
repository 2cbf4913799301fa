package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a cell coordinate: X is the column, Y the row.
// It is the key type of every cell-indexed lookup.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// String encodes the position as "x_y".
func (p Position) String() string {
	return strconv.Itoa(p.X) + "_" + strconv.Itoa(p.Y)
}

// ParsePosition decodes the "x_y" form produced by String.
func ParsePosition(s string) (Position, error) {
	xs, ys, ok := strings.Cut(s, "_")
	if !ok {
		return Position{}, fmt.Errorf("position %q: missing separator", s)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	return Position{X: x, Y: y}, nil
}
