package puzzle

import "fmt"

// Direction is the orientation of a clue: Across or Down.
type Direction uint8

const (
	Across Direction = iota
	Down
)

// ParseDirection converts "across" or "down" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "across":
		return Across, nil
	case "down":
		return Down, nil
	default:
		return Across, fmt.Errorf("unknown direction: %q", s)
	}
}

// String returns "across" or "down".
func (d Direction) String() string {
	switch d {
	case Across:
		return "across"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Other returns the crossing direction.
func (d Direction) Other() Direction {
	switch d {
	case Across:
		return Down
	default:
		return Across
	}
}

// Along returns the coordinate of p on this direction's axis.
func (d Direction) Along(p Position) int {
	switch d {
	case Across:
		return p.X
	default:
		return p.Y
	}
}

// Advance returns p moved n cells along this direction's axis.
func (d Direction) Advance(p Position, n int) Position {
	switch d {
	case Across:
		return Position{X: p.X + n, Y: p.Y}
	default:
		return Position{X: p.X, Y: p.Y + n}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d != Across && d != Down {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
