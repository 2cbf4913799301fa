package puzzle

import (
	"errors"
	"fmt"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/grille/internal/apperr"
)

// Validate checks the puzzle definition. Errors wrap apperr.ErrInvalidPuzzle.
func (p *Puzzle) Validate() error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
		validation.Field(&p.Dimensions),
		validation.Field(&p.Entries, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidPuzzle, err)
	}

	seen := make(map[string]struct{}, len(p.Entries))
	for i := range p.Entries {
		e := &p.Entries[i]
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate entry id %q", apperr.ErrInvalidPuzzle, e.ID)
		}
		seen[e.ID] = struct{}{}
		if !e.InBounds(p.Cols(), p.Rows()) {
			return fmt.Errorf("%w: entry %q at %v length %d leaves the %dx%d grid",
				apperr.ErrInvalidPuzzle, e.ID, e.Position, e.Length, p.Cols(), p.Rows())
		}
	}
	for i := range p.Entries {
		for _, id := range p.Entries[i].Group {
			if _, ok := seen[id]; !ok {
				return fmt.Errorf("%w: entry %q groups unknown id %q", apperr.ErrInvalidPuzzle, p.Entries[i].ID, id)
			}
		}
	}
	return nil
}

// Validate checks the grid dimensions.
func (d Dimensions) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Cols, validation.Required, validation.Min(1)),
		validation.Field(&d.Rows, validation.Required, validation.Min(1)),
	)
}

// Validate checks a single entry in isolation.
func (c Clue) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Number, validation.Required, validation.Min(1)),
		validation.Field(&c.Length, validation.Required, validation.Min(1)),
		validation.Field(&c.Direction, validation.In(Across, Down)),
		validation.Field(&c.Solution, validation.By(func(v any) error {
			s, _ := v.(string)
			if s != "" && utf8.RuneCountInString(s) != c.Length {
				return errors.New("must match the entry length")
			}
			return nil
		})),
	)
}
