// Package session hosts live plays of a puzzle. Each Session owns one
// game.Game and serialises every operation on it; the Manager creates,
// finds and ends sessions and wires the game's notifications to the move
// log and the event stream.
package session

import (
	"sync"
	"time"

	"github.com/starford/grille/internal/clueindex"
	"github.com/starford/grille/internal/focus"
	"github.com/starford/grille/internal/game"
	"github.com/starford/grille/internal/grid"
	"github.com/starford/grille/internal/puzzle"
	"github.com/starford/grille/internal/sse"
)

// ClueRow is one line of the clue list as shown to a player.
type ClueRow struct {
	ID          string           `json:"id"`
	Number      int              `json:"number"`
	HumanNumber string           `json:"humanNumber"`
	Text        string           `json:"clue"`
	Direction   puzzle.Direction `json:"direction"`
	Length      int              `json:"length"`
	Group       []string         `json:"group"`
	Answered    bool             `json:"answered"`
	Selected    bool             `json:"selected"`
}

// Snapshot is the full visible state of a session.
type Snapshot struct {
	ID           string                             `json:"id"`
	PuzzleID     string                             `json:"puzzle_id"`
	Name         string                             `json:"name,omitempty"`
	Cols         int                                `json:"cols"`
	Rows         int                                `json:"rows"`
	Cells        [][]grid.Cell                      `json:"cells"`
	Focus        focus.State                        `json:"focus"`
	ClueInFocus  string                             `json:"clue_in_focus,omitempty"`
	CurrentValue string                             `json:"current_value"`
	Clues        []ClueRow                          `json:"clues"`
	Separators   map[string]clueindex.SeparatorMark `json:"separators"`
	Answered     int                                `json:"answered"`
	Total        int                                `json:"total"`
	Complete     bool                               `json:"complete"`
	HasSolutions bool                               `json:"has_solutions"`
}

// Info is the list form of a session.
type Info struct {
	ID        string    `json:"id"`
	PuzzleID  string    `json:"puzzle_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one live play of a puzzle. It is safe for concurrent use.
type Session struct {
	ID        string
	PuzzleID  string
	CreatedAt time.Time

	mu       sync.Mutex
	game     *game.Game
	viewport focus.Viewport
	events   Publisher
}

// Info returns the list form of s.
func (s *Session) Info() Info {
	return Info{ID: s.ID, PuzzleID: s.PuzzleID, CreatedAt: s.CreatedAt}
}

// Puzzle returns the puzzle being played.
func (s *Session) Puzzle() *puzzle.Puzzle {
	return s.game.Puzzle()
}

// Apply runs one command. Notifications raised by the game are delivered
// before Apply returns.
func (s *Session) Apply(c Command) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := apply(s.game, &s.viewport, c)
	if err != nil {
		return Result{}, err
	}
	r.Snapshot = s.snapshot()
	if c.Op.mutates() && s.events != nil {
		s.events.PublishProgress(sse.Progress{
			SessionID: s.ID,
			Answered:  r.Snapshot.Answered,
			Total:     r.Snapshot.Total,
			Complete:  r.Snapshot.Complete,
		})
	}
	return r, nil
}

// Snapshot returns the current visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	g := s.game
	p := g.Puzzle()
	answered, total := g.Progress()
	snap := Snapshot{
		ID:           s.ID,
		PuzzleID:     p.ID,
		Name:         p.Name,
		Cols:         p.Cols(),
		Rows:         p.Rows(),
		Cells:        g.Cells(),
		Focus:        g.Focus(),
		CurrentValue: g.CurrentValue(),
		Separators:   g.Index().Separators(),
		Answered:     answered,
		Total:        total,
		Complete:     answered == total,
		HasSolutions: g.HasSolutions(),
	}
	if c := g.ClueInFocus(); c != nil {
		snap.ClueInFocus = c.ID
	}
	for _, st := range g.Clues() {
		c := st.Clue
		snap.Clues = append(snap.Clues, ClueRow{
			ID:          c.ID,
			Number:      c.Number,
			HumanNumber: c.HumanNumber,
			Text:        c.Text,
			Direction:   c.Direction,
			Length:      c.Length,
			Group:       c.Group,
			Answered:    st.Answered,
			Selected:    st.Selected,
		})
	}
	return snap
}
