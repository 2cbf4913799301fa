package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/focus"
	"github.com/starford/grille/internal/game"
	"github.com/starford/grille/internal/models"
	"github.com/starford/grille/internal/puzzle"
	"github.com/starford/grille/internal/sse"
)

// Loader resolves a puzzle id to its parsed definition.
type Loader interface {
	Load(ctx context.Context, id string) (*puzzle.Puzzle, error)
}

// MoveLog records committed cell changes.
type MoveLog interface {
	RecordMove(m models.MoveRecord) error
	Moves(sessionID string, limit int) ([]models.MoveRecord, error)
}

// Publisher receives session events.
type Publisher interface {
	Publish(e sse.Event)
	PublishProgress(p sse.Progress)
}

// Option configures a Manager.
type Option func(*Manager)

// WithStateStore persists grid values per puzzle across sessions.
func WithStateStore(s game.StateStore) Option {
	return func(m *Manager) {
		m.states = s
	}
}

// WithMoveLog records every committed cell change.
func WithMoveLog(l MoveLog) Option {
	return func(m *Manager) {
		m.moves = l
	}
}

// WithPublisher streams focus, cell and progress events.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) {
		m.events = p
	}
}

// WithLogger sets the logger used for collaborator failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// Manager owns the live sessions.
type Manager struct {
	loader Loader
	states game.StateStore
	moves  MoveLog
	events Publisher
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty manager.
func NewManager(loader Loader, opts ...Option) *Manager {
	m := &Manager{
		loader:   loader,
		logger:   slog.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a session on a puzzle. initialClue, when set, focuses that
// entry first.
func (m *Manager) Start(ctx context.Context, puzzleID, initialClue string) (*Session, error) {
	p, err := m.loader.Load(ctx, puzzleID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		PuzzleID:  p.ID,
		CreatedAt: time.Now().UTC(),
		events:    m.events,
	}
	opts := []game.Option{
		game.WithOnMove(m.onMove(s)),
		game.WithOnFocus(m.onFocus(s)),
		game.WithInitialClue(initialClue),
	}
	if m.states != nil {
		opts = append(opts, game.WithStateStore(m.states))
	}
	s.game, err = game.New(p, opts...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session: started", slog.String("session", s.ID), slog.String("puzzle", p.ID))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}
	return s, nil
}

// List returns every live session, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// End discards a session. Its saved grid state and moves are kept.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}
	delete(m.sessions, id)
	m.logger.Info("session: ended", slog.String("session", id))
	return nil
}

// Apply runs a command on a live session.
func (m *Manager) Apply(id string, c Command) (Result, error) {
	s, err := m.Get(id)
	if err != nil {
		return Result{}, err
	}
	return s.Apply(c)
}

// Moves returns the move log of a session. The session need not be live.
func (m *Manager) Moves(id string, limit int) ([]models.MoveRecord, error) {
	if m.moves == nil {
		return []models.MoveRecord{}, nil
	}
	return m.moves.Moves(id, limit)
}

func (m *Manager) onMove(s *Session) func(game.Move) {
	return func(mv game.Move) {
		if m.moves != nil {
			err := m.moves.RecordMove(models.MoveRecord{
				SessionID:     s.ID,
				PuzzleID:      s.PuzzleID,
				X:             mv.X,
				Y:             mv.Y,
				Value:         mv.Value,
				PreviousValue: mv.PreviousValue,
			})
			if err != nil {
				m.logger.Warn("session: record move failed", slog.String("session", s.ID), slog.String("error", err.Error()))
			}
		}
		if m.events != nil {
			m.events.Publish(sse.Event{
				Type:      sse.TypeCellChanged,
				SessionID: s.ID,
				Data: CellChanged{
					SessionID:     s.ID,
					X:             mv.X,
					Y:             mv.Y,
					Value:         mv.Value,
					PreviousValue: mv.PreviousValue,
				},
			})
		}
	}
}

func (m *Manager) onFocus(s *Session) func(focus.Event) {
	return func(e focus.Event) {
		if m.events == nil {
			return
		}
		m.events.Publish(sse.Event{
			Type:      sse.TypeFocusChanged,
			SessionID: s.ID,
			Data:      FocusChanged{SessionID: s.ID, X: e.X, Y: e.Y, ClueID: e.ClueID},
		})
	}
}

// CellChanged is the payload of cell.changed.
type CellChanged struct {
	SessionID     string `json:"session_id"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	Value         string `json:"value"`
	PreviousValue string `json:"previousValue"`
}

// FocusChanged is the payload of focus.changed.
type FocusChanged struct {
	SessionID string `json:"session_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	ClueID    string `json:"clueId"`
}
