// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Grille tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/grille/internal/apperr"
	"github.com/starford/grille/internal/game"
	"github.com/starford/grille/internal/puzzleservice"
	"github.com/starford/grille/internal/session"
)

// Server wraps the MCP server with Grille tools.
type Server struct {
	mcp      *server.MCPServer
	puzzles  *puzzleservice.Service
	sessions *session.Manager
}

// New creates a new MCP server with all Grille tools registered.
func New(puzzles *puzzleservice.Service, sessions *session.Manager) *Server {
	s := &Server{puzzles: puzzles, sessions: sessions}

	s.mcp = server.NewMCPServer(
		"Grille",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_puzzles",
		mcp.WithDescription("List catalogued puzzles, or search puzzle names and clue text."),
		mcp.WithString("type", mcp.Description("Optional crossword type filter (e.g. quick, cryptic)")),
		mcp.WithString("query", mcp.Description("Optional search query")),
	), s.listPuzzles)

	s.mcp.AddTool(mcp.NewTool("get_puzzle_contract",
		mcp.WithDescription("Returns the Grille puzzle definition format. "+
			"Call this before importing puzzles to ensure correct structure."),
	), s.getPuzzleContract)

	s.mcp.AddTool(mcp.NewTool("import_puzzle",
		mcp.WithDescription("Import a puzzle definition into the catalog. Pass either the "+
			"document itself as content or an http(s)/data URL to fetch it from. Read the "+
			"format via get_puzzle_contract or the grille://puzzle-format resource first."),
		mcp.WithString("content", mcp.Description("Puzzle JSON or YAML")),
		mcp.WithString("url", mcp.Description("URL of a puzzle file")),
		mcp.WithString("format", mcp.Description("json or yaml (default: detected, else json)")),
	), s.importPuzzle)

	s.mcp.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start playing a puzzle. Returns the session id and the rendered grid."),
		mcp.WithString("puzzle_id", mcp.Required(), mcp.Description("Puzzle id from list_puzzles")),
		mcp.WithString("clue", mcp.Description("Optional entry id to focus first (e.g. 1-across)")),
	), s.startSession)

	s.mcp.AddTool(mcp.NewTool("show_session",
		mcp.WithDescription("Render the grid, focus and clue list of a session."),
		mcp.WithString("session_id", mcp.Required()),
	), s.showSession)

	s.mcp.AddTool(mcp.NewTool("select_cell",
		mcp.WithDescription("Select a grid cell. Selecting the focused cell again switches direction."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Column, zero based")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Row, zero based")),
	), s.selectCell)

	s.mcp.AddTool(mcp.NewTool("focus_clue",
		mcp.WithDescription("Focus the first cell of an entry."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("clue_id", mcp.Required(), mcp.Description("Entry id (e.g. 1-across)")),
	), s.focusClue)

	s.mcp.AddTool(mcp.NewTool("type_answer",
		mcp.WithDescription("Type the whole answer of an entry, starting at the first cell of its "+
			"compound answer. Spaces and punctuation are skipped; the letter count must match."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("clue_id", mcp.Required()),
		mcp.WithString("answer", mcp.Required()),
	), s.typeAnswer)

	s.mcp.AddTool(mcp.NewTool("check_clue",
		mcp.WithDescription("Check an entry's whole answer, every linked entry included, against "+
			"its solution. Wrong letters are cleared and flagged."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("clue_id", mcp.Required()),
	), s.checkClue)

	s.mcp.AddTool(mcp.NewTool("clear_clue",
		mcp.WithDescription("Clear an entry, keeping letters that belong to completed crossing answers."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("clue_id", mcp.Required()),
	), s.clearClue)

	// Resource: puzzle format contract.
	s.mcp.AddResource(
		mcp.NewResource("grille://puzzle-format", "Puzzle Format Contract",
			mcp.WithResourceDescription("Puzzle definition format accepted by import_puzzle."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPuzzleFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPuzzles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if query := req.GetString("query", ""); query != "" {
		results, err := s.puzzles.Search(ctx, query, 20)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, _ := json.MarshalIndent(results, "", "  ")
		return mcp.NewToolResultText(string(out)), nil
	}

	items, _, err := s.puzzles.ListPuzzles(ctx, 0, 0, req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no puzzles found"), nil
	}
	lines := make([]string, 0, len(items))
	for _, p := range items {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%dx%d", p.ID, p.Type, p.Name, p.Cols, p.Rows))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getPuzzleContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PuzzleFormatContract), nil
}

func (s *Server) readPuzzleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "grille://puzzle-format",
			MIMEType: "text/markdown",
			Text:     PuzzleFormatContract,
		},
	}, nil
}

func (s *Server) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	puzzleID, err := req.RequireString("puzzle_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.sessions.Start(ctx, puzzleID, req.GetString("clue", ""))
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(Render(sess.Snapshot())), nil
}

func (s *Server) showSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(Render(sess.Snapshot())), nil
}

func (s *Server) selectCell(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := req.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := req.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.apply(req, session.Command{Op: session.OpSelect, X: x, Y: y})
}

func (s *Server) focusClue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clueID, err := req.RequireString("clue_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.apply(req, session.Command{Op: session.OpFocus, ClueID: clueID})
}

func (s *Server) typeAnswer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clueID, err := req.RequireString("clue_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := req.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return toolError(err)
	}
	p := sess.Puzzle()
	clue := p.ClueByID(clueID)
	if clue == nil {
		return toolError(fmt.Errorf("clue %q: %w", clueID, apperr.ErrNotFound))
	}
	letters, err := answerLetters(answer)
	if err != nil {
		return toolError(err)
	}
	if want := p.GroupLength(clue); len(letters) != want {
		return toolError(fmt.Errorf("answer %q has %d letters, %s takes %d: %w",
			answer, len(letters), clueID, want, apperr.ErrInvalidCommand))
	}

	res, err := sess.Apply(session.Command{Op: session.OpFocus, ClueID: p.GroupEntries(clue)[0].ID})
	if err != nil {
		return toolError(err)
	}
	for _, l := range letters {
		res, err = sess.Apply(session.Command{Op: session.OpInput, Char: l})
		if err != nil {
			return toolError(err)
		}
	}
	return mcp.NewToolResultText(Render(res.Snapshot)), nil
}

// answerLetters splits an answer into the characters to type, dropping word
// breaks.
func answerLetters(answer string) ([]string, error) {
	var out []string
	for _, r := range answer {
		switch r {
		case ' ', '-', ',', '\'':
			continue
		}
		if !game.ValidInput(string(r)) {
			return nil, fmt.Errorf("answer %q: %q cannot be typed: %w", answer, r, apperr.ErrInvalidCommand)
		}
		out = append(out, string(r))
	}
	return out, nil
}

func (s *Server) checkClue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clueID, err := req.RequireString("clue_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.apply(req, session.Command{Op: session.OpCheck, ClueID: clueID})
}

func (s *Server) clearClue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clueID, err := req.RequireString("clue_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.apply(req, session.Command{Op: session.OpClear, ClueID: clueID})
}

func (s *Server) apply(req mcp.CallToolRequest, cmd session.Command) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.sessions.Apply(id, cmd)
	if err != nil {
		return toolError(err)
	}
	text := Render(res.Snapshot)
	if cmd.Op == session.OpCheck {
		if len(res.Errors) == 0 {
			text = "all letters correct\n\n" + text
		} else {
			text = fmt.Sprintf("%d wrong letter(s) cleared\n\n%s", len(res.Errors), text)
		}
	}
	return mcp.NewToolResultText(text), nil
}

// toolError reports domain errors to the model and passes anything else up
// as a protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	for _, target := range []error{
		apperr.ErrNotFound, apperr.ErrConflict, apperr.ErrInvalidCommand,
		apperr.ErrInvalidPuzzle, apperr.ErrConfirmationRequired,
	} {
		if errors.Is(err, target) {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return nil, err
}
