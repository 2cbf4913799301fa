package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/grille/internal/puzzleservice"
	"github.com/starford/grille/internal/session"
	"github.com/starford/grille/internal/store"
	"github.com/starford/grille/internal/testutil"
)

// testEnv sets up a temp puzzles dir, SQLite DB, service, session manager and
// router. An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	_, files := testutil.TestPuzzles(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := puzzleservice.NewService(files, db)
	sessions := session.NewManager(svc,
		session.WithStateStore(store.NewGridStates(db, logger)),
		session.WithMoveLog(db),
		session.WithLogger(logger),
	)
	return NewRouter(svc, sessions, authToken != "", authToken, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func importCatCow(t *testing.T, router http.Handler) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/puzzles", map[string]string{"content": testutil.CatCow})
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}
}

func startSession(t *testing.T, router http.Handler, clue string) session.Snapshot {
	t.Helper()
	w := do(t, router, http.MethodPost, "/sessions", map[string]string{"puzzle_id": "cat-cow", "clue": clue})
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body = %s", w.Code, w.Body.String())
	}
	var snap session.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	return snap
}

func command(t *testing.T, router http.Handler, id, op string, body any) session.Result {
	t.Helper()
	w := do(t, router, http.MethodPost, "/sessions/"+id+"/"+op, body)
	if w.Code != http.StatusOK {
		t.Fatalf("%s status = %d, body = %s", op, w.Code, w.Body.String())
	}
	var res session.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func TestImportAndGetPuzzle(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)

	w := do(t, router, http.MethodGet, "/puzzles/cat-cow", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var p PuzzleDetail
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if p.Name != "Cat and cow" || p.Cols != 3 || len(p.Entries) != 2 {
		t.Errorf("detail = %+v", p)
	}
	if strings.Contains(w.Body.String(), "CAT") {
		t.Error("detail leaks solutions")
	}
}

func TestImportDuplicate(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)

	w := do(t, router, http.MethodPost, "/puzzles", map[string]string{"content": testutil.CatCow})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate import = %d, want 409", w.Code)
	}
}

func TestImportInvalid(t *testing.T) {
	router := testEnv(t, "")

	cases := []map[string]string{
		{"content": `{"id": "broken"}`},
		{"content": testutil.CatCow, "format": "xml"},
		{"content": ""},
	}
	for _, body := range cases {
		w := do(t, router, http.MethodPost, "/puzzles", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("import %v = %d, want 400", body, w.Code)
		}
	}
}

func TestListAndSearchPuzzles(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)

	w := do(t, router, http.MethodGet, "/puzzles?limit=10", nil)
	var list PuzzleListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Puzzles) != 1 || list.Puzzles[0].ID != "cat-cow" {
		t.Errorf("list = %+v", list)
	}

	w = do(t, router, http.MethodGet, "/puzzles?type=cryptic", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 0 {
		t.Errorf("cryptic total = %d", list.Total)
	}

	w = do(t, router, http.MethodGet, "/puzzles?q=Feline", nil)
	var found SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &found)
	if len(found.Results) != 1 || found.Results[0].ID != "cat-cow" {
		t.Errorf("search = %+v", found)
	}
}

func TestDeletePuzzle(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)

	if w := do(t, router, http.MethodDelete, "/puzzles/cat-cow", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/puzzles/cat-cow", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/puzzles/cat-cow", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestSessionPlay(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)

	snap := startSession(t, router, "1-across")
	if snap.ClueInFocus != "1-across" || snap.Total != 2 {
		t.Fatalf("start snapshot = %+v", snap)
	}

	for _, ch := range []string{"c", "a", "t"} {
		if res := command(t, router, snap.ID, "input", map[string]string{"char": ch}); !res.Applied {
			t.Fatalf("input %q ignored", ch)
		}
	}

	res := command(t, router, snap.ID, "check", nil)
	if len(res.Errors) != 0 || res.Snapshot.Answered != 1 {
		t.Errorf("check = %+v", res)
	}
	if got := res.Snapshot.Cells[2][0].Value; got != "T" {
		t.Errorf("cell (2,0) = %q", got)
	}

	w := do(t, router, http.MethodGet, "/sessions/"+snap.ID+"/moves", nil)
	var moves MovesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &moves)
	if len(moves.Moves) != 3 {
		t.Errorf("moves = %d, want 3", len(moves.Moves))
	}
}

func TestSessionConfirmation(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)
	snap := startSession(t, router, "1-down")
	command(t, router, snap.ID, "input", map[string]string{"char": "c"})

	if w := do(t, router, http.MethodPost, "/sessions/"+snap.ID+"/clear-all", nil); w.Code != http.StatusConflict {
		t.Fatalf("unconfirmed clear-all = %d, want 409", w.Code)
	}
	res := command(t, router, snap.ID, "clear-all?confirm=true", nil)
	if res.Snapshot.Cells[0][0].Value != "" {
		t.Error("clear-all did not clear")
	}
	res = command(t, router, snap.ID, "check-all", map[string]bool{"confirm": true})
	if !res.Applied {
		t.Error("confirmed check-all not applied")
	}
}

func TestSessionErrors(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)
	snap := startSession(t, router, "")

	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodPost, "/sessions", map[string]string{"puzzle_id": "missing"}, http.StatusNotFound},
		{http.MethodPost, "/sessions", map[string]string{}, http.StatusBadRequest},
		{http.MethodGet, "/sessions/nope", nil, http.StatusNotFound},
		{http.MethodPost, "/sessions/nope/select", nil, http.StatusNotFound},
		{http.MethodPost, "/sessions/" + snap.ID + "/fly", nil, http.StatusNotFound},
		{http.MethodPost, "/sessions/" + snap.ID + "/move", map[string]int{"dx": 1, "dy": 1}, http.StatusBadRequest},
		{http.MethodPost, "/sessions/" + snap.ID + "/check", nil, http.StatusConflict},
		{http.MethodPost, "/sessions/" + snap.ID + "/focus", map[string]string{"clue_id": "9-across"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		w := do(t, router, tc.method, tc.path, tc.body)
		if w.Code != tc.want {
			t.Errorf("%s %s = %d, want %d (body %s)", tc.method, tc.path, w.Code, tc.want, w.Body.String())
		}
	}
}

func TestListAndEndSessions(t *testing.T) {
	router := testEnv(t, "")
	importCatCow(t, router)
	snap := startSession(t, router, "")

	w := do(t, router, http.MethodGet, "/sessions", nil)
	var list SessionListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Sessions) != 1 || list.Sessions[0].ID != snap.ID {
		t.Fatalf("sessions = %+v", list)
	}

	if w := do(t, router, http.MethodDelete, "/sessions/"+snap.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("end = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/sessions/"+snap.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after end = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/puzzles", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/puzzles", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	router := testEnv(t, "secret123")

	if w := do(t, router, http.MethodGet, "/sessions?access_token=secret123", nil); w.Code != http.StatusOK {
		t.Errorf("query token GET = %d, want 200", w.Code)
	}
	w := do(t, router, http.MethodPost, "/sessions?access_token=secret123", map[string]string{"puzzle_id": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("query token POST = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	if w := do(t, router, http.MethodGet, "/puzzles", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}
