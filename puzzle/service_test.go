package puzzle

/*

Tests for the HTTP handlers.

*/

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func helperPost(body string) *http.Request {
	r, e := http.NewRequest("POST", "/api/solve", strings.NewReader(body))
	if e != nil {
		panic(e)
	}
	return r
}

func helperGet(path string) *http.Request {
	r, e := http.NewRequest("GET", path, nil)
	if e != nil {
		panic(e)
	}
	return r
}

func helperSummaryBody(t *testing.T, s *Summary) string {
	bytes, e := json.Marshal(s)
	if e != nil {
		t.Fatalf("couldn't encode summary: %v", e)
	}
	return string(bytes)
}

func TestNewHandler(t *testing.T) {
	w := httptest.NewRecorder()
	p, e := NewHandler(w, helperPost(helperSummaryBody(t, goldenSummary())))
	if e != nil {
		t.Fatalf("handler failed: %v", e)
	}
	if p == nil || p.Size() != 6 {
		t.Fatalf("handler puzzle is %+v", p)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("handler status is %d", w.Code)
	}
	var state State
	if e := json.Unmarshal(w.Body.Bytes(), &state); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if state.Size != 6 || len(state.Candidates) != 36 {
		t.Errorf("response state is %+v", state)
	}
}

func TestNewHandlerBadJSON(t *testing.T) {
	w := httptest.NewRecorder()
	p, e := NewHandler(w, helperPost(`{"size": `))
	if e == nil || p != nil {
		t.Fatalf("handler succeeded on garbage: %+v", p)
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("handler status is %d", w.Code)
	}
	var err Error
	if e := json.Unmarshal(w.Body.Bytes(), &err); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if err.Scope != RequestScope {
		t.Errorf("response error is %+v", err)
	}
}

func TestNewHandlerBadDefinition(t *testing.T) {
	s := &Summary{Size: 2, Cages: []Cage{
		{Cells: [][2]int{{0, 0}, {0, 1}}, Operation: OpSubtract, Result: 1},
	}}
	w := httptest.NewRecorder()
	p, e := NewHandler(w, helperPost(helperSummaryBody(t, s)))
	if e == nil || p != nil {
		t.Fatalf("handler succeeded on partial cage cover: %+v", p)
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("handler status is %d", w.Code)
	}
	var err Error
	if e := json.Unmarshal(w.Body.Bytes(), &err); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if err.Scope != DefinitionScope || err.Message == "" {
		t.Errorf("response error is %+v", err)
	}
}

func TestSolveHandler(t *testing.T) {
	p, e := New(goldenSummary())
	if e != nil {
		t.Fatalf("creation failed: %v", e)
	}
	w := httptest.NewRecorder()
	if e := p.SolveHandler(w, helperGet("/api/puzzles/x/solve")); e != nil {
		t.Fatalf("handler failed: %v", e)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("handler status is %d", w.Code)
	}
	var result SolveResult
	if e := json.Unmarshal(w.Body.Bytes(), &result); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if !result.Solved || result.Solution == nil {
		t.Fatalf("response result is %+v", result)
	}
	if len(result.Solution.Rows) != 6 {
		t.Errorf("solution has %d rows", len(result.Solution.Rows))
	}
}

func TestSolveHandlerUnsolvable(t *testing.T) {
	p, e := New(unsolvableSummary())
	if e != nil {
		t.Fatalf("creation failed: %v", e)
	}
	w := httptest.NewRecorder()
	if e := p.SolveHandler(w, helperGet("/api/puzzles/x/solve")); e != nil {
		t.Fatalf("handler failed: %v", e)
	}
	// an unsolvable puzzle is a successful response
	if w.Code != http.StatusOK {
		t.Fatalf("handler status is %d", w.Code)
	}
	var result SolveResult
	if e := json.Unmarshal(w.Body.Bytes(), &result); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if result.Solved || result.Solution != nil {
		t.Errorf("response result is %+v", result)
	}
}

func TestSolutionsHandler(t *testing.T) {
	p, e := New(twoRowSummary())
	if e != nil {
		t.Fatalf("creation failed: %v", e)
	}
	w := httptest.NewRecorder()
	if e := p.SolutionsHandler(w, helperGet("/api/puzzles/x/solutions")); e != nil {
		t.Fatalf("handler failed: %v", e)
	}
	var solutions []Solution
	if e := json.Unmarshal(w.Body.Bytes(), &solutions); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if len(solutions) != 2 {
		t.Errorf("response has %d solutions", len(solutions))
	}
}

func TestSolutionsHandlerEmpty(t *testing.T) {
	p, e := New(unsolvableSummary())
	if e != nil {
		t.Fatalf("creation failed: %v", e)
	}
	w := httptest.NewRecorder()
	if e := p.SolutionsHandler(w, helperGet("/api/puzzles/x/solutions")); e != nil {
		t.Fatalf("handler failed: %v", e)
	}
	// the empty solution list encodes as a list, not null
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("response body is %q", body)
	}
}

func TestSummaryHandler(t *testing.T) {
	s := goldenSummary()
	p, e := New(s)
	if e != nil {
		t.Fatalf("creation failed: %v", e)
	}
	w := httptest.NewRecorder()
	if e := p.SummaryHandler(w, helperGet("/api/puzzles/x/summary")); e != nil {
		t.Fatalf("handler failed: %v", e)
	}
	var got Summary
	if e := json.Unmarshal(w.Body.Bytes(), &got); e != nil {
		t.Fatalf("response decode failed: %v", e)
	}
	if got.Size != s.Size || len(got.Cages) != len(s.Cages) {
		t.Errorf("response summary is %+v", got)
	}
}

func TestHandlersNoPuzzle(t *testing.T) {
	var p *Puzzle
	handlers := map[string]func(http.ResponseWriter, *http.Request) error{
		"summary":   p.SummaryHandler,
		"state":     p.StateHandler,
		"solve":     p.SolveHandler,
		"solutions": p.SolutionsHandler,
	}
	for name, handler := range handlers {
		w := httptest.NewRecorder()
		if e := handler(w, helperGet("/api/puzzles/x/"+name)); e == nil {
			t.Errorf("%s handler succeeded with no puzzle", name)
		}
		if w.Code != http.StatusNotFound {
			t.Errorf("%s handler status is %d", name, w.Code)
		}
	}
}
