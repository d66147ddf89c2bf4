package main

/*

Tests for the web service.  The stateless solve route and the
request plumbing are tested directly; the stored-puzzle routes
need live storage and are covered by the storage package's own
tests plus the route-parsing tests here.

*/

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sdjespersen/kenken/puzzle"
)

const solvableJSON = `{
	"size": 2,
	"cages": [
		{"cells": [[0, 0], [0, 1]], "operation": "+", "result": 3},
		{"cells": [[1, 0]], "result": 2},
		{"cells": [[1, 1]], "result": 1}
	]
}`

const unsolvableJSON = `{
	"size": 2,
	"cages": [
		{"cells": [[0, 0], [0, 1]], "operation": "-", "result": 2},
		{"cells": [[1, 0], [1, 1]], "operation": "+", "result": 3}
	]
}`

func helperRequest(method, path, body string) *http.Request {
	r, e := http.NewRequest(method, path, strings.NewReader(body))
	if e != nil {
		panic(e)
	}
	return r
}

/*

route parsing

*/

func TestSplitPuzzlePath(t *testing.T) {
	tests := []struct {
		path, id, op string
	}{
		{"/api/puzzles/abc123", "abc123", ""},
		{"/api/puzzles/abc123/summary", "abc123", "summary"},
		{"/api/puzzles/abc123/solve", "abc123", "solve"},
		{"/api/puzzles/abc123/solutions", "abc123", "solutions"},
		{"/api/puzzles/abc123/no/such", "abc123", "no/such"},
		{"/api/puzzles/", "", ""},
	}
	for _, test := range tests {
		id, op := splitPuzzlePath(test.path)
		if id != test.id || op != test.op {
			t.Errorf("splitPuzzlePath(%q) gave (%q, %q), expected (%q, %q)",
				test.path, id, op, test.id, test.op)
		}
	}
}

/*

stateless solving

*/

func TestSolveRoute(t *testing.T) {
	w := httptest.NewRecorder()
	solveHandler(w, helperRequest("POST", "/api/solve", solvableJSON))
	if w.Code != http.StatusOK {
		t.Fatalf("Status was %d", w.Code)
	}
	var result puzzle.SolveResult
	if e := json.Unmarshal(w.Body.Bytes(), &result); e != nil {
		t.Fatalf("Response decode failed: %v", e)
	}
	if !result.Solved {
		t.Fatalf("Puzzle not solved: %+v", result)
	}
	want := [][]int{{1, 2}, {2, 1}}
	for r, row := range result.Solution.Rows {
		for c, v := range row {
			if v != want[r][c] {
				t.Fatalf("Solution was %v, expected %v", result.Solution.Rows, want)
			}
		}
	}
}

func TestSolveRouteUnsolvable(t *testing.T) {
	w := httptest.NewRecorder()
	solveHandler(w, helperRequest("POST", "/api/solve", unsolvableJSON))
	// no solution is still a successful response
	if w.Code != http.StatusOK {
		t.Fatalf("Status was %d", w.Code)
	}
	var result puzzle.SolveResult
	if e := json.Unmarshal(w.Body.Bytes(), &result); e != nil {
		t.Fatalf("Response decode failed: %v", e)
	}
	if result.Solved || result.Solution != nil {
		t.Errorf("Result was %+v", result)
	}
}

func TestSolveRouteBadRequests(t *testing.T) {
	w := httptest.NewRecorder()
	solveHandler(w, helperRequest("POST", "/api/solve", `{"size": `))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Garbled body status was %d", w.Code)
	}

	w = httptest.NewRecorder()
	solveHandler(w, helperRequest("GET", "/api/solve", ""))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status was %d", w.Code)
	}
}

func TestPuzzlesRouteMethod(t *testing.T) {
	w := httptest.NewRecorder()
	puzzlesHandler(w, helperRequest("GET", "/api/puzzles", ""))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status was %d", w.Code)
	}
	w = httptest.NewRecorder()
	puzzleHandler(w, helperRequest("POST", "/api/puzzles/abc123", ""))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status was %d", w.Code)
	}
}

/*

request plumbing

*/

func TestGuardRecovers(t *testing.T) {
	handler := guard(func(w http.ResponseWriter, r *http.Request) {
		panic(fmt.Errorf("lost the backend"))
	})
	w := httptest.NewRecorder()
	handler(w, helperRequest("GET", "/api/puzzles/abc123", ""))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status was %d", w.Code)
	}
}

func TestWriteBadRequest(t *testing.T) {
	// structured Errors go back as JSON
	w := httptest.NewRecorder()
	_, e := puzzle.New(&puzzle.Summary{Size: 2, Cages: []puzzle.Cage{
		{Cells: [][2]int{{0, 0}}, Result: 1},
	}})
	if e == nil {
		t.Fatalf("Partial cage cover accepted")
	}
	writeBadRequest(w, e)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status was %d", w.Code)
	}
	var err puzzle.Error
	if e := json.Unmarshal(w.Body.Bytes(), &err); e != nil {
		t.Fatalf("Response decode failed: %v", e)
	}
	if err.Scope != puzzle.DefinitionScope || err.Message == "" {
		t.Errorf("Response error was %+v", err)
	}

	// other errors go back as plain text
	w = httptest.NewRecorder()
	writeBadRequest(w, fmt.Errorf("not a puzzle error"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Status was %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not a puzzle error") {
		t.Errorf("Response body was %q", w.Body.String())
	}
}
