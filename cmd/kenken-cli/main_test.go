package main

/*

Tests for the command-line client.  These drive the listener and
handlers directly with in-memory readers and writers; no storage
backends are needed.

*/

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

/*

test fixtures

*/

const solvableJSON = `{
	"size": 2,
	"cages": [
		{"cells": [[0, 0], [0, 1]], "operation": "+", "result": 3},
		{"cells": [[1, 0]], "result": 2},
		{"cells": [[1, 1]], "result": 1}
	]
}`

const twoSolutionJSON = `{
	"size": 2,
	"cages": [
		{"cells": [[0, 0], [0, 1]], "operation": "+", "result": 3},
		{"cells": [[1, 0], [1, 1]], "operation": "+", "result": 3}
	]
}`

const unsolvableJSON = `{
	"size": 2,
	"cages": [
		{"cells": [[0, 0], [0, 1]], "operation": "-", "result": 2},
		{"cells": [[1, 0], [1, 1]], "operation": "+", "result": 3}
	]
}`

// helperPuzzleFile writes a puzzle definition into the test's
// temporary directory and returns its path.
func helperPuzzleFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Couldn't write %s: %v", name, err)
	}
	return path
}

// helperResetClient clears the loaded-puzzle state between tests.
func helperResetClient() {
	curPath, curSummary, curPuzzle = "", nil, nil
}

// a lineReader delivers one line per Read call, the way a
// terminal would.
type lineReader struct {
	lines []string
}

func (lr *lineReader) Read(p []byte) (int, error) {
	if len(lr.lines) == 0 {
		return 0, io.EOF
	}
	n := copy(p, lr.lines[0])
	lr.lines = lr.lines[1:]
	return n, nil
}

/*

batch mode

*/

func TestSolveFile(t *testing.T) {
	path := helperPuzzleFile(t, "solvable.json", solvableJSON)
	out := new(bytes.Buffer)
	if err := solveFile(out, path); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	expected := path + ":\n1 2\n2 1\n"
	if result := out.String(); result != expected {
		t.Errorf("Got %q, expected %q", result, expected)
	}
}

func TestSolveFileNoSolution(t *testing.T) {
	path := helperPuzzleFile(t, "unsolvable.json", unsolvableJSON)
	out := new(bytes.Buffer)
	if err := solveFile(out, path); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	expected := path + ": no solution\n"
	if result := out.String(); result != expected {
		t.Errorf("Got %q, expected %q", result, expected)
	}
}

func TestSolveFileErrors(t *testing.T) {
	out := new(bytes.Buffer)
	if err := solveFile(out, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("Solve of a missing file succeeded")
	}
	garbled := helperPuzzleFile(t, "garbled.json", `{"size": `)
	if err := solveFile(out, garbled); err == nil {
		t.Errorf("Solve of garbled input succeeded")
	}
	uncovered := helperPuzzleFile(t, "uncovered.json",
		`{"size": 2, "cages": [{"cells": [[0, 0]], "result": 1}]}`)
	if err := solveFile(out, uncovered); err == nil {
		t.Errorf("Solve of a partial cage cover succeeded")
	}
	if out.Len() != 0 {
		t.Errorf("Failed solves produced output: %q", out.String())
	}
}

/*

listener and dispatch

*/

func TestNullInput(t *testing.T) {
	out := new(bytes.Buffer)
	if err := listener(out, new(bytes.Buffer)); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Null input produced output: %q", out.String())
	}
}

func TestQuit(t *testing.T) {
	out := new(bytes.Buffer)
	in := &lineReader{lines: []string{"quit\n", "help\n"}}
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Commands after quit ran: %q", out.String())
	}
}

func TestSession(t *testing.T) {
	helperResetClient()
	defer helperResetClient()

	path := helperPuzzleFile(t, "solvable.json", solvableJSON)
	out := new(bytes.Buffer)
	in := &lineReader{lines: []string{
		"solve\n",
		"load " + path + "\n",
		"summary\n",
		"solve\n",
		"solutions\n",
		"quit\n",
	}}
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	steps := []string{
		"No puzzle loaded; use 'load' first.",
		"Loaded 2x2 puzzle from",
		"side length 2, 3 cages",
		"cage 2: 2given",
		"1 2\n2 1\n",
		"1 solution:",
	}
	at := 0
	for _, step := range steps {
		i := strings.Index(result[at:], step)
		if i < 0 {
			t.Fatalf("Missing or misordered %q in output:\n%s", step, result)
		}
		at += i + len(step)
	}
}

func TestSolutionsCommand(t *testing.T) {
	helperResetClient()
	defer helperResetClient()

	path := helperPuzzleFile(t, "two.json", twoSolutionJSON)
	out := new(bytes.Buffer)
	in := &lineReader{lines: []string{"load " + path + "\n", "solutions\n"}}
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	if !strings.Contains(result, "2 solutions:") {
		t.Errorf("Missing solution count in output:\n%s", result)
	}
	if !strings.Contains(result, "#1:\n1 2\n2 1\n") ||
		!strings.Contains(result, "#2:\n2 1\n1 2\n") {
		t.Errorf("Missing or misordered solutions in output:\n%s", result)
	}
}

func TestLoadFailures(t *testing.T) {
	helperResetClient()
	defer helperResetClient()

	garbled := helperPuzzleFile(t, "garbled.json", `{"size": `)
	out := new(bytes.Buffer)
	in := &lineReader{lines: []string{
		"load\n",
		"load " + garbled + "\n",
		"show\n",
	}}
	if err := listener(out, in); err != nil {
		t.Fatalf("CLI failure: %v", err)
	}
	result := out.String()
	if !strings.Contains(result, "load requires a file argument") {
		t.Errorf("Missing arity complaint in output:\n%s", result)
	}
	if !strings.Contains(result, "Load failed:") {
		t.Errorf("Missing load failure in output:\n%s", result)
	}
	if !strings.Contains(result, "No puzzle loaded") {
		t.Errorf("Failed load left a puzzle behind:\n%s", result)
	}
}

func TestUnknownCommand(t *testing.T) {
	out := new(bytes.Buffer)
	dispatchCommand(out, &request{inline: "frob", command: "frob"})
	result := out.String()
	if !strings.Contains(result, `"frob" is not a known command`) {
		t.Errorf("Missing complaint in output:\n%s", result)
	}
	if !strings.Contains(result, "Commands:") {
		t.Errorf("Missing usage list in output:\n%s", result)
	}
}

func TestDispatchRecovers(t *testing.T) {
	dispatchTable["boom"] = &commandInfo{
		command: "boom",
		handler: func(io.Writer, *request) { panic("kaboom") },
	}
	defer delete(dispatchTable, "boom")

	out := new(bytes.Buffer)
	dispatchCommand(out, &request{inline: "boom", command: "boom"})
	if !strings.Contains(out.String(), "Panic executing") {
		t.Errorf("Panic not reported: %q", out.String())
	}
}

/*

shutdown

*/

func TestShutdownHook(t *testing.T) {
	got := shutdownCause(-1)
	alternateShutdown = func(reason shutdownCause) {
		got = reason
	}
	defer func() {
		alternateShutdown = nil
		if r := recover(); r == nil {
			t.Errorf("shutdown returned instead of panicking to the test")
		}
		if got != normalShutdown {
			t.Errorf("shutdown reason was %v, expected %v", got, normalShutdown)
		}
	}()
	shutdown(normalShutdown)
}
