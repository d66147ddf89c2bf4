// Package puzzle provides a model for KenKen puzzles and
// operations on them, including a solver.
//
// A KenKen puzzle is a square grid whose cells must each hold a
// value between 1 and the side length of the grid (inclusive),
// with every row and every column holding each value exactly
// once.  The grid is partitioned into cages: fixed groups of
// cells annotated with an arithmetic operation and a target that
// the cell values must combine to produce.
//
// For each cell in a puzzle, the implementation maintains a set
// of candidate values the cell can still take without
// conflicting with the rows, columns, and cages that contain it.
// Solving shrinks the candidate sets by constraint propagation,
// guessing only when propagation stalls.  A puzzle is mutated in
// place as its candidate sets shrink; the solver snapshots whole
// puzzles at choice points and restores them to backtrack.
//
// Puzzles are built from a Summary, the JSON-friendly structured
// definition of a puzzle.  Malformed definitions (cages that
// don't partition the grid, unsupported operation/cell-count
// combinations) are rejected by New before any solving begins.
// A well-formed puzzle with no solution is not an error: Solve
// reports it as an unsolved outcome.
package puzzle

import (
	"fmt"
)

/*

Operations

*/

// An Operation is the arithmetic constraint of a cage.  The set
// of operations is closed: the four constants below (plus OpNone
// for single-cell cages) are the only values New accepts.
type Operation string

// Constants for the cage operations.  The strings match the
// puzzle definition file format.
const (
	OpNone     Operation = ""
	OpAdd      Operation = "+"
	OpSubtract Operation = "-"
	OpMultiply Operation = "*"
	OpDivide   Operation = "/"
)

/*

Summaries

*/

// A Summary is the external definition of a puzzle: the grid
// size plus the cage list.  The cages must partition the grid:
// every cell in exactly one cage.  Cell coordinates are 0-based
// (row, column) pairs.
type Summary struct {
	Size  int    `json:"size"`
	Cages []Cage `json:"cages"`
}

// A Cage definition gives the cage's member cells, its
// operation, and its target result.  Subtraction and division
// cages must have exactly two cells.  A single-cell cage may
// omit the operation; its result is simply the cell's value.
type Cage struct {
	Cells     [][2]int  `json:"cells"`
	Operation Operation `json:"operation,omitempty"`
	Result    int       `json:"result"`
}

// copy returns a Summary with no shared storage.
func (s *Summary) copy() *Summary {
	if s == nil {
		return nil
	}
	c := &Summary{Size: s.Size, Cages: make([]Cage, len(s.Cages))}
	for i, cg := range s.Cages {
		c.Cages[i] = Cage{
			Cells:     append([][2]int(nil), cg.Cells...),
			Operation: cg.Operation,
			Result:    cg.Result,
		}
	}
	return c
}

/*

Group IDs

*/

// A GroupID names a row, column, or cage: a set of constrained
// cells, collectively called groups.  The numbering for each
// type of group is 1-based; rows and columns are numbered
// top-to-bottom and left-to-right, cages in definition order.
type GroupID struct {
	Gtype string `json:"gtype"`
	Index int    `json:"index"`
}

// Group IDs implement Stringer
func (gid GroupID) String() string {
	if gid.Gtype == "" {
		return fmt.Sprintf("<group> %d", gid.Index)
	}
	return fmt.Sprintf("%s %d", gid.Gtype, gid.Index)
}

// GType (group type) constants.  These are human-readable but
// not localized.
const (
	GtypeRow  = "row"
	GtypeCol  = "column"
	GtypeCage = "cage"
)

/*

Choices and Solutions

*/

// A Choice records a guessed value for a cell, made at a solver
// choice point.  Coordinates are 0-based.
type Choice struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// A Solution is a filled-in puzzle, expressed as its rows in
// order, plus the sequence of choices that were guessed to get
// there.  Solutions tend to have far fewer choices than cells,
// because most cell values are forced by propagation.
type Solution struct {
	Rows    [][]int  `json:"rows"`
	Choices []Choice `json:"choices,omitempty"`
}

// A SolveResult is the outcome of a solve: either a Solution or
// the determination that no consistent assignment exists.  An
// unsolvable puzzle is a normal outcome, not an error.
type SolveResult struct {
	Solved   bool      `json:"solved"`
	Solution *Solution `json:"solution,omitempty"`
}

/*

States

*/

// The State of a puzzle gives its size, the candidate sets of
// all its cells in reading order, and any known problems with
// the current puzzle state.
type State struct {
	Size       int     `json:"size"`
	Candidates [][]int `json:"candidates"`
	Errors     []Error `json:"errors,omitempty"`
}

/*

Puzzle construction and accessors

*/

// New validates the given summary and returns a freshly
// initialized Puzzle for it: every cell's candidate set is the
// full range of values.  Malformed definitions are rejected with
// an Error describing the first problem found.
//
// When an error is returned from this function, it will always
// contain an Error value.
func New(s *Summary) (*Puzzle, error) {
	l, err := newLayout(s)
	if err != nil {
		return nil, err
	}
	p := &Puzzle{layout: l}
	p.cells = make([]intset, l.scount+1) // 1-based indexing
	for i := 1; i <= l.scount; i++ {
		p.cells[i] = newIntsetRange(l.size)
	}
	return p, nil
}

// Summary returns the definition this puzzle was built from.
// The return value does not share storage with the puzzle.
func (p *Puzzle) Summary() *Summary {
	return p.layout.summary.copy()
}

// Size returns the side length of the puzzle.
func (p *Puzzle) Size() int {
	return p.layout.size
}

// State returns a State snapshot for the puzzle.
func (p *Puzzle) State() State {
	return State{
		Size:       p.layout.size,
		Candidates: p.allCandidates(),
		Errors:     p.allErrors(true),
	}
}

// Copy returns a copy of the puzzle (no shared mutable
// structure), so callers can explore without disturbing the
// original.
func (p *Puzzle) Copy() *Puzzle {
	return p.copy()
}

// isValid distinguishes real puzzles from zero-value ones that
// handlers might be given.
func (p *Puzzle) isValid() bool {
	return p != nil && p.layout != nil
}
