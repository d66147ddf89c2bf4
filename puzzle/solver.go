package puzzle

import (
	"fmt"
)

/*

KenKen puzzle solver

The solver uses a depth-first search algorithm with a stack for
backtracking, called Ariadne's thread after the mythical heroine
who used a ball of yarn as a stack in her depth-first search for
an exit from the minotaur's maze.

1. Propagate constraints to a fixed point: filter each cage's
combination table against the current candidate sets, run the
exposed-group and hidden-group eliminations on every row and
column, and repeat until a full pass changes nothing.

2. Check the state of the puzzle:

2.1 If the puzzle is solved, you're done.

2.2 If the puzzle has errors (an emptied candidate set, a cage
with no usable combination, a duplicated value), go to step 4.

2.3 The puzzle has undetermined cells.  Continue to step 3.

3. Guess a value for an undetermined cell as follows:

3.1 Find the first cell, in reading order, with the fewest
remaining candidates.

3.2 Save the puzzle state, the chosen cell, and the candidate
values on the top of the stack.

3.3 Collapse the chosen cell to the smallest of its candidates.

3.4 Go to step 1.

4. "Rewind your thread" as follows:

4.1 Pop the stack until you find an entry that has untried
candidates for its chosen cell.

4.2 If the stack is empty, stop.  The puzzle can't be solved.

4.3 Restore the puzzle state saved on the stack.

4.4 Collapse the chosen cell to the next untried candidate.

4.5 Go to step 1.

This algorithm yields the sequence of guesses made for
undetermined cells, in the order they were tried in step 3.2.
These are stored as entries on the stack, and are reported with
the solution.  Solving is fully deterministic: candidate sets
are sorted, so values are tried in ascending order, and ties in
step 3.1 go to the first cell in reading order.

The algorithm finds further solutions by treating a solved
puzzle like a failed one and rewinding the thread, which is how
Solutions enumerates them all.

*/

// A choice is a puzzle, a cell to choose, the candidate to try
// first in that cell, and the next candidates to try after that.
type choice struct {
	puz    *Puzzle
	cindex int
	cvalue int
	cnext  intset
}

// A thread is a stack of choices
type thread []choice

// solve a puzzle using Ariadne's thread.  Entered with a puzzle
// and a stack of prior choices (which can be empty), this finds
// the next possible solution and returns the puzzle and stack at
// time of solution (or unsolvable error).
func solve(p *Puzzle, t thread) (*Puzzle, thread) {
	for {
		p.propagate()
		if len(p.errors) == 0 && p.solved() {
			return p, t
		}
		if len(p.errors) > 0 {
			p, t = popChoice(p, t)
			if len(t) == 0 {
				return p, t
			}
			continue
		}
		p, t = pushChoice(p, t)
	}
}

// Solve finds the first solution to the puzzle, or determines
// that there is none.  The puzzle is copied first, so it's not
// altered by the search; solving the same puzzle twice yields
// the same result.
func (p *Puzzle) Solve() SolveResult {
	sp, t := solve(p.copy(), nil)
	if len(sp.errors) > 0 {
		return SolveResult{}
	}
	return SolveResult{Solved: true, Solution: newSolution(sp, t)}
}

// Solutions finds all solutions to a given puzzle.  The puzzle
// is copied first, so it's not altered during the solutions
// process.
func (p *Puzzle) Solutions() []Solution {
	var solutions []Solution
	var t thread
	for p, t = solve(p.copy(), t); len(p.errors) == 0; p, t = solve(p, t) {
		solutions = append(solutions, *newSolution(p, t))
		p, t = popChoice(p, t)
		if len(t) == 0 {
			break
		}
	}
	return solutions
}

// popChoice resets a puzzle to the next choice after the current
// choice in a thread has failed.  If there is no next choice,
// the incoming puzzle is returned, along with the empty thread.
func popChoice(p *Puzzle, t thread) (*Puzzle, thread) {
	for len(t) > 0 {
		top := &t[len(t)-1]
		if len(top.cnext) == 0 {
			*top = choice{} // release storage held in choice before pop
			t = t[:len(t)-1]
			continue
		}
		next := top.puz.copy()
		top.cvalue, top.cnext = top.cnext[0], top.cnext[1:]
		next.cells[top.cindex] = intset{top.cvalue}
		return next, t
	}
	return p, t
}

// pushChoice chooses an undetermined cell to collapse, pushes a
// puzzle copy and the choice on the stack, and then applies that
// choice to the puzzle.  The chosen cell is the first one with
// the fewest candidates; two is the fewest an undetermined cell
// can have, so the scan stops early when it sees one.
func pushChoice(p *Puzzle, t thread) (*Puzzle, thread) {
	cindex, ccount := 0, p.layout.size+1
	for i := 1; i <= p.layout.scount; i++ {
		count := len(p.cells[i])
		if count > 1 {
			if count == 2 {
				cindex, ccount = i, 2
				break
			}
			if count < ccount {
				cindex, ccount = i, count
			}
		}
	}
	if cindex == 0 {
		// internal caller error - called when no choice available
		panic(fmt.Errorf("pushChoice called with no available choices"))
	}
	c := choice{
		puz:    p.copy(),
		cindex: cindex,
		cvalue: p.cells[cindex][0],
		cnext:  newIntsetCopy(p.cells[cindex][1:]),
	}
	p.cells[c.cindex] = intset{c.cvalue}
	return p, append(t, c)
}

// newSolution constructs a solution from a solved puzzle and its
// solving thread.
func newSolution(p *Puzzle, t thread) *Solution {
	rows := make([][]int, p.layout.size)
	for r := range rows {
		rows[r] = make([]int, p.layout.size)
		for c := range rows[r] {
			rows[r][c] = p.cells[cellIndex(r, c, p.layout.size)][0]
		}
	}
	S := &Solution{Rows: rows}
	if len(t) > 0 {
		S.Choices = make([]Choice, len(t))
		for i := range t {
			r, c := cellCoords(t[i].cindex, p.layout.size)
			S.Choices[i] = Choice{Row: r, Col: c, Value: t[i].cvalue}
		}
	}
	return S
}
