package puzzle

/*

KenKen puzzle representation

*/

import (
	"fmt"
)

/*

Puzzles

*/

// A Puzzle tracks the candidate sets for every cell of a KenKen
// grid.  The grid shape and cage definitions are invariant and
// held in a layout that all copies of a puzzle share; the
// candidate sets and any Errors that make the current state
// unsolvable are per-copy.
//
// Cells are designated by indices that start at 1 and increase
// left-to-right, top-to-bottom (English reading order).
type Puzzle struct {
	layout *layout
	cells  []intset // 1-based, cells[i] is the candidate set of cell i
	errors []Error
}

// copy returns a deep copy of a puzzle.  The layout is invariant
// and always shared.
func (p *Puzzle) copy() *Puzzle {
	if p == nil {
		return nil
	}
	c := &Puzzle{
		layout: p.layout,
		errors: append([]Error(nil), p.errors...),
	}
	c.cells = make([]intset, len(p.cells))
	for i := range p.cells {
		c.cells[i] = newIntsetCopy(p.cells[i])
	}
	return c
}

// allCandidates returns the candidate sets of all cells in index
// order.  The return value does not share storage with the
// puzzle.
func (p *Puzzle) allCandidates() [][]int {
	vs := make([][]int, p.layout.scount)
	for i := 1; i <= p.layout.scount; i++ {
		vs[i-1] = newIntsetCopy(p.cells[i])
	}
	return vs
}

// allErrors returns the puzzle's Errors.  The returned slice
// doesn't share storage with the puzzle.
func (p *Puzzle) allErrors(verbose bool) []Error {
	errs := append([]Error(nil), p.errors...)
	if verbose {
		for i := range errs {
			errs[i].Message = errs[i].Error() // verbalize the error
		}
	}
	return errs
}

/*

Layouts

*/

// A layout holds everything about a puzzle that survives
// candidate-set mutation: the grid size, the cages with their
// precomputed combination tables, and the rows and columns.
// Layouts are built once by New and shared by every copy the
// solver makes.
type layout struct {
	size    int
	scount  int // size * size
	cages   []*cage
	lines   []line // rows first, then columns
	summary *Summary
}

// A line is a row or column: a group of cells that must contain
// one of each value.
type line struct {
	id    GroupID
	cells []int
}

// cellIndex maps 0-based (row, col) coordinates to a 1-based
// cell index.
func cellIndex(row, col, size int) int {
	return row*size + col + 1
}

// cellCoords maps a 1-based cell index back to 0-based
// (row, col) coordinates.
func cellCoords(idx, size int) (int, int) {
	return (idx - 1) / size, (idx - 1) % size
}

// newLayout validates a summary and builds the shared layout
// from it.  Definition problems are returned as Errors; no
// solving is attempted on a puzzle that fails validation.
func newLayout(s *Summary) (*layout, error) {
	if s == nil {
		err := Error{Scope: ArgumentScope, Structure: ScopeStructure, Condition: GeneralCondition,
			Values: ErrorData{"no summary given"}}
		err.Message = err.Error()
		return nil, err
	}
	if s.Size < 1 {
		return nil, rangeError(SizeAttribute, s.Size, 1, s.Size)
	}
	l := &layout{size: s.Size, scount: s.Size * s.Size}

	// first pass over the cages: check each cage's shape and
	// record which cage claims each cell
	cageOf := make([]int, l.scount+1) // 1-based cell index -> 1-based cage index
	for gi, cg := range s.Cages {
		switch cg.Operation {
		case OpAdd, OpMultiply:
			if len(cg.Cells) < 1 {
				return nil, definitionError(CellsAttribute, TooSmallCondition, 1)
			}
		case OpSubtract, OpDivide:
			if len(cg.Cells) != 2 {
				return nil, definitionError(OperationAttribute, WrongCellCountCondition,
					string(cg.Operation), 2)
			}
		case OpNone:
			if len(cg.Cells) != 1 {
				return nil, definitionError(OperationAttribute, UnknownOperationCondition)
			}
		default:
			return nil, definitionError(OperationAttribute, UnknownOperationCondition)
		}
		if cg.Result < 0 {
			return nil, definitionError(ResultAttribute, TooSmallCondition, 0)
		}
		cells := intset{}
		for _, rc := range cg.Cells {
			if rc[0] < 0 || rc[0] >= l.size || rc[1] < 0 || rc[1] >= l.size {
				return nil, definitionError(CellAttribute, OutOfBoundsCondition, rc)
			}
			idx := cellIndex(rc[0], rc[1], l.size)
			if cageOf[idx] != 0 {
				return nil, definitionError(CellAttribute, DuplicateCellCondition, rc)
			}
			cageOf[idx] = gi + 1
			cells.insert(idx)
		}
		l.cages = append(l.cages, &cage{
			id:     GroupID{GtypeCage, gi + 1},
			cells:  cells,
			op:     cg.Operation,
			target: cg.Result,
		})
	}

	// the cages must partition the grid, so every cell must have
	// been claimed exactly once
	for idx := 1; idx <= l.scount; idx++ {
		if cageOf[idx] == 0 {
			r, c := cellCoords(idx, l.size)
			return nil, definitionError(CellAttribute, MissingCellCondition, [2]int{r, c})
		}
	}

	// the definition is good: build the combination tables and
	// the row/column lines
	for _, cg := range l.cages {
		cg.enumerate(l.size)
	}
	l.lines = make([]line, 0, 2*l.size)
	for r := 0; r < l.size; r++ {
		cells := make([]int, l.size)
		for c := 0; c < l.size; c++ {
			cells[c] = cellIndex(r, c, l.size)
		}
		l.lines = append(l.lines, line{GroupID{GtypeRow, r + 1}, cells})
	}
	for c := 0; c < l.size; c++ {
		cells := make([]int, l.size)
		for r := 0; r < l.size; r++ {
			cells[r] = cellIndex(r, c, l.size)
		}
		l.lines = append(l.lines, line{GroupID{GtypeCol, c + 1}, cells})
	}
	l.summary = s.copy()
	return l, nil
}

/*

Cages

*/

// A cage is a group of cells whose values must combine under the
// cage's operation to produce its target.  Each cage carries its
// combination table: every assignment of values to its cells (in
// cell index order) that satisfies the target and doesn't repeat
// a value within a shared row or column.  The table is computed
// once at layout construction and only ever filtered against
// current candidate sets after that.
type cage struct {
	id     GroupID
	cells  intset // 1-based cell indices, ascending
	op     Operation
	target int
	combos [][]int // value tuples aligned with cells
}

// enumerate fills in the cage's combination table.  Single-cell
// cages short-circuit to their target value; an unreachable
// target produces an empty (or unusable) table, which surfaces
// as an unsolvable puzzle rather than a definition error.
func (cg *cage) enumerate(size int) {
	if len(cg.cells) == 1 {
		cg.combos = [][]int{{cg.target}}
		return
	}
	rows := make([]int, len(cg.cells))
	cols := make([]int, len(cg.cells))
	for i, idx := range cg.cells {
		rows[i], cols[i] = cellCoords(idx, size)
	}
	vals := make([]int, len(cg.cells))
	var fill func(i int)
	fill = func(i int) {
		if i == len(vals) {
			if satisfies(cg.op, cg.target, vals) {
				cg.combos = append(cg.combos, append([]int(nil), vals...))
			}
			return
		}
		for v := 1; v <= size; v++ {
			ok := true
			for j := 0; j < i; j++ {
				// a value can repeat within a cage, but not
				// within a shared row or column
				if vals[j] == v && (rows[j] == rows[i] || cols[j] == cols[i]) {
					ok = false
					break
				}
			}
			if ok {
				vals[i] = v
				fill(i + 1)
			}
		}
	}
	fill(0)
}

// satisfies reports whether vals combine under op to produce
// target.  The operation set is closed; anything else fails.
func satisfies(op Operation, target int, vals []int) bool {
	switch op {
	case OpAdd:
		sum := 0
		for _, v := range vals {
			sum += v
		}
		return sum == target
	case OpMultiply:
		prod := 1
		for _, v := range vals {
			prod *= v
		}
		return prod == target
	case OpSubtract:
		if len(vals) != 2 {
			return false
		}
		d := vals[0] - vals[1]
		if d < 0 {
			d = -d
		}
		return d == target
	case OpDivide:
		if len(vals) != 2 {
			return false
		}
		// division must be exact, in whichever direction works
		return target*vals[0] == vals[1] || target*vals[1] == vals[0]
	case OpNone:
		return len(vals) == 1 && vals[0] == target
	}
	return false
}

/*

Constraint propagation

*/

// propagate interleaves cage and line reduction until a full
// pass changes no candidate set, or until the puzzle state
// becomes unsolvable.  Reductions only ever shrink candidate
// sets, so the loop terminates.
func (p *Puzzle) propagate() {
	for len(p.errors) == 0 {
		changed := p.reduceCages()
		if len(p.errors) > 0 {
			return
		}
		changed = p.reduceLines() || changed
		if !changed {
			return
		}
	}
}

// reduceCages shortens the candidate sets cage by cage: a combo
// that needs an already-excluded candidate is dead, and each
// cell keeps only the values that appear in some live combo.
// Returns whether any candidate set changed.
func (p *Puzzle) reduceCages() bool {
	changed := false
	for _, cg := range p.layout.cages {
		unions := make([]intset, len(cg.cells))
		live := 0
		for _, combo := range cg.combos {
			ok := true
			for i, v := range combo {
				if _, found := p.cells[cg.cells[i]].find(v); !found {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			live++
			for i, v := range combo {
				unions[i].insert(v)
			}
		}
		if live == 0 {
			p.errors = append(p.errors, groupError(cg.id, NoCombinationCondition))
			for _, ci := range cg.cells {
				p.cells[ci] = intset{}
			}
			return true
		}
		for i, ci := range cg.cells {
			if unions[i].equal(p.cells[ci]) {
				continue
			}
			p.cells[ci] = unions[i]
			changed = true
		}
	}
	return changed
}

// reduceLines runs the exposed-group and hidden-group strategies
// on each row and column, for group sizes up to half the side
// length, and checks each line for duplicate determined values.
// Returns whether any candidate set changed.
func (p *Puzzle) reduceLines() bool {
	changed := false
	for li := range p.layout.lines {
		ln := &p.layout.lines[li]
		for n := 1; n <= p.layout.size/2; n++ {
			changed = p.reduceExposed(ln, n) || changed
			changed = p.reduceHidden(ln, n) || changed
		}
		p.checkLine(ln)
		if len(p.errors) > 0 {
			return changed
		}
	}
	return changed
}

// reduceExposed finds sets of n cells in a line that share the
// same n candidates.  Those candidates must land in those cells,
// so they can be removed from every other cell in the line.
// With n=1 this is naked-single elimination.
func (p *Puzzle) reduceExposed(ln *line, n int) bool {
	var small []int
	for _, ci := range ln.cells {
		if len(p.cells[ci]) == n {
			small = append(small, ci)
		}
	}
	if len(small) < n {
		return false
	}
	changed := false
	for _, grp := range combinations(small, n) {
		base := p.cells[grp[0]]
		same := true
		for _, ci := range grp[1:] {
			if !p.cells[ci].equal(base) {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		// exposed group found: clear its values from the rest of
		// the line
		vals := newIntsetCopy(base)
		for _, ci := range ln.cells {
			if intsetOf(grp).has(ci) {
				continue
			}
			changed = p.removeValues(ci, vals) || changed
		}
	}
	return changed
}

// reduceHidden finds sets of n candidate values in a line that
// appear in exactly the same n cells.  Those cells can hold
// nothing but those values, so their other candidates can be
// dropped.  With n=1 this is hidden-single assignment.
func (p *Puzzle) reduceHidden(ln *line, n int) bool {
	counts := make([]int, p.layout.size+1)
	for _, ci := range ln.cells {
		for _, v := range p.cells[ci] {
			counts[v]++
		}
	}
	var rare []int
	for v := 1; v <= p.layout.size; v++ {
		if counts[v] == n {
			rare = append(rare, v)
		}
	}
	if len(rare) < n {
		return false
	}
	changed := false
	for _, vals := range combinations(rare, n) {
		vs := intset(vals) // already ascending
		var holders []int
		together := true
		for _, ci := range ln.cells {
			switch contained := p.cells[ci].countOf(vs); {
			case contained == n:
				holders = append(holders, ci)
			case contained != 0:
				together = false
			}
			if !together {
				break
			}
		}
		if !together || len(holders) != n {
			continue
		}
		for _, ci := range holders {
			if !p.cells[ci].equal(vs) {
				p.cells[ci] = newIntsetCopy(vs)
				changed = true
			}
		}
	}
	return changed
}

// removeValues subtracts candidate values from a cell, recording
// an Error if the cell is left with none.
func (p *Puzzle) removeValues(ci int, vals intset) bool {
	removed := p.cells[ci].subtract(vals)
	if removed && len(p.cells[ci]) == 0 {
		p.errors = append(p.errors, cellError(ci, NoCandidatesCondition))
	}
	return removed
}

// checkLine records an Error for each value determined in more
// than one cell of a line.
func (p *Puzzle) checkLine(ln *line) {
	seen := make([]int, p.layout.size+1)
	for _, ci := range ln.cells {
		if len(p.cells[ci]) != 1 {
			continue
		}
		v := p.cells[ci][0]
		if seen[v] != 0 {
			p.errors = append(p.errors, groupError(ln.id, DuplicateGroupValuesCondition, v))
			continue
		}
		seen[v] = ci
	}
}

/*

Solved and unsolvable states

*/

// determined reports whether every cell has exactly one
// candidate left.
func (p *Puzzle) determined() bool {
	for i := 1; i <= p.layout.scount; i++ {
		if len(p.cells[i]) != 1 {
			return false
		}
	}
	return true
}

// validate re-checks a fully determined puzzle from scratch:
// every row and column must be a permutation of 1..size and
// every cage must hit its target.  Propagation should guarantee
// this, but the solver re-validates rather than assume it.
func (p *Puzzle) validate() []Error {
	var errs []Error
	for li := range p.layout.lines {
		ln := &p.layout.lines[li]
		seen := make([]bool, p.layout.size+1)
		for _, ci := range ln.cells {
			v := p.cells[ci][0]
			if seen[v] {
				errs = append(errs, groupError(ln.id, DuplicateGroupValuesCondition, v))
			}
			seen[v] = true
		}
	}
	for _, cg := range p.layout.cages {
		vals := make([]int, len(cg.cells))
		for i, ci := range cg.cells {
			vals[i] = p.cells[ci][0]
		}
		if len(vals) == 1 {
			if vals[0] != cg.target {
				errs = append(errs, groupError(cg.id, UnsatisfiedGroupCondition))
			}
			continue
		}
		if !satisfies(cg.op, cg.target, vals) {
			errs = append(errs, groupError(cg.id, UnsatisfiedGroupCondition))
		}
	}
	return errs
}

// solved reports whether the puzzle is completely and correctly
// determined.  A puzzle that is fully determined but fails
// validation gets the validation Errors recorded, making it an
// unsolvable state the solver will back out of.
func (p *Puzzle) solved() bool {
	if !p.determined() {
		return false
	}
	if errs := p.validate(); len(errs) > 0 {
		p.errors = append(p.errors, errs...)
		return false
	}
	return true
}

/*

Integer sets

*/

// An intset is a set of integers, represented as a sorted slice.
// We use intsets to represent both candidate sets and sets of
// cell indices.
type intset []int

// newIntsetRange: Make an intset from a range of values, 1 to max.
func newIntsetRange(max int) intset {
	if max < 1 {
		return intset{}
	}
	out := make(intset, max)
	for i := 0; i < max; i++ {
		out[i] = i + 1
	}
	return out
}

// newIntsetCopy: Make a copy of an intset.
func newIntsetCopy(in intset) intset {
	if in == nil {
		return nil
	}
	out := make(intset, len(in))
	copy(out, in)
	return out
}

// intsetOf wraps an already-sorted slice as an intset.
func intsetOf(xs []int) intset {
	return intset(xs)
}

// Find value v, returning where it should be in the intset and
// whether it was found there.
func (ps *intset) find(v int) (int, bool) {
	end := len(*ps)
	where := end
	for i := 0; i < end; i++ {
		if (*ps)[i] == v {
			return i, true
		}
		if (*ps)[i] > v {
			where = i
			break
		}
	}
	return where, false
}

// has is a convenience wrapper around find.
func (ps intset) has(v int) bool {
	_, found := ps.find(v)
	return found
}

// Insert value v, returning whether it was there already.
func (ps *intset) insert(v int) bool {
	end := len(*ps)
	where, found := ps.find(v)
	if found {
		return true
	}
	// insert by lengthening, shifting, inserting
	// see https://github.com/golang/go/wiki/SliceTricks
	*ps = append(*ps, v)
	if where < end {
		copy((*ps)[where+1:], (*ps)[where:])
		(*ps)[where] = v
	}
	return false
}

// Remove value v, returning whether it was there.
func (ps *intset) remove(v int) bool {
	end := len(*ps)
	for i := 0; i < end; i++ {
		pv := (*ps)[i]
		if pv == v {
			copy((*ps)[i:], (*ps)[i+1:])
			*ps = (*ps)[:end-1]
			return true
		}
		if pv > v {
			return false
		}
	}
	return false
}

// Subtract the passed intset, returning whether anything was
// removed.
func (ps *intset) subtract(xs intset) bool {
	pend, xend := len(*ps), len(xs)
	pi := 0
	newend := pi
	for xi := 0; pi < pend && xi < xend; {
		pv, xv := (*ps)[pi], xs[xi]
		switch {
		case pv == xv:
			pi++
			xi++
		case pv < xv:
			if newend != pi {
				(*ps)[newend] = pv
			}
			newend++
			pi++
		case pv > xv:
			xi++
		}
	}
	if newend == pi {
		// nothing was removed
		return false
	}
	// copy any remaining non-removed values
	newend += copy((*ps)[newend:], (*ps)[pi:])
	*ps = (*ps)[:newend]
	return true
}

// equal reports whether two intsets hold the same values.
func (ps intset) equal(xs intset) bool {
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

// countOf returns how many members of xs are present.
func (ps intset) countOf(xs intset) int {
	count := 0
	for _, v := range xs {
		if ps.has(v) {
			count++
		}
	}
	return count
}

/*

Combination enumeration

*/

// combinations returns every way to choose n elements of xs,
// preserving order.  The group sizes involved are tiny (n is at
// most half the side length), so the straightforward recursive
// enumeration is fine.
func combinations(xs []int, n int) [][]int {
	if n < 0 || n > len(xs) {
		return nil
	}
	var out [][]int
	pick := make([]int, 0, n)
	var choose func(start int)
	choose = func(start int) {
		if len(pick) == n {
			out = append(out, append([]int(nil), pick...))
			return
		}
		for i := start; i <= len(xs)-(n-len(pick)); i++ {
			pick = append(pick, xs[i])
			choose(i + 1)
			pick = pick[:len(pick)-1]
		}
	}
	choose(0)
	return out
}

// String gives a compact debugging form of a cage.
func (cg *cage) String() string {
	return fmt.Sprintf("%v %d%s", cg.id, cg.target, cg.op)
}
