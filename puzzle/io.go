package puzzle

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

/*

Print forms of puzzle values

*/

var (
	valueStrings = []string{
		" ", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J",
		"K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
		"U", "V", "W", "X", "Y", "Z",
	}
	nonValueString = "?"
	bigValueString = "!"
)

func vstr(i int) string {
	if i < 0 {
		return nonValueString
	}
	if i < len(valueStrings) {
		return valueStrings[i]
	}
	return bigValueString
}

/*

Pretty-printed puzzles in strings, for debugging.

*/

// String gives a pretty-printed view of a puzzle.
func (p *Puzzle) String() string {
	return p.ValuesString(true) + p.ErrorsString()
}

// ValuesString: return a pretty-printed grid of the cells.  If
// showCandidates is specified, determined cells and 2-candidate
// cells show their contents.
func (p *Puzzle) ValuesString(showCandidates bool) (result string) {
	if !p.isValid() {
		return
	}
	slen := p.layout.size
	// first put out the header
	result += " "
	for i := 0; i < slen; i++ {
		result += fmt.Sprintf("|%2d ", i+1)
	}
	result += "|\n"
	// next are the rows, including the separator at the top
	for ri, rowhdr := 0, 'a'; ri < slen; ri, rowhdr = ri+1, rowhdr+1 {
		result += " "
		for i := 0; i < slen; i++ {
			result += "+---"
		}
		result += "+\n"
		result += string(rowhdr)
		for i := 0; i < slen; i++ {
			cs := p.cells[cellIndex(ri, i, slen)]
			result += "|"
			if !showCandidates {
				result += " _ "
				continue
			}
			switch len(cs) {
			case 1:
				result += fmt.Sprintf(" %s ", vstr(cs[0]))
			case 2:
				result += fmt.Sprintf("%s,%s", vstr(cs[0]), vstr(cs[1]))
			default:
				result += " _ "
			}
		}
		result += "|\n"
	}
	result += " "
	for i := 0; i < slen; i++ {
		result += "+---"
	}
	result += "+\n"
	return
}

// CandidatesString returns the full candidate sets in a
// tab-separated grid, one row of cells per line.
func (p *Puzzle) CandidatesString() string {
	if !p.isValid() {
		return ""
	}
	var b strings.Builder
	for r := 0; r < p.layout.size; r++ {
		for c := 0; c < p.layout.size; c++ {
			if c > 0 {
				b.WriteByte('\t')
			}
			fmt.Fprintf(&b, "%v", []int(p.cells[cellIndex(r, c, p.layout.size)]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p *Puzzle) ErrorsString() (result string) {
	if p != nil {
		if elen := len(p.errors); elen > 0 {
			if elen > 1 {
				result += fmt.Sprintf("Errors (%d):\n", elen)
				for i, err := range p.errors {
					result += fmt.Sprintf("  #%d: %v\n", i+1, err)
				}
			} else {
				result += fmt.Sprintf("Error: %v\n", p.errors[0])
			}
		}
	}
	return
}

// String renders a solution one row per line, values in row
// order, which is the form callers print.
func (s *Solution) String() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, row := range s.Rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

/*

Summary reading

*/

// ReadSummary decodes a JSON puzzle definition.  Only the JSON
// shape is checked here; the semantic checks (cage partition,
// operation arity) happen in New.
func ReadSummary(r io.Reader) (*Summary, error) {
	dec := json.NewDecoder(r)
	var s Summary
	if e := dec.Decode(&s); e != nil {
		err := Error{
			Scope:     RequestScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ErrorData{e.Error()},
		}
		err.Message = err.Error()
		return nil, err
	}
	return &s, nil
}
