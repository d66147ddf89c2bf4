package puzzle

import (
	"fmt"
)

/*

Errors

*/

// An Error describes a problem with a puzzle definition or with
// a puzzle operation.  It can produce an error message in
// English, but its main function is to support localized error
// messaging by clients.  It tells the client "this thing failed
// to meet this condition", and provides supplemental details
// about the thing and the condition.
type Error struct {
	Scope     ErrorScope     `json:"scope"`
	Structure ErrorStructure `json:"structure,omitempty"`
	Condition ErrorCondition `json:"condition,omitempty"`
	Attribute ErrorAttribute `json:"attribute,omitempty"`
	Values    ErrorData      `json:"values,omitempty"`
	Message   string         `json:"message,omitempty"` // custom message
}

// An ErrorScope explains what type of thing the error is
// referring to.  In the case of client errors, this is either a
// client-supplied argument or some part of the puzzle the
// operation touched.  In the case of internal logic errors, this
// is where in the code the failure occurred.
type ErrorScope int

// Constants for the various error scopes.
const (
	UnknownScope ErrorScope = iota
	RequestScope
	ArgumentScope
	DefinitionScope
	GroupScope
	CellScope
	InternalScope
	MaxScope
)

// The ErrorStructure denotes whether the problem is in the
// overall Scope, an Attribute of the Scope, or the value of an
// Attribute of the Scope.
type ErrorStructure int

// Constants for the various structure codes.
const (
	UnknownStructure ErrorStructure = iota
	ScopeStructure
	AttributeStructure
	AttributeValueStructure
	MaxStructure
)

// The ErrorCondition is the predicate that the
// scope/attribute/value failed to satisfy.  There are a bunch of
// known, named predicates and then a "general" (arbitrary
// English string) predicate for runtime errors.
type ErrorCondition int

// Constants for the various error conditions
const (
	UnknownCondition ErrorCondition = iota
	GeneralCondition
	TooLargeCondition
	TooSmallCondition
	NoCandidatesCondition
	NoCombinationCondition
	DuplicateGroupValuesCondition
	UnknownOperationCondition
	WrongCellCountCondition
	MissingCellCondition
	DuplicateCellCondition
	OutOfBoundsCondition
	UnsatisfiedGroupCondition
	MaxCondition
)

// An ErrorAttribute names the attribute that has a problem.
type ErrorAttribute int

// Constants for the various attribute codes.
const (
	UnknownAttribute ErrorAttribute = iota
	DecodeAttribute
	EncodeAttribute
	URLAttribute
	LocationAttribute
	SizeAttribute
	CellAttribute
	CellsAttribute
	OperationAttribute
	ResultAttribute
	ValueAttribute
	PuzzleAttribute
	MaxAttribute
)

// The ErrorData provides details about the thing that failed to
// meet the predicate (such as the value of an attribute) as well
// as the predicate itself (such as minimum required values).
//
// Every item in the slice of ErrorData is required to be
// JSON-serializable, so it can be returned to web clients.
// Sadly, there is no good way to express this condition in a way
// the compiler can check it, so we just have to rely on
// implementors to "do the right thing" and check the condition
// at runtime.
type ErrorData []interface{}

// Return an error string from an Error.  If the Error has a
// pre-canned message, this will use it, otherwise it will
// produce an appropriate (English, non-localized) message.
func (e Error) Error() string {
	es := e.Message
	if len(es) > 0 {
		return es
	}
	values := e.Values
	nextVal := func() interface{} {
		if len(values) == 0 {
			return "<unknown>"
		}
		val := values[0]
		values = values[1:]
		return val
	}
	switch e.Scope {
	case RequestScope:
		es = "Invalid request: "
	case ArgumentScope:
		es = "Invalid argument: "
	case DefinitionScope:
		es = "Invalid definition: "
	case GroupScope:
		es = fmt.Sprintf("Problem in %v: ", nextVal())
	case CellScope:
		es = fmt.Sprintf("Problem in cell %v: ", nextVal())
	case InternalScope:
		es = "Internal logic error: "
	default:
		es = "Unknown error: "
	}
	if e.Structure == AttributeStructure || e.Structure == AttributeValueStructure {
		switch e.Attribute {
		case DecodeAttribute:
			es += "JSON Decode error"
		case EncodeAttribute:
			es += "JSON Encode error"
		case URLAttribute:
			es += "Resource path"
		case LocationAttribute:
			es += fmt.Sprintf("In puzzle.%v", nextVal())
		case SizeAttribute:
			es += "Size"
		case CellAttribute:
			es += "Cell"
		case CellsAttribute:
			es += "Cell list"
		case OperationAttribute:
			es += "Operation"
		case ResultAttribute:
			es += "Result"
		case ValueAttribute:
			es += "Value"
		case PuzzleAttribute:
			es += "Puzzle"
		default:
			es += "<Unknown attribute>"
		}
		if e.Structure == AttributeValueStructure {
			es += " (" + fmt.Sprint(nextVal()) + ")"
		}
		es += ": "
	}
	switch e.Condition {
	case GeneralCondition:
		es += fmt.Sprint(nextVal())
	case TooLargeCondition:
		es += fmt.Sprintf("Must be at most %v", nextVal())
	case TooSmallCondition:
		es += fmt.Sprintf("Must be at least %v", nextVal())
	case NoCandidatesCondition:
		es += "No remaining candidate values"
	case NoCombinationCondition:
		es += "No candidate combination satisfies the cage"
	case DuplicateGroupValuesCondition:
		es += fmt.Sprintf("Multiple cells hold value %v", nextVal())
	case UnknownOperationCondition:
		es += "Not a known operation"
	case WrongCellCountCondition:
		es += fmt.Sprintf("Operation %q requires exactly %v cells", nextVal(), nextVal())
	case MissingCellCondition:
		es += fmt.Sprintf("Cell %v is in no cage", nextVal())
	case DuplicateCellCondition:
		es += fmt.Sprintf("Cell %v is in more than one cage", nextVal())
	case OutOfBoundsCondition:
		es += fmt.Sprintf("Cell %v is outside the grid", nextVal())
	case UnsatisfiedGroupCondition:
		es += "Assigned values do not satisfy the constraint"
	default:
		es += fmt.Sprintf("Supplemental data is %v", values)
	}
	return es
}

// rangeError returns an Error that describes an out-of-range argument.
func rangeError(attr ErrorAttribute, val int, min int, max int) Error {
	err := Error{
		Scope:     ArgumentScope,
		Structure: AttributeValueStructure,
		Attribute: attr,
		Condition: TooLargeCondition,
		Values:    ErrorData{val, max},
	}
	if val < min {
		err.Condition = TooSmallCondition
		err.Values[1] = min
	}
	return err
}

// definitionError returns an Error describing a malformed puzzle
// definition.  These are returned from New, before solving can
// begin; they are never produced once a puzzle exists.
func definitionError(attr ErrorAttribute, cond ErrorCondition, vals ...interface{}) Error {
	err := Error{
		Scope:     DefinitionScope,
		Structure: AttributeStructure,
		Attribute: attr,
		Condition: cond,
		Values:    ErrorData(vals),
	}
	err.Message = err.Error()
	return err
}

// groupError returns an Error from a constraint violation
// discovered in a row, column, or cage during solving.  These
// make the puzzle state unsolvable but are a normal part of
// search: the solver backtracks when it sees them.
func groupError(gid GroupID, cond ErrorCondition, vals ...interface{}) Error {
	return Error{
		Scope:     GroupScope,
		Structure: ScopeStructure,
		Condition: cond,
		Values:    append(ErrorData{gid}, vals...),
	}
}

// cellError returns an Error from a reduction that would leave a
// cell with no candidate values.
func cellError(idx int, cond ErrorCondition, vals ...interface{}) Error {
	return Error{
		Scope:     CellScope,
		Structure: ScopeStructure,
		Condition: cond,
		Values:    append(ErrorData{idx}, vals...),
	}
}
