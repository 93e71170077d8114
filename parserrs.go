package rpn

import "strconv"

// FormatError is an error indicating a format selector that is neither Infix
// nor Postfix.
type FormatError struct {
	// Format is the unrecognized selector.
	Format Format
}

func (err *FormatError) Error() string {
	return "unknown format: " + strconv.Itoa(int(err.Format))
}

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the bracket.
	Col int
	// Left is the opening bracket.
	Left string
	// Right is the mismatched closing bracket.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating an illegal use of a comma separator.
// It implements InputError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments. It implements InputError.
type CallError struct {
	// Col is the position of the function name, or of the end of the call
	// expression if the call was bracketed.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments the function call tried to imply.
	Len int
}

func (err *CallError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// NameError is an error indicating an identifier that the parsing context
// cannot resolve. It implements InputError.
type NameError struct {
	// Col is the position of the identifier.
	Col int
	// Name is the identifier.
	Name string
}

func (err *NameError) Error() string {
	return errpos(err.Col, "undefined name "+strconv.Quote(err.Name))
}

func (err *NameError) Pos() int {
	return err.Col
}

// OperandError is an error indicating a token that appears where it cannot
// have its operands, or a term that appears without an operator joining it
// to the rest of the expression. It implements InputError.
type OperandError struct {
	// Col is the position of the offending token.
	Col int
	// Token is the offending token text.
	Token string
	// Missing is "operand" or "operator".
	Missing string
}

func (err *OperandError) Error() string {
	if err.Token == "" {
		return errpos(err.Col, "missing "+err.Missing+" at end")
	}
	return errpos(err.Col, "missing "+err.Missing+" at "+strconv.Quote(err.Token))
}

func (err *OperandError) Pos() int {
	return err.Col
}

// ArgumentError is an error indicating an argument reference that does not
// name an argument of the function being defined. It implements InputError.
type ArgumentError struct {
	// Col is the position of the reference.
	Col int
	// Arg is the reference text, e.g. "$3".
	Arg string
	// Args is the number of arguments available, or -1 outside of a
	// function definition.
	Args int
}

func (err *ArgumentError) Error() string {
	if err.Args < 0 {
		return errpos(err.Col, "argument "+err.Arg+" outside of a function definition")
	}
	return errpos(err.Col, "argument "+err.Arg+" out of range for "+strconv.Itoa(err.Args)+" arguments")
}

func (err *ArgumentError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*NameError)(nil)
	_ InputError = (*OperandError)(nil)
	_ InputError = (*ArgumentError)(nil)
	_ InputError = (*LexError)(nil)
)
