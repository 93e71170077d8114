package rpn

import (
	"errors"
	"strconv"
	"sync/atomic"
)

// Flags classify a node for parsing. A node's flags never change after the
// node is constructed.
type Flags uint8

const (
	// PresentsOp indicates that the parser expects an operand after reading
	// the node.
	PresentsOp Flags = 1 << iota
	// SucceedsOp indicates that the node may directly follow an operator or
	// open bracket, i.e. appear where an operand is expected.
	SucceedsOp
	// Infix indicates that the node takes a left operand, i.e. appears where
	// an operator is expected.
	Infix
	// Bracket indicates a grouping marker.
	Bracket
	// RightAssoc indicates a right-associative infix operator.
	RightAssoc
)

// Node is a single step in the evaluation of an expression.
//
// Nodes are shared between expressions. Every container that stores a node
// calls Reference when storing it and Dereference when removing it; the node
// is released when its count returns to zero. Implementations normally embed
// RefCount to satisfy that half of the interface.
type Node interface {
	// Flags returns the parsing classification of the node.
	Flags() Flags
	// Arity returns the number of operands Eval pops from the evaluator.
	Arity() int
	// Eval pops exactly Arity operands from ev and returns the node's value.
	// It must not push its result; the expression does that.
	Eval(ev *Evaluator) (float64, error)
	// Volatile reports whether evaluating the node twice in the same state
	// may produce different results.
	Volatile() bool
	// String returns the postfix spelling of the node.
	String() string

	Reference()
	Dereference() bool
	Refs() int
}

// Releaser is implemented by nodes that hold resources to drop once the last
// reference to them is removed.
type Releaser interface {
	Release()
}

// Operator is a node that participates in precedence resolution when parsing
// infix expressions.
type Operator interface {
	Node
	// Precedence returns the binding strength of the operator. Higher binds
	// more tightly.
	Precedence() int
}

// RefCount is a shared reference count. The zero value has no references.
// It is safe to reference and dereference concurrently.
type RefCount struct {
	n        atomic.Int32
	released atomic.Bool
}

// Reference adds a reference. Panics if the count has already been released.
func (r *RefCount) Reference() {
	if r.released.Load() {
		panic("rpn: reference to released node")
	}
	r.n.Add(1)
}

// Dereference removes a reference and reports whether it was the last one.
// Panics if there are no references to remove.
func (r *RefCount) Dereference() bool {
	n := r.n.Add(-1)
	switch {
	case n > 0:
		return false
	case n == 0:
		r.released.Store(true)
		return true
	default:
		panic("rpn: dereference of unreferenced node")
	}
}

// Refs returns the current number of references.
func (r *RefCount) Refs() int {
	return int(r.n.Load())
}

// Released reports whether the last reference has been removed.
func (r *RefCount) Released() bool {
	return r.released.Load()
}

// release dereferences n and calls its Release method if that removed the
// last reference.
func release(n Node) {
	if !n.Dereference() {
		return
	}
	if r, ok := n.(Releaser); ok {
		r.Release()
	}
}

// ValueNode is a constant.
type ValueNode struct {
	RefCount
	v    float64
	text string
}

// NewValue creates a node that evaluates to v.
func NewValue(v float64) *ValueNode {
	return &ValueNode{v: v, text: strconv.FormatFloat(v, 'g', -1, 64)}
}

func (n *ValueNode) Flags() Flags                     { return SucceedsOp }
func (n *ValueNode) Arity() int                       { return 0 }
func (n *ValueNode) Eval(*Evaluator) (float64, error) { return n.v, nil }
func (n *ValueNode) Volatile() bool                   { return false }
func (n *ValueNode) String() string                   { return n.text }

// VariableNode reads a variable owned by a Context. Since the variable may be
// set between evaluations, the node is volatile.
type VariableNode struct {
	RefCount
	name string
	v    float64
}

func (n *VariableNode) Flags() Flags                     { return SucceedsOp }
func (n *VariableNode) Arity() int                       { return 0 }
func (n *VariableNode) Eval(*Evaluator) (float64, error) { return n.v, nil }
func (n *VariableNode) Volatile() bool                   { return true }
func (n *VariableNode) String() string                   { return n.name }

// ArgumentNode reads an argument of the active call frame.
type ArgumentNode struct {
	RefCount
	offset int
	text   string
}

// NewArgumentNode creates a node reading the stack value at offset from the
// frame's base pointer.
func NewArgumentNode(offset int) *ArgumentNode {
	return &ArgumentNode{offset: offset, text: "$@" + strconv.Itoa(offset)}
}

// ArgumentAt creates a node reading the 1-based argument number of a call
// with total arguments. A positive total means the caller pushed arguments in
// order, so the first argument is deepest. Otherwise the caller pushed them in
// reverse, so the first argument is directly below the base pointer.
func ArgumentAt(number, total int) *ArgumentNode {
	off := -number
	if total > 0 {
		off = number - total - 1
	}
	return &ArgumentNode{offset: off, text: "$" + strconv.Itoa(number)}
}

// Offset returns the node's offset from the frame's base pointer.
func (n *ArgumentNode) Offset() int {
	return n.offset
}

func (n *ArgumentNode) Flags() Flags   { return SucceedsOp }
func (n *ArgumentNode) Arity() int     { return 0 }
func (n *ArgumentNode) Volatile() bool { return false }
func (n *ArgumentNode) String() string { return n.text }

func (n *ArgumentNode) Eval(ev *Evaluator) (float64, error) {
	return ev.Arg(n.offset), nil
}

// OperatorNode is a prefix or binary operator.
type OperatorNode struct {
	RefCount
	symbol string
	name   string
	prec   int
	flags  Flags
	unary  func(x float64) (float64, error)
	binary func(x, y float64) (float64, error)
}

// NewBinaryOperator creates an infix operator. Higher prec binds more tightly.
func NewBinaryOperator(symbol string, prec int, right bool, f func(x, y float64) (float64, error)) *OperatorNode {
	flags := PresentsOp | Infix
	if right {
		flags |= RightAssoc
	}
	return &OperatorNode{symbol: symbol, name: symbol, prec: prec, flags: flags, binary: f}
}

// NewPrefixOperator creates a unary operator written before its operand in
// infix notation. In postfix notation, it is written as name.
func NewPrefixOperator(symbol, name string, prec int, f func(x float64) (float64, error)) *OperatorNode {
	return &OperatorNode{symbol: symbol, name: name, prec: prec, flags: PresentsOp | SucceedsOp, unary: f}
}

// Symbol returns the infix spelling of the operator.
func (n *OperatorNode) Symbol() string {
	return n.symbol
}

func (n *OperatorNode) Flags() Flags    { return n.flags }
func (n *OperatorNode) Precedence() int { return n.prec }
func (n *OperatorNode) Volatile() bool  { return false }
func (n *OperatorNode) String() string  { return n.name }

func (n *OperatorNode) Arity() int {
	if n.unary != nil {
		return 1
	}
	return 2
}

func (n *OperatorNode) Eval(ev *Evaluator) (float64, error) {
	if n.unary != nil {
		return n.unary(ev.Pop())
	}
	y := ev.Pop()
	x := ev.Pop()
	return n.binary(x, y)
}

// errParseOnly is returned by nodes that exist only to steer parsing.
var errParseOnly = errors.New("rpn: evaluated a parse-only node")

// CommaNode separates function arguments in infix notation.
type CommaNode struct {
	RefCount
}

func (n *CommaNode) Flags() Flags                     { return PresentsOp | SucceedsOp | Infix }
func (n *CommaNode) Arity() int                       { return 0 }
func (n *CommaNode) Eval(*Evaluator) (float64, error) { return 0, errParseOnly }
func (n *CommaNode) Volatile() bool                   { return false }
func (n *CommaNode) String() string                   { return "," }

// InfixParse shunts operators up to the nearest bracket, leaving the bracket
// for its close to consume.
func (n *CommaNode) InfixParse(p *InfixParser, tok Token) error {
	for p.HasStack() {
		if p.Top().Flags()&Bracket != 0 {
			return p.Separate(tok)
		}
		if err := p.Shunt(); err != nil {
			return err
		}
	}
	return &SeparatorError{Col: tok.Pos, Sep: tok.Text}
}

// BracketNode marks an open or close bracket while parsing infix notation.
type BracketNode struct {
	RefCount
	text string
	// kind is the index of the bracket in OpenBrackets or CloseBrackets.
	kind int
	open bool
}

func (n *BracketNode) Flags() Flags {
	if n.open {
		return Bracket | PresentsOp | SucceedsOp
	}
	return Bracket
}
func (n *BracketNode) Arity() int                       { return 0 }
func (n *BracketNode) Eval(*Evaluator) (float64, error) { return 0, errParseOnly }
func (n *BracketNode) Volatile() bool                   { return false }
func (n *BracketNode) String() string                   { return n.text }

var (
	_ Node     = (*ValueNode)(nil)
	_ Node     = (*VariableNode)(nil)
	_ Node     = (*ArgumentNode)(nil)
	_ Operator = (*OperatorNode)(nil)
	_ Node     = (*CommaNode)(nil)
	_ Node     = (*BracketNode)(nil)
)
