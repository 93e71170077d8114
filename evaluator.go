package rpn

import (
	"errors"
	"fmt"
)

// ErrUnderflow is the error resulting from a node popping more operands than
// its expression pushed, or reading an argument outside the active frame.
// Expressions produced by the parsers never cause it.
var ErrUnderflow = errors.New("rpn: operand stack underflow")

// ErrUnbalanced is the error resulting from an expression that leaves other
// than exactly one value on the stack.
var ErrUnbalanced = errors.New("rpn: expression left extra operands")

// stackPanic carries an evaluator contract violation up to the expression
// being evaluated.
type stackPanic struct {
	err error
}

// Evaluator is an operand stack for evaluating expressions. An Evaluator can
// be reused for any number of evaluations to amortize allocations. It is not
// safe to use an Evaluator concurrently.
type Evaluator struct {
	stack []float64
	// base is the frame base pointer. Arguments of the active call are below
	// it.
	base int
	// floor is the lowest stack length that Pop may leave.
	floor int
}

// NewEvaluator creates an evaluator with room for n operands.
func NewEvaluator(n int) *Evaluator {
	return &Evaluator{stack: make([]float64, 0, n)}
}

// Push pushes a value onto the stack.
func (ev *Evaluator) Push(v float64) {
	ev.stack = append(ev.stack, v)
}

// Pop removes and returns the top of the stack. Popping past the values
// pushed by the expression under evaluation aborts that evaluation with
// ErrUnderflow.
func (ev *Evaluator) Pop() float64 {
	if len(ev.stack) <= ev.floor {
		panic(stackPanic{ErrUnderflow})
	}
	r := ev.stack[len(ev.stack)-1]
	ev.stack = ev.stack[:len(ev.stack)-1]
	return r
}

// PopN removes the top n values and returns them in the order they were
// pushed. The returned slice aliases the stack and is valid until the next
// Push.
func (ev *Evaluator) PopN(n int) []float64 {
	k := len(ev.stack) - n
	if n < 0 || k < ev.floor {
		panic(stackPanic{ErrUnderflow})
	}
	r := ev.stack[k:len(ev.stack):len(ev.stack)]
	ev.stack = ev.stack[:k]
	return r
}

// Reserve ensures room for n more values without reallocating. It is only a
// hint; pushing beyond the reservation grows the stack.
func (ev *Evaluator) Reserve(n int) {
	if n <= cap(ev.stack)-len(ev.stack) {
		return
	}
	s := make([]float64, len(ev.stack), len(ev.stack)+n)
	copy(s, ev.stack)
	ev.stack = s
}

// Len returns the number of values on the stack.
func (ev *Evaluator) Len() int {
	return len(ev.stack)
}

// Cap returns the number of values the stack can hold without reallocating.
func (ev *Evaluator) Cap() int {
	return cap(ev.stack)
}

// Arg returns the value at offset from the frame base pointer.
func (ev *Evaluator) Arg(offset int) float64 {
	k := ev.base + offset
	if k < 0 || k >= len(ev.stack) {
		panic(stackPanic{fmt.Errorf("argument offset %d from base %d: %w", offset, ev.base, ErrUnderflow)})
	}
	return ev.stack[k]
}

// Call runs body in a new frame whose arguments are the top nargs values of
// the stack. The arguments are removed after body returns.
func (ev *Evaluator) Call(nargs int, body func(*Evaluator) (float64, error)) (float64, error) {
	if nargs < 0 || len(ev.stack)-nargs < ev.floor {
		panic(stackPanic{ErrUnderflow})
	}
	base, floor := ev.base, ev.floor
	ev.base = len(ev.stack)
	ev.floor = ev.base
	r, err := body(ev)
	ev.stack = ev.stack[:ev.base-nargs]
	ev.base, ev.floor = base, floor
	return r, err
}

// Reset empties the stack.
func (ev *Evaluator) Reset() {
	ev.stack = ev.stack[:0]
	ev.base, ev.floor = 0, 0
}
