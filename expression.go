package rpn

import (
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Format selects the notation of an expression's source text.
type Format int

const (
	// FormatInfix is conventional notation with operator precedence and
	// brackets, e.g. "3 + 4 * 2" or "max(1, 2)".
	FormatInfix Format = iota
	// FormatPostfix is reverse Polish notation, e.g. "3 4 2 * +".
	FormatPostfix
)

func (f Format) String() string {
	switch f {
	case FormatInfix:
		return "infix"
	case FormatPostfix:
		return "postfix"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Expression is a sequence of nodes in evaluation order.
//
// Evaluating an expression with no volatile nodes caches its result, so an
// Expression is not safe to evaluate concurrently even though evaluation
// does not otherwise change it.
type Expression struct {
	nodes []Node
	// result is the cached result, valid if cached is set.
	result float64
	cached bool
	// volatile is set if any node is volatile.
	volatile bool
	// depth is the number of operands the nodes leave on the stack.
	depth int
	// maxDepth is the high-water mark of depth, including the needs of
	// nodes that evaluate subexpressions.
	maxDepth int
}

// depthHinter is implemented by nodes that need stack space beyond their own
// result while evaluating.
type depthHinter interface {
	depthHint() int
}

// New creates an empty expression.
func New() *Expression {
	return &Expression{}
}

// Parse parses an expression from src, resolving names with ctx. If ctx is
// nil, a new Context with default bindings is used.
func Parse(src io.RuneScanner, ctx *Context, f Format) (*Expression, error) {
	var e Expression
	if err := e.Parse(src, ctx, f); err != nil {
		e.Clear()
		return nil, err
	}
	return &e, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, ctx *Context, f Format) (*Expression, error) {
	return Parse(strings.NewReader(src), ctx, f)
}

// Parse parses src and appends the resulting nodes to e. If the format is
// unrecognized, e is unchanged. If parsing fails otherwise, e is left in an
// intermediate state and should be cleared.
func (e *Expression) Parse(src io.RuneScanner, ctx *Context, f Format) error {
	if ctx == nil {
		ctx = NewContext()
	}
	var err error
	switch f {
	case FormatInfix:
		err = NewInfixParser(src, ctx).Store(e)
	case FormatPostfix:
		err = NewPostfixParser(src, ctx).Store(e)
	default:
		return &FormatError{Format: f}
	}
	if err != nil {
		return err
	}
	log.Debugf("parsed %s expression %q: %d nodes, max depth %d", f, e.String(), len(e.nodes), e.maxDepth)
	return nil
}

// Append adds a node to the end of the expression and takes a reference to
// it. Returns e for chaining.
func (e *Expression) Append(n Node) *Expression {
	n.Reference()
	e.nodes = append(e.nodes, n)
	e.volatile = e.volatile || n.Volatile()
	e.cached = false
	if h, ok := n.(depthHinter); ok {
		e.maxDepth = max(e.maxDepth, e.depth+h.depthHint())
	}
	e.depth += 1 - n.Arity()
	e.maxDepth = max(e.maxDepth, e.depth)
	return e
}

// Clear releases all nodes and resets the expression to empty.
func (e *Expression) Clear() {
	for i, n := range e.nodes {
		release(n)
		e.nodes[i] = nil
	}
	e.nodes = e.nodes[:0]
	e.result = 0
	e.cached = false
	e.volatile = false
	e.depth = 0
	e.maxDepth = 0
}

// NewEvaluator creates an evaluator with room to evaluate e.
func (e *Expression) NewEvaluator() *Evaluator {
	return NewEvaluator(e.maxDepth)
}

// Eval evaluates the expression with a new evaluator. If the result is
// cached, no evaluator is created.
func (e *Expression) Eval() (float64, error) {
	if e.cached {
		return e.result, nil
	}
	return e.EvalWith(e.NewEvaluator())
}

// EvalWith evaluates the expression on ev. The stack of ev is the same after
// the evaluation as before, whether or not it succeeds. The result is cached
// unless the expression is volatile; a cached result is returned without
// touching ev.
func (e *Expression) EvalWith(ev *Evaluator) (float64, error) {
	if e.cached {
		return e.result, nil
	}
	r, err := e.eval(ev)
	if err != nil {
		return 0, err
	}
	if !e.volatile {
		e.result = r
		e.cached = true
	}
	return r, nil
}

// eval evaluates the expression without consulting or updating the cache.
func (e *Expression) eval(ev *Evaluator) (r float64, err error) {
	n, base, floor := len(ev.stack), ev.base, ev.floor
	defer func() {
		if x := recover(); x != nil {
			sp, ok := x.(stackPanic)
			if !ok {
				panic(x)
			}
			err = sp.err
		}
		if err != nil {
			ev.stack = ev.stack[:n]
		}
		ev.base, ev.floor = base, floor
	}()
	ev.floor = n
	ev.Reserve(e.maxDepth)
	for _, node := range e.nodes {
		v, err := node.Eval(ev)
		if err != nil {
			return 0, err
		}
		ev.Push(v)
	}
	switch {
	case len(ev.stack) == n+1:
		return ev.Pop(), nil
	case len(ev.stack) == n:
		return 0, ErrUnderflow
	default:
		return 0, ErrUnbalanced
	}
}

// Len returns the number of nodes in the expression.
func (e *Expression) Len() int {
	return len(e.nodes)
}

// Nodes returns the nodes of the expression in evaluation order.
func (e *Expression) Nodes() []Node {
	return append([]Node(nil), e.nodes...)
}

// Volatile reports whether any node in the expression is volatile.
func (e *Expression) Volatile() bool {
	return e.volatile
}

// Cached reports whether the expression holds a cached result.
func (e *Expression) Cached() bool {
	return e.cached
}

// MaxDepth returns the number of stack slots needed to evaluate the
// expression.
func (e *Expression) MaxDepth() int {
	return e.maxDepth
}

// String returns the expression in postfix notation.
func (e *Expression) String() string {
	var b strings.Builder
	for i, n := range e.nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n.String())
	}
	return b.String()
}

// EvalString is a shortcut to parse and evaluate an expression using a new
// context created with opts.
func EvalString(src string, f Format, opts ...ContextOption) (float64, error) {
	ctx := NewContext(opts...)
	defer ctx.Release()
	e, err := ParseString(src, ctx, f)
	if err != nil {
		return 0, err
	}
	defer e.Clear()
	return e.Eval()
}
