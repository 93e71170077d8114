package rpn

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Context resolves names to nodes while parsing. Nodes resolved from a
// Context are shared by every expression parsed with it; the Context holds a
// reference to each until Release.
//
// A Context is not safe to use concurrently.
type Context struct {
	vars   map[string]*VariableNode
	consts map[string]float64
	funcs  map[string]Func
	calls  map[string]*CallNode
	binops map[string]*OperatorNode
	// preops holds prefix operators by both symbol and postfix name.
	preops map[string]*OperatorNode
	// shared holds literal, constant, argument, and bound function nodes.
	shared map[string]Node
	comma  *CommaNode
	prec   uint
	// nargs is the argument count of the function being defined, or -1 when
	// not parsing a function definition.
	nargs int
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  float64
	}
	varsopt  map[string]float64
	constopt struct {
		name string
		val  float64
	}
	funcopt struct {
		name string
		fn   Func
	}
	funcsopt   map[string]Func
	opopt      struct{ op *OperatorNode }
	precopt    uint
	nodefaults struct{}
)

func (varopt) ctxOption()     {}
func (varsopt) ctxOption()    {}
func (constopt) ctxOption()   {}
func (funcopt) ctxOption()    {}
func (funcsopt) ctxOption()   {}
func (opopt) ctxOption()      {}
func (precopt) ctxOption()    {}
func (nodefaults) ctxOption() {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val float64) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]float64) ContextOption {
	return varsopt(vars)
}

// Const defines a constant. Unlike variables, constants do not make
// expressions using them volatile.
func Const(name string, val float64) ContextOption {
	return constopt{name, val}
}

// SetFunc sets a function. To disable a default function, pass nil for fn.
func SetFunc(name string, fn Func) ContextOption {
	return funcopt{name, fn}
}

// SetFuncs sets a group of functions. To disable any function, set it to nil.
func SetFuncs(fns map[string]Func) ContextOption {
	return funcsopt(fns)
}

// SetOperator adds an operator, replacing any operator of the same kind with
// the same symbol.
func SetOperator(op *OperatorNode) ContextOption {
	return opopt{op}
}

// Prec sets the precision in bits of exponentials, logarithms, and powers.
// With zero precision, the default, they are computed with package math.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// NoDefaults creates a context without the default operators, functions, and
// constants.
func NoDefaults() ContextOption {
	return nodefaults{}
}

// NewContext creates a new parsing context.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{
		vars:   make(map[string]*VariableNode),
		consts: make(map[string]float64),
		funcs:  make(map[string]Func),
		calls:  make(map[string]*CallNode),
		binops: make(map[string]*OperatorNode),
		preops: make(map[string]*OperatorNode),
		shared: make(map[string]Node),
		comma:  new(CommaNode),
		nargs:  -1,
	}
	ctx.comma.Reference()
	defaults := true
	// Precision decides the default functions, so find it first. Loop
	// backward so we apply the last one.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			ctx.prec = uint(p)
			break
		}
	}
	for _, opt := range opts {
		if _, ok := opt.(nodefaults); ok {
			defaults = false
		}
	}
	if defaults {
		for _, op := range defaultOperators(ctx.prec) {
			ctx.setOperator(op)
		}
		for k, v := range defaultFuncs(ctx.prec) {
			ctx.funcs[k] = v
		}
		ctx.consts["pi"] = math.Pi
		ctx.consts["e"] = math.E
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			ctx.Set(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				ctx.Set(k, v)
			}
		case constopt:
			ctx.consts[opt.name] = opt.val
		case funcopt:
			ctx.funcs[opt.name] = opt.fn
		case funcsopt:
			for k, v := range opt {
				ctx.funcs[k] = v
			}
		case opopt:
			ctx.setOperator(opt.op)
		case precopt, nodefaults:
			// Already done. Do nothing.
		default:
			panic("rpn: unknown option type")
		}
	}
	return &ctx
}

func (ctx *Context) setOperator(op *OperatorNode) {
	op.Reference()
	m := ctx.binops
	if op.Flags()&Infix == 0 {
		m = ctx.preops
		if old := m[op.name]; old != nil {
			release(old)
		}
		op.Reference()
		m[op.name] = op
	}
	if old := m[op.symbol]; old != nil {
		release(old)
	}
	m[op.symbol] = op
}

// Set sets the value of a variable, creating it if needed. Expressions
// already parsed with ctx see the new value. Returns ctx for chaining.
func (ctx *Context) Set(name string, val float64) *Context {
	if v := ctx.vars[name]; v != nil {
		v.v = val
		return ctx
	}
	v := &VariableNode{name: name, v: val}
	v.Reference()
	ctx.vars[name] = v
	return ctx
}

// Lookup returns the value of a variable or constant.
func (ctx *Context) Lookup(name string) (float64, bool) {
	if v := ctx.vars[name]; v != nil {
		return v.v, true
	}
	v, ok := ctx.consts[name]
	return v, ok
}

// Vars returns the names of the context's variables in sorted order.
func (ctx *Context) Vars() []string {
	r := make([]string, 0, len(ctx.vars))
	for k := range ctx.vars {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Prec returns the precision of exponentials, logarithms, and powers.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Define parses body as a function of nargs arguments named name. Within the
// body, $1 through $nargs refer to the arguments. A previous definition of the
// same name is replaced; expressions already using it keep the old one.
func (ctx *Context) Define(name string, nargs int, body string, f Format) error {
	if nargs < 0 {
		return errors.New("rpn: negative argument count " + strconv.Itoa(nargs) + " for " + name)
	}
	sub := *ctx
	sub.nargs = nargs
	e, err := ParseString(body, &sub, f)
	if err != nil {
		return err
	}
	c := &CallNode{name: name, body: e, nargs: nargs}
	c.Reference()
	if old := ctx.calls[name]; old != nil {
		release(old)
	}
	ctx.calls[name] = c
	log.Debugf("defined %s/%d as %v", name, nargs, e)
	return nil
}

// Release drops the context's references to nodes it has resolved. Nodes
// still used by expressions remain valid. The context must not be used
// afterward.
func (ctx *Context) Release() {
	for _, m := range []map[string]*OperatorNode{ctx.binops, ctx.preops} {
		for k, n := range m {
			release(n)
			delete(m, k)
		}
	}
	for k, n := range ctx.vars {
		release(n)
		delete(ctx.vars, k)
	}
	for k, n := range ctx.calls {
		release(n)
		delete(ctx.calls, k)
	}
	for k, n := range ctx.shared {
		release(n)
		delete(ctx.shared, k)
	}
	if ctx.comma != nil {
		release(ctx.comma)
		ctx.comma = nil
	}
}

// share returns the shared node under key, creating it with mk if needed.
func (ctx *Context) share(key string, mk func() Node) Node {
	if n := ctx.shared[key]; n != nil {
		return n
	}
	n := mk()
	n.Reference()
	ctx.shared[key] = n
	return n
}

// number resolves a numeric literal.
func (ctx *Context) number(tok Token) (Node, error) {
	if n := ctx.shared["#"+tok.Text]; n != nil {
		return n, nil
	}
	var v float64
	switch tok.Text {
	case "inf", "Inf", "∞":
		v = math.Inf(1)
	default:
		var err error
		v, err = strconv.ParseFloat(tok.Text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &LexError{Text: tok.Text, Kind: "number", Col: tok.Pos}
		}
	}
	return ctx.share("#"+tok.Text, func() Node {
		return &ValueNode{v: v, text: tok.Text}
	}), nil
}

// ident resolves a name. User-defined functions shadow other functions, which
// shadow variables, which shadow constants.
func (ctx *Context) ident(tok Token) (Node, error) {
	name := tok.Text
	if c := ctx.calls[name]; c != nil {
		return c, nil
	}
	if fn := ctx.funcs[name]; fn != nil {
		return &funcRef{ctx: ctx, name: name, fn: fn}, nil
	}
	if v := ctx.vars[name]; v != nil {
		return v, nil
	}
	if v, ok := ctx.consts[name]; ok {
		return ctx.share("c:"+name, func() Node {
			return &ValueNode{v: v, text: name}
		}), nil
	}
	if op := ctx.preops[name]; op != nil && op.name == name {
		return op, nil
	}
	return nil, &NameError{Col: tok.Pos, Name: name}
}

// operator resolves an operator symbol.
func (ctx *Context) operator(tok Token, prefix bool) (Node, error) {
	m := ctx.binops
	if prefix {
		m = ctx.preops
	}
	if op := m[tok.Text]; op != nil {
		return op, nil
	}
	return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text, Unary: prefix}
}

// argument resolves an argument reference like $2.
func (ctx *Context) argument(tok Token) (Node, error) {
	k, err := strconv.Atoi(strings.TrimPrefix(tok.Text, "$"))
	if err != nil || k < 1 || k > ctx.nargs {
		return nil, &ArgumentError{Col: tok.Pos, Arg: tok.Text, Args: ctx.nargs}
	}
	key := tok.Text + "/" + strconv.Itoa(ctx.nargs)
	return ctx.share(key, func() Node {
		return ArgumentAt(k, ctx.nargs)
	}), nil
}

// funcNode returns the shared node calling fn with n arguments.
func (ctx *Context) funcNode(name string, fn Func, n int) Node {
	return ctx.share("f:"+name+"/"+strconv.Itoa(n), func() Node {
		return &FuncNode{name: name, fn: fn, n: n}
	})
}

func defaultOperators(prec uint) []*OperatorNode {
	pow := math.Pow
	if prec > 0 {
		pow = precisePow(prec)
	}
	add := func(x, y float64) float64 { return x + y }
	sub := func(x, y float64) float64 { return x - y }
	mul := func(x, y float64) float64 { return x * y }
	div := func(x, y float64) float64 { return x / y }
	return []*OperatorNode{
		NewBinaryOperator("+", 1, false, checked("+", 2, add)),
		NewBinaryOperator("-", 1, false, checked("-", 2, sub)),
		NewBinaryOperator("*", 5, false, checked("*", 2, mul)),
		NewBinaryOperator("×", 5, false, checked("×", 2, mul)),
		NewBinaryOperator("/", 5, false, checked("/", 2, div)),
		NewBinaryOperator("÷", 5, false, checked("÷", 2, div)),
		NewBinaryOperator("%", 5, false, checked("%", 2, math.Mod)),
		NewBinaryOperator("^", 15, true, checked("^", 1, pow)),
		NewPrefixOperator("-", "neg", 10, func(x float64) (float64, error) { return -x, nil }),
		NewPrefixOperator("+", "pos", 10, func(x float64) (float64, error) { return x, nil }),
	}
}

// checked reports NaN results from non-NaN operands as a DomainError on
// operand arg.
func checked(sym string, arg int, f func(x, y float64) float64) func(x, y float64) (float64, error) {
	return func(x, y float64) (float64, error) {
		r := f(x, y)
		if math.IsNaN(r) && !math.IsNaN(x) && !math.IsNaN(y) {
			v := x
			if arg == 2 {
				v = y
			}
			return 0, &DomainError{X: v, Arg: arg, Func: sym}
		}
		return r, nil
	}
}
