package rpn

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
)

// Func is a function from reals to reals.
type Func interface {
	// Call evaluates the function. The function arguments are passed in args,
	// which has a length for which CanCall returned true. Call may modify the
	// elements of args, but must not retain it.
	Call(args []float64) (float64, error)

	// CanCall returns whether the function can be called with n arguments.
	// This controls how the parsers bind calls:
	//
	// 	1.	In infix notation, a bracketed list of n expressions following the
	//		function name is an argument list if CanCall(n).
	//
	// 	2.	In infix notation, if a bare term follows a function and
	//		CanCall(1), then the term is its argument. E.g., "exp x" is
	//		parsed as "exp(x)". If the function is followed by anything else
	//		and CanCall(0), then it is called with no arguments.
	//
	// 	3.	In postfix notation, the function takes the largest n no greater
	//		than the number of operands available for which CanCall(n).
	CanCall(n int) bool
}

// funcPrec is the precedence of function application in infix notation.
const funcPrec = 100

type niladic func() float64

func (f niladic) Call(args []float64) (float64, error) {
	return f(), nil
}

func (f niladic) CanCall(n int) bool {
	return n == 0
}

// Niladic wraps a function of zero variables into a Func.
func Niladic(f func() float64) Func {
	return niladic(f)
}

type monadic func(float64) float64

func (f monadic) Call(args []float64) (float64, error) {
	x := args[0]
	r := f(x)
	if math.IsNaN(r) && !math.IsNaN(x) {
		return 0, &DomainError{X: x, Arg: 1}
	}
	return r, nil
}

func (f monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. A NaN result from a
// non-NaN argument is reported as a DomainError.
func Monadic(f func(x float64) float64) Func {
	return monadic(f)
}

type dyadic func(x, y float64) float64

func (f dyadic) Call(args []float64) (float64, error) {
	x, y := args[0], args[1]
	r := f(x, y)
	if math.IsNaN(r) && !math.IsNaN(x) && !math.IsNaN(y) {
		return 0, &DomainError{X: x, Arg: 1}
	}
	return r, nil
}

func (f dyadic) CanCall(n int) bool {
	return n == 2
}

// Dyadic wraps a function of two variables into a Func. A NaN result from
// non-NaN arguments is reported as a DomainError on the first argument.
func Dyadic(f func(x, y float64) float64) Func {
	return dyadic(f)
}

type variadic struct {
	min int
	f   func(args []float64) float64
}

func (v variadic) Call(args []float64) (float64, error) {
	return v.f(args), nil
}

func (v variadic) CanCall(n int) bool {
	return n >= v.min
}

// Variadic wraps a function of at least min variables into a Func.
func Variadic(min int, f func(args []float64) float64) Func {
	return variadic{min: min, f: f}
}

type volatileFunc struct {
	Func
}

func (volatileFunc) Volatile() bool {
	return true
}

// Volatile marks a function as returning different results for the same
// arguments, e.g. a random number generator. Expressions calling it are
// never cached.
func Volatile(f Func) Func {
	return volatileFunc{f}
}

// logFunc is the logarithm, base 10 with one argument or base y with two.
type logFunc struct {
	ln func(float64) float64
}

func (f logFunc) Call(args []float64) (float64, error) {
	x := args[0]
	if x < 0 {
		return 0, &DomainError{X: x, Arg: 1}
	}
	b := 10.0
	if len(args) == 2 {
		b = args[1]
		if b <= 0 || b == 1 {
			return 0, &DomainError{X: b, Arg: 2}
		}
	}
	return f.ln(x) / f.ln(b), nil
}

func (f logFunc) CanCall(n int) bool {
	return n == 1 || n == 2
}

func sum(args []float64) float64 {
	var r float64
	for _, x := range args {
		r += x
	}
	return r
}

func defaultFuncs(prec uint) map[string]Func {
	exp, ln, pow := math.Exp, math.Log, math.Pow
	if prec > 0 {
		exp, ln, pow = preciseExp(prec), preciseLog(prec), precisePow(prec)
	}
	return map[string]Func{
		"exp":   Monadic(exp),
		"ln":    Monadic(ln),
		"log":   logFunc{ln},
		"sqrt":  Monadic(math.Sqrt),
		"abs":   Monadic(math.Abs),
		"floor": Monadic(math.Floor),
		"ceil":  Monadic(math.Ceil),
		"round": Monadic(math.Round),
		"trunc": Monadic(math.Trunc),
		"cos":   Monadic(math.Cos),
		"sin":   Monadic(math.Sin),
		"tan":   Monadic(math.Tan),
		"acos":  Monadic(math.Acos),
		"asin":  Monadic(math.Asin),
		"atan":  Monadic(math.Atan),
		"cosh":  Monadic(math.Cosh),
		"sinh":  Monadic(math.Sinh),
		"tanh":  Monadic(math.Tanh),
		"acosh": Monadic(math.Acosh),
		"asinh": Monadic(math.Asinh),
		"atanh": Monadic(math.Atanh),
		"atan2": Dyadic(math.Atan2),
		"hypot": Dyadic(math.Hypot),
		"pow":   Dyadic(pow),
		"min": Variadic(1, func(args []float64) float64 {
			r := args[0]
			for _, x := range args[1:] {
				r = math.Min(r, x)
			}
			return r
		}),
		"max": Variadic(1, func(args []float64) float64 {
			r := args[0]
			for _, x := range args[1:] {
				r = math.Max(r, x)
			}
			return r
		}),
		"sum": Variadic(1, sum),
		"avg": Variadic(1, func(args []float64) float64 {
			return sum(args) / float64(len(args))
		}),
		"rand": Volatile(Niladic(rand.Float64)),
	}
}

// FuncNode calls a Func with a fixed number of arguments.
type FuncNode struct {
	RefCount
	name string
	fn   Func
	n    int
}

func (f *FuncNode) Flags() Flags    { return PresentsOp | SucceedsOp }
func (f *FuncNode) Precedence() int { return funcPrec }
func (f *FuncNode) Arity() int      { return f.n }
func (f *FuncNode) String() string  { return f.name }

func (f *FuncNode) Volatile() bool {
	v, ok := f.fn.(interface{ Volatile() bool })
	return ok && v.Volatile()
}

func (f *FuncNode) Eval(ev *Evaluator) (float64, error) {
	r, err := f.fn.Call(ev.PopN(f.n))
	if err != nil {
		var de *DomainError
		if errors.As(err, &de) && de.Func == "" {
			de.Func = f.name
		}
		return 0, err
	}
	return r, nil
}

// callable is a node naming a function whose argument count is decided by
// the parser.
type callable interface {
	Operator
	// bind returns the node calling the function with n arguments, or false
	// if the function cannot take n arguments.
	bind(n int) (Node, bool)
	canCall(n int) bool
	callName() string
}

// funcRef is a function name read by a parser, before its arguments are
// counted.
type funcRef struct {
	RefCount
	ctx  *Context
	name string
	fn   Func
}

func (f *funcRef) Flags() Flags                     { return PresentsOp | SucceedsOp }
func (f *funcRef) Precedence() int                  { return funcPrec }
func (f *funcRef) Arity() int                       { return 0 }
func (f *funcRef) Eval(*Evaluator) (float64, error) { return 0, errParseOnly }
func (f *funcRef) Volatile() bool                   { return false }
func (f *funcRef) String() string                   { return f.name }
func (f *funcRef) canCall(n int) bool               { return f.fn.CanCall(n) }
func (f *funcRef) callName() string                 { return f.name }

func (f *funcRef) bind(n int) (Node, bool) {
	if !f.fn.CanCall(n) {
		return nil, false
	}
	return f.ctx.funcNode(f.name, f.fn, n), true
}

// DomainError is an error returned when a function or operator is evaluated
// on arguments outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X float64
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := strconv.FormatFloat(err.X, 'g', -1, 64) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

var (
	_ Operator = (*FuncNode)(nil)
	_ callable = (*funcRef)(nil)
)
