package rpn

import (
	"errors"
	"math"
	"testing"
)

func TestFuncWrappers(t *testing.T) {
	cases := []struct {
		name string
		fn   Func
		can  []int
		not  []int
	}{
		{"niladic", Niladic(func() float64 { return 1 }), []int{0}, []int{1, 2}},
		{"monadic", Monadic(math.Abs), []int{1}, []int{0, 2}},
		{"dyadic", Dyadic(math.Hypot), []int{2}, []int{0, 1, 3}},
		{"variadic", Variadic(2, sum), []int{2, 3, 100}, []int{0, 1}},
		{"log", logFunc{math.Log}, []int{1, 2}, []int{0, 3}},
		{"volatile", Volatile(Monadic(math.Abs)), []int{1}, []int{0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, n := range c.can {
				if !c.fn.CanCall(n) {
					t.Errorf("can't call with %d args", n)
				}
			}
			for _, n := range c.not {
				if c.fn.CanCall(n) {
					t.Errorf("can call with %d args", n)
				}
			}
		})
	}
}

func TestFuncDomain(t *testing.T) {
	cases := []struct {
		name string
		fn   Func
		args []float64
		x    float64
		arg  int
	}{
		{"monadic", Monadic(math.Sqrt), []float64{-4}, -4, 1},
		{"dyadic", Dyadic(math.Mod), []float64{1, 0}, 1, 1},
		{"log", logFunc{math.Log}, []float64{-1}, -1, 1},
		{"log-base-zero", logFunc{math.Log}, []float64{8, 0}, 0, 2},
		{"log-base-one", logFunc{math.Log}, []float64{8, 1}, 1, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.fn.Call(c.args)
			var de *DomainError
			if !errors.As(err, &de) {
				t.Fatalf("want *DomainError, got %#v", err)
			}
			if de.X != c.x || de.Arg != c.arg {
				t.Errorf("want %g on argument %d, got %g on argument %d", c.x, c.arg, de.X, de.Arg)
			}
		})
	}
}

func TestFuncNaNPropagates(t *testing.T) {
	r, err := Monadic(math.Sqrt).Call([]float64{math.NaN()})
	if err != nil {
		t.Errorf("NaN argument gave error %v", err)
	}
	if !math.IsNaN(r) {
		t.Errorf("want NaN, got %g", r)
	}
}

func TestFuncVolatile(t *testing.T) {
	ctx := NewContext(SetFunc("tick", Volatile(Niladic(func() float64 { return 1 }))), SetFunc("rand", nil))
	defer ctx.Release()
	if _, err := ParseString("rand", ctx, FormatInfix); err == nil {
		t.Errorf("disabled function still resolves")
	}
	e, err := ParseString("tick + 1", ctx, FormatInfix)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Clear()
	if !e.Volatile() {
		t.Errorf("expression calling volatile function is not volatile")
	}
}

func TestDomainErrorMessage(t *testing.T) {
	err := &DomainError{X: -1, Arg: 2, Func: "log"}
	if got, want := err.Error(), "-1 outside domain of log (argument 2)"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
