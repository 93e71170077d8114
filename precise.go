package rpn

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Exponentials and logarithms in a context with nonzero precision are
// computed with that many bits of mantissa and then rounded to float64.
// Arguments for which the result is not finite and nonzero use package math.

func bigf(prec uint, x float64) *big.Float {
	return new(big.Float).SetPrec(prec).SetFloat64(x)
}

func preciseExp(prec uint) func(float64) float64 {
	return func(x float64) float64 {
		// e^710 overflows float64 and e^-746 underflows it.
		if math.IsNaN(x) || x > 710 || x < -746 {
			return math.Exp(x)
		}
		r, _ := bigfloat.Exp(new(big.Float).SetPrec(prec), bigf(prec, x)).Float64()
		return r
	}
}

func preciseLog(prec uint) func(float64) float64 {
	return func(x float64) float64 {
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return math.Log(x)
		}
		r, _ := bigfloat.Log(new(big.Float).SetPrec(prec), bigf(prec, x)).Float64()
		return r
	}
}

func precisePow(prec uint) func(x, y float64) float64 {
	return func(x, y float64) float64 {
		neg := false
		if x < 0 && y == math.Trunc(y) && !math.IsInf(y, 0) {
			// Integer powers of negative bases are real.
			neg = math.Mod(y, 2) != 0
			x = -x
		}
		var r float64
		switch {
		case math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0),
			x <= 0, y == 0,
			math.Abs(y*math.Log2(x)) > 1100:
			r = math.Pow(x, y)
		default:
			r, _ = bigfloat.Pow(new(big.Float).SetPrec(prec), bigf(prec, x), bigf(prec, y)).Float64()
		}
		if neg {
			r = -r
		}
		return r
	}
}
