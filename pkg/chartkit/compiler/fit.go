package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/fit"
	"github.com/aclements/go-moremath/stats"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
)

// RegressionMethod is a regression model.
type RegressionMethod string

const (
	MethodLinear      RegressionMethod = "linear"
	MethodExponential RegressionMethod = "exponential"
	MethodLogarithmic RegressionMethod = "logarithmic"
	MethodPolynomial  RegressionMethod = "polynomial"
)

// Fit is a fitted regression model.
type Fit struct {
	Method RegressionMethod
	// Coefficients are in model order: [b, a] for y = ax + b, [a, b] for
	// y = a·e^(bx) and y = a + b·ln(x), and ascending powers for polynomials.
	Coefficients []float64
	RSquared     float64
	F            func(x float64) float64
}

// FitRegression fits method to the points. Exponential fits need positive
// y values and logarithmic fits positive x values.
func FitRegression(method RegressionMethod, order int, xs, ys []float64) (*Fit, error) {
	if method == "" {
		method = MethodLinear
	}
	degree := 1
	if method == MethodPolynomial {
		degree = order
		if degree < 1 {
			degree = 2
		}
	}
	if distinct(xs) <= degree {
		return nil, chartErrors.New(chartErrors.CodeTransform, "not enough distinct x values for regression").
			With("method", string(method)).
			With("points", len(xs))
	}

	f := &Fit{Method: method}
	switch method {
	case MethodLinear, MethodPolynomial:
		r := fit.PolynomialRegression(xs, ys, nil, degree)
		f.Coefficients = r.Coefficients
		f.F = r.F
	case MethodExponential:
		ln := make([]float64, len(ys))
		for i, y := range ys {
			if y <= 0 {
				return nil, chartErrors.New(chartErrors.CodeTransform, "exponential regression requires positive y values").
					With("index", i).
					Suggest("use a linear or polynomial method for data with zero or negative values")
			}
			ln[i] = math.Log(y)
		}
		r := fit.PolynomialRegression(xs, ln, nil, 1)
		a, b := math.Exp(r.Coefficients[0]), r.Coefficients[1]
		f.Coefficients = []float64{a, b}
		f.F = func(x float64) float64 { return a * math.Exp(b*x) }
	case MethodLogarithmic:
		ln := make([]float64, len(xs))
		for i, x := range xs {
			if x <= 0 {
				return nil, chartErrors.New(chartErrors.CodeTransform, "logarithmic regression requires positive x values").
					With("index", i).
					Suggest("use a linear or polynomial method for data with zero or negative values")
			}
			ln[i] = math.Log(x)
		}
		r := fit.PolynomialRegression(ln, ys, nil, 1)
		a, b := r.Coefficients[0], r.Coefficients[1]
		f.Coefficients = []float64{a, b}
		f.F = func(x float64) float64 { return a + b*math.Log(x) }
	default:
		return nil, chartErrors.New(chartErrors.CodeTransform, fmt.Sprintf("unknown regression method %q", method)).
			Suggest("use linear, exponential, logarithmic or polynomial")
	}
	f.RSquared = rSquared(xs, ys, f.F)
	return f, nil
}

// Formula renders the fitted equation.
func (f *Fit) Formula() string {
	c := f.Coefficients
	switch f.Method {
	case MethodExponential:
		return "y = " + coef(c[0]) + "e^(" + coef(c[1]) + "x)"
	case MethodLogarithmic:
		return "y = " + coef(c[0]) + " " + signed(c[1]) + "ln(x)"
	}

	var b strings.Builder
	b.WriteString("y = ")
	first := true
	for p := len(c) - 1; p >= 0; p-- {
		if round3(c[p]) == 0 && len(c) > 1 {
			continue
		}
		term := ""
		switch p {
		case 0:
		case 1:
			term = "x"
		default:
			term = "x^" + strconv.Itoa(p)
		}
		if first {
			b.WriteString(coef(c[p]) + term)
			first = false
		} else {
			b.WriteString(" " + signed(c[p]) + term)
		}
	}
	if first {
		b.WriteString("0")
	}
	return b.String()
}

// round3 rounds to three decimals, folding -0 into 0.
func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}

func coef(v float64) string {
	return strconv.FormatFloat(round3(v), 'f', -1, 64)
}

func signed(v float64) string {
	if v < 0 {
		return "- " + coef(-v)
	}
	return "+ " + coef(v)
}

func rSquared(xs, ys []float64, f func(float64) float64) float64 {
	mean := stats.Mean(ys)
	var res, tot float64
	for i, x := range xs {
		d := ys[i] - f(x)
		res += d * d
		m := ys[i] - mean
		tot += m * m
	}
	if tot == 0 {
		return 1
	}
	return 1 - res/tot
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
