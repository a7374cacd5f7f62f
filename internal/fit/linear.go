// Package fit performs the straight-line least-squares fit used to turn the
// contact region of an approach curve into a deflection sensitivity.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/RMahshie/invols/internal/heka"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooFewPoints is returned when fewer than two points are fitted.
	ErrTooFewPoints = errors.New("at least 2 points are required")
	// ErrSingular is returned when the independent variable has no spread.
	ErrSingular = errors.New("singular system: positions have zero variance")
	// ErrIllConditioned is returned when the positions vary too little
	// relative to their magnitude for the system to be solved accurately.
	ErrIllConditioned = errors.New("ill-conditioned system: position spread too small for its offset")
)

// Result is the fitted line y = Slope*x + Intercept.
type Result struct {
	Slope     float64
	Intercept float64
	// Covariance of (Slope, Intercept), scaled by the residual variance.
	// Entries are +Inf when there are no residual degrees of freedom.
	Covariance [2][2]float64
	Points     int
}

// Eval evaluates the line at x.
func (r Result) Eval(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// Sensitivity is the inverse slope in nm/V. A flat line gives +/-Inf.
func (r Result) Sensitivity() float64 {
	return 1 / r.Slope
}

// Curve samples the line at n evenly spaced points over [lo, hi].
func (r Result) Curve(lo, hi float64, n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	xs = floats.Span(make([]float64, n), lo, hi)
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = r.Eval(x)
	}
	return xs, ys
}

// Linear fits y = m*x + b by ordinary least squares.
func Linear(x, y []float64) (Result, error) {
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("length mismatch: %d x values, %d y values", len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return Result{}, fmt.Errorf("linear fit on %d points: %w", n, ErrTooFewPoints)
	}
	if floats.Max(x) == floats.Min(x) {
		return Result{}, fmt.Errorf("linear fit on %d points: %w", n, ErrSingular)
	}

	design := mat.NewDense(n, 2, nil)
	for i, xi := range x {
		design.Set(i, 0, xi)
		design.Set(i, 1, 1)
	}
	obs := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(design)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, obs); err != nil {
		return Result{}, fmt.Errorf("linear fit: %w: %v", ErrIllConditioned, err)
	}

	// XᵀX = RᵀR, so (XᵀX)⁻¹ = R⁻¹R⁻ᵀ without squaring the condition number.
	var r mat.Dense
	qr.RTo(&r)
	var rInv, inv mat.Dense
	if err := rInv.Inverse(r.Slice(0, 2, 0, 2)); err != nil {
		return Result{}, fmt.Errorf("linear fit: %w: %v", ErrIllConditioned, err)
	}
	inv.Mul(&rInv, rInv.T())

	res := Result{
		Slope:     params.AtVec(0),
		Intercept: params.AtVec(1),
		Points:    n,
	}

	var ssr float64
	for i := range x {
		d := y[i] - res.Eval(x[i])
		ssr += d * d
	}
	dof := n - 2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if dof == 0 {
				res.Covariance[i][j] = math.Inf(1)
				continue
			}
			res.Covariance[i][j] = inv.At(i, j) * ssr / float64(dof)
		}
	}
	return res, nil
}

// Segment fits deflection against position for the given rows.
func Segment(rows []heka.Row) (Result, error) {
	x := make([]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Position
		y[i] = r.Deflection
	}
	return Linear(x, y)
}
