package fit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/RMahshie/invols/internal/heka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestLinear_RecoversLine(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var x, y []float64
	for i := 0; i < 50; i++ {
		xi := float64(i) * 0.5
		x = append(x, xi)
		y = append(y, 3*xi+1+(rng.Float64()-0.5)*1e-6)
	}

	res, err := Linear(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 3, res.Slope, 1e-3)
	assert.InDelta(t, 1, res.Intercept, 1e-3)
	assert.InDelta(t, 1.0/3, res.Sensitivity(), 1e-3)
	assert.Equal(t, 50, res.Points)
	assert.Greater(t, res.Covariance[0][0], 0.0)
	assert.Less(t, res.Covariance[0][0], 1e-9)
	assert.InDelta(t, res.Covariance[0][1], res.Covariance[1][0], 1e-18)
}

func TestLinear_MatchesClosedForm(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := make([]float64, 200)
	y := make([]float64, 200)
	for i := range x {
		x[i] = rng.Float64()*80 - 10
		y[i] = 0.012*x[i] - 0.4 + rng.NormFloat64()*0.01
	}

	res, err := Linear(x, y)
	require.NoError(t, err)

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	assert.InDelta(t, slope, res.Slope, 1e-9)
	assert.InDelta(t, intercept, res.Intercept, 1e-9)
}

func TestLinear_NarrowSpreadFarFromOrigin(t *testing.T) {
	x := make([]float64, 10)
	y := make([]float64, 10)
	for i := range x {
		x[i] = 3000 + float64(i)*0.01
		y[i] = 3*x[i] + 1 + math.Sin(float64(i))*1e-6
	}

	res, err := Linear(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 3, res.Slope, 1e-3)
	assert.InDelta(t, 1, res.Intercept, 5)
	assert.Equal(t, 10, res.Points)
	for _, row := range res.Covariance {
		for _, v := range row {
			assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
		}
	}
}

func TestLinear_ExactTwoPoints(t *testing.T) {
	res, err := Linear([]float64{1, 2}, []float64{4, 7})
	require.NoError(t, err)

	assert.InDelta(t, 3, res.Slope, 1e-12)
	assert.InDelta(t, 1, res.Intercept, 1e-12)
	assert.True(t, math.IsInf(res.Covariance[0][0], 1))
}

func TestLinear_Errors(t *testing.T) {
	tests := []struct {
		name    string
		x, y    []float64
		wantErr error
	}{
		{name: "no points", wantErr: ErrTooFewPoints},
		{name: "single point", x: []float64{1}, y: []float64{2}, wantErr: ErrTooFewPoints},
		{name: "zero variance", x: []float64{5, 5, 5}, y: []float64{1, 2, 3}, wantErr: ErrSingular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Linear(tt.x, tt.y)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Linear([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestLinear_FlatLine(t *testing.T) {
	res, err := Linear([]float64{1, 2, 3}, []float64{2, 2, 2})
	require.NoError(t, err)

	assert.InDelta(t, 0, res.Slope, 1e-12)
	assert.True(t, math.IsInf(res.Sensitivity(), 0) || math.Abs(res.Sensitivity()) > 1e9)
}

func TestResult_Curve(t *testing.T) {
	res := Result{Slope: 2, Intercept: -1}
	xs, ys := res.Curve(0, 9.9, 100)

	require.Len(t, xs, 100)
	require.Len(t, ys, 100)
	assert.Equal(t, 0.0, xs[0])
	assert.InDelta(t, 9.9, xs[99], 1e-12)
	assert.InDelta(t, 0.1, xs[1]-xs[0], 1e-12)
	for i := range xs {
		assert.InDelta(t, 2*xs[i]-1, ys[i], 1e-12)
	}
}

func TestSegment(t *testing.T) {
	var rows []heka.Row
	for i := 0; i < 10; i++ {
		z := float64(i) * 0.01
		pos := heka.Position(z)
		rows = append(rows, heka.Row{Z: z, Position: pos, Deflection: 0.02*pos - 0.5})
	}

	res, err := Segment(rows)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, res.Slope, 1e-9)
	assert.InDelta(t, -0.5, res.Intercept, 1e-9)
	assert.InDelta(t, 50, res.Sensitivity(), 1e-6)

	_, err = Segment(rows[:1])
	assert.ErrorIs(t, err, ErrTooFewPoints)
}
