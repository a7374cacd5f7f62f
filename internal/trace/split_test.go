package trace

import (
	"testing"

	"github.com/RMahshie/invols/internal/heka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampRows builds a sweep whose z drive rises to peakAt and falls after it.
// Rows are 100 ms apart.
func rampRows(n, peakAt int) []heka.Row {
	rows := make([]heka.Row, n)
	for i := range rows {
		z := float64(i)
		if i > peakAt {
			z = float64(2*peakAt - i)
		}
		rows[i] = heka.Row{
			Index:          float64(i + 1),
			DeflectionTime: float64(i) * 100,
			Z:              z,
			Position:       heka.Position(z),
		}
	}
	return rows
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		rows         []heka.Row
		wantApproach []float64
		wantRetract  []float64
	}{
		{
			name:         "peak inside cutoff",
			rows:         rampRows(8, 2),
			wantApproach: []float64{2, 3},
			wantRetract:  []float64{3, 4, 5},
		},
		{
			name:         "peak at first row",
			rows:         rampRows(4, 0),
			wantApproach: nil,
			wantRetract:  []float64{1, 2, 3, 4},
		},
		{
			name:         "peak at last qualifying row",
			rows:         rampRows(8, 4),
			wantApproach: []float64{2, 3, 4, 5},
			wantRetract:  []float64{5},
		},
		{
			name:         "single row",
			rows:         rampRows(1, 0),
			wantApproach: nil,
			wantRetract:  []float64{1},
		},
		{
			name: "empty",
			rows: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approach, retract := Split(tt.rows)
			assert.Equal(t, tt.wantApproach, indices(approach))
			assert.Equal(t, tt.wantRetract, indices(retract))
		})
	}
}

func TestSplit_NothingBeforeCutoff(t *testing.T) {
	rows := []heka.Row{{DeflectionTime: 401, Z: 1}, {DeflectionTime: 500, Z: 2}}
	approach, retract := Split(rows)
	assert.Empty(t, approach)
	assert.Empty(t, retract)
}

func TestSplit_FirstMaximumWins(t *testing.T) {
	rows := []heka.Row{
		{Index: 1, Z: 0},
		{Index: 2, Z: 1},
		{Index: 3, Z: 3},
		{Index: 4, Z: 3},
		{Index: 5, Z: 1},
	}
	approach, retract := Split(rows)
	assert.Equal(t, []float64{2, 3}, indices(approach))
	assert.Equal(t, []float64{3, 4, 5}, indices(retract))
}

func TestSplit_Coverage(t *testing.T) {
	rows := rampRows(12, 3)
	approach, retract := Split(rows)
	require.NotEmpty(t, approach)
	require.NotEmpty(t, retract)

	// Shared peak row, no other overlap, and together they rebuild the
	// qualifying rows after the first.
	assert.Equal(t, approach[len(approach)-1], retract[0])
	joined := append(append([]heka.Row{}, approach...), retract[1:]...)
	var qualifying []heka.Row
	for _, r := range rows {
		if r.DeflectionTime <= Cutoff {
			qualifying = append(qualifying, r)
		}
	}
	assert.Equal(t, qualifying[1:], joined)
}

func TestWindow(t *testing.T) {
	rows := rampRows(5, 4)
	p := func(z float64) float64 { return heka.Position(z) }

	assert.Equal(t, []float64{2, 3, 4}, indices(Window(rows, p(1), p(3))))
	assert.Equal(t, []float64{1}, indices(Window(rows, 0, 0)))
	assert.Empty(t, Window(rows, p(3), p(1)))
	assert.Empty(t, Window(rows, 1e6, 2e6))
}

func indices(rows []heka.Row) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Index
	}
	return out
}
