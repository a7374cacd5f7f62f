// Package trace separates a sweep into the approach and retract curves of
// the cantilever.
package trace

import (
	"github.com/RMahshie/invols/internal/heka"
)

// Cutoff is the last deflection time (ms) considered part of the
// approach/retract cycle.
const Cutoff = 400

// Split keeps the rows recorded up to Cutoff and divides them at the first
// maximum of the z drive. The approach starts at the second row and ends at
// the peak; the retract starts at the peak. Both share the peak row and
// either may be empty.
func Split(rows []heka.Row) (approach, retract []heka.Row) {
	sub := make([]heka.Row, 0, len(rows))
	for _, r := range rows {
		if r.DeflectionTime <= Cutoff {
			sub = append(sub, r)
		}
	}
	if len(sub) == 0 {
		return nil, nil
	}

	peak := 0
	for i, r := range sub {
		if r.Z > sub[peak].Z {
			peak = i
		}
	}

	if peak >= 1 {
		approach = sub[1 : peak+1]
	}
	retract = sub[peak:]
	return approach, retract
}

// Window returns the rows whose position lies in [start, end]. A reversed
// window selects nothing.
func Window(rows []heka.Row, start, end float64) []heka.Row {
	var out []heka.Row
	for _, r := range rows {
		if r.Position >= start && r.Position <= end {
			out = append(out, r)
		}
	}
	return out
}
