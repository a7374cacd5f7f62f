package processing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/RMahshie/invols/internal/chart"
	"github.com/RMahshie/invols/internal/fit"
	"github.com/RMahshie/invols/internal/heka"
	"github.com/RMahshie/invols/internal/repository"
	"github.com/RMahshie/invols/internal/trace"
	"github.com/RMahshie/invols/pkg/models"
)

var (
	// ErrSweepNotFound is returned for a sweep number with no rows
	ErrSweepNotFound = errors.New("sweep not found")
	// ErrInvalidWindow is returned for window text that is not an integer,
	// or when a fit is requested without a complete window
	ErrInvalidWindow = errors.New("invalid fit window")
	// ErrFit wraps numerical fit failures
	ErrFit = errors.New("fit failed")
)

// View is the outcome of one pipeline evaluation
type View struct {
	Sweep    int
	Approach []heka.Row
	Retract  []heka.Row
	Window   *models.FitWindow
	// Segment holds the approach rows inside Window when a fit was run
	Segment []heka.Row
	Fit     *fit.Result
	Chart   *chart.Chart
}

// FitEnabled reports whether the approach segment can be fitted at all
func (v *View) FitEnabled() bool {
	return len(v.Approach) >= 2
}

// ParseWindow turns the two window text entries into a window. Both
// entries empty, or either one empty, means no window.
func ParseWindow(start, end string) (*models.FitWindow, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := strconv.Atoi(start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q is not an integer", ErrInvalidWindow, start)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return nil, fmt.Errorf("%w: end %q is not an integer", ErrInvalidWindow, end)
	}
	return &models.FitWindow{Start: float64(s), End: float64(e)}, nil
}

// BuildSweep does the window independent work for one sweep
func BuildSweep(rec *heka.Recording, sweep int) (*repository.CachedSweep, error) {
	rows := rec.Sweep(sweep)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrSweepNotFound, sweep)
	}
	approach, retract := trace.Split(rows)
	return &repository.CachedSweep{
		Number:   sweep,
		Rows:     rows,
		Approach: approach,
		Retract:  retract,
		Chart:    chart.New(rows, approach),
	}, nil
}

// Apply overlays the window and, when doFit is set, the fitted line on a
// copy of the cached chart
func Apply(base *repository.CachedSweep, window *models.FitWindow, doFit bool) (*View, error) {
	view := &View{
		Sweep:    base.Number,
		Approach: base.Approach,
		Retract:  base.Retract,
		Window:   window,
		Chart:    base.Chart.Clone(),
	}
	if window != nil {
		view.Chart.Highlight(window.Start, window.End)
	}
	if !doFit {
		return view, nil
	}
	if window == nil {
		return nil, fmt.Errorf("%w: start and end are required to fit", ErrInvalidWindow)
	}

	segment := trace.Window(base.Approach, window.Start, window.End)
	res, err := fit.Segment(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFit, err)
	}
	view.Segment = segment
	view.Fit = &res
	view.Chart.AddFit(segment, res)
	return view, nil
}

// Evaluate maps (recording, sweep, window) to a chart and an optional fit
// result without caching anything
func Evaluate(rec *heka.Recording, sweep int, window *models.FitWindow, doFit bool) (*View, error) {
	base, err := BuildSweep(rec, sweep)
	if err != nil {
		return nil, err
	}
	return Apply(base, window, doFit)
}
