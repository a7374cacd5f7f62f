// Package chart builds the two panel sweep figure: raw channels against time
// on top, approach deflection against piezo position below.
package chart

import (
	"github.com/RMahshie/invols/internal/fit"
	"github.com/RMahshie/invols/internal/heka"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// FitSamples is the number of points drawn for a fitted line.
	FitSamples = 100

	highlightColor   = "#ADD8E6"
	highlightOpacity = 0.5
)

// Series is one line of a panel.
type Series struct {
	Name  string    `json:"name" doc:"Series label"`
	Color string    `json:"color" doc:"Line color as #RRGGBB"`
	X     []float64 `json:"x" doc:"Abscissa values"`
	Y     []float64 `json:"y" doc:"Ordinate values"`
}

// Panel is one subplot.
type Panel struct {
	XLabel string   `json:"x_label" doc:"Horizontal axis title"`
	YLabel string   `json:"y_label" doc:"Vertical axis title"`
	Series []Series `json:"series" doc:"Lines drawn in the panel"`
}

// Span is a shaded band across the full height of the bottom panel.
type Span struct {
	Start   float64 `json:"start" doc:"Left edge on the position axis (nm)"`
	End     float64 `json:"end" doc:"Right edge on the position axis (nm)"`
	Color   string  `json:"color" doc:"Fill color as #RRGGBB"`
	Opacity float64 `json:"opacity" doc:"Fill opacity"`
}

// Chart is a renderable description of the sweep figure. Selection and Fit
// are overlays on the bottom panel; setting one replaces the previous value.
type Chart struct {
	Width     int     `json:"width" doc:"Figure width in pixels"`
	Height    int     `json:"height" doc:"Figure height in pixels"`
	Top       Panel   `json:"top" doc:"Channels against time"`
	Bottom    Panel   `json:"bottom" doc:"Approach deflection against position"`
	Selection *Span   `json:"selection,omitempty" doc:"Highlighted fit window"`
	Fit       *Series `json:"fit,omitempty" doc:"Fitted line"`
}

// New builds the base chart for one sweep and its approach segment.
func New(sweep, approach []heka.Row) *Chart {
	deflection := Series{Name: "in0", Color: "#0000FF"}
	z := Series{Name: "z", Color: "#008000"}
	lateral := Series{Name: "lat", Color: "#FFA500"}
	for _, r := range sweep {
		deflection.X = append(deflection.X, r.DeflectionTime)
		deflection.Y = append(deflection.Y, r.Deflection)
		z.X = append(z.X, r.ZTime)
		z.Y = append(z.Y, r.Z)
		lateral.X = append(lateral.X, r.LateralTime)
		lateral.Y = append(lateral.Y, r.Lateral)
	}

	approachSeries := Series{Name: "approach", Color: "#000000"}
	for _, r := range approach {
		approachSeries.X = append(approachSeries.X, r.Position)
		approachSeries.Y = append(approachSeries.Y, r.Deflection)
	}

	return &Chart{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Top: Panel{
			XLabel: "Time (ms)",
			YLabel: "Voltage (V)",
			Series: []Series{deflection, z, lateral},
		},
		Bottom: Panel{
			XLabel: "Position (nm)",
			YLabel: "Voltage (V)",
			Series: []Series{approachSeries},
		},
	}
}

// Clone returns a copy whose overlays can be changed without touching c.
// Series data is shared and must be treated as read-only.
func (c *Chart) Clone() *Chart {
	out := *c
	if c.Selection != nil {
		s := *c.Selection
		out.Selection = &s
	}
	if c.Fit != nil {
		f := *c.Fit
		out.Fit = &f
	}
	return &out
}

// Highlight shades [start, end] on the bottom panel.
func (c *Chart) Highlight(start, end float64) *Chart {
	c.Selection = &Span{
		Start:   start,
		End:     end,
		Color:   highlightColor,
		Opacity: highlightOpacity,
	}
	return c
}

// AddFit overlays the fitted line across the position range of segment.
func (c *Chart) AddFit(segment []heka.Row, res fit.Result) *Chart {
	if len(segment) == 0 {
		c.Fit = nil
		return c
	}
	pos := make([]float64, len(segment))
	for i, r := range segment {
		pos[i] = r.Position
	}
	xs, ys := res.Curve(floats.Min(pos), floats.Max(pos), FitSamples)
	c.Fit = &Series{Name: "fit", Color: "#FF0000", X: xs, Y: ys}
	return c
}
