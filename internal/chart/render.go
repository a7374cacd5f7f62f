package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// dpi maps one pixel of Width and Height to one point on the canvas.
const dpi = 72

// ErrUnknownFormat is returned for an unsupported image format.
var ErrUnknownFormat = errors.New("unknown image format")

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Render draws c to w at Width x Height pixels. The top panel gets a third
// of the height.
func Render(w io.Writer, c *Chart, format Format) error {
	width, height := vg.Points(float64(c.Width)), vg.Points(float64(c.Height))
	if width <= 0 || height <= 0 {
		width, height = vg.Points(DefaultWidth), vg.Points(DefaultHeight)
	}

	top, err := panelPlot(c.Top, nil, nil)
	if err != nil {
		return fmt.Errorf("top panel: %w", err)
	}
	bottom, err := panelPlot(c.Bottom, c.Selection, c.Fit)
	if err != nil {
		return fmt.Errorf("bottom panel: %w", err)
	}

	var canvas vg.CanvasWriterTo
	switch format {
	case FormatPNG, "":
		canvas = vgimg.PngCanvas{Canvas: vgimg.NewWith(
			vgimg.UseWH(width, height),
			vgimg.UseDPI(dpi),
			vgimg.UseBackgroundColor(color.White),
		)}
	case FormatSVG:
		canvas = vgsvg.NewWith(vgsvg.UseWH(width, height))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	dc := draw.New(canvas)
	split := height / 3
	top.Draw(draw.Crop(dc, 0, 0, height-split, 0))
	bottom.Draw(draw.Crop(dc, 0, 0, 0, -split))

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

func panelPlot(panel Panel, selection *Span, fitted *Series) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = panel.XLabel
	p.Y.Label.Text = panel.YLabel

	// The band goes in first so the data is drawn over it.
	if selection != nil {
		p.Add(band{span: *selection})
	}
	for _, s := range panel.Series {
		if err := addLine(p, s, vg.Points(1)); err != nil {
			return nil, err
		}
	}
	if fitted != nil {
		if err := addLine(p, *fitted, vg.Points(1.5)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func addLine(p *plot.Plot, s Series, width vg.Length) error {
	if len(s.X) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(s.X))
	for i := range s.X {
		xys[i].X = s.X[i]
		xys[i].Y = s.Y[i]
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("series %s: %w", s.Name, err)
	}
	line.Color = parseHex(s.Color)
	line.Width = width
	p.Add(line)
	return nil
}

// band shades a horizontal range across the whole data area.
type band struct {
	span Span
}

func (b band) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	x0, x1 := trX(b.span.Start), trX(b.span.End)
	pts := []vg.Point{
		{X: x0, Y: c.Min.Y},
		{X: x1, Y: c.Min.Y},
		{X: x1, Y: c.Max.Y},
		{X: x0, Y: c.Max.Y},
	}
	fill := parseHex(b.span.Color)
	fill.A = uint8(b.span.Opacity * 255)
	c.FillPolygon(fill, c.ClipPolygonX(pts))
}

func parseHex(s string) color.NRGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
