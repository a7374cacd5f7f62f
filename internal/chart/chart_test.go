package chart

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/RMahshie/invols/internal/fit"
	"github.com/RMahshie/invols/internal/heka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepRows() []heka.Row {
	var rows []heka.Row
	for i := 0; i < 20; i++ {
		z := float64(i) * 0.01
		rows = append(rows, heka.Row{
			Index:          float64(i + 1),
			DeflectionTime: float64(i) * 10,
			Deflection:     0.1 * float64(i),
			ZTime:          float64(i) * 10,
			Z:              z,
			LateralTime:    float64(i) * 10,
			Lateral:        -0.2,
			Position:       heka.Position(z),
		})
	}
	return rows
}

func TestNew(t *testing.T) {
	rows := sweepRows()
	c := New(rows, rows[1:10])

	assert.Equal(t, DefaultWidth, c.Width)
	assert.Equal(t, DefaultHeight, c.Height)
	require.Len(t, c.Top.Series, 3)
	assert.Equal(t, []string{"in0", "z", "lat"}, []string{c.Top.Series[0].Name, c.Top.Series[1].Name, c.Top.Series[2].Name})
	assert.Len(t, c.Top.Series[0].X, 20)
	assert.Equal(t, "Time (ms)", c.Top.XLabel)
	assert.Equal(t, "Position (nm)", c.Bottom.XLabel)

	require.Len(t, c.Bottom.Series, 1)
	approach := c.Bottom.Series[0]
	assert.Len(t, approach.X, 9)
	assert.Equal(t, rows[1].Position, approach.X[0])
	assert.Equal(t, rows[1].Deflection, approach.Y[0])
	assert.Nil(t, c.Selection)
	assert.Nil(t, c.Fit)
}

func TestHighlight_Replaces(t *testing.T) {
	c := New(sweepRows(), nil)

	c.Highlight(1, 2)
	c.Highlight(3, 4)

	require.NotNil(t, c.Selection)
	assert.Equal(t, 3.0, c.Selection.Start)
	assert.Equal(t, 4.0, c.Selection.End)
	assert.Equal(t, highlightOpacity, c.Selection.Opacity)
}

func TestAddFit(t *testing.T) {
	rows := sweepRows()
	segment := rows[2:8]
	c := New(rows, rows[1:])

	c.AddFit(segment, fit.Result{Slope: 2, Intercept: 1})

	require.NotNil(t, c.Fit)
	require.Len(t, c.Fit.X, FitSamples)
	assert.Equal(t, segment[0].Position, c.Fit.X[0])
	assert.InDelta(t, segment[5].Position, c.Fit.X[FitSamples-1], 1e-12)
	assert.InDelta(t, 2*c.Fit.X[50]+1, c.Fit.Y[50], 1e-12)

	c.AddFit(nil, fit.Result{})
	assert.Nil(t, c.Fit)
}

func TestClone_IsolatesOverlays(t *testing.T) {
	base := New(sweepRows(), nil)
	view := base.Clone().Highlight(1, 2)

	assert.Nil(t, base.Selection)
	assert.NotNil(t, view.Selection)

	again := view.Clone()
	again.Selection.Start = 9
	assert.Equal(t, 1.0, view.Selection.Start)
}

func TestRender(t *testing.T) {
	rows := sweepRows()
	c := New(rows, rows[1:12]).Highlight(rows[3].Position, rows[6].Position)
	c.AddFit(rows[3:7], fit.Result{Slope: 0.3, Intercept: 0})

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, c, FormatPNG))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, DefaultWidth, img.Bounds().Dx())
		assert.Equal(t, DefaultHeight, img.Bounds().Dy())
	})

	t.Run("png at configured size", func(t *testing.T) {
		sized := c.Clone()
		sized.Width, sized.Height = 1024, 512
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sized, FormatPNG))
		img, err := png.Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, 1024, img.Bounds().Dx())
		assert.Equal(t, 512, img.Bounds().Dy())
	})

	t.Run("svg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, c, FormatSVG))
		assert.True(t, strings.Contains(buf.String(), "<svg"))
	})

	t.Run("unknown", func(t *testing.T) {
		err := Render(&bytes.Buffer{}, c, Format("gif"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("empty sweep", func(t *testing.T) {
		var buf bytes.Buffer
		assert.NoError(t, Render(&buf, New(nil, nil), FormatPNG))
	})
}

func TestFormat_ContentType(t *testing.T) {
	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
}
