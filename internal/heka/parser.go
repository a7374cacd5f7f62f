// Package heka parses the comma separated text exports (.asc) written by the
// HEKA patch clamp software when it records AFM cantilever deflection.
package heka

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	// Gain is the piezo amplifier gain applied to the z drive voltage.
	Gain = 20
	// PiezoCalibration is the scanner travel per volt of drive (nm/V).
	PiezoCalibration = 15.21
	// TimeScale converts exported seconds to milliseconds.
	TimeScale = 1000

	columnCount = 11
)

// Position converts a z drive voltage to scanner position in nm.
func Position(z float64) float64 {
	return Gain * z * PiezoCalibration
}

// Load reads an export and returns the parsed recording together with an
// untouched copy that can be used to restore it later.
func Load(r io.Reader) (working, original *Recording, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read export: %w", err)
	}
	working = Parse(data)
	return working, working.Clone(), nil
}

// Parse turns the raw export text into a Recording. It never fails: lines
// that do not coerce to eleven numbers are dropped.
func Parse(data []byte) *Recording {
	text := strings.TrimSpace(string(data))
	rec := &Recording{}
	if text == "" {
		return rec
	}

	lines := strings.Split(text, "\n")
	var fields [][]string
	for _, line := range lines {
		if isDataLine(line) {
			fields = append(fields, strings.Split(stripSpace(line), ","))
		}
	}
	rec.Stats.TotalLines = len(lines)
	rec.Stats.DataLines = len(fields)

	// Every sweep in the export is framed by two annotation lines and the
	// file carries one more title line.
	nSweeps := (len(lines) - len(fields) - 1) / 2

	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		row, ok := coerce(f)
		if !ok {
			rec.Stats.DroppedRows++
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return rec
	}

	if nSweeps < 1 {
		nSweeps = 1
	}
	if nSweeps > len(rows) {
		nSweeps = len(rows)
	}
	blockSize := len(rows) / nSweeps
	usable := blockSize * nSweeps
	rec.Stats.TrailingRows = len(rows) - usable
	rows = rows[:usable]

	for i := range rows {
		rows[i].Sweep = i / blockSize
		rows[i].CurrentTime *= TimeScale
		rows[i].VoltageTime *= TimeScale
		rows[i].DeflectionTime *= TimeScale
		rows[i].ZTime *= TimeScale
		rows[i].LateralTime *= TimeScale
		rows[i].Position = Position(rows[i].Z)
	}

	rec.Rows = rows
	rec.SweepCount = nSweeps
	return rec
}

// isDataLine reports whether a line carries samples. Any lowercase letter
// marks the line as a header or annotation.
func isDataLine(line string) bool {
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func coerce(fields []string) (Row, bool) {
	if len(fields) != columnCount {
		return Row{}, false
	}
	var v [columnCount]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return Row{}, false
		}
		v[i] = x
	}
	return Row{
		Index:          v[0],
		CurrentTime:    v[1],
		Current:        v[2],
		VoltageTime:    v[3],
		Voltage:        v[4],
		DeflectionTime: v[5],
		Deflection:     v[6],
		ZTime:          v[7],
		Z:              v[8],
		LateralTime:    v[9],
		Lateral:        v[10],
	}, true
}
