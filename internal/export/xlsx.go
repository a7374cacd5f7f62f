// Package export writes the working table of a recording to spreadsheet files.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/RMahshie/invols/internal/heka"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the table.
const SheetName = "Recording"

// ContentTypeXLSX is the MIME type of the workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrTooManyRows is returned when the table does not fit on one worksheet.
var ErrTooManyRows = errors.New("table exceeds the spreadsheet row limit")

// maxRows leaves room for the header row.
var maxRows = excelize.TotalRows - 1

// Headers are the column titles, in column order.
var Headers = []interface{}{
	"index", "ti", "i", "tv", "v", "tin0", "in0", "tz", "z", "tlat", "lat", "sweep", "position",
}

// WriteXLSX writes rows as a single sheet workbook with a header row.
func WriteXLSX(w io.Writer, rows []heka.Row) error {
	if len(rows) > maxRows {
		return fmt.Errorf("%w: %d rows, at most %d", ErrTooManyRows, len(rows), maxRows)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.Index, r.CurrentTime, r.Current, r.VoltageTime, r.Voltage,
			r.DeflectionTime, r.Deflection, r.ZTime, r.Z, r.LateralTime, r.Lateral,
			r.Sweep, r.Position,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
