package heka

// Row is one sample of a HEKA .asc export after unit conversion.
// Times are in milliseconds, values in volts, Position in nanometres.
type Row struct {
	Index          float64 `json:"index" doc:"Sample index from the export"`
	CurrentTime    float64 `json:"ti" doc:"Current channel time (ms)"`
	Current        float64 `json:"i" doc:"Current channel value"`
	VoltageTime    float64 `json:"tv" doc:"Voltage channel time (ms)"`
	Voltage        float64 `json:"v" doc:"Voltage channel value"`
	DeflectionTime float64 `json:"tin0" doc:"Deflection channel time (ms)"`
	Deflection     float64 `json:"in0" doc:"Deflection channel value (V)"`
	ZTime          float64 `json:"tz" doc:"Z piezo channel time (ms)"`
	Z              float64 `json:"z" doc:"Z piezo drive voltage (V)"`
	LateralTime    float64 `json:"tlat" doc:"Lateral channel time (ms)"`
	Lateral        float64 `json:"lat" doc:"Lateral channel value (V)"`
	Sweep          int     `json:"sweep" doc:"Sweep the row belongs to"`
	Position       float64 `json:"position" doc:"Z piezo position (nm)"`
}

// ParseStats describes how the raw text was turned into rows.
type ParseStats struct {
	TotalLines   int `json:"total_lines" doc:"Lines in the export after trimming"`
	DataLines    int `json:"data_lines" doc:"Lines classified as data"`
	DroppedRows  int `json:"dropped_rows" doc:"Data lines that failed numeric coercion"`
	TrailingRows int `json:"trailing_rows" doc:"Rows dropped to keep sweep blocks equal"`
}

// Recording is a parsed export. Rows are ordered and partitioned into
// SweepCount contiguous blocks of equal size.
type Recording struct {
	Rows       []Row
	SweepCount int
	Stats      ParseStats
}

// Len returns the number of rows.
func (r *Recording) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Clone returns a deep copy that shares no memory with r.
func (r *Recording) Clone() *Recording {
	if r == nil {
		return nil
	}
	rows := make([]Row, len(r.Rows))
	copy(rows, r.Rows)
	return &Recording{Rows: rows, SweepCount: r.SweepCount, Stats: r.Stats}
}

// Sweeps returns the distinct sweep numbers present, in order.
func (r *Recording) Sweeps() []int {
	var sweeps []int
	for i, row := range r.Rows {
		if i == 0 || row.Sweep != r.Rows[i-1].Sweep {
			sweeps = append(sweeps, row.Sweep)
		}
	}
	return sweeps
}

// HasSweep reports whether any row belongs to sweep n.
func (r *Recording) HasSweep(n int) bool {
	for _, row := range r.Rows {
		if row.Sweep == n {
			return true
		}
	}
	return false
}

// Sweep returns a copy of the rows belonging to sweep n.
func (r *Recording) Sweep(n int) []Row {
	var rows []Row
	for _, row := range r.Rows {
		if row.Sweep == n {
			rows = append(rows, row)
		}
	}
	return rows
}

// Head returns up to the first n rows.
func (r *Recording) Head(n int) []Row {
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return r.Rows[:n]
}

// Tail returns up to the last n rows.
func (r *Recording) Tail(n int) []Row {
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return r.Rows[len(r.Rows)-n:]
}

// Filter keeps the rows for which keep returns true, editing r in place.
// It returns the number of rows removed.
func (r *Recording) Filter(keep func(Row) bool) int {
	kept := r.Rows[:0]
	for _, row := range r.Rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	removed := len(r.Rows) - len(kept)
	r.Rows = kept
	return removed
}

// DropSweep removes every row of sweep n in place.
func (r *Recording) DropSweep(n int) int {
	return r.Filter(func(row Row) bool { return row.Sweep != n })
}
