package models

import (
	"time"

	"github.com/RMahshie/invols/internal/chart"
	"github.com/RMahshie/invols/internal/heka"
)

// RecordingSummary describes an open recording session
type RecordingSummary struct {
	ID         string          `json:"id" doc:"Session identifier"`
	FileName   string          `json:"file_name" doc:"Name of the uploaded export"`
	Source     string          `json:"source" enum:"upload,import" doc:"Where the export came from"`
	Rows       int             `json:"rows" doc:"Rows in the working table"`
	SweepCount int             `json:"sweep_count" doc:"Sweeps found in the original export"`
	Sweeps     []int           `json:"sweeps" doc:"Sweeps available for analysis"`
	Modified   bool            `json:"modified" doc:"Whether the working table differs from the original parse"`
	Stats      heka.ParseStats `json:"stats" doc:"Parser statistics"`
	CreatedAt  time.Time       `json:"created_at" doc:"Session creation timestamp"`
}

// RecordingResponse wraps a session summary
type RecordingResponse struct {
	Body RecordingSummary
}

// UploadRecordingRequest carries a raw HEKA export in the request body
type UploadRecordingRequest struct {
	FileName string `query:"filename" required:"true" doc:"Original file name (.asc, .csv or .txt)"`
	RawBody  []byte `required:"false"`
}

// ImportRecordingRequest loads an export from the instrument share
type ImportRecordingRequest struct {
	Body struct {
		Key string `json:"key" minLength:"1" required:"true" doc:"Object key of the export in the share bucket"`
	}
}

// ListExportsRequest lists exports available on the instrument share
type ListExportsRequest struct {
	Prefix string `query:"prefix" doc:"Only list keys starting with this prefix"`
}

// ListExportsResponse holds the keys found on the share
type ListExportsResponse struct {
	Body struct {
		Keys []string `json:"keys" doc:"Export object keys"`
	}
}

// RecordingRequest addresses one session
type RecordingRequest struct {
	ID string `path:"id" doc:"Session ID"`
}

// TableRequest asks for part of the working table
type TableRequest struct {
	ID      string `path:"id" doc:"Session ID"`
	Display string `query:"display" enum:"none,head,tail,all" default:"none" doc:"Which rows to return"`
}

// TableResponseBody is the body of the table response
type TableResponseBody struct {
	Display string     `json:"display" doc:"Display mode used"`
	Total   int        `json:"total" doc:"Rows in the working table"`
	Rows    []heka.Row `json:"rows" doc:"Selected rows"`
}

// TableResponse returns table rows
type TableResponse struct {
	Body TableResponseBody
}

// FileResponse streams a generated file
type FileResponse struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// SweepRequest addresses one sweep of a session
type SweepRequest struct {
	ID    string `path:"id" doc:"Session ID"`
	Sweep int    `path:"sweep" minimum:"0" doc:"Sweep number"`
}

// ChartRequest asks for the sweep chart with an optional highlighted window
type ChartRequest struct {
	ID    string `path:"id" doc:"Session ID"`
	Sweep int    `path:"sweep" minimum:"0" doc:"Sweep number"`
	Start string `query:"start" doc:"Window start in nm (integer, empty when unset)"`
	End   string `query:"end" doc:"Window end in nm (integer, empty when unset)"`
}

// ChartResponseBody is the body of the chart response
type ChartResponseBody struct {
	Sweep        int          `json:"sweep" doc:"Sweep number"`
	ApproachRows int          `json:"approach_rows" doc:"Rows in the approach segment"`
	RetractRows  int          `json:"retract_rows" doc:"Rows in the retract segment"`
	FitEnabled   bool         `json:"fit_enabled" doc:"Whether the approach segment has enough rows to fit"`
	Window       *FitWindow   `json:"window,omitempty" doc:"Highlighted window"`
	Chart        *chart.Chart `json:"chart" doc:"Chart description"`
}

// ChartResponse returns a chart description
type ChartResponse struct {
	Body ChartResponseBody
}

// RenderRequest asks for the sweep chart as an image
type RenderRequest struct {
	ID     string `path:"id" doc:"Session ID"`
	Sweep  int    `path:"sweep" minimum:"0" doc:"Sweep number"`
	Start  string `query:"start" doc:"Window start in nm (integer, empty when unset)"`
	End    string `query:"end" doc:"Window end in nm (integer, empty when unset)"`
	Fit    bool   `query:"fit" doc:"Overlay the fitted line for the window"`
	Format string `query:"format" enum:"png,svg" default:"png" doc:"Image format"`
}

// ImageResponse carries a rendered chart
type ImageResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// FitRequest runs the linear fit on a window of the approach segment
type FitRequest struct {
	ID    string `path:"id" doc:"Session ID"`
	Sweep int    `path:"sweep" minimum:"0" doc:"Sweep number"`
	Body  struct {
		Start string `json:"start" required:"true" doc:"Window start in nm (integer)"`
		End   string `json:"end" required:"true" doc:"Window end in nm (integer)"`
	}
}

// FitResult is the outcome of a sensitivity fit
type FitResult struct {
	Sweep       int          `json:"sweep" doc:"Sweep number"`
	Window      FitWindow    `json:"window" doc:"Fitted window"`
	Points      int          `json:"points" doc:"Rows inside the window"`
	Slope       float64      `json:"slope" doc:"Fitted slope (V/nm)"`
	Intercept   float64      `json:"intercept" doc:"Fitted intercept (V)"`
	Sensitivity *float64     `json:"sensitivity,omitempty" doc:"Inverse slope (nm/V); absent when the slope is zero"`
	Display     string       `json:"display" example:"Sensitivity: 52.31 nm/V" doc:"Rounded human-readable result"`
	Covariance  [][]float64  `json:"covariance,omitempty" doc:"Parameter covariance; absent when undefined"`
	Chart       *chart.Chart `json:"chart" doc:"Chart with highlight and fitted line"`
}

// FitResponse returns a fit result
type FitResponse struct {
	Body FitResult
}
