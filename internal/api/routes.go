package api

import (
	"net/http"

	"github.com/RMahshie/invols/internal/api/handlers"
	"github.com/RMahshie/invols/internal/processing"
	"github.com/danielgtaylor/huma/v2"
)

// Options tunes route registration
type Options struct {
	// MaxUploadBytes caps the raw export upload. Zero keeps the huma default.
	MaxUploadBytes int64
	ChartWidth     int
	ChartHeight    int
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, processingSvc processing.Service, opts Options) {
	// Initialize handlers
	recordingHandler := handlers.NewRecordingHandler(processingSvc, opts.ChartWidth, opts.ChartHeight)

	// Session routes
	huma.Register(api, huma.Operation{
		OperationID:  "uploadRecording",
		Method:       http.MethodPost,
		Path:         "/api/recordings",
		Summary:      "Upload a HEKA export",
		Description:  "Parses the raw export in the request body and opens a session for it",
		Tags:         []string{"Recordings"},
		MaxBodyBytes: opts.MaxUploadBytes,
	}, recordingHandler.UploadRecording)

	huma.Register(api, huma.Operation{
		OperationID: "importRecording",
		Method:      http.MethodPost,
		Path:        "/api/recordings/import",
		Summary:     "Import an export from the share",
		Description: "Downloads an export from the instrument share and opens a session for it",
		Tags:        []string{"Recordings"},
	}, recordingHandler.ImportRecording)

	huma.Register(api, huma.Operation{
		OperationID: "listExports",
		Method:      http.MethodGet,
		Path:        "/api/exports",
		Summary:     "List exports on the share",
		Description: "Lists export keys available on the instrument share",
		Tags:        []string{"Recordings"},
	}, recordingHandler.ListExports)

	huma.Register(api, huma.Operation{
		OperationID: "getRecording",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}",
		Summary:     "Get recording summary",
		Description: "Returns row and sweep counts and parser statistics for a session",
		Tags:        []string{"Recordings"},
	}, recordingHandler.GetRecording)

	huma.Register(api, huma.Operation{
		OperationID:   "closeRecording",
		Method:        http.MethodDelete,
		Path:          "/api/recordings/{id}",
		Summary:       "Close a recording session",
		Tags:          []string{"Recordings"},
		DefaultStatus: http.StatusNoContent,
	}, recordingHandler.CloseRecording)

	huma.Register(api, huma.Operation{
		OperationID: "resetRecording",
		Method:      http.MethodPost,
		Path:        "/api/recordings/{id}/reset",
		Summary:     "Reset the working table",
		Description: "Restores the working table to the original parse and clears cached charts",
		Tags:        []string{"Recordings"},
	}, recordingHandler.ResetRecording)

	// Table routes
	huma.Register(api, huma.Operation{
		OperationID: "getTable",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}/table",
		Summary:     "Get table rows",
		Description: "Returns the first or last rows, or the whole working table",
		Tags:        []string{"Table"},
	}, recordingHandler.GetTable)

	huma.Register(api, huma.Operation{
		OperationID: "downloadTable",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}/table.xlsx",
		Summary:     "Download the table",
		Description: "Returns the working table as an Excel workbook",
		Tags:        []string{"Table"},
	}, recordingHandler.DownloadTable)

	// Sweep routes
	huma.Register(api, huma.Operation{
		OperationID: "dropSweep",
		Method:      http.MethodDelete,
		Path:        "/api/recordings/{id}/sweeps/{sweep}",
		Summary:     "Discard a sweep",
		Description: "Removes a sweep from the working table",
		Tags:        []string{"Sweeps"},
	}, recordingHandler.DropSweep)

	huma.Register(api, huma.Operation{
		OperationID: "getChart",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}/sweeps/{sweep}/chart",
		Summary:     "Get sweep chart",
		Description: "Returns the two panel chart for a sweep with the window highlighted",
		Tags:        []string{"Sweeps"},
	}, recordingHandler.GetChart)

	huma.Register(api, huma.Operation{
		OperationID: "renderChart",
		Method:      http.MethodGet,
		Path:        "/api/recordings/{id}/sweeps/{sweep}/render",
		Summary:     "Render sweep chart",
		Description: "Draws the sweep chart as a PNG or SVG image",
		Tags:        []string{"Sweeps"},
	}, recordingHandler.RenderChart)

	huma.Register(api, huma.Operation{
		OperationID: "fitSweep",
		Method:      http.MethodPost,
		Path:        "/api/recordings/{id}/sweeps/{sweep}/fit",
		Summary:     "Fit sensitivity",
		Description: "Fits a line to the windowed approach segment and returns the sensitivity in nm/V",
		Tags:        []string{"Sweeps"},
	}, recordingHandler.FitSweep)
}
