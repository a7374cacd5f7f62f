package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/RMahshie/invols/internal/chart"
	"github.com/RMahshie/invols/internal/export"
	"github.com/RMahshie/invols/internal/processing"
	"github.com/RMahshie/invols/internal/repository"
	"github.com/RMahshie/invols/internal/storage"
	"github.com/RMahshie/invols/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmptyUploadMessage is shown when no export content was sent
const EmptyUploadMessage = "Upload a file to run the app..."

// RecordingHandler handles recording session HTTP requests
type RecordingHandler struct {
	processingSvc processing.Service
	chartWidth    int
	chartHeight   int
}

// NewRecordingHandler creates a new recording handler. Zero chart dimensions
// keep the chart defaults.
func NewRecordingHandler(processingSvc processing.Service, chartWidth, chartHeight int) *RecordingHandler {
	if chartWidth <= 0 || chartHeight <= 0 {
		chartWidth, chartHeight = chart.DefaultWidth, chart.DefaultHeight
	}
	return &RecordingHandler{
		processingSvc: processingSvc,
		chartWidth:    chartWidth,
		chartHeight:   chartHeight,
	}
}

// UploadRecording parses an uploaded export and opens a session for it
func (h *RecordingHandler) UploadRecording(ctx context.Context, req *models.UploadRecordingRequest) (*models.RecordingResponse, error) {
	log.Info().Str("fileName", req.FileName).Int("bytes", len(req.RawBody)).Msg("Upload received")

	if len(req.RawBody) > 0 {
		if err := storage.ValidateKey(req.FileName); err != nil {
			return nil, huma.Error400BadRequest("File type not supported. Please upload a HEKA .asc export.", err)
		}
	}

	session, err := h.processingSvc.Load(ctx, req.FileName, req.RawBody)
	if err != nil {
		return nil, h.fail(err, "Failed to load recording")
	}
	return &models.RecordingResponse{Body: h.processingSvc.Summary(ctx, session)}, nil
}

// ImportRecording loads an export from the instrument share
func (h *RecordingHandler) ImportRecording(ctx context.Context, req *models.ImportRecordingRequest) (*models.RecordingResponse, error) {
	log.Info().Str("key", req.Body.Key).Msg("Import request received")
	if err := storage.ValidateKey(req.Body.Key); err != nil {
		return nil, huma.Error400BadRequest("File type not supported. Please choose a HEKA .asc export.", err)
	}

	session, err := h.processingSvc.Import(ctx, req.Body.Key)
	if err != nil {
		return nil, h.fail(err, "Failed to import recording")
	}
	return &models.RecordingResponse{Body: h.processingSvc.Summary(ctx, session)}, nil
}

// ListExports lists exports on the instrument share
func (h *RecordingHandler) ListExports(ctx context.Context, req *models.ListExportsRequest) (*models.ListExportsResponse, error) {
	keys, err := h.processingSvc.Exports(ctx, req.Prefix)
	if err != nil {
		return nil, h.fail(err, "Failed to list exports")
	}
	if keys == nil {
		keys = []string{}
	}
	resp := &models.ListExportsResponse{}
	resp.Body.Keys = keys
	return resp, nil
}

// GetRecording returns the session summary
func (h *RecordingHandler) GetRecording(ctx context.Context, req *models.RecordingRequest) (*models.RecordingResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	session, err := h.processingSvc.Get(ctx, req.ID)
	if err != nil {
		return nil, h.fail(err, "Failed to get recording")
	}
	return &models.RecordingResponse{Body: h.processingSvc.Summary(ctx, session)}, nil
}

// CloseRecording drops a session
func (h *RecordingHandler) CloseRecording(ctx context.Context, req *models.RecordingRequest) (*models.EmptyResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	if err := h.processingSvc.Close(ctx, req.ID); err != nil {
		return nil, h.fail(err, "Failed to close recording")
	}
	log.Info().Str("sessionID", req.ID).Msg("Session closed")
	return &models.EmptyResponse{}, nil
}

// ResetRecording restores the working table to the original parse
func (h *RecordingHandler) ResetRecording(ctx context.Context, req *models.RecordingRequest) (*models.RecordingResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	session, err := h.processingSvc.Reset(ctx, req.ID)
	if err != nil {
		return nil, h.fail(err, "Failed to reset recording")
	}
	return &models.RecordingResponse{Body: h.processingSvc.Summary(ctx, session)}, nil
}

// GetTable returns the head, the tail, or all of the working table
func (h *RecordingHandler) GetTable(ctx context.Context, req *models.TableRequest) (*models.TableResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	body, err := h.processingSvc.Table(ctx, req.ID, req.Display)
	if err != nil {
		return nil, h.fail(err, "Failed to read table")
	}
	return &models.TableResponse{Body: *body}, nil
}

// DownloadTable returns the working table as a spreadsheet
func (h *RecordingHandler) DownloadTable(ctx context.Context, req *models.RecordingRequest) (*models.FileResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	session, err := h.processingSvc.Get(ctx, req.ID)
	if err != nil {
		return nil, h.fail(err, "Failed to get recording")
	}

	var buf bytes.Buffer
	if err := h.processingSvc.ExportTable(ctx, req.ID, &buf); err != nil {
		return nil, h.fail(err, "Failed to export table")
	}

	name := strings.TrimSuffix(path.Base(session.FileName), path.Ext(session.FileName)) + ".xlsx"
	log.Info().Str("sessionID", req.ID).Str("file", name).Int("bytes", buf.Len()).Msg("Table exported")
	return &models.FileResponse{
		ContentType:        export.ContentTypeXLSX,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", name),
		Body:               buf.Bytes(),
	}, nil
}

// DropSweep discards a sweep from the working table
func (h *RecordingHandler) DropSweep(ctx context.Context, req *models.SweepRequest) (*models.RecordingResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	session, err := h.processingSvc.DropSweep(ctx, req.ID, req.Sweep)
	if err != nil {
		return nil, h.fail(err, "Failed to drop sweep")
	}
	return &models.RecordingResponse{Body: h.processingSvc.Summary(ctx, session)}, nil
}

// GetChart returns the sweep chart with the entered window highlighted
func (h *RecordingHandler) GetChart(ctx context.Context, req *models.ChartRequest) (*models.ChartResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	window, err := processing.ParseWindow(req.Start, req.End)
	if err != nil {
		return nil, h.fail(err, "Invalid window")
	}

	view, err := h.processingSvc.Analyze(ctx, req.ID, req.Sweep, window, false)
	if err != nil {
		return nil, h.fail(err, "Failed to build chart")
	}
	h.size(view.Chart)

	return &models.ChartResponse{
		Body: models.ChartResponseBody{
			Sweep:        view.Sweep,
			ApproachRows: len(view.Approach),
			RetractRows:  len(view.Retract),
			FitEnabled:   view.FitEnabled(),
			Window:       view.Window,
			Chart:        view.Chart,
		},
	}, nil
}

// RenderChart draws the sweep chart as an image
func (h *RecordingHandler) RenderChart(ctx context.Context, req *models.RenderRequest) (*models.ImageResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	window, err := processing.ParseWindow(req.Start, req.End)
	if err != nil {
		return nil, h.fail(err, "Invalid window")
	}

	view, err := h.processingSvc.Analyze(ctx, req.ID, req.Sweep, window, req.Fit)
	if err != nil {
		return nil, h.fail(err, "Failed to build chart")
	}
	h.size(view.Chart)

	format := chart.Format(req.Format)
	var buf bytes.Buffer
	if err := chart.Render(&buf, view.Chart, format); err != nil {
		if errors.Is(err, chart.ErrUnknownFormat) {
			return nil, huma.Error400BadRequest("Unsupported image format", err)
		}
		return nil, huma.Error500InternalServerError("Failed to render chart", err)
	}
	return &models.ImageResponse{
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// FitSweep fits the entered window of the approach segment and reports the
// sensitivity
func (h *RecordingHandler) FitSweep(ctx context.Context, req *models.FitRequest) (*models.FitResponse, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	log.Info().Str("sessionID", req.ID).Int("sweep", req.Sweep).Str("start", req.Body.Start).Str("end", req.Body.End).Msg("Fit request received")

	window, err := processing.ParseWindow(req.Body.Start, req.Body.End)
	if err != nil {
		return nil, h.fail(err, "Invalid window")
	}

	view, err := h.processingSvc.Analyze(ctx, req.ID, req.Sweep, window, true)
	if err != nil {
		return nil, h.fail(err, "Fit failed")
	}
	h.size(view.Chart)

	res := view.Fit
	result := models.FitResult{
		Sweep:     view.Sweep,
		Window:    *view.Window,
		Points:    res.Points,
		Slope:     res.Slope,
		Intercept: res.Intercept,
		Display:   fmt.Sprintf("Sensitivity: %.2f nm/V", res.Sensitivity()),
		Chart:     view.Chart,
	}
	if s := res.Sensitivity(); !math.IsInf(s, 0) && !math.IsNaN(s) {
		result.Sensitivity = &s
	}
	if finite(res.Covariance) {
		result.Covariance = [][]float64{
			{res.Covariance[0][0], res.Covariance[0][1]},
			{res.Covariance[1][0], res.Covariance[1][1]},
		}
	}
	return &models.FitResponse{Body: result}, nil
}

func (h *RecordingHandler) size(c *chart.Chart) {
	c.Width = h.chartWidth
	c.Height = h.chartHeight
}

// fail maps service errors onto HTTP errors
func (h *RecordingHandler) fail(err error, msg string) error {
	switch {
	case errors.Is(err, processing.ErrEmptyUpload):
		return huma.Error400BadRequest(EmptyUploadMessage, err)
	case errors.Is(err, storage.ErrInvalidKey):
		return huma.Error400BadRequest("File type not supported. Please choose a HEKA .asc export.", err)
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound("Recording not found", err)
	case errors.Is(err, processing.ErrSweepNotFound):
		return huma.Error404NotFound("Sweep not found", err)
	case errors.Is(err, processing.ErrInvalidWindow),
		errors.Is(err, processing.ErrInvalidDisplay):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errors.Is(err, export.ErrTooManyRows):
		return huma.Error422UnprocessableEntity("Table is too large for a spreadsheet. Discard sweeps and try again.", err)
	case errors.Is(err, processing.ErrFit):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errors.Is(err, processing.ErrStorageDisabled):
		return huma.Error503ServiceUnavailable("Export share is not configured", err)
	}
	log.Error().Err(err).Msg(msg)
	return huma.Error500InternalServerError(msg, err)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return huma.Error400BadRequest("Invalid recording ID", err)
	}
	return nil
}

func finite(cov [2][2]float64) bool {
	for _, row := range cov {
		for _, v := range row {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return false
			}
		}
	}
	return true
}
