package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RMahshie/invols/internal/export"
	"github.com/RMahshie/invols/internal/heka"
	"github.com/RMahshie/invols/internal/metrics"
	"github.com/RMahshie/invols/internal/repository"
	"github.com/RMahshie/invols/internal/storage"
	"github.com/RMahshie/invols/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SourceUpload = "upload"
	SourceImport = "import"

	// TableRows is the row count of the head and tail displays
	TableRows = 10
)

var (
	// ErrEmptyUpload is returned when no export content was sent
	ErrEmptyUpload = errors.New("no export content uploaded")
	// ErrStorageDisabled is returned when no export share is configured
	ErrStorageDisabled = errors.New("export share is not configured")
	// ErrInvalidDisplay is returned for an unknown table display mode
	ErrInvalidDisplay = errors.New("invalid table display")
)

// Service runs the sensitivity pipeline for recording sessions
type Service interface {
	Load(ctx context.Context, fileName string, data []byte) (*repository.Session, error)
	Import(ctx context.Context, key string) (*repository.Session, error)
	Exports(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, id string) (*repository.Session, error)
	Close(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) (*repository.Session, error)
	DropSweep(ctx context.Context, id string, sweep int) (*repository.Session, error)
	Summary(ctx context.Context, session *repository.Session) models.RecordingSummary
	Table(ctx context.Context, id string, display string) (*models.TableResponseBody, error)
	ExportTable(ctx context.Context, id string, w io.Writer) error
	Analyze(ctx context.Context, id string, sweep int, window *models.FitWindow, doFit bool) (*View, error)
}

type processingService struct {
	repository repository.SessionRepository
	store      storage.ExportStore
}

// NewProcessingService creates the service. store may be nil when no export
// share is configured.
func NewProcessingService(repo repository.SessionRepository, store storage.ExportStore) Service {
	return &processingService{
		repository: repo,
		store:      store,
	}
}

func (s *processingService) Load(ctx context.Context, fileName string, data []byte) (*repository.Session, error) {
	return s.open(ctx, fileName, SourceUpload, data)
}

func (s *processingService) Import(ctx context.Context, key string) (*repository.Session, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	data, err := s.store.DownloadFile(ctx, key)
	if err != nil {
		metrics.ObserveParse(metrics.OutcomeError, 0)
		return nil, fmt.Errorf("failed to import %s: %w", key, err)
	}
	return s.open(ctx, key, SourceImport, data)
}

func (s *processingService) open(ctx context.Context, fileName, source string, data []byte) (*repository.Session, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		metrics.ObserveParse(metrics.OutcomeError, 0)
		return nil, ErrEmptyUpload
	}

	working, original, err := heka.Load(bytes.NewReader(data))
	if err != nil {
		metrics.ObserveParse(metrics.OutcomeError, 0)
		return nil, err
	}
	metrics.ObserveParse(metrics.OutcomeSuccess, working.Stats.DroppedRows+working.Stats.TrailingRows)

	session := repository.NewSession(uuid.New().String(), fileName, source, working, original)
	if err := s.repository.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	metrics.SetSessions(s.repository.Len())

	log.Info().
		Str("sessionID", session.ID).
		Str("fileName", fileName).
		Str("source", source).
		Int("rows", working.Len()).
		Int("sweeps", working.SweepCount).
		Int("droppedRows", working.Stats.DroppedRows).
		Int("trailingRows", working.Stats.TrailingRows).
		Msg("Recording loaded")
	return session, nil
}

func (s *processingService) Exports(ctx context.Context, prefix string) ([]string, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.ListFiles(ctx, prefix)
}

func (s *processingService) Get(ctx context.Context, id string) (*repository.Session, error) {
	return s.repository.Get(ctx, id)
}

func (s *processingService) Close(ctx context.Context, id string) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	metrics.SetSessions(s.repository.Len())
	return nil
}

func (s *processingService) Reset(ctx context.Context, id string) (*repository.Session, error) {
	session, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Reset()
	log.Info().Str("sessionID", id).Msg("Recording reset to original parse")
	return session, nil
}

func (s *processingService) DropSweep(ctx context.Context, id string, sweep int) (*repository.Session, error) {
	session, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = session.Update(func(rec *heka.Recording) error {
		if !rec.HasSweep(sweep) {
			return fmt.Errorf("%w: %d", ErrSweepNotFound, sweep)
		}
		removed := rec.DropSweep(sweep)
		log.Info().Str("sessionID", id).Int("sweep", sweep).Int("rows", removed).Msg("Sweep discarded")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *processingService) Summary(ctx context.Context, session *repository.Session) models.RecordingSummary {
	summary := models.RecordingSummary{
		ID:        session.ID,
		FileName:  session.FileName,
		Source:    session.Source,
		Modified:  session.Modified(),
		CreatedAt: session.CreatedAt,
	}
	_ = session.View(func(rec *heka.Recording) error {
		summary.Rows = rec.Len()
		summary.SweepCount = rec.SweepCount
		summary.Sweeps = rec.Sweeps()
		summary.Stats = rec.Stats
		return nil
	})
	if summary.Sweeps == nil {
		summary.Sweeps = []int{}
	}
	return summary
}

func (s *processingService) Table(ctx context.Context, id string, display string) (*models.TableResponseBody, error) {
	session, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	body := &models.TableResponseBody{Display: display, Rows: []heka.Row{}}
	err = session.View(func(rec *heka.Recording) error {
		body.Total = rec.Len()
		var rows []heka.Row
		switch display {
		case "", "none":
			body.Display = "none"
		case "head":
			rows = rec.Head(TableRows)
		case "tail":
			rows = rec.Tail(TableRows)
		case "all":
			rows = rec.Rows
		default:
			return fmt.Errorf("%w: %q", ErrInvalidDisplay, display)
		}
		body.Rows = append(body.Rows, rows...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *processingService) ExportTable(ctx context.Context, id string, w io.Writer) error {
	session, err := s.repository.Get(ctx, id)
	if err != nil {
		return err
	}
	return session.View(func(rec *heka.Recording) error {
		return export.WriteXLSX(w, rec.Rows)
	})
}

func (s *processingService) Analyze(ctx context.Context, id string, sweep int, window *models.FitWindow, doFit bool) (*View, error) {
	session, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	base, err := session.Sweep(sweep, func(rec *heka.Recording) (*repository.CachedSweep, error) {
		return BuildSweep(rec, sweep)
	})
	if err != nil {
		return nil, err
	}
	if !doFit {
		return Apply(base, window, false)
	}

	start := time.Now()
	view, err := Apply(base, window, true)
	if err != nil {
		metrics.ObserveFit(time.Since(start), metrics.OutcomeError)
		log.Warn().Err(err).Str("sessionID", id).Int("sweep", sweep).Msg("Fit rejected")
		return nil, err
	}
	metrics.ObserveFit(time.Since(start), metrics.OutcomeSuccess)

	log.Info().
		Str("sessionID", id).
		Int("sweep", sweep).
		Float64("start", window.Start).
		Float64("end", window.End).
		Int("points", view.Fit.Points).
		Float64("slope", view.Fit.Slope).
		Float64("sensitivity", view.Fit.Sensitivity()).
		Msg("Sensitivity fitted")
	return view, nil
}
