package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/classtrack/approval-api/internal/models"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
	"github.com/classtrack/approval-api/pkg/export"
)

type honorRollReader interface {
	HonorRoll(ctx context.Context, academicLevelID, schoolYear string) ([]models.HonorRollRow, error)
}

type projectionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type tabularExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportService builds the honor-roll projection and its CSV/PDF exports.
// The projection may be cached briefly; the certificate gate never goes
// through here.
type ReportService struct {
	honors   honorRollReader
	cache    projectionCache
	csv      tabularExporter
	pdf      pdfExporter
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(honors honorRollReader, cache projectionCache, csv tabularExporter, pdf pdfExporter, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReportService{honors: honors, cache: cache, csv: csv, pdf: pdf, cacheTTL: cacheTTL, logger: logger}
}

// HonorRoll returns approved honors for a level and year, with a short-TTL
// cache. The bool reports whether the cache served the rows.
func (s *ReportService) HonorRoll(ctx context.Context, academicLevelID, schoolYear string) ([]models.HonorRollRow, bool, error) {
	if academicLevelID == "" || schoolYear == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "academicLevelId and schoolYear are required")
	}
	key := fmt.Sprintf("reports:honor-roll:%s:%s", academicLevelID, schoolYear)
	if s.cache != nil {
		var cached []models.HonorRollRow
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, true, nil
		}
	}
	rows, err := s.honors.HonorRoll(ctx, academicLevelID, schoolYear)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load honor roll")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache honor roll", zap.Error(err))
		}
	}
	return rows, false, nil
}

// ExportCSV renders the honor roll as CSV bytes.
func (s *ReportService) ExportCSV(ctx context.Context, academicLevelID, schoolYear string) ([]byte, error) {
	rows, _, err := s.HonorRoll(ctx, academicLevelID, schoolYear)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(honorRollDataset(rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// ExportPDF renders the honor roll as a tabular PDF.
func (s *ReportService) ExportPDF(ctx context.Context, academicLevelID, schoolYear string) ([]byte, error) {
	rows, _, err := s.HonorRoll(ctx, academicLevelID, schoolYear)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Honor Roll %s", schoolYear)
	payload, err := s.pdf.Render(honorRollDataset(rows), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

func honorRollDataset(rows []models.HonorRollRow) export.Dataset {
	data := export.Dataset{Headers: []string{"Student", "Honor", "GPA"}}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Student": row.StudentName,
			"Honor":   row.HonorType,
			"GPA":     strconv.FormatFloat(row.GPA, 'f', 2, 64),
		})
	}
	return data
}
