package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classtrack/approval-api/internal/models"
	"github.com/classtrack/approval-api/pkg/export"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

type honorRollStub struct {
	rows  []models.HonorRollRow
	calls int
}

func (h *honorRollStub) HonorRoll(ctx context.Context, academicLevelID, schoolYear string) ([]models.HonorRollRow, error) {
	h.calls++
	return h.rows, nil
}

type memoryCacheStub struct {
	entries map[string][]byte
}

func newMemoryCacheStub() *memoryCacheStub {
	return &memoryCacheStub{entries: make(map[string][]byte)}
}

func (m *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = payload
	return nil
}

func honorRollFixture() []models.HonorRollRow {
	return []models.HonorRollRow{
		{StudentID: "s1", StudentName: "Alice Reyes", HonorType: "With High Honors", GPA: 96.5},
		{StudentID: "s2", StudentName: "Ben Cruz", HonorType: "With Honors", GPA: 91.25},
	}
}

func TestReportHonorRollCaches(t *testing.T) {
	honors := &honorRollStub{rows: honorRollFixture()}
	cache := newMemoryCacheStub()
	svc := NewReportService(honors, cache, export.NewCSVExporter(), export.NewPDFExporter(), time.Minute, nil)

	rows, cached, err := svc.HonorRoll(context.Background(), "l1", "2025-2026")
	require.NoError(t, err)
	require.False(t, cached)
	require.Len(t, rows, 2)

	rows, cached, err = svc.HonorRoll(context.Background(), "l1", "2025-2026")
	require.NoError(t, err)
	require.True(t, cached)
	require.Len(t, rows, 2)
	require.Equal(t, 1, honors.calls)
}

func TestReportHonorRollRequiresKey(t *testing.T) {
	svc := NewReportService(&honorRollStub{}, nil, export.NewCSVExporter(), export.NewPDFExporter(), time.Minute, nil)

	_, _, err := svc.HonorRoll(context.Background(), "", "2025-2026")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportExportCSV(t *testing.T) {
	honors := &honorRollStub{rows: honorRollFixture()}
	svc := NewReportService(honors, nil, export.NewCSVExporter(), export.NewPDFExporter(), time.Minute, nil)

	payload, err := svc.ExportCSV(context.Background(), "l1", "2025-2026")
	require.NoError(t, err)
	require.Contains(t, string(payload), "Student,Honor,GPA")
	require.Contains(t, string(payload), "Alice Reyes,With High Honors,96.50")
}

func TestReportExportPDF(t *testing.T) {
	honors := &honorRollStub{rows: honorRollFixture()}
	svc := NewReportService(honors, nil, export.NewCSVExporter(), export.NewPDFExporter(), time.Minute, nil)

	payload, err := svc.ExportPDF(context.Background(), "l1", "2025-2026")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
