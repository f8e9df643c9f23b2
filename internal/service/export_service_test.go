package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type exportStoreStub struct {
	rows    []models.SwapReportRow
	maxRows int
}

func (s *exportStoreStub) SwapReport(ctx context.Context, maxRows int) ([]models.SwapReportRow, error) {
	s.maxRows = maxRows
	return s.rows, nil
}

func TestExportServiceSwapReportCSV(t *testing.T) {
	resolved := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	store := &exportStoreStub{rows: []models.SwapReportRow{
		{
			ID:             "swap-1",
			RequesterEmail: "alice@example.com",
			RecipientEmail: "bob@example.com",
			SkillOffered:   "Spanish",
			SkillWanted:    "Guitar",
			Status:         models.SwapStatusCompleted,
			CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			ResolvedAt:     &resolved,
		},
	}}
	svc := NewExportService(store, nil, 500)

	result, err := svc.SwapReport(context.Background(), ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 500, store.maxRows)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Data)
	assert.Contains(t, body, "alice@example.com")
	assert.Contains(t, body, "completed")
	assert.Contains(t, body, "2025-06-02T09:00:00Z")
}

func TestExportServiceSwapReportPDF(t *testing.T) {
	store := &exportStoreStub{rows: []models.SwapReportRow{{ID: "swap-1", Status: models.SwapStatusPending, CreatedAt: time.Now()}}}
	svc := NewExportService(store, nil, 0)

	result, err := svc.SwapReport(context.Background(), ExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(&exportStoreStub{}, nil, 0)

	_, err := svc.SwapReport(context.Background(), ExportFormat("xlsx"))
	assertAppError(t, err, appErrors.ErrValidation)
}
