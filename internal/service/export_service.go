package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
	"github.com/noah-isme/skillswap-api/pkg/export"
)

type exportStore interface {
	SwapReport(ctx context.Context, maxRows int) ([]models.SwapReportRow, error)
}

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders admin swap reports as CSV or PDF.
type ExportService struct {
	repo    exportStore
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	maxRows int
}

// NewExportService constructs an ExportService instance.
func NewExportService(repo exportStore, logger *zap.Logger, maxRows int) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 10000
	}
	return &ExportService{
		repo:    repo,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		maxRows: maxRows,
	}
}

// SwapReport renders the flattened swap report in the requested format.
func (s *ExportService) SwapReport(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.repo.SwapReport(ctx, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build swap report")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Requester", "Recipient", "Skill Offered", "Skill Wanted", "Status", "Created", "Resolved"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		resolved := ""
		if row.ResolvedAt != nil {
			resolved = row.ResolvedAt.Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":            row.ID,
			"Requester":     row.RequesterEmail,
			"Recipient":     row.RecipientEmail,
			"Skill Offered": row.SkillOffered,
			"Skill Wanted":  row.SkillWanted,
			"Status":        string(row.Status),
			"Created":       row.CreatedAt.Format(time.RFC3339),
			"Resolved":      resolved,
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, "Swap Report ("+strconv.Itoa(len(rows))+" rows)")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    "swap-report-" + stamp + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    "swap-report-" + stamp + ".csv",
			ContentType: "text/csv",
			Data:        data,
		}, nil
	}
}
