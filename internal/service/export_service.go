package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/edricrolandli/cssc-api/internal/models"
	appErrors "github.com/edricrolandli/cssc-api/pkg/errors"
	"github.com/edricrolandli/cssc-api/pkg/export"
)

// ExportService renders a user's projected weekly schedule as a PDF.
type ExportService struct {
	projector *ProjectorService
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(projector *ProjectorService, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{projector: projector, pdf: pdf, logger: logger}
}

// WeeklyPDF projects the caller's schedule and renders it as one table
// ordered by date then start time.
func (s *ExportService) WeeklyPDF(ctx context.Context, claims *models.JWTClaims, startDate, endDate string) ([]byte, string, error) {
	view, err := s.projector.WeekView(ctx, claims, startDate, endDate)
	if err != nil {
		return nil, "", err
	}

	dates := make([]string, 0, len(view.Events))
	for date := range view.Events {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	data := export.Dataset{
		Headers: []string{"Date", "Day", "Time", "Course", "Lecturer", "Room"},
	}
	for _, date := range dates {
		for _, occ := range view.Events[date] {
			room := "-"
			if occ.Room != nil && occ.Room.Name != "" {
				room = occ.Room.Name
			}
			data.Rows = append(data.Rows, map[string]string{
				"Date":     occ.Date,
				"Day":      occ.DayName,
				"Time":     occ.Time,
				"Course":   occ.CourseName,
				"Lecturer": occ.LecturerName,
				"Room":     room,
			})
		}
	}

	payload, err := s.pdf.Render(data, fmt.Sprintf("Class Schedule %s to %s", view.DateRange.StartDate, view.DateRange.EndDate))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule pdf")
	}
	filename := fmt.Sprintf("schedule_%s_%s.pdf", view.DateRange.StartDate, view.DateRange.EndDate)
	return payload, filename, nil
}
