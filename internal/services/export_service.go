package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

const exportBatchSize = 100

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, now func() time.Time) ExportService {
	if now == nil {
		now = time.Now
	}
	return &exportService{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

var submissionHeaders = []interface{}{"Name", "Email", "Submission", "Submitted At", "Grade", "Passed", "Graded At"}

func (s *exportService) ExportSubmissions(ctx context.Context, problemSetID uint) (*ExportFile, error) {
	ps, err := s.repo.ProblemSet().GetByID(ctx, nil, problemSetID)
	if err != nil {
		return nil, mapRepoError(err, ErrProblemSetNotFound, "get problem set")
	}

	var rows [][]interface{}
	id := problemSetID
	for offset := 0; ; offset += exportBatchSize {
		batch, total, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
			ProblemSetID: &id,
			ListFilters:  repositories.ListFilters{Limit: exportBatchSize, Offset: offset},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions: %w", err)
		}
		for _, sub := range batch {
			rows = append(rows, submissionRow(sub, ps))
		}
		if len(batch) == 0 || int64(offset+len(batch)) >= total {
			break
		}
	}

	data, err := buildWorkbook("Submissions", submissionHeaders, rows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submissions exported", "problem_set_id", problemSetID, "rows", len(rows))
	return &ExportFile{
		Filename: fmt.Sprintf("problem-set-%d-submissions-%s.xlsx", problemSetID, s.now().Format("20060102")),
		Data:     data,
	}, nil
}

func submissionRow(sub *models.ProblemSetSubmission, ps *models.ProblemSet) []interface{} {
	name, email := "", ""
	if sub.User != nil {
		name, email = sub.User.Name, sub.User.Email
	}
	gradedAt := ""
	if sub.GradedAt != nil {
		gradedAt = sub.GradedAt.Format(time.RFC3339)
	}
	passed := "-"
	if sub.GradedAt != nil {
		passed = "No"
		if sub.Grade >= ps.PassingGrade {
			passed = "Yes"
		}
	}
	return []interface{}{
		name,
		email,
		sub.SubmissionURL,
		sub.SubmittedAt.Format(time.RFC3339),
		sub.Grade,
		passed,
		gradedAt,
	}
}

var attendanceHeaders = []interface{}{"Name", "Email", "Access", "RSVP At", "Attended"}

func (s *exportService) ExportAttendance(ctx context.Context, kind models.EventKind, eventID uint) (*ExportFile, error) {
	store := s.repo.Event()
	if _, err := store.GetByID(ctx, nil, kind, eventID); err != nil {
		return nil, mapRepoError(err, ErrEventNotFound, "get event")
	}

	attendees, err := store.ListAttendees(ctx, nil, eventID)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(attendees))
	for _, a := range attendees {
		name, email, access := "", "", ""
		if a.User != nil {
			name, email, access = a.User.Name, a.User.Email, string(a.User.Access)
		}
		attended := "No"
		if a.Attended {
			attended = "Yes"
		}
		rows = append(rows, []interface{}{name, email, access, a.RSVPAt.Format(time.RFC3339), attended})
	}

	data, err := buildWorkbook("Attendance", attendanceHeaders, rows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attendance exported", "event_id", eventID, "kind", kind, "rows", len(rows))
	return &ExportFile{
		Filename: fmt.Sprintf("%s-event-%d-attendance-%s.xlsx", kind, eventID, s.now().Format("20060102")),
		Data:     data,
	}, nil
}

// buildWorkbook writes a single-sheet workbook with a bold header row.
func buildWorkbook(sheet string, headers []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
