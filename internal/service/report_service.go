package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
)

// ReportService flattens attempt records into the operator's spreadsheet
// export.
type ReportService interface {
	ExportAttemptsCSV(w io.Writer) error
}

type reportService struct {
	attemptRepo repository.AttemptRepository
}

func NewReportService(attemptRepo repository.AttemptRepository) ReportService {
	return &reportService{attemptRepo: attemptRepo}
}

func (s *reportService) ExportAttemptsCSV(w io.Writer) error {
	attempts, err := s.attemptRepo.FindAllWithDetails()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load attempts for export")
		return fmt.Errorf("load attempts: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{
		"candidate", "email", "exam", "state",
		"started_at", "submitted_at", "score", "total_questions", "focus_violations", "token",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range attempts {
		row := []string{
			a.Candidate.FullName,
			a.Candidate.Email,
			a.Exam.Title,
			string(a.State()),
			formatTime(a.StartedAt),
			formatTime(a.SubmittedAt),
			strconv.Itoa(a.Score),
			strconv.Itoa(a.TotalQuestions),
			strconv.Itoa(a.FocusViolations),
			a.Token,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
