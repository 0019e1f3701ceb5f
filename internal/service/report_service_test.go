package service

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/repository"
)

func TestExportAttemptsCSV(t *testing.T) {
	db := newTestDB(t)
	attemptSvc, setNow := newTestAttemptService(db)
	exam, attempt := seedFixture(t, db, false)
	svc := NewReportService(repository.NewAttemptRepository(db))

	opened, err := attemptSvc.Open(attempt.Token, ClientInfo{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	setNow(opened.Deadline.Add(time.Minute))
	if _, err := attemptSvc.Submit(attempt.Token, dto.AttemptSubmitDTO{}, true); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var buf strings.Builder
	if err := svc.ExportAttemptsCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}

	header := records[0]
	if header[0] != "candidate" || header[len(header)-1] != "token" {
		t.Errorf("unexpected header %v", header)
	}

	row := records[1]
	if row[2] != exam.Title {
		t.Errorf("expected exam title %q, got %q", exam.Title, row[2])
	}
	if row[3] != "submitted" {
		t.Errorf("expected submitted state, got %q", row[3])
	}
	if row[len(row)-1] != attempt.Token {
		t.Errorf("expected token %q, got %q", attempt.Token, row[len(row)-1])
	}
}
