package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"gorm.io/gorm"
)

func newRegistrationFixture(t *testing.T) (*gorm.DB, RegistrationService) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{SiteURL: "http://test.local"}
	svc := NewRegistrationService(
		repository.NewExamRepository(db),
		repository.NewCandidateRepository(db),
		repository.NewAttemptRepository(db),
		cfg,
	)
	return db, svc
}

func TestRegisterCreatesCandidateAndAttempt(t *testing.T) {
	db, svc := newRegistrationFixture(t)
	exam, _ := seedFixture(t, db, false)

	result, err := svc.Register(exam.ID, dto.RegisterCandidateDTO{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "+100200300",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if result.AlreadyRegistered {
		t.Error("first registration must not report already registered")
	}
	if result.Token == "" {
		t.Fatal("registration must hand out a token")
	}
	if !strings.Contains(result.Link, result.Token) {
		t.Errorf("link %q does not carry token %q", result.Link, result.Token)
	}
	if !strings.HasPrefix(result.Link, "http://test.local/exam/") {
		t.Errorf("unexpected link %q", result.Link)
	}

	var attempt model.Attempt
	if err := db.Where("token = ?", result.Token).First(&attempt).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.StartedAt != nil {
		t.Error("registration must leave the attempt pending")
	}
}

func TestRegisterIsIdempotentPerCandidateAndExam(t *testing.T) {
	db, svc := newRegistrationFixture(t)
	exam, _ := seedFixture(t, db, false)

	req := dto.RegisterCandidateDTO{FullName: "Ada Lovelace", Email: "ada@example.com"}
	first, err := svc.Register(exam.ID, req)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := svc.Register(exam.ID, req)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}

	if second.Token != first.Token {
		t.Errorf("repeat registration handed out a new token: %q vs %q", second.Token, first.Token)
	}
	if !second.AlreadyRegistered {
		t.Error("repeat registration must report already registered")
	}

	var count int64
	if err := db.Model(&model.Attempt{}).Where("candidate_id = ?", first.CandidateID).Count(&count).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one attempt per candidate and exam, got %d", count)
	}
}

func TestRegisterSameEmailDifferentExams(t *testing.T) {
	db, svc := newRegistrationFixture(t)
	examA, _ := seedFixture(t, db, false)
	examB, _ := seedFixture(t, db, false)

	req := dto.RegisterCandidateDTO{FullName: "Ada Lovelace", Email: "ada@example.com"}
	a, err := svc.Register(examA.ID, req)
	if err != nil {
		t.Fatalf("register exam A: %v", err)
	}
	b, err := svc.Register(examB.ID, req)
	if err != nil {
		t.Fatalf("register exam B: %v", err)
	}

	if a.CandidateID != b.CandidateID {
		t.Errorf("expected one candidate identity, got %d and %d", a.CandidateID, b.CandidateID)
	}
	if a.Token == b.Token {
		t.Error("distinct exams must hand out distinct tokens")
	}
	if b.AlreadyRegistered {
		t.Error("first registration for a second exam must not report already registered")
	}
}

func TestRegisterRejectsInactiveAndUnknownExams(t *testing.T) {
	db, svc := newRegistrationFixture(t)
	exam, _ := seedFixture(t, db, false)
	if err := db.Model(exam).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate exam: %v", err)
	}

	req := dto.RegisterCandidateDTO{FullName: "Ada Lovelace", Email: "ada@example.com"}
	if _, err := svc.Register(exam.ID, req); !errors.Is(err, ErrExamNotActive) {
		t.Fatalf("expected ErrExamNotActive, got %v", err)
	}
	if _, err := svc.Register(99999, req); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}
