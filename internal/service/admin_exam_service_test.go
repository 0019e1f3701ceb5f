package service

import (
	"errors"
	"testing"

	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"gorm.io/gorm"
)

func newAdminFixture(t *testing.T) (*gorm.DB, AdminExamService) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{SiteURL: "http://test.local"}
	svc := NewAdminExamService(
		repository.NewExamRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewAnswerRepository(db),
		cfg,
	)
	return db, svc
}

func validExamRequest() dto.ExamCreateDTO {
	return dto.ExamCreateDTO{
		Title:           "Entrance Exam",
		DurationMinutes: 45,
		Questions: []dto.QuestionCreateDTO{
			{
				Text: "What is the capital of France?", Type: "MCQ",
				Choices: []dto.ChoiceCreateDTO{
					{Text: "Paris", IsCorrect: true},
					{Text: "London"},
				},
			},
			{
				Text: "The Earth is flat.", Type: "TF",
				Choices: []dto.ChoiceCreateDTO{
					{Text: "True"},
					{Text: "False", IsCorrect: true},
				},
			},
			{Text: "Who wrote Hamlet?", Type: "SHORT"},
		},
	}
}

func TestCreateExamPersistsQuestions(t *testing.T) {
	db, svc := newAdminFixture(t)

	exam, err := svc.CreateExam(validExamRequest())
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	if len(exam.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(exam.Questions))
	}
	for i, q := range exam.Questions {
		if q.OrderHint != i+1 {
			t.Errorf("question %d: expected default order hint %d, got %d", i, i+1, q.OrderHint)
		}
	}

	var choiceCount int64
	if err := db.Model(&model.Choice{}).Count(&choiceCount).Error; err != nil {
		t.Fatalf("count choices: %v", err)
	}
	if choiceCount != 4 {
		t.Errorf("expected 4 persisted choices, got %d", choiceCount)
	}
}

func TestCreateExamValidatesChoiceLayout(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.ExamCreateDTO)
	}{
		{
			"short answer with choices",
			func(req *dto.ExamCreateDTO) {
				req.Questions[2].Choices = []dto.ChoiceCreateDTO{{Text: "Shakespeare", IsCorrect: true}}
			},
		},
		{
			"true false with three choices",
			func(req *dto.ExamCreateDTO) {
				req.Questions[1].Choices = append(req.Questions[1].Choices, dto.ChoiceCreateDTO{Text: "Maybe"})
			},
		},
		{
			"multiple choice with one choice",
			func(req *dto.ExamCreateDTO) {
				req.Questions[0].Choices = req.Questions[0].Choices[:1]
			},
		},
		{
			"multiple choice with two correct",
			func(req *dto.ExamCreateDTO) {
				req.Questions[0].Choices[1].IsCorrect = true
			},
		},
		{
			"multiple choice with none correct",
			func(req *dto.ExamCreateDTO) {
				req.Questions[0].Choices[0].IsCorrect = false
			},
		},
		{
			"unknown question type",
			func(req *dto.ExamCreateDTO) {
				req.Questions[0].Type = "ESSAY"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, svc := newAdminFixture(t)
			req := validExamRequest()
			tc.mutate(&req)
			if _, err := svc.CreateExam(req); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestListAttemptsRequiresExistingExam(t *testing.T) {
	db, svc := newAdminFixture(t)
	exam, attempt := seedFixture(t, db, false)

	attempts, err := svc.ListAttempts(exam.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(attempts))
	}
	if attempts[0].Token != attempt.Token {
		t.Errorf("expected token %q, got %q", attempt.Token, attempts[0].Token)
	}
	if attempts[0].Link == "" {
		t.Error("attempt summary must carry the shareable link")
	}

	if _, err := svc.ListAttempts(99999); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("expected ErrExamNotFound, got %v", err)
	}
}

func TestListAnswersAfterSubmission(t *testing.T) {
	db, svc := newAdminFixture(t)
	attemptSvc, _ := newTestAttemptService(db)
	_, attempt := seedFixture(t, db, false)

	answers, err := svc.ListAnswers(attempt.Token)
	if err != nil {
		t.Fatalf("list answers before submit: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("pending attempt must have no answers, got %d", len(answers))
	}

	if _, err := attemptSvc.Open(attempt.Token, ClientInfo{}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := attemptSvc.Submit(attempt.Token, dto.AttemptSubmitDTO{}, false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	answers, err = svc.ListAnswers(attempt.Token)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 3 {
		t.Errorf("expected 3 answer rows, got %d", len(answers))
	}

	if _, err := svc.ListAnswers("no-such-token"); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}
