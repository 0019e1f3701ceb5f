package service

import (
	"testing"
	"time"

	"github.com/lshigami/Caracal/internal/model"
)

func gradingExam() []model.Question {
	return []model.Question{
		{
			ID:   1,
			Type: model.MultipleChoice,
			Text: "What is the capital of France?",
			Choices: []model.Choice{
				{ID: 11, QuestionID: 1, Text: "Paris", IsCorrect: true},
				{ID: 12, QuestionID: 1, Text: "London"},
				{ID: 13, QuestionID: 1, Text: "Berlin"},
			},
		},
		{
			ID:   2,
			Type: model.TrueFalse,
			Text: "The Earth is flat.",
			Choices: []model.Choice{
				{ID: 21, QuestionID: 2, Text: "True"},
				{ID: 22, QuestionID: 2, Text: "False", IsCorrect: true},
			},
		},
		{
			ID:   3,
			Type: model.ShortAnswer,
			Text: "Who wrote Hamlet?",
		},
	}
}

func TestGradeMixedSubmission(t *testing.T) {
	questions := gradingExam()
	order := model.QuestionOrder{1, 2, 3}
	submitted := map[uint]string{
		1: "11",          // correct
		2: "21",          // wrong choice
		3: "Shakespeare", // short answer, never correct
	}

	answers, score := NewScoringService().Grade(7, questions, order, submitted, time.Now())

	if len(answers) != 3 {
		t.Fatalf("expected one answer per question, got %d", len(answers))
	}
	if score != 1 {
		t.Errorf("expected score 1, got %d", score)
	}

	if answers[0].ChoiceID == nil || *answers[0].ChoiceID != 11 || !answers[0].IsCorrect {
		t.Errorf("question 1: expected correct choice 11, got %+v", answers[0])
	}
	if answers[1].ChoiceID == nil || *answers[1].ChoiceID != 21 || answers[1].IsCorrect {
		t.Errorf("question 2: expected incorrect choice 21, got %+v", answers[1])
	}
	if answers[2].TextAnswer != "Shakespeare" || answers[2].IsCorrect {
		t.Errorf("question 3: expected stored text graded incorrect, got %+v", answers[2])
	}
	for i, ans := range answers {
		if ans.AttemptID != 7 {
			t.Errorf("answer %d: expected attempt id 7, got %d", i, ans.AttemptID)
		}
	}
}

func TestGradeRejectsForeignChoice(t *testing.T) {
	questions := gradingExam()
	order := model.QuestionOrder{1, 2, 3}
	// Choice 22 belongs to question 2, submitted against question 1.
	submitted := map[uint]string{1: "22"}

	answers, score := NewScoringService().Grade(1, questions, order, submitted, time.Now())

	if score != 0 {
		t.Errorf("expected score 0, got %d", score)
	}
	if answers[0].ChoiceID != nil {
		t.Errorf("foreign choice must not be recorded, got choice %d", *answers[0].ChoiceID)
	}
	if answers[0].IsCorrect {
		t.Error("foreign choice must be graded incorrect")
	}
}

func TestGradeMalformedAndMissingValues(t *testing.T) {
	questions := gradingExam()
	order := model.QuestionOrder{1, 2, 3}

	cases := []struct {
		name      string
		submitted map[uint]string
	}{
		{"empty submission", map[uint]string{}},
		{"garbage values", map[uint]string{1: "not-a-number", 2: "-5"}},
		{"unknown choice id", map[uint]string{1: "999", 2: "999"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			answers, score := NewScoringService().Grade(1, questions, order, tc.submitted, time.Now())
			if len(answers) != len(order) {
				t.Fatalf("expected %d answers, got %d", len(order), len(answers))
			}
			if score != 0 {
				t.Errorf("expected score 0, got %d", score)
			}
			for _, ans := range answers {
				if ans.IsCorrect || ans.ChoiceID != nil {
					t.Errorf("question %d: expected unresolved incorrect answer, got %+v", ans.QuestionID, ans)
				}
			}
		})
	}
}

func TestGradeTrimsShortAnswers(t *testing.T) {
	questions := gradingExam()
	submitted := map[uint]string{3: "  Shakespeare \n"}

	answers, _ := NewScoringService().Grade(1, questions, model.QuestionOrder{3}, submitted, time.Now())

	if answers[0].TextAnswer != "Shakespeare" {
		t.Errorf("expected trimmed text answer, got %q", answers[0].TextAnswer)
	}
}

func TestGradeFollowsFrozenOrder(t *testing.T) {
	questions := gradingExam()
	order := model.QuestionOrder{3, 1, 2}

	answers, _ := NewScoringService().Grade(1, questions, order, nil, time.Now())

	for i, qid := range order {
		if answers[i].QuestionID != qid {
			t.Errorf("position %d: expected question %d, got %d", i, qid, answers[i].QuestionID)
		}
	}
}

func TestGradeSkipsQuestionsMissingFromBank(t *testing.T) {
	questions := gradingExam()
	// Question 99 was deleted after the snapshot was frozen.
	order := model.QuestionOrder{1, 99, 2}

	answers, score := NewScoringService().Grade(1, questions, order, map[uint]string{1: "11"}, time.Now())

	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if score != 1 {
		t.Errorf("expected score 1, got %d", score)
	}
}

func TestGradeScoreNeverExceedsSnapshot(t *testing.T) {
	questions := gradingExam()
	order := model.QuestionOrder{1, 2, 3}
	// Every question answered correctly where possible, plus a stray id.
	submitted := map[uint]string{1: "11", 2: "22", 3: "anything", 42: "11"}

	answers, score := NewScoringService().Grade(1, questions, order, submitted, time.Now())

	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	if score < 0 || score > len(order) {
		t.Fatalf("score %d out of range [0, %d]", score, len(order))
	}
	if score != 2 {
		t.Errorf("expected score 2, got %d", score)
	}
}
