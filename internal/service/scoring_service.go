package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/lshigami/Caracal/internal/model"
)

// ScoringService grades one submission against an attempt's frozen question
// order. Grading is a pure function of the submission: calling it again with
// the same input yields the same answers and score.
type ScoringService interface {
	Grade(attemptID uint, questions []model.Question, order model.QuestionOrder, submitted map[uint]string, gradedAt time.Time) ([]model.Answer, int)
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

// Grade produces exactly one answer per question in the frozen order,
// unanswered ones included. Objective questions must resolve the raw value to
// a choice belonging to that same question; anything else (missing, malformed,
// or a choice of a different question) is graded incorrect with no choice
// reference. Short answers are stored verbatim trimmed and never count as
// correct. The aggregate score is the count of correct answers.
func (s *scoringService) Grade(attemptID uint, questions []model.Question, order model.QuestionOrder, submitted map[uint]string, gradedAt time.Time) ([]model.Answer, int) {
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	answers := make([]model.Answer, 0, len(order))
	score := 0

	for _, qid := range order {
		q, ok := byID[qid]
		if !ok {
			// Question removed from the bank after the snapshot.
			continue
		}

		ans := model.Answer{
			AttemptID:  attemptID,
			QuestionID: q.ID,
			AnsweredAt: gradedAt,
		}
		raw := strings.TrimSpace(submitted[q.ID])

		switch q.Type {
		case model.MultipleChoice, model.TrueFalse:
			if choice := resolveChoice(q, raw); choice != nil {
				ans.ChoiceID = &choice.ID
				ans.IsCorrect = choice.IsCorrect
			}
		case model.ShortAnswer:
			ans.TextAnswer = raw
		}

		if ans.IsCorrect {
			score++
		}
		answers = append(answers, ans)
	}

	return answers, score
}

// resolveChoice maps a raw submitted value to a choice of the given question,
// or nil when the value does not parse or names a foreign choice.
func resolveChoice(q *model.Question, raw string) *model.Choice {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	for i := range q.Choices {
		if q.Choices[i].ID == uint(id) {
			return &q.Choices[i]
		}
	}
	return nil
}
