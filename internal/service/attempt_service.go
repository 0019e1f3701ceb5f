package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ClientInfo carries request diagnostics recorded on first open.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AttemptService is the single authority over the attempt state machine:
// Pending -> Active -> Submitted. Expiry is never stored; it is derived from
// started_at + duration on every request, boundary inclusive, so no timer or
// background sweep exists. An attempt abandoned after its deadline is
// finalized by whichever request touches it next.
type AttemptService interface {
	Open(token string, client ClientInfo) (*dto.OpenAttemptDTO, error)
	Submit(token string, req dto.AttemptSubmitDTO, implicit bool) (*dto.AttemptResultDTO, error)
	Result(token string) (*dto.AttemptResultDTO, error)
}

type attemptService struct {
	attemptRepo repository.AttemptRepository
	scoring     ScoringService
	now         func() time.Time
	shuffle     func(n int, swap func(i, j int))
}

func NewAttemptService(attemptRepo repository.AttemptRepository, scoring ScoringService) AttemptService {
	return &attemptService{
		attemptRepo: attemptRepo,
		scoring:     scoring,
		now:         time.Now,
		shuffle:     rand.Shuffle,
	}
}

// Open handles every hit on the attempt link. A submitted attempt routes to
// its result, a pending one is started atomically, an expired one routes to
// the submit path, and an active one gets the exam content in the frozen
// question order.
func (s *attemptService) Open(token string, client ClientInfo) (*dto.OpenAttemptDTO, error) {
	attempt, err := s.attemptRepo.FindByTokenWithDetails(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	if attempt.IsSubmitted() {
		return &dto.OpenAttemptDTO{
			State:     string(model.AttemptSubmitted),
			ResultURL: fmt.Sprintf("/exam/%s/result", attempt.Token),
		}, nil
	}

	if attempt.StartedAt == nil {
		attempt, err = s.start(attempt, client)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	if attempt.Expired(now) {
		return &dto.OpenAttemptDTO{
			State:     "expired",
			SubmitURL: fmt.Sprintf("/exam/%s/submit", attempt.Token),
		}, nil
	}

	return &dto.OpenAttemptDTO{
		State:         string(model.AttemptActive),
		ExamTitle:     attempt.Exam.Title,
		Questions:     questionViews(attempt),
		Deadline:      attempt.EndsAt(),
		SecondsLeft:   attempt.SecondsLeft(now),
		MaxViolations: attempt.Exam.MaxFocusViolations,
		SubmitURL:     fmt.Sprintf("/exam/%s/submit", attempt.Token),
	}, nil
}

// start performs the one-time Pending -> Active transition. The snapshot is
// computed optimistically and applied through the repository's conditional
// write; a caller that loses the race re-reads and adopts the winner's
// snapshot, so N concurrent first opens all observe one started_at and one
// question order.
func (s *attemptService) start(attempt *model.Attempt, client ClientInfo) (*model.Attempt, error) {
	questions := make([]model.Question, len(attempt.Exam.Questions))
	copy(questions, attempt.Exam.Questions)

	// Stable base order: order hint, then identity.
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].OrderHint != questions[j].OrderHint {
			return questions[i].OrderHint < questions[j].OrderHint
		}
		return questions[i].ID < questions[j].ID
	})
	if attempt.Exam.ShuffleQuestions {
		s.shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	order := make(model.QuestionOrder, len(questions))
	for i, q := range questions {
		order[i] = q.ID
	}

	won, err := s.attemptRepo.Start(attempt.ID, s.now(), order, len(order), client.IPAddress, client.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("start attempt: %w", err)
	}
	if !won {
		log.Info().Str("token", attempt.Token).Msg("Concurrent first open, adopting existing snapshot")
	}

	// Re-read either way so the caller sees exactly what is stored.
	fresh, err := s.attemptRepo.FindByTokenWithDetails(attempt.Token)
	if err != nil {
		return nil, fmt.Errorf("reload started attempt: %w", err)
	}
	return fresh, nil
}

// Submit grades the attempt exactly once. Already-submitted attempts return
// the stored result without regrading. implicit marks the post-expiry
// submission triggered by the lazy expiry check rather than an end-user POST;
// it is rejected while the attempt is still within its deadline.
func (s *attemptService) Submit(token string, req dto.AttemptSubmitDTO, implicit bool) (*dto.AttemptResultDTO, error) {
	attempt, err := s.attemptRepo.FindByTokenWithDetails(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	if attempt.IsSubmitted() {
		log.Info().Str("token", token).Msg("Duplicate submit, returning stored result")
		return s.Result(token)
	}
	if attempt.StartedAt == nil {
		log.Warn().Str("token", token).Msg("Submit rejected: attempt was never opened")
		return nil, ErrInvalidTransition
	}

	now := s.now()
	if implicit && !attempt.Expired(now) {
		return nil, ErrInvalidSubmission
	}

	submitted := make(map[uint]string, len(req.Answers))
	for _, a := range req.Answers {
		submitted[a.QuestionID] = a.Value
	}

	answers, score := s.scoring.Grade(attempt.ID, attempt.Exam.Questions, attempt.QuestionOrder, submitted, now)

	attempt.SubmittedAt = &now
	attempt.Score = score
	attempt.FocusViolations = req.FocusViolations
	if attempt.FocusViolations < 0 {
		attempt.FocusViolations = 0
	}

	won, err := s.attemptRepo.FinishSubmission(attempt, answers)
	if err != nil {
		return nil, fmt.Errorf("finish submission: %w", err)
	}
	if !won {
		log.Info().Str("token", token).Msg("Lost submit race, returning winner's result")
	}
	return s.Result(token)
}

// Result is the read-only view of a terminal attempt.
func (s *attemptService) Result(token string) (*dto.AttemptResultDTO, error) {
	attempt, err := s.attemptRepo.FindByTokenWithDetails(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if !attempt.IsSubmitted() {
		return nil, ErrResultNotReady
	}

	byQuestion := make(map[uint]*model.Answer, len(attempt.Answers))
	for i := range attempt.Answers {
		byQuestion[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	reviews := make([]dto.AnswerReviewDTO, 0, len(attempt.QuestionOrder))
	for _, qid := range attempt.QuestionOrder {
		ans, ok := byQuestion[qid]
		if !ok {
			continue
		}
		review := dto.AnswerReviewDTO{
			QuestionID:   ans.QuestionID,
			QuestionText: ans.Question.Text,
			QuestionType: string(ans.Question.Type),
			ChoiceID:     ans.ChoiceID,
			TextAnswer:   ans.TextAnswer,
			IsCorrect:    ans.IsCorrect,
		}
		if ans.Choice != nil {
			review.ChoiceText = ans.Choice.Text
		}
		reviews = append(reviews, review)
	}

	return &dto.AttemptResultDTO{
		Token:           attempt.Token,
		ExamTitle:       attempt.Exam.Title,
		CandidateName:   attempt.Candidate.FullName,
		Score:           attempt.Score,
		TotalQuestions:  attempt.TotalQuestions,
		FocusViolations: attempt.FocusViolations,
		StartedAt:       attempt.StartedAt,
		SubmittedAt:     attempt.SubmittedAt,
		Answers:         reviews,
	}, nil
}

// questionViews builds the candidate-facing content in the frozen order,
// correctness flags stripped.
func questionViews(attempt *model.Attempt) []dto.QuestionViewDTO {
	byID := make(map[uint]*model.Question, len(attempt.Exam.Questions))
	for i := range attempt.Exam.Questions {
		byID[attempt.Exam.Questions[i].ID] = &attempt.Exam.Questions[i]
	}

	views := make([]dto.QuestionViewDTO, 0, len(attempt.QuestionOrder))
	for _, qid := range attempt.QuestionOrder {
		q, ok := byID[qid]
		if !ok {
			continue
		}
		view := dto.QuestionViewDTO{
			ID:       q.ID,
			Text:     q.Text,
			Type:     string(q.Type),
			ImageURL: q.ImageURL,
		}
		for _, c := range q.Choices {
			view.Choices = append(view.Choices, dto.ChoiceViewDTO{ID: c.ID, Text: c.Text})
		}
		views = append(views, view)
	}
	return views
}
