package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminExamService interface {
	CreateExam(req dto.ExamCreateDTO) (*model.Exam, error)
	ListExams() ([]dto.ExamSummaryDTO, error)
	ListAttempts(examID uint) ([]dto.AttemptSummaryDTO, error)
	ListAnswers(token string) ([]model.Answer, error)
}

type adminExamService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	siteURL     string
}

func NewAdminExamService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	cfg *config.Config,
) AdminExamService {
	return &adminExamService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		siteURL:     cfg.SiteURL,
	}
}

func (s *adminExamService) CreateExam(req dto.ExamCreateDTO) (*model.Exam, error) {
	var questions []model.Question
	for i, qDto := range req.Questions {
		qType := model.QuestionType(qDto.Type)
		if err := validateQuestion(qType, qDto); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}

		question := model.Question{
			Text:      qDto.Text,
			Type:      qType,
			OrderHint: qDto.OrderHint,
			ImageURL:  qDto.ImageURL,
		}
		if question.OrderHint == 0 {
			question.OrderHint = i + 1
		}
		for _, cDto := range qDto.Choices {
			question.Choices = append(question.Choices, model.Choice{
				Text:      cDto.Text,
				IsCorrect: cDto.IsCorrect,
			})
		}
		questions = append(questions, question)
	}

	exam := model.Exam{
		Title:              req.Title,
		Description:        req.Description,
		DurationMinutes:    req.DurationMinutes,
		IsActive:           true,
		ShuffleQuestions:   req.ShuffleQuestions,
		MaxFocusViolations: req.MaxFocusViolations,
		Questions:          questions,
	}

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create exam")
		return nil, fmt.Errorf("create exam: %w", err)
	}

	created, err := s.examRepo.FindByIDWithQuestions(exam.ID)
	if err != nil {
		log.Error().Err(err).Uint("examID", exam.ID).Msg("Failed to reload created exam")
		return &exam, nil
	}
	return created, nil
}

// validateQuestion checks the choice layout per question type: objective
// questions need at least two choices with exactly one correct, true/false
// exactly two, short answers none at all.
func validateQuestion(qType model.QuestionType, qDto dto.QuestionCreateDTO) error {
	switch qType {
	case model.ShortAnswer:
		if len(qDto.Choices) > 0 {
			return errors.New("short answer questions take no choices")
		}
		return nil
	case model.TrueFalse:
		if len(qDto.Choices) != 2 {
			return fmt.Errorf("true/false questions need exactly 2 choices, got %d", len(qDto.Choices))
		}
	case model.MultipleChoice:
		if len(qDto.Choices) < 2 {
			return fmt.Errorf("multiple choice questions need at least 2 choices, got %d", len(qDto.Choices))
		}
	default:
		return fmt.Errorf("unknown question type %q", qType)
	}

	correct := 0
	for _, c := range qDto.Choices {
		if c.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("exactly one choice must be correct, got %d", correct)
	}
	return nil
}

func (s *adminExamService) ListExams() ([]dto.ExamSummaryDTO, error) {
	exams, err := s.examRepo.FindAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams")
		return nil, fmt.Errorf("list exams: %w", err)
	}

	var dtos []dto.ExamSummaryDTO
	for _, exam := range exams {
		var summary dto.ExamSummaryDTO
		if err := copier.Copy(&summary, &exam); err != nil {
			log.Error().Err(err).Uint("examID", exam.ID).Msg("Failed to copy exam to summary DTO")
			continue
		}
		dtos = append(dtos, summary)
	}
	return dtos, nil
}

func (s *adminExamService) ListAttempts(examID uint) ([]dto.AttemptSummaryDTO, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	attempts, err := s.attemptRepo.FindAllByExam(examID)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("Failed to list attempts")
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	dtos := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for _, attempt := range attempts {
		dtos = append(dtos, dto.AttemptSummaryDTO{
			ID:              attempt.ID,
			Token:           attempt.Token,
			CandidateName:   attempt.Candidate.FullName,
			CandidateEmail:  attempt.Candidate.Email,
			Score:           attempt.Score,
			TotalQuestions:  attempt.TotalQuestions,
			FocusViolations: attempt.FocusViolations,
			StartedAt:       attempt.StartedAt,
			SubmittedAt:     attempt.SubmittedAt,
			Link:            attempt.URL(s.siteURL),
		})
	}
	return dtos, nil
}

// ListAnswers exposes the graded answer rows of one attempt for review,
// correctness flags included. An attempt that has not been submitted yet
// simply has none.
func (s *adminExamService) ListAnswers(token string) ([]model.Answer, error) {
	attempt, err := s.attemptRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	answers, err := s.answerRepo.FindAllByAttempt(attempt.ID)
	if err != nil {
		log.Error().Err(err).Str("token", token).Msg("Failed to list answers")
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}
