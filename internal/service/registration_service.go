package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/internal/dto"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RegistrationService registers a candidate for an exam and hands out the
// single-use attempt link. Registration is idempotent per (candidate, exam):
// repeating it returns the existing token instead of erroring.
type RegistrationService interface {
	Register(examID uint, req dto.RegisterCandidateDTO) (*dto.RegistrationResultDTO, error)
}

type registrationService struct {
	examRepo      repository.ExamRepository
	candidateRepo repository.CandidateRepository
	attemptRepo   repository.AttemptRepository
	siteURL       string
}

func NewRegistrationService(
	examRepo repository.ExamRepository,
	candidateRepo repository.CandidateRepository,
	attemptRepo repository.AttemptRepository,
	cfg *config.Config,
) RegistrationService {
	return &registrationService{
		examRepo:      examRepo,
		candidateRepo: candidateRepo,
		attemptRepo:   attemptRepo,
		siteURL:       cfg.SiteURL,
	}
}

func (s *registrationService) Register(examID uint, req dto.RegisterCandidateDTO) (*dto.RegistrationResultDTO, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrExamNotActive
	}

	candidate, err := s.getOrCreateCandidate(req)
	if err != nil {
		return nil, err
	}

	attempt, created, err := s.getOrCreateAttempt(candidate.ID, exam.ID)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info().Uint("candidateID", candidate.ID).Uint("examID", exam.ID).Str("token", attempt.Token).
			Msg("Attempt created for candidate")
	}

	return &dto.RegistrationResultDTO{
		CandidateID:       candidate.ID,
		ExamID:            exam.ID,
		Token:             attempt.Token,
		Link:              attempt.URL(s.siteURL),
		AlreadyRegistered: !created,
	}, nil
}

func (s *registrationService) getOrCreateCandidate(req dto.RegisterCandidateDTO) (*model.Candidate, error) {
	candidate, err := s.candidateRepo.FindByEmail(req.Email)
	if err == nil {
		return candidate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find candidate: %w", err)
	}

	candidate = &model.Candidate{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if err := s.candidateRepo.Create(candidate); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent registration with the same email.
			return s.candidateRepo.FindByEmail(req.Email)
		}
		return nil, fmt.Errorf("create candidate: %w", err)
	}
	return candidate, nil
}

// getOrCreateAttempt enforces the one-attempt-per-pair invariant. The unique
// index on (candidate_id, exam_id) is the arbiter; a duplicate-key error from
// a concurrent registration resolves to the existing row.
func (s *registrationService) getOrCreateAttempt(candidateID, examID uint) (*model.Attempt, bool, error) {
	existing, err := s.attemptRepo.FindByCandidateAndExam(candidateID, examID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find attempt: %w", err)
	}

	attempt := &model.Attempt{
		CandidateID: candidateID,
		ExamID:      examID,
		Token:       uuid.NewString(),
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := s.attemptRepo.FindByCandidateAndExam(candidateID, examID)
			if ferr != nil {
				return nil, false, fmt.Errorf("reload attempt after duplicate: %w", ferr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, true, nil
}
