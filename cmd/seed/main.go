package main

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lshigami/Caracal/config"
	"github.com/lshigami/Caracal/database"
	"github.com/lshigami/Caracal/internal/logger"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Seeds a demo exam and candidate so the engine can be exercised right after
// migration. Running it twice is harmless: existing rows are left alone.
func main() {
	logger.Init()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	exam, err := seedExam(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed exam")
	}
	candidate, err := seedCandidate(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed candidate")
	}
	attempt, err := seedAttempt(db, candidate, exam)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed attempt")
	}

	log.Info().
		Str("exam", exam.Title).
		Str("candidate", candidate.Email).
		Str("url", attempt.URL(cfg.SiteURL)).
		Msg("Seed complete")
}

func seedExam(db *gorm.DB) (*model.Exam, error) {
	var existing model.Exam
	err := db.Where("title = ?", "General Knowledge Demo").First(&existing).Error
	if err == nil {
		log.Info().Uint("id", existing.ID).Msg("Demo exam already present")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	exam := model.Exam{
		Title:            "General Knowledge Demo",
		Description:      "Four sample questions covering every question type.",
		DurationMinutes:  10,
		IsActive:         true,
		ShuffleQuestions: true,
		Questions: []model.Question{
			{
				Text:      "What is the capital of France?",
				Type:      model.MultipleChoice,
				OrderHint: 1,
				Choices: []model.Choice{
					{Text: "Paris", IsCorrect: true},
					{Text: "London"},
					{Text: "Berlin"},
					{Text: "Madrid"},
				},
			},
			{
				Text:      "What is 2 + 2?",
				Type:      model.MultipleChoice,
				OrderHint: 2,
				Choices: []model.Choice{
					{Text: "3"},
					{Text: "4", IsCorrect: true},
					{Text: "5"},
				},
			},
			{
				Text:      "The Earth is flat.",
				Type:      model.TrueFalse,
				OrderHint: 3,
				Choices: []model.Choice{
					{Text: "True"},
					{Text: "False", IsCorrect: true},
				},
			},
			{
				Text:      "Who wrote Hamlet?",
				Type:      model.ShortAnswer,
				OrderHint: 4,
			},
		},
	}
	if err := db.Create(&exam).Error; err != nil {
		return nil, err
	}
	log.Info().Uint("id", exam.ID).Msg("Demo exam created")
	return &exam, nil
}

func seedCandidate(db *gorm.DB) (*model.Candidate, error) {
	var existing model.Candidate
	err := db.Where("email = ?", "demo@example.com").First(&existing).Error
	if err == nil {
		log.Info().Uint("id", existing.ID).Msg("Demo candidate already present")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	candidate := model.Candidate{
		FullName: "Demo Candidate",
		Email:    "demo@example.com",
	}
	if err := db.Create(&candidate).Error; err != nil {
		return nil, err
	}
	log.Info().Uint("id", candidate.ID).Msg("Demo candidate created")
	return &candidate, nil
}

func seedAttempt(db *gorm.DB, candidate *model.Candidate, exam *model.Exam) (*model.Attempt, error) {
	var existing model.Attempt
	err := db.Where("candidate_id = ? AND exam_id = ?", candidate.ID, exam.ID).First(&existing).Error
	if err == nil {
		log.Info().Str("token", existing.Token).Msg("Demo attempt already present")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := model.Attempt{
		CandidateID: candidate.ID,
		ExamID:      exam.ID,
		Token:       uuid.NewString(),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return nil, err
	}
	log.Info().Str("token", attempt.Token).Msg("Demo attempt created")
	return &attempt, nil
}
