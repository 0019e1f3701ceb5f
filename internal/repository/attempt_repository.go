package repository

import (
	"time"

	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	FindByToken(token string) (*model.Attempt, error)
	FindByTokenWithDetails(token string) (*model.Attempt, error)
	FindByCandidateAndExam(candidateID, examID uint) (*model.Attempt, error)
	FindAllByExam(examID uint) ([]model.Attempt, error)
	FindAllWithDetails() ([]model.Attempt, error)
	Start(id uint, startedAt time.Time, order model.QuestionOrder, total int, ip, userAgent string) (bool, error)
	FinishSubmission(attempt *model.Attempt, answers []model.Answer) (bool, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByToken(token string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Exam").
		Where("token = ?", token).
		First(&attempt).Error
	return &attempt, err
}

func (r *attemptRepository) FindByTokenWithDetails(token string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Exam").
		Preload("Exam.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_hint ASC, questions.id ASC")
		}).
		Preload("Exam.Questions.Choices").
		Preload("Candidate").
		Preload("Answers.Question").
		Preload("Answers.Choice").
		Where("token = ?", token).
		First(&attempt).Error
	return &attempt, err
}

func (r *attemptRepository) FindByCandidateAndExam(candidateID, examID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Where("candidate_id = ? AND exam_id = ?", candidateID, examID).
		First(&attempt).Error
	return &attempt, err
}

func (r *attemptRepository) FindAllByExam(examID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Preload("Candidate").
		Where("exam_id = ?", examID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindAllWithDetails() ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Preload("Candidate").
		Preload("Exam").
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// Start performs the one-time Pending -> Active transition as a single
// conditional write. The WHERE started_at IS NULL guard makes the snapshot
// atomic under concurrent first opens: exactly one caller wins; everyone else
// gets false and must re-read the winner's snapshot. A plain read-then-write
// here would hand out two different orderings under load.
func (r *attemptRepository) Start(id uint, startedAt time.Time, order model.QuestionOrder, total int, ip, userAgent string) (bool, error) {
	res := r.db.Model(&model.Attempt{}).
		Where("id = ? AND started_at IS NULL", id).
		Updates(map[string]any{
			"started_at":      startedAt,
			"question_order":  order,
			"total_questions": total,
			"ip_address":      ip,
			"user_agent":      userAgent,
		})
	return res.RowsAffected == 1, res.Error
}

// FinishSubmission makes the attempt terminal exactly once. The terminal
// transition is claimed first (WHERE submitted_at IS NULL); only the claiming
// transaction replaces the answer rows, so a losing duplicate submit leaves the
// winner's grading untouched and the caller simply reads the stored result.
func (r *attemptRepository) FinishSubmission(attempt *model.Attempt, answers []model.Answer) (bool, error) {
	claimed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND submitted_at IS NULL", attempt.ID).
			Updates(map[string]any{
				"submitted_at":     attempt.SubmittedAt,
				"score":            attempt.Score,
				"focus_violations": attempt.FocusViolations,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		claimed = true

		// Grading fully replaces prior answers, never appends.
		if err := tx.Where("attempt_id = ?", attempt.ID).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}
