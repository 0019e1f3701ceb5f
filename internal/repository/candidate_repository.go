package repository

import (
	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Create(candidate *model.Candidate) error
	FindByID(id uint) (*model.Candidate, error)
	FindByEmail(email string) (*model.Candidate, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *model.Candidate) error {
	return r.db.Create(candidate).Error
}

func (r *candidateRepository) FindByID(id uint) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.First(&candidate, id).Error
	return &candidate, err
}

func (r *candidateRepository) FindByEmail(email string) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.Where("email = ?", email).First(&candidate).Error
	return &candidate, err
}
