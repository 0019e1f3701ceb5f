package model

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MCQ"
	TrueFalse      QuestionType = "TF"
	ShortAnswer    QuestionType = "SHORT"
)

// IsObjective reports whether the question type is graded against choices.
func (t QuestionType) IsObjective() bool {
	return t == MultipleChoice || t == TrueFalse
}

type Exam struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Title              string         `json:"title" gorm:"not null;uniqueIndex"`
	Description        string         `json:"description,omitempty"`
	DurationMinutes    uint           `json:"duration_minutes" gorm:"not null;default:30"`
	IsActive           bool           `json:"is_active" gorm:"default:true"`
	ShuffleQuestions   bool           `json:"shuffle_questions" gorm:"default:true"`
	MaxFocusViolations uint           `json:"max_focus_violations" gorm:"default:0"`
	Questions          []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// Duration returns the exam time limit as a time.Duration.
func (e *Exam) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

type Question struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ExamID    uint           `json:"exam_id" gorm:"not null;index"`
	Text      string         `json:"text" gorm:"type:text;not null"`
	Type      QuestionType   `json:"type" gorm:"not null;default:'MCQ'"`
	OrderHint int            `json:"order" gorm:"not null;default:0"`
	ImageURL  *string        `json:"image_url,omitempty"`
	Choices   []Choice       `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Choice struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"size:500;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}
