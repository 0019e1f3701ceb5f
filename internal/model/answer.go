package model

import "time"

// Answer is the graded record for one question of one attempt. IsCorrect is
// frozen at grading time and never recomputed.
type Answer struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	AttemptID  uint     `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	Question   Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	ChoiceID   *uint    `json:"choice_id,omitempty"`
	Choice     *Choice  `json:"choice,omitempty" gorm:"foreignKey:ChoiceID"`
	TextAnswer string   `json:"text_answer,omitempty" gorm:"type:text"`
	IsCorrect  bool     `json:"is_correct" gorm:"default:false"`
	AnsweredAt time.Time `json:"answered_at"`
}
