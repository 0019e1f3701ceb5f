package dto

import "time"

// AnswerSubmissionDTO carries one raw answer value. For objective questions the
// value is the selected choice id; for short answers it is free text. Malformed
// values are graded incorrect, they never fail the submission.
type AnswerSubmissionDTO struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Value      string `json:"value"`
}

// AttemptSubmitDTO is the request body of an explicit submission.
type AttemptSubmitDTO struct {
	Answers         []AnswerSubmissionDTO `json:"answers"`
	FocusViolations int                   `json:"focus_violations"`
}

// AnswerReviewDTO is one graded answer in the result view.
type AnswerReviewDTO struct {
	QuestionID   uint   `json:"question_id"`
	QuestionText string `json:"question_text"`
	QuestionType string `json:"question_type"`
	ChoiceID     *uint  `json:"choice_id,omitempty"`
	ChoiceText   string `json:"choice_text,omitempty"`
	TextAnswer   string `json:"text_answer,omitempty"`
	IsCorrect    bool   `json:"is_correct"`
}

// AttemptResultDTO is the terminal result view of a submitted attempt.
type AttemptResultDTO struct {
	Token           string            `json:"token"`
	ExamTitle       string            `json:"exam_title"`
	CandidateName   string            `json:"candidate_name"`
	Score           int               `json:"score"`
	TotalQuestions  int               `json:"total_questions"`
	FocusViolations int               `json:"focus_violations"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	Answers         []AnswerReviewDTO `json:"answers"`
}

// AttemptSummaryDTO lists one attempt for the operator console.
type AttemptSummaryDTO struct {
	ID              uint       `json:"id"`
	Token           string     `json:"token"`
	CandidateName   string     `json:"candidate_name"`
	CandidateEmail  string     `json:"candidate_email"`
	Score           int        `json:"score"`
	TotalQuestions  int        `json:"total_questions"`
	FocusViolations int        `json:"focus_violations"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	Link            string     `json:"link"`
}
