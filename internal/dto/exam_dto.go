package dto

import "time"

// ChoiceViewDTO is a choice as shown to a candidate. The correctness flag is
// deliberately absent.
type ChoiceViewDTO struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionViewDTO is a question as shown to a candidate during an attempt.
type QuestionViewDTO struct {
	ID       uint            `json:"id"`
	Text     string          `json:"text"`
	Type     string          `json:"type"`
	ImageURL *string         `json:"image_url,omitempty"`
	Choices  []ChoiceViewDTO `json:"choices,omitempty"`
}

// OpenAttemptDTO is the response of opening an attempt link. Exactly one of
// the three shapes applies depending on State: "active" carries the exam
// content, "expired" and "submitted" carry the URL the caller is routed to.
type OpenAttemptDTO struct {
	State         string            `json:"state"`
	ExamTitle     string            `json:"exam_title,omitempty"`
	Questions     []QuestionViewDTO `json:"questions,omitempty"`
	Deadline      *time.Time        `json:"deadline,omitempty"`
	SecondsLeft   int               `json:"seconds_left,omitempty"`
	MaxViolations uint              `json:"max_focus_violations,omitempty"`
	SubmitURL     string            `json:"submit_url,omitempty"`
	ResultURL     string            `json:"result_url,omitempty"`
}

// ExamSummaryDTO lists an exam for the operator console.
type ExamSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes uint      `json:"duration_minutes"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
