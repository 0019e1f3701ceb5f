package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type AttemptState string

const (
	AttemptPending   AttemptState = "pending"
	AttemptActive    AttemptState = "active"
	AttemptSubmitted AttemptState = "submitted"
)

// QuestionOrder is the per-attempt snapshot of question IDs, persisted as a
// JSON array so the frozen view can be reconstructed identically on every read.
type QuestionOrder []uint

func (o QuestionOrder) Value() (driver.Value, error) {
	if o == nil {
		o = QuestionOrder{}
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *QuestionOrder) Scan(value any) error {
	if value == nil {
		*o = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return fmt.Errorf("unsupported question_order column type %T", value)
	}
}

// Attempt is one candidate's single run through one exam, addressed solely by
// its token. At most one attempt exists per (candidate, exam) pair.
type Attempt struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CandidateID uint      `json:"candidate_id" gorm:"not null;uniqueIndex:idx_attempt_candidate_exam"`
	ExamID      uint      `json:"exam_id" gorm:"not null;uniqueIndex:idx_attempt_candidate_exam"`
	Candidate   Candidate `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	Exam        Exam      `json:"exam,omitempty" gorm:"foreignKey:ExamID"`

	Token       string     `json:"token" gorm:"size:36;not null;uniqueIndex"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	QuestionOrder QuestionOrder `json:"question_order" gorm:"type:text"`

	Score           int `json:"score" gorm:"not null;default:0"`
	TotalQuestions  int `json:"total_questions" gorm:"not null;default:0"`
	FocusViolations int `json:"focus_violations" gorm:"not null;default:0"`

	// Diagnostics, informational only.
	IPAddress string `json:"ip_address,omitempty" gorm:"size:45"`
	UserAgent string `json:"user_agent,omitempty" gorm:"type:text"`

	Answers   []Answer  `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Attempt) State() AttemptState {
	switch {
	case a.SubmittedAt != nil:
		return AttemptSubmitted
	case a.StartedAt != nil:
		return AttemptActive
	default:
		return AttemptPending
	}
}

func (a *Attempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// EndsAt returns the attempt deadline, or nil when the attempt has not been
// started. The Exam association must be loaded.
func (a *Attempt) EndsAt() *time.Time {
	if a.StartedAt == nil {
		return nil
	}
	ends := a.StartedAt.Add(a.Exam.Duration())
	return &ends
}

// Expired reports whether the deadline has passed at the given instant.
// The boundary itself counts as expired.
func (a *Attempt) Expired(now time.Time) bool {
	ends := a.EndsAt()
	return ends != nil && !now.Before(*ends)
}

// SecondsLeft returns the remaining time in whole seconds, never negative.
func (a *Attempt) SecondsLeft(now time.Time) int {
	ends := a.EndsAt()
	if ends == nil {
		return int(a.Exam.Duration().Seconds())
	}
	left := int(ends.Sub(now).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// URL builds the shareable attempt link. The token is the only credential.
func (a *Attempt) URL(baseURL string) string {
	return fmt.Sprintf("%s/exam/%s/", baseURL, a.Token)
}
