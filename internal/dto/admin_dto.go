package dto

// ChoiceCreateDTO is used within QuestionCreateDTO for admin exam creation.
type ChoiceCreateDTO struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateDTO is used within ExamCreateDTO for admin exam creation.
type QuestionCreateDTO struct {
	Text      string            `json:"text" binding:"required"`
	Type      string            `json:"type" binding:"required,oneof=MCQ TF SHORT"`
	OrderHint int               `json:"order"`
	ImageURL  *string           `json:"image_url"`
	Choices   []ChoiceCreateDTO `json:"choices" binding:"omitempty,dive"`
}

// ExamCreateDTO is for the operator to create a new exam with all its questions.
type ExamCreateDTO struct {
	Title              string              `json:"title" binding:"required"`
	Description        string              `json:"description,omitempty"`
	DurationMinutes    uint                `json:"duration_minutes" binding:"required,gt=0"`
	ShuffleQuestions   bool                `json:"shuffle_questions"`
	MaxFocusViolations uint                `json:"max_focus_violations"`
	Questions          []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}
