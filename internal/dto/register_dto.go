package dto

// RegisterCandidateDTO is the registration-form payload for one exam.
type RegisterCandidateDTO struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
}

// RegistrationResultDTO carries the single-use attempt link. Repeated
// registrations of the same candidate for the same exam return the existing
// link with AlreadyRegistered set.
type RegistrationResultDTO struct {
	CandidateID       uint   `json:"candidate_id"`
	ExamID            uint   `json:"exam_id"`
	Token             string `json:"token"`
	Link              string `json:"link"`
	AlreadyRegistered bool   `json:"already_registered"`
}
