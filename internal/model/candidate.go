package model

import "time"

// Candidate is an identity record keyed by email. Telegram-sourced candidates
// additionally carry their telegram id.
type Candidate struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	FullName   string    `json:"full_name" gorm:"size:150;not null"`
	Email      string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Phone      string    `json:"phone,omitempty" gorm:"size:50"`
	TelegramID *string   `json:"telegram_id,omitempty" gorm:"size:64;uniqueIndex"`
	CreatedAt  time.Time `json:"created_at"`
}
