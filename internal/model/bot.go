package model

import "time"

// TgUser mirrors the Telegram account of a bot conversation partner.
type TgUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	TelegramID   int64     `json:"telegram_id" gorm:"not null;uniqueIndex"`
	FirstName    string    `json:"first_name" gorm:"size:255;not null"`
	LastName     string    `json:"last_name,omitempty" gorm:"size:255"`
	Username     string    `json:"username,omitempty" gorm:"size:255"`
	Phone        string    `json:"phone" gorm:"size:15;default:'-'"`
	IsBot        bool      `json:"is_bot" gorm:"default:false"`
	LanguageCode string    `json:"language_code,omitempty" gorm:"size:10"`
	Deleted      bool      `json:"deleted" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *TgUser) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Menu struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Key   string `json:"key" gorm:"size:50;not null;uniqueIndex"`
	Title string `json:"title" gorm:"size:255;not null"`
}

type JobCategory struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `json:"name" gorm:"size:100;not null"`
	Icon string `json:"icon,omitempty" gorm:"size:20"`
}

type Location struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	CategoryID uint     `json:"category_id" gorm:"not null;index"`
	Name       string   `json:"name" gorm:"size:255;not null"`
	Region     string   `json:"region,omitempty" gorm:"size:100"`
	Address    string   `json:"address,omitempty" gorm:"size:255"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type Position struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	CategoryID *uint  `json:"category_id,omitempty" gorm:"index"`
	Title      string `json:"title" gorm:"size:255;not null"`
}

type ApplicationStatus string

const (
	ApplicationNew      ApplicationStatus = "new"
	ApplicationReview   ApplicationStatus = "review"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// JobApplication is filled in step by step through the bot dialogue.
type JobApplication struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	UserID      uint              `json:"user_id" gorm:"not null;index"`
	User        TgUser            `json:"user,omitempty" gorm:"foreignKey:UserID"`
	BirthDate   *time.Time        `json:"birth_date,omitempty"`
	Region      string            `json:"region,omitempty" gorm:"size:100"`
	District    string            `json:"district,omitempty" gorm:"size:100"`
	PositionID  *uint             `json:"position_id,omitempty"`
	Position    *Position         `json:"position,omitempty" gorm:"foreignKey:PositionID"`
	PreviousJob string            `json:"previous_job,omitempty" gorm:"size:255"`
	LocationID  *uint             `json:"location_id,omitempty"`
	Location    *Location         `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	PhoneNumber string            `json:"phone_number" gorm:"size:20;default:'-'"`
	Status      ApplicationStatus `json:"status" gorm:"size:20;default:'new'"`
	CreatedAt   time.Time         `json:"created_at"`
}

type PageContent struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Key      string `json:"key" gorm:"size:50;not null;uniqueIndex"`
	Text     string `json:"text" gorm:"type:text;not null"`
	ImageURL string `json:"image_url,omitempty"`
}

type DialogState string

const (
	StateAwaitingBirthDate   DialogState = "awaiting_birth_date"
	StateAwaitingRegion      DialogState = "awaiting_region"
	StateAwaitingDistrict    DialogState = "awaiting_district"
	StateAwaitingPosition    DialogState = "awaiting_position"
	StateAwaitingPreviousJob DialogState = "awaiting_previous_job"
	StateAwaitingPhone       DialogState = "awaiting_phone"
	StateDone                DialogState = "done"
)

// DialogSession is the explicit per-chat conversation state row. One in-progress
// application dialogue exists per chat at a time.
type DialogSession struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	ChatID        int64       `json:"chat_id" gorm:"not null;uniqueIndex"`
	ApplicationID uint        `json:"application_id" gorm:"not null"`
	State         DialogState `json:"state" gorm:"size:40;not null"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
