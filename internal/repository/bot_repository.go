package repository

import (
	"github.com/lshigami/Caracal/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BotRepository interface {
	UpsertUser(user *model.TgUser) error
	FindUserByTelegramID(telegramID int64) (*model.TgUser, error)
	MarkUserDeleted(telegramID int64) error

	ListMenus() ([]model.Menu, error)
	FindMenuByTitle(title string) (*model.Menu, error)
	FindPageContent(key string) (*model.PageContent, error)

	ListCategories() ([]model.JobCategory, error)
	ListLocationsByCategory(categoryID uint) ([]model.Location, error)
	FindLocation(id uint) (*model.Location, error)
	ListPositionsByCategory(categoryID uint) ([]model.Position, error)

	CreateApplication(app *model.JobApplication) error
	FindApplication(id uint) (*model.JobApplication, error)
	SaveApplication(app *model.JobApplication) error

	FindSessionByChat(chatID int64) (*model.DialogSession, error)
	SaveSession(sess *model.DialogSession) error
	DeleteSessionByChat(chatID int64) error
}

type botRepository struct {
	db *gorm.DB
}

func NewBotRepository(db *gorm.DB) BotRepository {
	return &botRepository{db: db}
}

func (r *botRepository) UpsertUser(user *model.TgUser) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "username", "is_bot", "language_code", "deleted",
		}),
	}).Create(user).Error
}

func (r *botRepository) FindUserByTelegramID(telegramID int64) (*model.TgUser, error) {
	var user model.TgUser
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error
	return &user, err
}

func (r *botRepository) MarkUserDeleted(telegramID int64) error {
	return r.db.Model(&model.TgUser{}).
		Where("telegram_id = ?", telegramID).
		Update("deleted", true).Error
}

func (r *botRepository) ListMenus() ([]model.Menu, error) {
	var menus []model.Menu
	err := r.db.Order("id ASC").Find(&menus).Error
	return menus, err
}

func (r *botRepository) FindMenuByTitle(title string) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.Where("title = ?", title).First(&menu).Error
	return &menu, err
}

func (r *botRepository) FindPageContent(key string) (*model.PageContent, error) {
	var page model.PageContent
	err := r.db.Where("key = ?", key).First(&page).Error
	return &page, err
}

func (r *botRepository) ListCategories() ([]model.JobCategory, error) {
	var categories []model.JobCategory
	err := r.db.Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *botRepository) ListLocationsByCategory(categoryID uint) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.Where("category_id = ?", categoryID).Order("id ASC").Find(&locations).Error
	return locations, err
}

func (r *botRepository) FindLocation(id uint) (*model.Location, error) {
	var location model.Location
	err := r.db.First(&location, id).Error
	return &location, err
}

func (r *botRepository) ListPositionsByCategory(categoryID uint) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.Where("category_id = ?", categoryID).Order("id ASC").Find(&positions).Error
	return positions, err
}

func (r *botRepository) CreateApplication(app *model.JobApplication) error {
	return r.db.Create(app).Error
}

func (r *botRepository) FindApplication(id uint) (*model.JobApplication, error) {
	var app model.JobApplication
	err := r.db.Preload("Location").First(&app, id).Error
	return &app, err
}

func (r *botRepository) SaveApplication(app *model.JobApplication) error {
	return r.db.Save(app).Error
}

func (r *botRepository) FindSessionByChat(chatID int64) (*model.DialogSession, error) {
	var sess model.DialogSession
	err := r.db.Where("chat_id = ?", chatID).First(&sess).Error
	return &sess, err
}

func (r *botRepository) SaveSession(sess *model.DialogSession) error {
	return r.db.Save(sess).Error
}

func (r *botRepository) DeleteSessionByChat(chatID int64) error {
	return r.db.Where("chat_id = ?", chatID).Delete(&model.DialogSession{}).Error
}
