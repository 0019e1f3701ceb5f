package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recorder captures outgoing Telegram traffic instead of sending it.
type recorder struct {
	sent []tgbotapi.Chattable
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.sent = append(r.sent, c)
	return tgbotapi.Message{}, nil
}

func (r *recorder) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.sent = append(r.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (r *recorder) lastText(t *testing.T) string {
	t.Helper()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if msg, ok := r.sent[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
	}
	t.Fatal("no message was sent")
	return ""
}

func newBotFixture(t *testing.T) (*gorm.DB, repository.BotRepository, *recorder, *ApplicationFlow) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.TgUser{}, &model.Menu{}, &model.JobCategory{}, &model.Location{},
		&model.Position{}, &model.JobApplication{}, &model.PageContent{}, &model.DialogSession{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	repo := repository.NewBotRepository(db)
	rec := &recorder{}
	return db, repo, rec, NewApplicationFlow(rec, repo)
}

const (
	testChatID     = int64(1001)
	testTelegramID = int64(555)
)

func seedBotData(t *testing.T, db *gorm.DB) (model.Location, model.Position) {
	t.Helper()
	user := model.TgUser{TelegramID: testTelegramID, FirstName: "Test"}
	category := model.JobCategory{Name: "Retail"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	lat, lon := 41.3, 69.2
	location := model.Location{CategoryID: category.ID, Name: "Main Branch", Latitude: &lat, Longitude: &lon}
	if err := db.Create(&location).Error; err != nil {
		t.Fatalf("seed location: %v", err)
	}
	position := model.Position{CategoryID: &category.ID, Title: "Cashier"}
	if err := db.Create(&position).Error; err != nil {
		t.Fatalf("seed position: %v", err)
	}
	for _, m := range []model.Menu{
		{Key: "jobs", Title: "Bo'sh ish o'rinlari"},
		{Key: "about", Title: "Biz haqimizda"},
	} {
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed menu: %v", err)
		}
	}
	return location, position
}

func sessionState(t *testing.T, repo repository.BotRepository) model.DialogState {
	t.Helper()
	sess, err := repo.FindSessionByChat(testChatID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return sess.State
}

func advance(t *testing.T, repo repository.BotRepository, flow *ApplicationFlow, text string) {
	t.Helper()
	sess, err := repo.FindSessionByChat(testChatID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	flow.Advance(sess, text)
}

func TestApplicationFlowHappyPath(t *testing.T) {
	db, repo, rec, flow := newBotFixture(t)
	location, position := seedBotData(t, db)

	flow.Start(testChatID, testTelegramID, location.ID)
	if got := sessionState(t, repo); got != model.StateAwaitingBirthDate {
		t.Fatalf("expected birth date state, got %q", got)
	}

	advance(t, repo, flow, "1990-05-14")
	if got := sessionState(t, repo); got != model.StateAwaitingRegion {
		t.Fatalf("expected region state, got %q", got)
	}

	advance(t, repo, flow, "Tashkent")
	advance(t, repo, flow, "Chilonzor")
	if got := sessionState(t, repo); got != model.StateAwaitingPosition {
		t.Fatalf("expected position state, got %q", got)
	}

	sess, err := repo.FindSessionByChat(testChatID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	flow.SelectPosition(sess, position.ID)
	if got := sessionState(t, repo); got != model.StateAwaitingPreviousJob {
		t.Fatalf("expected previous job state, got %q", got)
	}

	advance(t, repo, flow, "Sales assistant")
	advance(t, repo, flow, "+998901234567")

	if _, err := repo.FindSessionByChat(testChatID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected session deleted after completion, got %v", err)
	}
	if got := rec.lastText(t); got != "Ariza qabul qilindi. Rahmat!" {
		t.Errorf("unexpected closing message %q", got)
	}

	var app model.JobApplication
	if err := db.Preload("Location").Preload("Position").First(&app).Error; err != nil {
		t.Fatalf("load application: %v", err)
	}
	if app.BirthDate == nil || !app.BirthDate.Equal(time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected birth date %v", app.BirthDate)
	}
	if app.Region != "Tashkent" || app.District != "Chilonzor" {
		t.Errorf("unexpected region/district %q/%q", app.Region, app.District)
	}
	if app.PositionID == nil || *app.PositionID != position.ID {
		t.Errorf("unexpected position %v", app.PositionID)
	}
	if app.PreviousJob != "Sales assistant" || app.PhoneNumber != "+998901234567" {
		t.Errorf("unexpected previous job/phone %q/%q", app.PreviousJob, app.PhoneNumber)
	}
	if app.Status != model.ApplicationNew {
		t.Errorf("unexpected status %q", app.Status)
	}
}

func TestApplicationFlowRejectsBadDate(t *testing.T) {
	db, repo, rec, flow := newBotFixture(t)
	location, _ := seedBotData(t, db)

	flow.Start(testChatID, testTelegramID, location.ID)
	advance(t, repo, flow, "yesterday")

	if got := sessionState(t, repo); got != model.StateAwaitingBirthDate {
		t.Fatalf("invalid date must not advance the state, got %q", got)
	}
	texts := make([]string, 0, len(rec.sent))
	for _, c := range rec.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	found := false
	for _, text := range texts {
		if text == "Noto‘g‘ri format!" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected format complaint, sent: %v", texts)
	}

	// Alternative separators are accepted.
	advance(t, repo, flow, "14.05.1990")
	if got := sessionState(t, repo); got != model.StateAwaitingRegion {
		t.Fatalf("expected region state after valid date, got %q", got)
	}
}

func TestApplicationFlowBackTransitions(t *testing.T) {
	db, repo, _, flow := newBotFixture(t)
	location, _ := seedBotData(t, db)

	flow.Start(testChatID, testTelegramID, location.ID)
	advance(t, repo, flow, "1990-05-14")
	advance(t, repo, flow, "Tashkent")
	if got := sessionState(t, repo); got != model.StateAwaitingDistrict {
		t.Fatalf("expected district state, got %q", got)
	}

	advance(t, repo, flow, backButtonText)
	if got := sessionState(t, repo); got != model.StateAwaitingRegion {
		t.Fatalf("back from district: expected region state, got %q", got)
	}

	advance(t, repo, flow, backButtonText)
	if got := sessionState(t, repo); got != model.StateAwaitingBirthDate {
		t.Fatalf("back from region: expected birth date state, got %q", got)
	}

	// Backing out of the first step cancels the dialogue entirely.
	advance(t, repo, flow, backButtonText)
	if _, err := repo.FindSessionByChat(testChatID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected session deleted after cancel, got %v", err)
	}
}

func TestApplicationFlowBackSkipsPositionStep(t *testing.T) {
	db, repo, _, flow := newBotFixture(t)
	location, position := seedBotData(t, db)

	flow.Start(testChatID, testTelegramID, location.ID)
	advance(t, repo, flow, "1990-05-14")
	advance(t, repo, flow, "Tashkent")
	advance(t, repo, flow, "Chilonzor")

	sess, err := repo.FindSessionByChat(testChatID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	flow.SelectPosition(sess, position.ID)

	// Back from previous job lands on district, not on the inline position pick.
	advance(t, repo, flow, backButtonText)
	if got := sessionState(t, repo); got != model.StateAwaitingDistrict {
		t.Fatalf("back from previous job: expected district state, got %q", got)
	}
}

func TestParseDateFormats(t *testing.T) {
	want := time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"1990-05-14", "14-05-1990", "14.05.1990", "14/05/1990"} {
		got, ok := parseDate(input)
		if !ok {
			t.Errorf("%q: expected successful parse", input)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%q: expected %v, got %v", input, want, got)
		}
	}
	for _, input := range []string{"", "yesterday", "1990/05/14", "32.13.1990"} {
		if _, ok := parseDate(input); ok {
			t.Errorf("%q: expected parse failure", input)
		}
	}
}

func TestDispatcherStartCommandSendsMenu(t *testing.T) {
	db, repo, rec, _ := newBotFixture(t)
	seedBotData(t, db)
	d := NewDispatcher(rec, repo)

	d.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/start",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
		From:     &tgbotapi.User{ID: testTelegramID, FirstName: "Test"},
		Chat:     &tgbotapi.Chat{ID: testChatID},
	}})

	if got := rec.lastText(t); got != "Assalomu alaykum! Menyudan tanlang:" {
		t.Errorf("unexpected greeting %q", got)
	}

	user, err := repo.FindUserByTelegramID(testTelegramID)
	if err != nil {
		t.Fatalf("expected user upserted, got %v", err)
	}
	if user.FirstName != "Test" {
		t.Errorf("unexpected first name %q", user.FirstName)
	}
}

func TestDispatcherRoutesDialogueMessages(t *testing.T) {
	db, repo, rec, _ := newBotFixture(t)
	location, _ := seedBotData(t, db)
	d := NewDispatcher(rec, repo)

	d.flow.Start(testChatID, testTelegramID, location.ID)
	d.HandleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "1990-05-14",
		From: &tgbotapi.User{ID: testTelegramID, FirstName: "Test"},
		Chat: &tgbotapi.Chat{ID: testChatID},
	}})

	if got := sessionState(t, repo); got != model.StateAwaitingRegion {
		t.Fatalf("expected dialogue to advance to region, got %q", got)
	}
}
