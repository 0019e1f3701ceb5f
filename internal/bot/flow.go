package bot

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
)

const backButtonText = "⬅️ Ortga"

// backTransitions is the explicit "back" edge per dialogue state. Birth date
// has no entry: backing out of the first step cancels the dialogue. Previous
// job backs to district, since the position in between is picked from an
// inline keyboard, not typed.
var backTransitions = map[model.DialogState]model.DialogState{
	model.StateAwaitingRegion:      model.StateAwaitingBirthDate,
	model.StateAwaitingDistrict:    model.StateAwaitingRegion,
	model.StateAwaitingPosition:    model.StateAwaitingDistrict,
	model.StateAwaitingPreviousJob: model.StateAwaitingDistrict,
	model.StateAwaitingPhone:       model.StateAwaitingPreviousJob,
}

var statePrompts = map[model.DialogState]string{
	model.StateAwaitingBirthDate:   "Tug‘ilgan sana (YYYY-MM-DD):",
	model.StateAwaitingRegion:      "Viloyat:",
	model.StateAwaitingDistrict:    "Tuman:",
	model.StateAwaitingPosition:    "Lavozimni tanlang:",
	model.StateAwaitingPreviousJob: "Oldingi ish joyi:",
	model.StateAwaitingPhone:       "Telefon raqam:",
}

// ApplicationFlow is the finite-state machine behind the job-application
// dialogue. State lives in an explicit DialogSession row keyed by chat, one
// named state per pending question, instead of chained handler registration.
type ApplicationFlow struct {
	api  Sender
	repo repository.BotRepository
}

func NewApplicationFlow(api Sender, repo repository.BotRepository) *ApplicationFlow {
	return &ApplicationFlow{api: api, repo: repo}
}

// Start opens a dialogue for the picked location: creates the empty
// application, pins the session to AwaitingBirthDate and asks the first
// question. An existing dialogue on the same chat is replaced.
func (f *ApplicationFlow) Start(chatID, telegramID int64, locationID uint) {
	user, err := f.repo.FindUserByTelegramID(telegramID)
	if err != nil {
		log.Error().Err(err).Int64("telegramID", telegramID).Msg("Flow start: unknown telegram user")
		return
	}
	location, err := f.repo.FindLocation(locationID)
	if err != nil {
		log.Error().Err(err).Uint("locationID", locationID).Msg("Flow start: unknown location")
		return
	}

	opening := tgbotapi.NewMessage(chatID, "Ariza boshlanmoqda...")
	opening.ReplyMarkup = tgbotapi.ReplyKeyboardRemove{RemoveKeyboard: true}
	f.send(opening)

	if location.Latitude != nil && location.Longitude != nil {
		f.send(tgbotapi.NewLocation(chatID, *location.Latitude, *location.Longitude))
	}

	app := model.JobApplication{
		UserID:     user.ID,
		LocationID: &location.ID,
		Status:     model.ApplicationNew,
	}
	if err := f.repo.CreateApplication(&app); err != nil {
		log.Error().Err(err).Msg("Flow start: failed to create application")
		return
	}

	if err := f.repo.DeleteSessionByChat(chatID); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Flow start: failed to clear previous session")
	}
	sess := model.DialogSession{
		ChatID:        chatID,
		ApplicationID: app.ID,
		State:         model.StateAwaitingBirthDate,
	}
	if err := f.repo.SaveSession(&sess); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Flow start: failed to save session")
		return
	}

	f.prompt(chatID, model.StateAwaitingBirthDate)
}

// Advance feeds one typed message into the machine and moves it along its
// transition table.
func (f *ApplicationFlow) Advance(sess *model.DialogSession, text string) {
	if text == backButtonText {
		f.back(sess)
		return
	}

	app, err := f.repo.FindApplication(sess.ApplicationID)
	if err != nil {
		log.Error().Err(err).Uint("applicationID", sess.ApplicationID).Msg("Flow: application missing, dropping session")
		f.deleteSession(sess.ChatID)
		return
	}

	switch sess.State {
	case model.StateAwaitingBirthDate:
		date, ok := parseDate(text)
		if !ok {
			f.send(tgbotapi.NewMessage(sess.ChatID, "Noto‘g‘ri format!"))
			f.prompt(sess.ChatID, sess.State)
			return
		}
		app.BirthDate = &date
		f.saveAndMove(sess, app, model.StateAwaitingRegion)

	case model.StateAwaitingRegion:
		app.Region = text
		f.saveAndMove(sess, app, model.StateAwaitingDistrict)

	case model.StateAwaitingDistrict:
		app.District = text
		f.saveAndMove(sess, app, model.StateAwaitingPosition)

	case model.StateAwaitingPosition:
		// Positions are picked from the inline keyboard, not typed.
		f.promptPositions(sess.ChatID, app)

	case model.StateAwaitingPreviousJob:
		app.PreviousJob = text
		f.saveAndMove(sess, app, model.StateAwaitingPhone)

	case model.StateAwaitingPhone:
		app.PhoneNumber = text
		if err := f.repo.SaveApplication(app); err != nil {
			log.Error().Err(err).Uint("applicationID", app.ID).Msg("Flow: failed to save application")
			return
		}
		f.finish(sess)
	}
}

// SelectPosition handles the inline position pick while the machine waits in
// AwaitingPosition.
func (f *ApplicationFlow) SelectPosition(sess *model.DialogSession, positionID uint) {
	if sess.State != model.StateAwaitingPosition {
		log.Warn().Int64("chatID", sess.ChatID).Str("state", string(sess.State)).Msg("Flow: position pick in wrong state")
		return
	}
	app, err := f.repo.FindApplication(sess.ApplicationID)
	if err != nil {
		log.Error().Err(err).Uint("applicationID", sess.ApplicationID).Msg("Flow: application missing on position pick")
		return
	}
	app.PositionID = &positionID
	f.saveAndMove(sess, app, model.StateAwaitingPreviousJob)
}

func (f *ApplicationFlow) back(sess *model.DialogSession) {
	prev, ok := backTransitions[sess.State]
	if !ok {
		// Backing out of the first step abandons the dialogue.
		f.deleteSession(sess.ChatID)
		f.send(tgbotapi.NewMessage(sess.ChatID, "Ariza bekor qilindi."))
		return
	}
	sess.State = prev
	if err := f.repo.SaveSession(sess); err != nil {
		log.Error().Err(err).Int64("chatID", sess.ChatID).Msg("Flow: failed to save session on back")
		return
	}
	f.prompt(sess.ChatID, prev)
}

func (f *ApplicationFlow) saveAndMove(sess *model.DialogSession, app *model.JobApplication, next model.DialogState) {
	if err := f.repo.SaveApplication(app); err != nil {
		log.Error().Err(err).Uint("applicationID", app.ID).Msg("Flow: failed to save application")
		return
	}
	sess.State = next
	if err := f.repo.SaveSession(sess); err != nil {
		log.Error().Err(err).Int64("chatID", sess.ChatID).Msg("Flow: failed to save session")
		return
	}
	if next == model.StateAwaitingPosition {
		f.promptPositions(sess.ChatID, app)
		return
	}
	f.prompt(sess.ChatID, next)
}

func (f *ApplicationFlow) finish(sess *model.DialogSession) {
	sess.State = model.StateDone
	f.deleteSession(sess.ChatID)

	menus, err := f.repo.ListMenus()
	if err != nil {
		log.Error().Err(err).Msg("Flow: failed to list menus for closing keyboard")
	}
	titles := make([]string, len(menus))
	for i, m := range menus {
		titles[i] = m.Title
	}
	done := tgbotapi.NewMessage(sess.ChatID, "Ariza qabul qilindi. Rahmat!")
	done.ReplyMarkup = replyKeyboard(titles)
	f.send(done)
}

func (f *ApplicationFlow) prompt(chatID int64, state model.DialogState) {
	reply := tgbotapi.NewMessage(chatID, statePrompts[state])
	reply.ReplyMarkup = backKeyboard()
	f.send(reply)
}

func (f *ApplicationFlow) promptPositions(chatID int64, app *model.JobApplication) {
	var categoryID uint
	if app.Location != nil {
		categoryID = app.Location.CategoryID
	}
	positions, err := f.repo.ListPositionsByCategory(categoryID)
	if err != nil {
		log.Error().Err(err).Uint("categoryID", categoryID).Msg("Flow: failed to list positions")
		return
	}

	var buttons []tgbotapi.InlineKeyboardButton
	for _, pos := range positions {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(pos.Title, "pos_"+strconv.FormatUint(uint64(pos.ID), 10)))
	}
	reply := tgbotapi.NewMessage(chatID, statePrompts[model.StateAwaitingPosition])
	reply.ReplyMarkup = inlineKeyboard(buttons, nil)
	f.send(reply)
}

func (f *ApplicationFlow) deleteSession(chatID int64) {
	if err := f.repo.DeleteSessionByChat(chatID); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Flow: failed to delete session")
	}
}

func (f *ApplicationFlow) send(c tgbotapi.Chattable) {
	if _, err := f.api.Send(c); err != nil {
		log.Error().Err(err).Msg("Flow: failed to send telegram message")
	}
}

var dateFormats = []string{"2006-01-02", "02-01-2006", "02.01.2006", "02/01/2006"}

func parseDate(text string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
