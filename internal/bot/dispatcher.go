package bot

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Caracal/internal/model"
	"github.com/lshigami/Caracal/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Sender is the slice of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dispatcher routes incoming webhook updates by update type: chat-member
// changes, callback queries, then plain messages. Messages belonging to an
// in-progress application dialogue are handed to the flow; everything else
// goes through the menu router.
type Dispatcher struct {
	api  Sender
	repo repository.BotRepository
	flow *ApplicationFlow
}

func NewDispatcher(api Sender, repo repository.BotRepository) *Dispatcher {
	return &Dispatcher{
		api:  api,
		repo: repo,
		flow: NewApplicationFlow(api, repo),
	}
}

// WebhookHandler adapts the dispatcher to the gin route.
func (d *Dispatcher) WebhookHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var update tgbotapi.Update
		if err := ctx.ShouldBindJSON(&update); err != nil {
			log.Warn().Err(err).Msg("Webhook: failed to decode update")
			ctx.String(http.StatusOK, "error")
			return
		}
		d.HandleUpdate(update)
		ctx.String(http.StatusOK, "ok")
	}
}

func (d *Dispatcher) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.MyChatMember != nil:
		d.handleChatMember(update.MyChatMember)
	case update.CallbackQuery != nil:
		d.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(update.Message)
	}
}

func (d *Dispatcher) handleChatMember(change *tgbotapi.ChatMemberUpdated) {
	if change.NewChatMember.Status != "kicked" {
		return
	}
	if err := d.repo.MarkUserDeleted(change.From.ID); err != nil {
		log.Error().Err(err).Int64("telegramID", change.From.ID).Msg("Failed to mark user deleted")
	}
}

func (d *Dispatcher) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	d.upsertUser(msg.From)

	if msg.IsCommand() && msg.Command() == "start" {
		// A fresh /start abandons any dialogue in progress.
		if err := d.repo.DeleteSessionByChat(msg.Chat.ID); err != nil {
			log.Error().Err(err).Int64("chatID", msg.Chat.ID).Msg("Failed to clear dialog session")
		}
		d.sendMainMenu(msg.Chat.ID)
		return
	}

	sess, err := d.repo.FindSessionByChat(msg.Chat.ID)
	if err == nil {
		d.flow.Advance(sess, msg.Text)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Int64("chatID", msg.Chat.ID).Msg("Failed to load dialog session")
		return
	}

	d.routeMenu(msg)
}

func (d *Dispatcher) handleCallback(cb *tgbotapi.CallbackQuery) {
	// Always acknowledge so the client stops its spinner.
	if _, err := d.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Warn().Err(err).Msg("Failed to answer callback query")
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == "back_cat":
		d.sendJobCategories(chatID)
	case strings.HasPrefix(cb.Data, "cat_"):
		if id, ok := parseCallbackID(cb.Data, "cat_"); ok {
			d.sendLocations(chatID, cb.Message.MessageID, id)
		}
	case strings.HasPrefix(cb.Data, "loc_"):
		if id, ok := parseCallbackID(cb.Data, "loc_"); ok {
			d.flow.Start(chatID, cb.From.ID, id)
		}
	case strings.HasPrefix(cb.Data, "pos_"):
		if id, ok := parseCallbackID(cb.Data, "pos_"); ok {
			d.selectPosition(chatID, id)
		}
	}
}

func (d *Dispatcher) selectPosition(chatID int64, positionID uint) {
	sess, err := d.repo.FindSessionByChat(chatID)
	if err != nil {
		log.Warn().Err(err).Int64("chatID", chatID).Msg("Position picked without a dialogue in progress")
		return
	}
	d.flow.SelectPosition(sess, positionID)
}

func (d *Dispatcher) upsertUser(from *tgbotapi.User) {
	user := model.TgUser{
		TelegramID:   from.ID,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		IsBot:        from.IsBot,
		LanguageCode: from.LanguageCode,
		Deleted:      false,
	}
	if err := d.repo.UpsertUser(&user); err != nil {
		log.Error().Err(err).Int64("telegramID", from.ID).Msg("Failed to upsert telegram user")
	}
}

func (d *Dispatcher) routeMenu(msg *tgbotapi.Message) {
	menu, err := d.repo.FindMenuByTitle(msg.Text)
	if err != nil {
		d.send(tgbotapi.NewMessage(msg.Chat.ID, "Menyudan tanlang."))
		return
	}

	switch menu.Key {
	case "about", "contact":
		d.sendPageContent(msg.Chat.ID, menu.Key)
	case "jobs":
		d.sendJobCategories(msg.Chat.ID)
	}
}

func (d *Dispatcher) sendMainMenu(chatID int64) {
	menus, err := d.repo.ListMenus()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list menus")
		return
	}

	titles := make([]string, len(menus))
	for i, m := range menus {
		titles[i] = m.Title
	}
	reply := tgbotapi.NewMessage(chatID, "Assalomu alaykum! Menyudan tanlang:")
	reply.ReplyMarkup = replyKeyboard(titles)
	d.send(reply)
}

func (d *Dispatcher) sendPageContent(chatID int64, key string) {
	page, err := d.repo.FindPageContent(key)
	if err != nil {
		d.send(tgbotapi.NewMessage(chatID, "Ma'lumot topilmadi."))
		return
	}
	reply := tgbotapi.NewMessage(chatID, page.Text)
	reply.ParseMode = tgbotapi.ModeHTML
	d.send(reply)
}

func (d *Dispatcher) sendJobCategories(chatID int64) {
	categories, err := d.repo.ListCategories()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list job categories")
		return
	}

	var buttons []tgbotapi.InlineKeyboardButton
	for _, cat := range categories {
		label := strings.TrimSpace(cat.Icon + " " + cat.Name)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(label, "cat_"+strconv.FormatUint(uint64(cat.ID), 10)))
	}
	reply := tgbotapi.NewMessage(chatID, "Bo‘limni tanlang:")
	reply.ReplyMarkup = inlineKeyboard(buttons, nil)
	d.send(reply)
}

func (d *Dispatcher) sendLocations(chatID int64, messageID int, categoryID uint) {
	locations, err := d.repo.ListLocationsByCategory(categoryID)
	if err != nil {
		log.Error().Err(err).Uint("categoryID", categoryID).Msg("Failed to list locations")
		return
	}

	var buttons []tgbotapi.InlineKeyboardButton
	for _, loc := range locations {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(loc.Name, "loc_"+strconv.FormatUint(uint64(loc.ID), 10)))
	}
	back := tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(backButtonText, "back_cat"))

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, "Joyni tanlang:", inlineKeyboard(buttons, &back))
	d.send(edit)
}

func (d *Dispatcher) send(c tgbotapi.Chattable) {
	if _, err := d.api.Send(c); err != nil {
		log.Error().Err(err).Msg("Failed to send telegram message")
	}
}

func parseCallbackID(data, prefix string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 32)
	if err != nil {
		log.Warn().Str("data", data).Msg("Malformed callback data")
		return 0, false
	}
	return uint(id), true
}
