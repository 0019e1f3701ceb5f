package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// replyKeyboard lays the given titles out two buttons per row.
func replyKeyboard(titles []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(titles); i += 2 {
		end := i + 2
		if end > len(titles) {
			end = len(titles)
		}
		var row []tgbotapi.KeyboardButton
		for _, title := range titles[i:end] {
			row = append(row, tgbotapi.NewKeyboardButton(title))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// backKeyboard is the single-button keyboard shown during dialogue steps.
func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([]string{backButtonText})
}

// inlineKeyboard lays the buttons out two per row, with an optional trailing
// row (used for the back button under location lists).
func inlineKeyboard(buttons []tgbotapi.InlineKeyboardButton, back *[]tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	if back != nil {
		rows = append(rows, *back)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
