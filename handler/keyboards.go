package handler

import "github.com/go-telegram/bot/models"

// Button labels and callback data shared by keyboards and update translation.
const (
	ButtonStart  = "📝 Start Filling"
	ButtonBack   = "⬅️ Back"
	ButtonSkip   = "➡️ Skip"
	ButtonCancel = "❌ Cancel"

	ButtonGenerate = "✅ Generate PDF"
	ButtonRestart  = "🔄 Start Over"

	CallbackConfirm = "confirm_cv"
	CallbackRestart = "restart_cv"
)

func mainKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonStart}},
		},
		ResizeKeyboard: true,
	}
}

func formKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: ButtonBack}, {Text: ButtonSkip}},
			{{Text: ButtonCancel}},
		},
		ResizeKeyboard: true,
	}
}

func confirmKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: ButtonGenerate, CallbackData: CallbackConfirm},
				{Text: ButtonRestart, CallbackData: CallbackRestart},
			},
		},
	}
}

func removeKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}
