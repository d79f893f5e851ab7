package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go
type Client interface {
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()

	// SendMessage sends MarkdownV2 text and returns the new message id.
	SendMessage(chatID int64, text string) (int, error)

	// EditMessageText replaces the MarkdownV2 text of a sent message.
	EditMessageText(chatID int64, messageID int, text string) error
}
