package notify

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bowerhall/chainverse/internal/logger"
)

type telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func newTelegram(token string, chatID int64) (Notifier, error) {
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	logger.Info("telegram notifier ready", "bot", api.Self.UserName, "chat", chatID)
	return &telegram{api: api, chatID: chatID}, nil
}

func (t *telegram) PoemPublished(ctx context.Context, date, content string) error {
	msg := tgbotapi.NewMessage(t.chatID, announcement(date, content))
	_, err := t.api.Send(msg)
	return err
}
