package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramSink отправляет сообщения в чат администраторов клиники
type TelegramSink struct {
	bot    *bot.Bot
	chatID int64
}

func NewTelegramSink(b *bot.Bot, chatID int64) *TelegramSink {
	return &TelegramSink{bot: b, chatID: chatID}
}

func (s *TelegramSink) Send(ctx context.Context, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
