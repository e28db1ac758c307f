package handlers

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireAdmin пропускает только сообщения из админского чата
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil {
		return false
	}

	chatID := update.Message.Chat.ID
	if h.adminChatID == 0 || chatID != h.adminChatID {
		h.logger.Warn("Command from non-admin chat ignored",
			zap.Int64("chat_id", chatID),
			zap.String("text", update.Message.Text))
		h.sendError(ctx, b, chatID, "❌ Эта команда доступна только администраторам.")
		return false
	}

	return true
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func senderName(update *models.Update) string {
	if update.Message.From == nil {
		return "admin"
	}
	if update.Message.From.Username != "" {
		return update.Message.From.Username
	}
	return update.Message.From.FirstName
}

func senderID(update *models.Update) int64 {
	if update.Message.From == nil {
		return update.Message.Chat.ID
	}
	return update.Message.From.ID
}

func formatUserID(id int64) string {
	return "tg:" + strconv.FormatInt(id, 10)
}
