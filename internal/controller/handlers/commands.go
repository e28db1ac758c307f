package handlers

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Команды администратора:\n\n" +
		"/pending - Заявки, ожидающие решения\n" +
		"/approve <id> [аудитория] - Одобрить заявку, отмену или добавление\n" +
		"/reset <id> - Вернуть заявку в свободные\n" +
		"/delete <id> - Удалить слот\n" +
		"/payroll <taId> <YYYY-MM> [ставка] - Пересчитать зарплату\n" +
		"/help - Показать эту справку"

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandlePending обрабатывает команду /pending
func (h *Handlers) HandlePending(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	var all []*model.SessionSlot
	current, next := h.months()
	for _, ym := range []string{current, next} {
		slots, err := h.slotService.ListMonth(ctx, ym)
		if err != nil {
			h.logger.Error("Failed to list slots", zap.String("year_month", ym), zap.Error(err))
			h.sendError(ctx, b, chatID, model.ErrorMessage(err))
			return
		}
		all = append(all, slots...)
	}

	h.sendMessage(ctx, b, chatID, FormatPending(all))
}

// HandleApprove обрабатывает команду /approve <id> [аудитория]
func (h *Handlers) HandleApprove(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	args, err := parseApproveArgs(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, model.ErrorMessage(err))
		return
	}

	actor := adminActor(senderID(update), senderName(update))
	slot, err := h.slotService.Approve(ctx, actor, args.ID, args.Classroom)
	if err != nil {
		h.replyError(ctx, b, chatID, "approve", err)
		return
	}

	if slot == nil {
		h.sendMessage(ctx, b, chatID, "🗑 Отмена одобрена, слот удалён")
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Одобрено\n\n"+FormatSlot(slot))
}

// HandleReset обрабатывает команду /reset <id>
func (h *Handlers) HandleReset(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	id, err := parseSlotID(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, model.ErrorMessage(err))
		return
	}

	slot, err := h.slotService.Reset(ctx, adminActor(senderID(update), senderName(update)), id)
	if err != nil {
		h.replyError(ctx, b, chatID, "reset", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "↩️ Заявка отклонена\n\n"+FormatSlot(slot))
}

// HandleDelete обрабатывает команду /delete <id>
func (h *Handlers) HandleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	id, err := parseSlotID(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, model.ErrorMessage(err))
		return
	}

	if err := h.slotService.Delete(ctx, adminActor(senderID(update), senderName(update)), id); err != nil {
		h.replyError(ctx, b, chatID, "delete", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "🗑 Слот удалён")
}

// HandlePayroll обрабатывает команду /payroll <taId> <YYYY-MM> [ставка]
func (h *Handlers) HandlePayroll(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	chatID := update.Message.Chat.ID

	args, err := parsePayrollArgs(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, model.ErrorMessage(err))
		return
	}

	rec, err := h.payrollService.Recalculate(ctx, args.TAID, args.YearMonth, args.Rate)
	if err != nil {
		h.replyError(ctx, b, chatID, "payroll", err)
		return
	}
	h.sendMessage(ctx, b, chatID, FormatPayroll(rec))
}

// replyError пользователю уходит текст ошибки, в лог только неожиданные
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, command string, err error) {
	if errors.Is(err, model.ErrStoreUnavailable) {
		h.logger.Error("Command failed",
			zap.String("command", command),
			zap.Error(err))
	}
	h.sendError(ctx, b, chatID, model.ErrorMessage(err))
}
