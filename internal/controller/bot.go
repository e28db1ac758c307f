package controller

import (
	"context"

	"github.com/Freeeeeet/tutor_clinic/internal/controller/handlers"
	"github.com/Freeeeeet/tutor_clinic/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	slotService *service.SlotService,
	payrollService *service.PayrollService,
	adminChatID int64,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(slotService, payrollService, adminChatID, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypeExact, c.handlers.HandlePending)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/approve", bot.MatchTypePrefix, c.handlers.HandleApprove)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypePrefix, c.handlers.HandleReset)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delete", bot.MatchTypePrefix, c.handlers.HandleDelete)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/payroll", bot.MatchTypePrefix, c.handlers.HandlePayroll)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "pending", Description: "📋 Заявки, ожидающие решения"},
		{Command: "approve", Description: "✅ Одобрить: /approve <id> [аудитория]"},
		{Command: "reset", Description: "↩️ Отклонить заявку: /reset <id>"},
		{Command: "delete", Description: "🗑 Удалить слот: /delete <id>"},
		{Command: "payroll", Description: "💰 Зарплата: /payroll <taId> <YYYY-MM> [ставка]"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота, блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
