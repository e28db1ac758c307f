package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/tutor_clinic/internal/app"
	"github.com/Freeeeeet/tutor_clinic/internal/cache"
	"github.com/Freeeeeet/tutor_clinic/internal/config"
	"github.com/Freeeeeet/tutor_clinic/internal/controller"
	"github.com/Freeeeeet/tutor_clinic/internal/notify"
	"github.com/Freeeeeet/tutor_clinic/internal/repository"
	"github.com/Freeeeeet/tutor_clinic/internal/service"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Clinic scheduler stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting clinic scheduler",
		zap.String("environment", cfg.Environment),
		zap.Bool("telegram", cfg.HasTelegram()))

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	slotRepo := repository.NewSlotRepository(pool)
	payrollRepo := repository.NewPayrollRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool, logger)

	window := timegrid.Window{OpenHour: cfg.OpenHour, CloseHour: cfg.CloseHour}
	monthCache := cache.NewMonthCache(cfg.CacheTTL)

	var b *bot.Bot
	var sink notify.Sink = notify.NewLogSink(logger)
	if cfg.HasTelegram() {
		b, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
		if cfg.AdminChatID != 0 {
			sink = notify.NewTelegramSink(b, cfg.AdminChatID)
		}
	}

	notifier := notify.NewNotifier(sink, logger)
	defer notifier.Wait()

	slotService := service.NewSlotService(slotRepo, monthCache, notifier, service.SlotServiceConfig{
		Window:         window,
		ClaimAheadDays: cfg.ClaimAheadDays,
	}, logger)
	payrollService := service.NewPayrollService(payrollRepo, slotRepo, cfg.DefaultHourlyRate, logger)
	scheduleService := service.NewScheduleService(templateRepo, slotRepo, monthCache, window, logger)

	scheduler := app.NewScheduler(scheduleService, payrollService, cfg.TemplateWeeksAhead, cfg.PayrollCron, logger).
		WithCachePurge(monthCache)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	if b == nil {
		logger.Warn("TELEGRAM_TOKEN is not set, running background jobs only")
		<-ctx.Done()
		return nil
	}

	botController := controller.NewBotController(b, slotService, payrollService, cfg.AdminChatID, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		return fmt.Errorf("register handlers: %w", err)
	}

	// блокируется до сигнала остановки
	botController.Start(ctx)

	logger.Info("Clinic scheduler stopped")
	return nil
}
