package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	generationInterval = 24 * time.Hour
	payrollJobTimeout  = 5 * time.Minute
)

// SlotGenerator разворачивает недельные шаблоны в слоты
type SlotGenerator interface {
	Generate(ctx context.Context, weeksAhead int) (int, error)
}

// PayrollRecalculator пересчитывает зарплаты за месяц
type PayrollRecalculator interface {
	RecalculateMonth(ctx context.Context, yearMonth string) (int, error)
}

// Purger чистит устаревшие записи кэша
type Purger interface {
	Purge() int
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	generator   SlotGenerator
	payroll     PayrollRecalculator
	weeksAhead  int
	payrollSpec string
	purger      Purger
	cronEngine  *cron.Cron
	now         func() time.Time
	logger      *zap.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func NewScheduler(
	generator SlotGenerator,
	payroll PayrollRecalculator,
	weeksAhead int,
	payrollSpec string,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		generator:   generator,
		payroll:     payroll,
		weeksAhead:  weeksAhead,
		payrollSpec: payrollSpec,
		cronEngine:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		now:         time.Now,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// WithCachePurge раз в час удаляет протухшие снимки месяцев
func (s *Scheduler) WithCachePurge(p Purger) *Scheduler {
	s.purger = p
	return s
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler",
		zap.Int("weeks_ahead", s.weeksAhead),
		zap.String("payroll_cron", s.payrollSpec))

	_, err := s.cronEngine.AddFunc(s.payrollSpec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, payrollJobTimeout)
		defer cancel()
		s.recalculatePayroll(jobCtx)
	})
	if err != nil {
		return err
	}

	if s.purger != nil {
		if _, err := s.cronEngine.AddFunc("@hourly", s.purgeCache); err != nil {
			return err
		}
	}

	s.cronEngine.Start()

	s.wg.Add(1)
	go s.runSlotGenerationTask(ctx)

	return nil
}

// Stop останавливает фоновые задачи и дожидается текущих
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.cronEngine.Stop().Done()
	s.wg.Wait()
}

// runSlotGenerationTask раз в сутки генерирует слоты по шаблонам
func (s *Scheduler) runSlotGenerationTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.generateSlots(ctx)

	ticker := time.NewTicker(generationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.generateSlots(ctx)
		case <-s.stopChan:
			s.logger.Info("Slot generation task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Slot generation task cancelled")
			return
		}
	}
}

func (s *Scheduler) generateSlots(ctx context.Context) {
	created, err := s.generator.Generate(ctx, s.weeksAhead)
	if err != nil {
		s.logger.Error("Failed to generate slots", zap.Error(err))
		return
	}
	s.logger.Info("Automatic slot generation completed", zap.Int("created", created))
}

func (s *Scheduler) purgeCache() {
	if n := s.purger.Purge(); n > 0 {
		s.logger.Debug("Expired cache entries purged", zap.Int("count", n))
	}
}

// recalculatePayroll пересчитывает текущий месяц, а первого числа ещё и прошлый
func (s *Scheduler) recalculatePayroll(ctx context.Context) {
	for _, ym := range payrollMonths(s.now()) {
		n, err := s.payroll.RecalculateMonth(ctx, ym)
		if err != nil {
			s.logger.Error("Failed to recalculate payroll",
				zap.String("year_month", ym),
				zap.Error(err))
			continue
		}
		s.logger.Info("Payroll job completed",
			zap.String("year_month", ym),
			zap.Int("assistants", n))
	}
}

func payrollMonths(now time.Time) []string {
	current := now.Format(timegrid.MonthLayout)
	if now.Day() != 1 {
		return []string{current}
	}
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return []string{prev.Format(timegrid.MonthLayout), current}
}
