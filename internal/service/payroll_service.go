package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/payroll"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// recalcConcurrency сколько ассистентов пересчитывается одновременно
const recalcConcurrency = 4

type PayrollService struct {
	payrolls    PayrollStore
	slots       SlotStore
	validate    *validator.Validate
	defaultRate int64
	logger      *zap.Logger
}

func NewPayrollService(payrolls PayrollStore, slots SlotStore, defaultRate int64, logger *zap.Logger) *PayrollService {
	return &PayrollService{
		payrolls:    payrolls,
		slots:       slots,
		validate:    newValidator(),
		defaultRate: defaultRate,
		logger:      logger,
	}
}

// Get получает запись зарплаты; nil, если расчёта ещё не было
func (s *PayrollService) Get(ctx context.Context, userID, yearMonth string) (*model.PayrollRecord, error) {
	return s.payrolls.Get(ctx, userID, yearMonth)
}

// Recalculate пересчитывает месяц ассистента и перезаписывает запись.
// rate <= 0 означает "взять ставку из прошлой записи или ставку по умолчанию".
func (s *PayrollService) Recalculate(ctx context.Context, taID, yearMonth string, rate int64) (*model.PayrollRecord, error) {
	first, last, err := timegrid.MonthRange(yearMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
	}

	if rate <= 0 {
		rate, err = s.rateFor(ctx, taID, yearMonth)
		if err != nil {
			return nil, err
		}
	}

	slots, err := s.slots.QueryByTAAndDateRange(ctx, taID, first, last)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}

	worked := make([]*model.SessionSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Status.IsWorked() {
			worked = append(worked, slot)
		}
	}

	rec, err := payroll.Aggregate(taID, yearMonth, rate, worked)
	if err != nil {
		return nil, fmt.Errorf("aggregate payroll: %w", err)
	}

	if err := s.payrolls.Put(ctx, rec); err != nil {
		s.logger.Error("Failed to save payroll",
			zap.String("ta_id", taID),
			zap.String("year_month", yearMonth),
			zap.Error(err))
		return nil, fmt.Errorf("put payroll: %w", err)
	}

	s.logger.Info("Payroll recalculated",
		zap.String("ta_id", taID),
		zap.String("year_month", yearMonth),
		zap.Int("sessions", len(worked)),
		zap.Float64("total_hours", rec.TotalHours),
		zap.Int64("weekly_holiday_pay", rec.WeeklyHolidayPay),
		zap.Int64("total_gross", rec.TotalGross),
	)

	return rec, nil
}

func (s *PayrollService) rateFor(ctx context.Context, taID, yearMonth string) (int64, error) {
	existing, err := s.payrolls.Get(ctx, taID, yearMonth)
	if err != nil {
		return 0, fmt.Errorf("get payroll: %w", err)
	}
	if existing != nil && existing.HourlyRate > 0 {
		return existing.HourlyRate, nil
	}
	return s.defaultRate, nil
}

// Edit ручная правка админом; итоги пересчитываются, статус становится confirmed
func (s *PayrollService) Edit(ctx context.Context, actor model.Actor, userID, yearMonth string, edit payroll.Edit) (*model.PayrollRecord, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}
	if err := s.validate.Struct(edit); err != nil {
		return nil, validationError(err)
	}

	rec, err := s.payrolls.Get(ctx, userID, yearMonth)
	if err != nil {
		return nil, fmt.Errorf("get payroll: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("payroll %s: %w", model.PayrollKey(userID, yearMonth), model.ErrNotFound)
	}

	edited := payroll.ApplyEdit(rec, edit)
	if err := s.payrolls.Put(ctx, edited); err != nil {
		return nil, fmt.Errorf("put payroll: %w", err)
	}

	s.logger.Info("Payroll edited",
		zap.String("user_id", userID),
		zap.String("year_month", yearMonth),
		zap.Int64("total_gross", edited.TotalGross),
		zap.Int64("net_salary", edited.NetSalary),
	)

	return edited, nil
}

// RecalculateMonth пересчитывает ассистентов с занятиями в месяце и всех, у кого уже есть запись.
// Запись без отработанных слотов обнуляется.
func (s *PayrollService) RecalculateMonth(ctx context.Context, yearMonth string) (int, error) {
	first, last, err := timegrid.MonthRange(yearMonth)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
	}

	slots, err := s.slots.QueryByDateRange(ctx, first, last)
	if err != nil {
		return 0, fmt.Errorf("query month slots: %w", err)
	}

	seen := make(map[string]bool)
	var taIDs []string
	for _, slot := range slots {
		if slot.Status.IsWorked() && !seen[slot.TAID] {
			seen[slot.TAID] = true
			taIDs = append(taIDs, slot.TAID)
		}
	}

	existing, err := s.payrolls.ListByMonth(ctx, yearMonth)
	if err != nil {
		return 0, fmt.Errorf("list month payrolls: %w", err)
	}
	for _, rec := range existing {
		if !seen[rec.UserID] {
			seen[rec.UserID] = true
			taIDs = append(taIDs, rec.UserID)
		}
	}
	sort.Strings(taIDs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcConcurrency)
	for _, taID := range taIDs {
		g.Go(func() error {
			_, err := s.Recalculate(gctx, taID, yearMonth, 0)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	s.logger.Info("Monthly payroll recalculated",
		zap.String("year_month", yearMonth),
		zap.Int("assistants", len(taIDs)),
	)

	return len(taIDs), nil
}
