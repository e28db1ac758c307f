package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/guard"
	"github.com/Freeeeeet/tutor_clinic/internal/lifecycle"
	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotServiceConfig параметры, которые задаёт приложение
type SlotServiceConfig struct {
	Window         timegrid.Window
	ClaimAheadDays int
	Now            func() time.Time
}

type SlotService struct {
	store    SlotStore
	cache    SnapshotCache
	notifier Notifier
	validate *validator.Validate
	cfg      SlotServiceConfig
	logger   *zap.Logger
}

func NewSlotService(
	store SlotStore,
	cache SnapshotCache,
	notifier Notifier,
	cfg SlotServiceConfig,
	logger *zap.Logger,
) *SlotService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SlotService{
		store:    store,
		cache:    cache,
		notifier: notifier,
		validate: newValidator(),
		cfg:      cfg,
		logger:   logger,
	}
}

// Publish публикует свободный слот (ассистент или админ)
func (s *SlotService) Publish(ctx context.Context, actor model.Actor, req PublishRequest) (*model.SessionSlot, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleTA {
		return nil, model.ErrForbidden
	}
	return s.create(ctx, actor, req, model.SlotStatusOpen)
}

// RequestAddition ассистент просит добавить слот; появится после одобрения админом
func (s *SlotService) RequestAddition(ctx context.Context, actor model.Actor, req PublishRequest) (*model.SessionSlot, error) {
	if actor.Role != model.RoleTA {
		return nil, model.ErrForbidden
	}
	return s.create(ctx, actor, req, model.SlotStatusAdditionRequested)
}

func (s *SlotService) create(ctx context.Context, actor model.Actor, req PublishRequest, status model.SlotStatus) (*model.SessionSlot, error) {
	if actor.Role == model.RoleTA && req.TAID != actor.UserID {
		return nil, fmt.Errorf("%w: assistant can only publish own slots", model.ErrForbidden)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	startHour, err := timegrid.ParseHour(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
	}
	endTime := timegrid.FormatHour(startHour + 1)
	if err := timegrid.ValidateSlotTime(s.cfg.Window, req.StartTime, endTime); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
	}

	// Проверяем, не существует ли уже такой слот
	existing, err := s.store.QueryByTAAndDateRange(ctx, req.TAID, req.Date, req.Date)
	if err != nil {
		return nil, fmt.Errorf("query existing slots: %w", err)
	}
	for _, e := range existing {
		if e.StartTime == req.StartTime {
			return nil, fmt.Errorf("%w: slot %s %s already exists for %s",
				model.ErrPreconditionFailed, req.Date, req.StartTime, req.TAName)
		}
	}

	slot := &model.SessionSlot{
		TAID:           req.TAID,
		TAName:         req.TAName,
		TASubject:      req.TASubject,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        endTime,
		Status:         status,
		Source:         model.SlotSourceSystem,
		FeedbackStatus: model.FeedbackStatusNone,
	}

	id, err := s.store.Create(ctx, slot)
	if err != nil {
		s.logger.Error("Failed to create slot",
			zap.String("ta_id", req.TAID),
			zap.String("date", req.Date),
			zap.String("start_time", req.StartTime),
			zap.Error(err))
		return nil, fmt.Errorf("create slot: %w", err)
	}
	slot.ID = id
	s.invalidate(slot.Date)

	s.logger.Info("Slot created",
		zap.String("slot_id", id.String()),
		zap.String("ta_id", slot.TAID),
		zap.String("date", slot.Date),
		zap.String("start_time", slot.StartTime),
		zap.String("status", string(status)),
	)

	return slot, nil
}

// Claim отправляет выбор студента одной атомарной пачкой.
// При любой ошибке выбор сохраняется, при успехе очищается.
func (s *SlotService) Claim(ctx context.Context, actor model.Actor, sel *guard.Selection, req ClaimRequest) ([]*model.SessionSlot, error) {
	if !lifecycle.Permits(actor.Role, lifecycle.ActionClaim) {
		return nil, model.ErrForbidden
	}
	if sel.Student() != actor.Name {
		return nil, fmt.Errorf("%w: selection belongs to %q", model.ErrForbidden, sel.Student())
	}
	req.StudentName = actor.Name
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	picks := sel.Slots()
	if err := guard.ValidateSameDate(picks); err != nil {
		return nil, err
	}
	date := picks[0].Date

	if err := s.checkClaimWindow(date); err != nil {
		return nil, err
	}

	// Решения принимаются по хранилищу, не по кэшу
	day, err := s.store.QueryByDateRange(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("query slots for %s: %w", date, err)
	}
	byID := make(map[uuid.UUID]*model.SessionSlot, len(day))
	for _, slot := range day {
		byID[slot.ID] = slot
	}

	fresh := make([]*model.SessionSlot, 0, len(picks))
	for _, p := range picks {
		slot, ok := byID[p.ID]
		if !ok {
			return nil, fmt.Errorf("slot %s is no longer available: %w", p.ID, model.ErrConflict)
		}
		fresh = append(fresh, slot)
	}

	held := guard.HeldBy(req.StudentName, day)
	if err := guard.CheckSelection(fresh, held); err != nil {
		return nil, err
	}

	in := lifecycle.Input{Student: lifecycle.Student{
		Name:          req.StudentName,
		Phone:         req.StudentPhone,
		Topic:         req.Topic,
		QuestionRange: req.QuestionRange,
	}}

	updates := make([]model.SlotUpdate, 0, len(fresh))
	claimed := make([]*model.SessionSlot, 0, len(fresh))
	for _, slot := range fresh {
		out, err := lifecycle.Transition(slot, lifecycle.ActionClaim, in)
		if err != nil {
			if errors.Is(err, model.ErrInvalidTransition) {
				return nil, fmt.Errorf("slot %s %s is %s: %w", slot.Date, slot.StartTime, slot.Status, model.ErrConflict)
			}
			return nil, err
		}
		updates = append(updates, model.SlotUpdate{ID: slot.ID, Expect: slot.Status, Patch: out.Patch})
		claimed = append(claimed, out.Patch.Apply(slot))
	}

	if err := s.store.BatchApply(ctx, updates); err != nil {
		s.logger.Error("Failed to submit claims",
			zap.String("student", req.StudentName),
			zap.String("date", date),
			zap.Int("count", len(updates)),
			zap.Error(err))
		return nil, fmt.Errorf("submit claims: %w", err)
	}

	sel.Clear()
	s.invalidate(date)

	s.logger.Info("Slots claimed",
		zap.String("student", req.StudentName),
		zap.String("date", date),
		zap.Int("count", len(claimed)),
	)

	return claimed, nil
}

func (s *SlotService) checkClaimWindow(date string) error {
	d, err := timegrid.ParseDate(date)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
	}

	now := s.cfg.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return fmt.Errorf("%w: %s is in the past", model.ErrPreconditionFailed, date)
	}
	if s.cfg.ClaimAheadDays > 0 && d.After(today.AddDate(0, 0, s.cfg.ClaimAheadDays)) {
		return fmt.Errorf("%w: booking opens %d days ahead", model.ErrPreconditionFailed, s.cfg.ClaimAheadDays)
	}
	return nil
}

// Approve одобряет заявку (pending), отмену или добавление слота.
// classroom можно передать прямо при одобрении.
func (s *SlotService) Approve(ctx context.Context, actor model.Actor, id uuid.UUID, classroom string) (*model.SessionSlot, error) {
	return s.apply(ctx, actor, id, lifecycle.ActionApprove, lifecycle.Input{Classroom: classroom})
}

// Reset возвращает pending-слот в open и очищает данные студента
func (s *SlotService) Reset(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.SessionSlot, error) {
	return s.apply(ctx, actor, id, lifecycle.ActionReset, lifecycle.Input{})
}

// RequestCancellation ассистент просит снять свободный слот
func (s *SlotService) RequestCancellation(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.SessionSlot, error) {
	return s.apply(ctx, actor, id, lifecycle.ActionRequestCancellation, lifecycle.Input{CancelReason: reason})
}

// Withdraw ассистент отзывает свой запрос на отмену или добавление
func (s *SlotService) Withdraw(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.SessionSlot, error) {
	return s.apply(ctx, actor, id, lifecycle.ActionWithdraw, lifecycle.Input{})
}

// SubmitFeedback ассистент оставляет отзыв; занятие считается проведённым
func (s *SlotService) SubmitFeedback(ctx context.Context, actor model.Actor, id uuid.UUID, text string) (*model.SessionSlot, error) {
	return s.apply(ctx, actor, id, lifecycle.ActionSubmitFeedback, lifecycle.Input{Feedback: text})
}

// SendFeedback админ отправляет отзыв студенту
func (s *SlotService) SendFeedback(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.SessionSlot, error) {
	return s.apply(ctx, actor, id, lifecycle.ActionSendFeedback, lifecycle.Input{})
}

// Edit правка слота админом; статус пересчитывается по наличию студента
func (s *SlotService) Edit(ctx context.Context, actor model.Actor, id uuid.UUID, req EditRequest) (*model.SessionSlot, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	patch := model.SlotPatch{
		TAID:          req.TAID,
		TAName:        req.TAName,
		TASubject:     req.TASubject,
		Date:          req.Date,
		StartTime:     req.StartTime,
		StudentName:   req.StudentName,
		StudentPhone:  req.StudentPhone,
		Topic:         req.Topic,
		QuestionRange: req.QuestionRange,
		Classroom:     req.Classroom,
	}

	if req.StartTime != nil {
		h, err := timegrid.ParseHour(*req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
		}
		end := timegrid.FormatHour(h + 1)
		if err := timegrid.ValidateSlotTime(s.cfg.Window, *req.StartTime, end); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
		}
		patch.EndTime = &end
	}

	return s.apply(ctx, actor, id, lifecycle.ActionEdit, lifecycle.Input{Edit: patch})
}

// Delete админ удаляет слот
func (s *SlotService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	_, err := s.apply(ctx, actor, id, lifecycle.ActionDelete, lifecycle.Input{})
	return err
}

// apply общий путь: прочитать, проверить переход, записать условно, уведомить
func (s *SlotService) apply(ctx context.Context, actor model.Actor, id uuid.UUID, action lifecycle.Action, in lifecycle.Input) (*model.SessionSlot, error) {
	if !lifecycle.Permits(actor.Role, action) {
		return nil, fmt.Errorf("%w: %s cannot %s", model.ErrForbidden, actor.Role, action)
	}

	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if actor.Role == model.RoleTA && slot.TAID != actor.UserID {
		return nil, fmt.Errorf("%w: slot belongs to another assistant", model.ErrForbidden)
	}

	out, err := lifecycle.Transition(slot, action, in)
	if err != nil {
		s.logger.Info("Slot action rejected",
			zap.String("slot_id", id.String()),
			zap.String("action", string(action)),
			zap.String("status", string(slot.Status)),
			zap.String("role", string(actor.Role)),
			zap.Error(err))
		return nil, err
	}

	if out.Delete {
		if err := s.store.Delete(ctx, id, slot.Status); err != nil {
			return nil, fmt.Errorf("delete slot: %w", err)
		}
		s.invalidate(slot.Date)

		s.logger.Info("Slot deleted",
			zap.String("slot_id", id.String()),
			zap.String("action", string(action)),
			zap.String("from", string(slot.Status)),
			zap.String("role", string(actor.Role)),
		)
		return nil, nil
	}

	// условие на статус отсекает параллельные переходы того же слота
	err = s.store.Update(ctx, model.SlotUpdate{ID: id, Expect: slot.Status, Patch: out.Patch})
	if err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}

	updated := out.Patch.Apply(slot)
	s.invalidate(slot.Date, updated.Date)

	s.logger.Info("Slot transitioned",
		zap.String("slot_id", id.String()),
		zap.String("action", string(action)),
		zap.String("from", string(slot.Status)),
		zap.String("status", string(updated.Status)),
		zap.String("role", string(actor.Role)),
	)

	switch out.Notify {
	case lifecycle.NotifyConfirmed:
		s.notifier.SlotConfirmed(ctx, updated)
	case lifecycle.NotifyFeedback:
		s.notifier.FeedbackSent(ctx, updated)
	}

	return updated, nil
}

// Get получает слот по ID
func (s *SlotService) Get(ctx context.Context, id uuid.UUID) (*model.SessionSlot, error) {
	return s.store.GetByID(ctx, id)
}

// ListMonth слоты месяца для отображения; может отдать снимок из кэша
func (s *SlotService) ListMonth(ctx context.Context, yearMonth string) ([]*model.SessionSlot, error) {
	if slots, ok := s.cache.Get(yearMonth); ok {
		return slots, nil
	}

	first, last, err := timegrid.MonthRange(yearMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
	}

	gen := s.cache.Begin(yearMonth)
	slots, err := s.store.QueryByDateRange(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("list month %s: %w", yearMonth, err)
	}

	if !s.cache.SetIfCurrent(yearMonth, gen, slots) {
		s.logger.Debug("Month snapshot outdated by concurrent write, not cached",
			zap.String("year_month", yearMonth),
		)
	}
	return slots, nil
}

// ListByTA слоты ассистента за период, всегда из хранилища
func (s *SlotService) ListByTA(ctx context.Context, taID, start, end string) ([]*model.SessionSlot, error) {
	return s.store.QueryByTAAndDateRange(ctx, taID, start, end)
}

// AllowedActions действия, доступные пользователю над слотом
func (s *SlotService) AllowedActions(actor model.Actor, slot *model.SessionSlot) []lifecycle.Action {
	if actor.Role == model.RoleTA && slot.TAID != actor.UserID {
		return nil
	}
	return lifecycle.AllowedActions(actor.Role, slot)
}

// invalidate сбрасывает снимки месяцев, к которым относятся даты
func (s *SlotService) invalidate(dates ...string) {
	var keys []string
	for _, d := range dates {
		ym, err := timegrid.YearMonthOf(d)
		if err != nil {
			continue
		}
		keys = append(keys, ym)
	}
	s.cache.Invalidate(keys...)
}
