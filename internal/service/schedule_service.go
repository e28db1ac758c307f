package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/schedule"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleService struct {
	templates TemplateStore
	slots     SlotStore
	cache     SnapshotCache
	validate  *validator.Validate
	window    timegrid.Window
	now       func() time.Time
	logger    *zap.Logger
}

func NewScheduleService(
	templates TemplateStore,
	slots SlotStore,
	cache SnapshotCache,
	window timegrid.Window,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		templates: templates,
		slots:     slots,
		cache:     cache,
		validate:  newValidator(),
		window:    window,
		now:       time.Now,
		logger:    logger,
	}
}

// CreateTemplateGroup создаёт группу недельных шаблонов с общим group_id
func (s *ScheduleService) CreateTemplateGroup(ctx context.Context, actor model.Actor, req TemplateGroupRequest) (uuid.UUID, error) {
	if actor.Role != model.RoleAdmin && !(actor.Role == model.RoleTA && actor.UserID == req.TAID) {
		return uuid.Nil, model.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return uuid.Nil, validationError(err)
	}
	for _, h := range req.Hours {
		if !s.window.Contains(h) {
			return uuid.Nil, fmt.Errorf("%w: hour %s is outside working hours", model.ErrPreconditionFailed, timegrid.FormatHour(h))
		}
	}

	groupID := uuid.New()
	for _, weekday := range req.Weekdays {
		for _, hour := range req.Hours {
			t := &model.WeeklyTemplate{
				GroupID:   groupID,
				TAID:      req.TAID,
				TAName:    req.TAName,
				TASubject: req.TASubject,
				Weekday:   weekday,
				StartHour: hour,
				IsActive:  true,
			}
			if err := s.templates.Create(ctx, t); err != nil {
				return uuid.Nil, fmt.Errorf("create weekly template: %w", err)
			}
		}
	}

	s.logger.Info("Weekly template group created",
		zap.String("group_id", groupID.String()),
		zap.String("ta_id", req.TAID),
		zap.Int("weekdays_count", len(req.Weekdays)),
		zap.Int("hours_count", len(req.Hours)),
	)

	return groupID, nil
}

// ListTemplates шаблоны ассистента, включая неактивные
func (s *ScheduleService) ListTemplates(ctx context.Context, taID string) ([]*model.WeeklyTemplate, error) {
	return s.templates.GetByTAID(ctx, taID)
}

// DeactivateTemplateGroup останавливает генерацию по группе; созданные слоты остаются
func (s *ScheduleService) DeactivateTemplateGroup(ctx context.Context, actor model.Actor, taID string, groupID uuid.UUID) error {
	if actor.Role != model.RoleAdmin && !(actor.Role == model.RoleTA && actor.UserID == taID) {
		return model.ErrForbidden
	}

	templates, err := s.templates.GetByTAID(ctx, taID)
	if err != nil {
		return fmt.Errorf("get weekly templates: %w", err)
	}
	owned := false
	for _, t := range templates {
		if t.GroupID == groupID {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("weekly template group %s: %w", groupID, model.ErrNotFound)
	}

	return s.templates.DeactivateByGroupID(ctx, groupID)
}

// Generate разворачивает активные шаблоны на weeksAhead недель вперёд, начиная с сегодня
func (s *ScheduleService) Generate(ctx context.Context, weeksAhead int) (int, error) {
	templates, err := s.templates.GetAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active templates: %w", err)
	}

	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, weeksAhead*7-1)

	candidates := schedule.Expand(templates, from, to, s.window)
	if len(candidates) == 0 {
		return 0, nil
	}

	existing, err := s.slots.QueryByDateRange(ctx, timegrid.FormatDate(from), timegrid.FormatDate(to))
	if err != nil {
		return 0, fmt.Errorf("query existing slots: %w", err)
	}

	fresh := schedule.Dedupe(candidates, existing)
	if len(fresh) == 0 {
		return 0, nil
	}

	created, err := s.slots.CreateBatch(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("create generated slots: %w", err)
	}

	months := make(map[string]bool)
	for _, slot := range fresh {
		if ym, err := timegrid.YearMonthOf(slot.Date); err == nil && !months[ym] {
			months[ym] = true
			s.cache.Invalidate(ym)
		}
	}

	s.logger.Info("Generated slots from weekly templates",
		zap.Int("templates", len(templates)),
		zap.Int("candidates", len(candidates)),
		zap.Int("created", created),
	)

	return created, nil
}
