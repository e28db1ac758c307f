package service

import (
	"context"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/google/uuid"
)

// SlotStore авторитетное хранилище слотов
type SlotStore interface {
	QueryByDateRange(ctx context.Context, start, end string) ([]*model.SessionSlot, error)
	QueryByTAAndDateRange(ctx context.Context, taID, start, end string) ([]*model.SessionSlot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.SessionSlot, error)
	Create(ctx context.Context, slot *model.SessionSlot) (uuid.UUID, error)
	CreateBatch(ctx context.Context, slots []*model.SessionSlot) (int, error)
	Update(ctx context.Context, upd model.SlotUpdate) error
	Delete(ctx context.Context, id uuid.UUID, expect model.SlotStatus) error
	BatchApply(ctx context.Context, updates []model.SlotUpdate) error
}

// PayrollStore хранилище расчётов зарплаты
type PayrollStore interface {
	Get(ctx context.Context, userID, yearMonth string) (*model.PayrollRecord, error)
	ListByMonth(ctx context.Context, yearMonth string) ([]*model.PayrollRecord, error)
	Put(ctx context.Context, rec *model.PayrollRecord) error
}

// TemplateStore хранилище недельных шаблонов
type TemplateStore interface {
	Create(ctx context.Context, t *model.WeeklyTemplate) error
	GetAllActive(ctx context.Context) ([]*model.WeeklyTemplate, error)
	GetByTAID(ctx context.Context, taID string) ([]*model.WeeklyTemplate, error)
	DeactivateByGroupID(ctx context.Context, groupID uuid.UUID) error
}

// SnapshotCache кэш снимков слотов по месяцам
type SnapshotCache interface {
	Get(key string) ([]*model.SessionSlot, bool)
	Begin(key string) uint64
	SetIfCurrent(key string, gen uint64, slots []*model.SessionSlot) bool
	Invalidate(keys ...string)
}

// Notifier best-effort уведомления; ошибки не возвращаются
type Notifier interface {
	SlotConfirmed(ctx context.Context, slot *model.SessionSlot)
	FeedbackSent(ctx context.Context, slot *model.SessionSlot)
}
