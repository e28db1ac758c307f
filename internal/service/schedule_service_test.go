package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/cache"
	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newScheduleFixture(t *testing.T) (*ScheduleService, *memTemplateStore, *memSlotStore, *cache.MonthCache) {
	templates := &memTemplateStore{}
	slots := newMemSlotStore()
	c := cache.NewMonthCache(time.Hour).WithClock(func() time.Time { return testNow })
	svc := NewScheduleService(templates, slots, c, timegrid.DefaultWindow, zaptest.NewLogger(t))
	svc.now = func() time.Time { return testNow }
	return svc, templates, slots, c
}

func TestCreateTemplateGroup(t *testing.T) {
	svc, templates, _, _ := newScheduleFixture(t)
	ctx := context.Background()
	req := TemplateGroupRequest{TAID: "ta-a", TAName: "Alice", Weekdays: []int{1, 3}, Hours: []int{10, 11}}

	groupID, err := svc.CreateTemplateGroup(ctx, taA, req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, groupID)
	require.Len(t, templates.templates, 4)
	for _, tpl := range templates.templates {
		assert.Equal(t, groupID, tpl.GroupID)
		assert.True(t, tpl.IsActive)
	}

	_, err = svc.CreateTemplateGroup(ctx, taB, req)
	assert.ErrorIs(t, err, model.ErrForbidden)

	late := req
	late.Hours = []int{23}
	_, err = svc.CreateTemplateGroup(ctx, admin, late)
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)

	empty := req
	empty.Weekdays = nil
	_, err = svc.CreateTemplateGroup(ctx, admin, empty)
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
}

func TestGenerateSkipsExistingSlots(t *testing.T) {
	svc, templates, slots, c := newScheduleFixture(t)
	ctx := context.Background()

	require.NoError(t, templates.Create(ctx, &model.WeeklyTemplate{TAID: "ta-a", TAName: "Alice", Weekday: 1, StartHour: 10, IsActive: true}))
	require.NoError(t, templates.Create(ctx, &model.WeeklyTemplate{TAID: "ta-a", TAName: "Alice", Weekday: 3, StartHour: 10, IsActive: true}))
	require.NoError(t, templates.Create(ctx, &model.WeeklyTemplate{TAID: "ta-a", TAName: "Alice", Weekday: 2, StartHour: 10, IsActive: false}))
	require.NoError(t, templates.Create(ctx, &model.WeeklyTemplate{TAID: "ta-b", TAName: "Boris", Weekday: 2, StartHour: 22, IsActive: true}))

	slots.put(&model.SessionSlot{TAID: "ta-a", Date: "2025-03-12", StartTime: "10:00", EndTime: "11:00", Status: model.SlotStatusPending, StudentName: "Kim"})
	c.Set("2025-03", nil)

	created, err := svc.Generate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	_, cached := c.Get("2025-03")
	assert.False(t, cached)

	march, err := slots.QueryByDateRange(ctx, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	var dates []string
	for _, s := range march {
		dates = append(dates, s.Date)
	}
	assert.Equal(t, []string{"2025-03-10", "2025-03-12", "2025-03-17", "2025-03-19"}, dates)

	created, err = svc.Generate(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestDeactivateTemplateGroup(t *testing.T) {
	svc, _, slots, _ := newScheduleFixture(t)
	ctx := context.Background()

	groupID, err := svc.CreateTemplateGroup(ctx, taA, TemplateGroupRequest{TAID: "ta-a", TAName: "Alice", Weekdays: []int{1}, Hours: []int{10}})
	require.NoError(t, err)

	created, err := svc.Generate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	assert.ErrorIs(t, svc.DeactivateTemplateGroup(ctx, taB, "ta-a", groupID), model.ErrForbidden)
	assert.ErrorIs(t, svc.DeactivateTemplateGroup(ctx, taB, "ta-b", groupID), model.ErrNotFound)
	require.NoError(t, svc.DeactivateTemplateGroup(ctx, taA, "ta-a", groupID))

	templates, err := svc.ListTemplates(ctx, "ta-a")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.False(t, templates[0].IsActive)

	created, err = svc.Generate(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, created)

	existing, err := slots.QueryByDateRange(ctx, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	assert.Len(t, existing, 1)
}
