package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func workedSlot(store *memSlotStore, ta, date, start, end string, status model.SlotStatus) {
	store.put(&model.SessionSlot{
		TAID: ta, TAName: ta, Date: date, StartTime: start, EndTime: end,
		Status: status, StudentName: "Kim",
	})
}

// seedMarch 15 часов ta-a в неделю 3-8 марта и один час 20 марта
func seedMarch(store *memSlotStore) {
	for _, day := range []string{"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07"} {
		workedSlot(store, "ta-a", day, "10:00", "11:00", model.SlotStatusConfirmed)
		workedSlot(store, "ta-a", day, "11:00", "12:00", model.SlotStatusCompleted)
		workedSlot(store, "ta-a", day, "12:00", "13:00", model.SlotStatusConfirmed)
	}
	workedSlot(store, "ta-a", "2025-03-20", "15:00", "16:00", model.SlotStatusCompleted)
	workedSlot(store, "ta-a", "2025-03-21", "15:00", "16:00", model.SlotStatusPending)
	workedSlot(store, "ta-a", "2025-04-01", "15:00", "16:00", model.SlotStatusConfirmed)

	workedSlot(store, "ta-b", "2025-03-11", "09:00", "10:00", model.SlotStatusConfirmed)
	store.put(&model.SessionSlot{TAID: "ta-c", Date: "2025-03-11", StartTime: "09:00", EndTime: "10:00", Status: model.SlotStatusOpen})
}

func newPayrollFixture(t *testing.T) (*PayrollService, *memPayrollStore, *memSlotStore) {
	slots := newMemSlotStore()
	seedMarch(slots)
	payrolls := newMemPayrollStore()
	return NewPayrollService(payrolls, slots, 10000, zaptest.NewLogger(t)), payrolls, slots
}

func TestRecalculateCountsWorkedSlotsOnly(t *testing.T) {
	svc, payrolls, _ := newPayrollFixture(t)

	rec, err := svc.Recalculate(context.Background(), "ta-a", "2025-03", 0)
	require.NoError(t, err)

	assert.Equal(t, 16.0, rec.TotalHours)
	assert.Equal(t, int64(10000), rec.HourlyRate)
	assert.Equal(t, int64(160000), rec.BaseSalary)
	assert.Equal(t, int64(30000), rec.WeeklyHolidayPay)
	assert.Equal(t, int64(190000), rec.TotalGross)
	assert.Equal(t, int64(190000), rec.NetSalary)
	assert.Equal(t, model.PayrollStatusPending, rec.Status)

	stored, err := payrolls.Get(context.Background(), "ta-a", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestRecalculateRate(t *testing.T) {
	svc, payrolls, _ := newPayrollFixture(t)
	ctx := context.Background()

	require.NoError(t, payrolls.Put(ctx, &model.PayrollRecord{UserID: "ta-b", YearMonth: "2025-03", HourlyRate: 12000}))

	rec, err := svc.Recalculate(ctx, "ta-b", "2025-03", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), rec.HourlyRate)
	assert.Equal(t, int64(12000), rec.BaseSalary)

	rec, err = svc.Recalculate(ctx, "ta-b", "2025-03", 15000)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), rec.BaseSalary)

	_, err = svc.Recalculate(ctx, "ta-b", "2025/03", 0)
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
}

func TestRecalculateOverwritesEdits(t *testing.T) {
	svc, _, _ := newPayrollFixture(t)
	ctx := context.Background()

	_, err := svc.Recalculate(ctx, "ta-a", "2025-03", 0)
	require.NoError(t, err)
	_, err = svc.Edit(ctx, admin, "ta-a", "2025-03", payroll.Edit{BaseSalary: 1, Bonus: 5000})
	require.NoError(t, err)

	rec, err := svc.Recalculate(ctx, "ta-a", "2025-03", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(160000), rec.BaseSalary)
	assert.Zero(t, rec.Bonus)
	assert.Equal(t, model.PayrollStatusPending, rec.Status)
}

func TestPayrollEdit(t *testing.T) {
	svc, _, _ := newPayrollFixture(t)
	ctx := context.Background()
	edit := payroll.Edit{
		BaseSalary:    160000,
		Bonus:         20000,
		MealAllowance: 10000,
		Deductions:    model.Deductions{NationalPension: 9000, IncomeTax: 3000},
	}

	_, err := svc.Edit(ctx, admin, "ta-a", "2025-03", edit)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Recalculate(ctx, "ta-a", "2025-03", 0)
	require.NoError(t, err)

	_, err = svc.Edit(ctx, taA, "ta-a", "2025-03", edit)
	assert.ErrorIs(t, err, model.ErrForbidden)

	bad := edit
	bad.Deductions.LocalIncomeTax = -1
	_, err = svc.Edit(ctx, admin, "ta-a", "2025-03", bad)
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)

	rec, err := svc.Edit(ctx, admin, "ta-a", "2025-03", edit)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), rec.WeeklyHolidayPay)
	assert.Equal(t, int64(220000), rec.TotalGross)
	assert.Equal(t, int64(208000), rec.NetSalary)
	assert.Equal(t, model.PayrollStatusConfirmed, rec.Status)

	stored, err := svc.Get(ctx, "ta-a", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
}

func TestRecalculateMonth(t *testing.T) {
	svc, payrolls, _ := newPayrollFixture(t)
	ctx := context.Background()

	n, err := svc.RecalculateMonth(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, ta := range []string{"ta-a", "ta-b"} {
		rec, err := payrolls.Get(ctx, ta, "2025-03")
		require.NoError(t, err)
		assert.NotNil(t, rec, ta)
	}
	rec, err := payrolls.Get(ctx, "ta-c", "2025-03")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecalculateMonthZeroesRecordWithoutWorkedSlots(t *testing.T) {
	svc, payrolls, slots := newPayrollFixture(t)
	ctx := context.Background()

	rec, err := svc.Recalculate(ctx, "ta-b", "2025-03", 0)
	require.NoError(t, err)
	require.Equal(t, int64(10000), rec.BaseSalary)

	// единственное занятие ta-b сброшено после расчёта
	held, err := slots.QueryByTAAndDateRange(ctx, "ta-b", "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, held, 1)
	slots.setStatus(held[0].ID, model.SlotStatusOpen)

	n, err := svc.RecalculateMonth(ctx, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stale, err := payrolls.Get(ctx, "ta-b", "2025-03")
	require.NoError(t, err)
	require.NotNil(t, stale)
	assert.Zero(t, stale.TotalHours)
	assert.Zero(t, stale.BaseSalary)
	assert.Zero(t, stale.TotalGross)
	assert.Equal(t, int64(10000), stale.HourlyRate)
}
