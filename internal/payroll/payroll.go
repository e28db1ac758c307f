// Package payroll переводит часовые слоты ассистента в расчёт зарплаты за месяц.
package payroll

import (
	"fmt"
	"math"
	"sort"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
)

const (
	// WeeklyHolidayThreshold минимум часов в неделю для недельной доплаты
	WeeklyHolidayThreshold = 15.0
	// WeeklyHoursCap больше этого доплата не растёт; в общие часы идёт всё
	WeeklyHoursCap = 40.0
	// HolidayPaidHours доплата за полную неделю эквивалентна 8 часам
	HolidayPaidHours = 8.0
)

// WeekHours часы и доплата одной недели, ключ — дата субботы
type WeekHours struct {
	Key   string
	Hours float64
	Bonus int64
}

// Summary промежуточные итоги расчёта
type Summary struct {
	DayHours   map[string]float64
	Weeks      []WeekHours
	TotalHours float64
	HolidayPay int64
	BaseSalary int64
}

const minutesPerHour = 60

// WeeklyBonus доплата за неделю: min(h, 40) / 40 * 8 * ставка, с округлением вниз
func WeeklyBonus(hours float64, rate int64) int64 {
	return weeklyBonusMinutes(toMinutes(hours), rate)
}

// Суммы считаются в целых минутах, без float
func weeklyBonusMinutes(minutes, rate int64) int64 {
	if minutes < int64(WeeklyHolidayThreshold)*minutesPerHour {
		return 0
	}
	capMinutes := int64(WeeklyHoursCap) * minutesPerHour
	capped := min(minutes, capMinutes)
	return capped * int64(HolidayPaidHours) * rate / capMinutes
}

// BaseSalary все отработанные часы по ставке, с округлением вниз
func BaseSalary(hours float64, rate int64) int64 {
	return toMinutes(hours) * rate / minutesPerHour
}

func toMinutes(hours float64) int64 {
	return int64(math.Round(hours * minutesPerHour))
}

// Summarize считает часы по дням и неделям. Учитываются только слоты с датой внутри месяца.
func Summarize(yearMonth string, rate int64, slots []*model.SessionSlot) (Summary, error) {
	first, last, err := timegrid.MonthRange(yearMonth)
	if err != nil {
		return Summary{}, err
	}

	dayMinutes := make(map[string]int64)
	for _, s := range slots {
		if s.Date < first || s.Date > last {
			continue
		}
		hours, err := timegrid.DurationHours(s.StartTime, s.EndTime)
		if err != nil {
			return Summary{}, fmt.Errorf("slot %s: %w", s.ID, err)
		}
		dayMinutes[s.Date] += toMinutes(hours)
	}

	days := make([]string, 0, len(dayMinutes))
	dayHours := make(map[string]float64, len(dayMinutes))
	for d, m := range dayMinutes {
		dayHours[d] = float64(m) / minutesPerHour
		days = append(days, d)
	}
	sort.Strings(days)

	weekIdx := make(map[string]int)
	var weeks []WeekHours
	var weekMinutes []int64
	for _, d := range days {
		t, err := timegrid.ParseDate(d)
		if err != nil {
			return Summary{}, err
		}
		key := timegrid.WeekKey(t)
		i, ok := weekIdx[key]
		if !ok {
			i = len(weeks)
			weekIdx[key] = i
			weeks = append(weeks, WeekHours{Key: key})
			weekMinutes = append(weekMinutes, 0)
		}
		weekMinutes[i] += dayMinutes[d]
	}

	var totalMinutes, bonusSum int64
	for i := range weeks {
		weeks[i].Hours = float64(weekMinutes[i]) / minutesPerHour
		weeks[i].Bonus = weeklyBonusMinutes(weekMinutes[i], rate)
		totalMinutes += weekMinutes[i]
		bonusSum += weeks[i].Bonus
	}

	return Summary{
		DayHours:   dayHours,
		Weeks:      weeks,
		TotalHours: float64(totalMinutes) / minutesPerHour,
		HolidayPay: bonusSum,
		BaseSalary: totalMinutes * rate / minutesPerHour,
	}, nil
}

// Aggregate строит новую запись зарплаты. Повторный расчёт на тех же данных даёт ту же запись.
func Aggregate(userID, yearMonth string, rate int64, slots []*model.SessionSlot) (*model.PayrollRecord, error) {
	if rate < 0 {
		return nil, fmt.Errorf("%w: hourly rate must not be negative", model.ErrPreconditionFailed)
	}

	sum, err := Summarize(yearMonth, rate, slots)
	if err != nil {
		return nil, err
	}

	rec := &model.PayrollRecord{
		UserID:           userID,
		YearMonth:        yearMonth,
		HourlyRate:       rate,
		TotalHours:       sum.TotalHours,
		WeeklyHolidayPay: sum.HolidayPay,
		BaseSalary:       sum.BaseSalary,
		Status:           model.PayrollStatusPending,
	}
	rec.Recompute()

	return rec, nil
}

// Edit ручная правка записи админом
type Edit struct {
	BaseSalary    int64            `json:"base_salary" validate:"gte=0"`
	Bonus         int64            `json:"bonus" validate:"gte=0"`
	MealAllowance int64            `json:"meal_allowance" validate:"gte=0"`
	Deductions    model.Deductions `json:"deductions"`
}

// ApplyEdit применяет правку и пересчитывает итоги. Недельная доплата не редактируется.
func ApplyEdit(rec *model.PayrollRecord, e Edit) *model.PayrollRecord {
	out := *rec
	out.BaseSalary = e.BaseSalary
	out.Bonus = e.Bonus
	out.MealAllowance = e.MealAllowance
	out.Deductions = e.Deductions
	out.Recompute()
	out.Status = model.PayrollStatusConfirmed
	return &out
}
