// Package timegrid содержит чистые функции для работы с календарём клиники:
// дни месяца, недели, часовые слоты рабочего окна.
package timegrid

import (
	"fmt"
	"strconv"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Window рабочее окно клиники в часах: слоты начинаются с OpenHour и заканчиваются не позже CloseHour
type Window struct {
	OpenHour  int
	CloseHour int
}

// DefaultWindow 08:00-22:00
var DefaultWindow = Window{OpenHour: 8, CloseHour: 22}

// Contains проверяет, что часовой слот, начинающийся в startHour, помещается в окно
func (w Window) Contains(startHour int) bool {
	return startHour >= w.OpenHour && startHour+1 <= w.CloseHour
}

// HourRange границы одного часового слота
type HourRange struct {
	Start string
	End   string
}

// HourlySlots перечисляет все часовые слоты окна: 08:00-09:00 ... 21:00-22:00
func HourlySlots(w Window) []HourRange {
	var slots []HourRange
	for h := w.OpenHour; h+1 <= w.CloseHour; h++ {
		slots = append(slots, HourRange{Start: FormatHour(h), End: FormatHour(h + 1)})
	}
	return slots
}

// ParseDate разбирает дату YYYY-MM-DD в UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate форматирует дату как YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseHour разбирает время вида HH:00 и возвращает час
func ParseHour(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' || s[3:] != "00" {
		return 0, fmt.Errorf("parse hour %q: want HH:00", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("parse hour %q: want HH:00", s)
	}
	return h, nil
}

// FormatHour форматирует час как HH:00
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// DurationHours длительность слота в часах по его границам
func DurationHours(start, end string) (float64, error) {
	s, err := ParseHour(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseHour(end)
	if err != nil {
		return 0, err
	}
	return float64(e - s), nil
}

// ValidateSlotTime проверяет, что слот ровно часовой и лежит в рабочем окне
func ValidateSlotTime(w Window, start, end string) error {
	s, err := ParseHour(start)
	if err != nil {
		return err
	}
	e, err := ParseHour(end)
	if err != nil {
		return err
	}
	if e-s != 1 {
		return fmt.Errorf("slot %s-%s must be exactly one hour", start, end)
	}
	if !w.Contains(s) {
		return fmt.Errorf("slot %s-%s is outside %s-%s", start, end, FormatHour(w.OpenHour), FormatHour(w.CloseHour))
	}
	return nil
}

// ParseYearMonth разбирает YYYY-MM и возвращает первое число месяца
func ParseYearMonth(ym string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, ym, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse year-month %q: %w", ym, err)
	}
	return t, nil
}

// YearMonthOf возвращает YYYY-MM для даты YYYY-MM-DD
func YearMonthOf(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Format(MonthLayout), nil
}

// MonthRange возвращает первый и последний день месяца в формате YYYY-MM-DD
func MonthRange(ym string) (string, string, error) {
	first, err := ParseYearMonth(ym)
	if err != nil {
		return "", "", err
	}
	last := first.AddDate(0, 1, -1)
	return FormatDate(first), FormatDate(last), nil
}

// MonthDays возвращает все дни месяца по порядку
func MonthDays(ym string) ([]time.Time, error) {
	first, err := ParseYearMonth(ym)
	if err != nil {
		return nil, err
	}

	var days []time.Time
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// CalendarWeeks раскладывает месяц по строкам календаря, неделя начинается с воскресенья.
// Пустые клетки до первого и после последнего дня равны 0.
func CalendarWeeks(ym string) ([][7]int, error) {
	days, err := MonthDays(ym)
	if err != nil {
		return nil, err
	}

	var weeks [][7]int
	var row [7]int
	for _, d := range days {
		wd := int(d.Weekday())
		row[wd] = d.Day()
		if wd == int(time.Saturday) {
			weeks = append(weeks, row)
			row = [7]int{}
		}
	}
	if row != ([7]int{}) {
		weeks = append(weeks, row)
	}
	return weeks, nil
}

// WeekOfMonth номер строки календаря (с 1), в которую попадает дата
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return (t.Day()-1+int(first.Weekday()))/7 + 1
}

// WeekKey ключ недели: дата субботы, которой заканчивается неделя (воскресенье-суббота).
// Суббота может оказаться в следующем месяце.
func WeekKey(t time.Time) string {
	return FormatDate(t.AddDate(0, 0, int(time.Saturday)-int(t.Weekday())))
}
