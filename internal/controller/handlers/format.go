package handlers

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
)

// StatusDisplay emoji и текст для статуса слота
type StatusDisplay struct {
	Emoji string
	Text  string
}

func GetStatusDisplay(status model.SlotStatus) StatusDisplay {
	displays := map[model.SlotStatus]StatusDisplay{
		model.SlotStatusOpen:                  {"🟢", "Свободен"},
		model.SlotStatusPending:               {"⏳", "Ожидает одобрения"},
		model.SlotStatusConfirmed:             {"✅", "Подтверждён"},
		model.SlotStatusCompleted:             {"✔️", "Проведён"},
		model.SlotStatusCancellationRequested: {"🚫", "Запрошена отмена"},
		model.SlotStatusAdditionRequested:     {"➕", "Запрошено добавление"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

// needsAdmin статусы, ожидающие решения админа
func needsAdmin(s *model.SessionSlot) bool {
	switch s.Status {
	case model.SlotStatusPending, model.SlotStatusCancellationRequested, model.SlotStatusAdditionRequested:
		return true
	}
	return false
}

// FormatPending список слотов, ожидающих решения
func FormatPending(slots []*model.SessionSlot) string {
	var sb strings.Builder
	count := 0

	for _, s := range slots {
		if !needsAdmin(s) {
			continue
		}
		count++
		display := GetStatusDisplay(s.Status)

		sb.WriteString(fmt.Sprintf("%s %s %s-%s · %s\n", display.Emoji, s.Date, s.StartTime, s.EndTime, s.TAName))
		sb.WriteString(fmt.Sprintf("   %s", display.Text))
		switch s.Status {
		case model.SlotStatusPending:
			sb.WriteString(fmt.Sprintf(": %s", s.StudentName))
			if s.Topic != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", s.Topic))
			}
		case model.SlotStatusCancellationRequested:
			sb.WriteString(fmt.Sprintf(": %s", s.CancelReason))
		}
		sb.WriteString(fmt.Sprintf("\n   /approve %s\n\n", s.ID))
	}

	if count == 0 {
		return "✨ Нет заявок, ожидающих решения"
	}
	return fmt.Sprintf("📋 Ожидают решения: %d\n\n%s", count, strings.TrimRight(sb.String(), "\n"))
}

// FormatSlot короткая карточка слота после действия
func FormatSlot(s *model.SessionSlot) string {
	display := GetStatusDisplay(s.Status)
	text := fmt.Sprintf("%s %s %s-%s · %s\nСтатус: %s", display.Emoji, s.Date, s.StartTime, s.EndTime, s.TAName, display.Text)
	if s.Classroom != "" {
		text += "\nАудитория: " + s.Classroom
	}
	return text
}

// FormatPayroll расчёт зарплаты для админа
func FormatPayroll(rec *model.PayrollRecord) string {
	return fmt.Sprintf(
		"💰 Зарплата %s за %s\n\n"+
			"Часов: %.1f × %s\n"+
			"Базовая: %s\n"+
			"Недельная доплата: %s\n"+
			"Премия: %s\n"+
			"Питание: %s\n"+
			"Начислено: %s\n"+
			"Удержания: %s\n"+
			"К выплате: %s\n"+
			"Статус: %s",
		rec.UserID, rec.YearMonth,
		rec.TotalHours, formatWon(rec.HourlyRate),
		formatWon(rec.BaseSalary),
		formatWon(rec.WeeklyHolidayPay),
		formatWon(rec.Bonus),
		formatWon(rec.MealAllowance),
		formatWon(rec.TotalGross),
		formatWon(rec.Deductions.Total()),
		formatWon(rec.NetSalary),
		rec.Status,
	)
}

// formatWon 1234567 -> "1,234,567₩"
func formatWon(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := fmt.Sprintf("%d", v)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sign + sb.String() + "₩"
}
