package notify

import (
	"fmt"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
)

// FormatConfirmation текст подтверждения записи
func FormatConfirmation(slot *model.SessionSlot) string {
	return fmt.Sprintf(
		"✅ Запись подтверждена\n\n"+
			"📅 Дата: %s\n"+
			"🕐 Время: %s - %s\n"+
			"📍 Аудитория: %s\n"+
			"👨‍🏫 Ассистент: %s (%s)\n"+
			"👤 Студент: %s\n"+
			"📚 Тема: %s",
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.Classroom,
		slot.TAName,
		slot.TASubject,
		slot.StudentName,
		orDash(slot.Topic),
	)
}

// FormatFeedback текст отзыва ассистента о занятии
func FormatFeedback(slot *model.SessionSlot) string {
	return fmt.Sprintf(
		"📝 Отзыв о занятии\n\n"+
			"📅 %s %s - %s\n"+
			"👨‍🏫 Ассистент: %s\n"+
			"👤 Студент: %s\n"+
			"📚 Тема: %s\n\n"+
			"%s",
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.TAName,
		slot.StudentName,
		orDash(slot.Topic),
		slot.Feedback,
	)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
