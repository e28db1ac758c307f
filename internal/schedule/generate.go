// Package schedule разворачивает недельные шаблоны в конкретные слоты.
// Генерация и запись в хранилище разделены: здесь только чистые функции.
package schedule

import (
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
)

// slotKey ассистент + дата + время начала
type slotKey struct {
	taID  string
	date  string
	start string
}

func keyOf(s *model.SessionSlot) slotKey {
	return slotKey{taID: s.TAID, date: s.Date, start: s.StartTime}
}

// Expand создаёт open-слоты для всех активных шаблонов на даты [from, to].
// Шаблоны вне рабочего окна пропускаются.
func Expand(templates []*model.WeeklyTemplate, from, to time.Time, w timegrid.Window) []*model.SessionSlot {
	var out []*model.SessionSlot
	seen := make(map[slotKey]bool)

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		for _, t := range templates {
			if !t.IsActive || time.Weekday(t.Weekday) != d.Weekday() || !w.Contains(t.StartHour) {
				continue
			}

			slot := &model.SessionSlot{
				TAID:           t.TAID,
				TAName:         t.TAName,
				TASubject:      t.TASubject,
				Date:           timegrid.FormatDate(d),
				StartTime:      timegrid.FormatHour(t.StartHour),
				EndTime:        timegrid.FormatHour(t.StartHour + 1),
				Status:         model.SlotStatusOpen,
				Source:         model.SlotSourceSystem,
				FeedbackStatus: model.FeedbackStatusNone,
			}

			// два шаблона одной группы могут совпасть по времени
			k := keyOf(slot)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, slot)
		}
	}

	return out
}

// Dedupe отбрасывает кандидатов, для которых уже есть слот того же ассистента в то же время
func Dedupe(candidates, existing []*model.SessionSlot) []*model.SessionSlot {
	taken := make(map[slotKey]bool, len(existing))
	for _, s := range existing {
		taken[keyOf(s)] = true
	}

	var out []*model.SessionSlot
	for _, c := range candidates {
		if !taken[keyOf(c)] {
			out = append(out, c)
		}
	}
	return out
}
