// Package guard не даёт студенту оказаться в двух местах в один и тот же час.
//
// Слоты хранятся по одному на ассистента и час, поэтому без этой проверки
// студент мог бы записаться на один час к двум разным ассистентам.
package guard

import (
	"fmt"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
)

// HeldBy отбирает слоты, которые студент уже удерживает (pending или confirmed)
func HeldBy(studentName string, slots []*model.SessionSlot) []*model.SessionSlot {
	var held []*model.SessionSlot
	for _, s := range slots {
		if s.StudentName == studentName && s.Status.IsHeld() {
			held = append(held, s)
		}
	}
	return held
}

func sameHour(a, b *model.SessionSlot) bool {
	return a.Date == b.Date && a.StartTime == b.StartTime
}

// CheckCandidate проверяет один слот против уже удерживаемых и уже выбранных
func CheckCandidate(candidate *model.SessionSlot, held, tentative []*model.SessionSlot) error {
	for _, h := range held {
		if h.ID == candidate.ID || !h.Status.IsHeld() {
			continue
		}
		if sameHour(h, candidate) {
			return fmt.Errorf("%w: already booked %s %s with %s",
				model.ErrPreconditionFailed, h.Date, h.StartTime, h.TAName)
		}
	}

	for _, t := range tentative {
		if t.ID == candidate.ID {
			return fmt.Errorf("%w: slot already selected", model.ErrPreconditionFailed)
		}
		if sameHour(t, candidate) {
			return fmt.Errorf("%w: another slot at %s %s is already selected",
				model.ErrPreconditionFailed, t.Date, t.StartTime)
		}
	}

	return nil
}

// ValidateSameDate все слоты одной заявки должны быть на одну дату
func ValidateSameDate(selection []*model.SessionSlot) error {
	if len(selection) == 0 {
		return fmt.Errorf("%w: nothing selected", model.ErrPreconditionFailed)
	}

	date := selection[0].Date
	for _, s := range selection[1:] {
		if s.Date != date {
			return fmt.Errorf("%w: all selected slots must be on %s, got %s",
				model.ErrPreconditionFailed, date, s.Date)
		}
	}
	return nil
}

// CheckSelection полная проверка заявки перед отправкой в хранилище
func CheckSelection(selection, held []*model.SessionSlot) error {
	if err := ValidateSameDate(selection); err != nil {
		return err
	}

	for i, c := range selection {
		if err := CheckCandidate(c, held, selection[:i]); err != nil {
			return err
		}
	}
	return nil
}
