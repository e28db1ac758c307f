package guard

import (
	"sync"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/google/uuid"
)

// Selection слоты, выбранные студентом, но ещё не отправленные.
// После неудачной отправки выбор сохраняется для повтора.
type Selection struct {
	mu      sync.Mutex
	student string
	slots   []*model.SessionSlot
}

// NewSelection создаёт пустой выбор для студента
func NewSelection(student string) *Selection {
	return &Selection{student: student}
}

// Student имя студента, для которого собран выбор
func (s *Selection) Student() string {
	return s.student
}

// Add добавляет слот, если он не конфликтует с удерживаемыми и уже выбранными
func (s *Selection) Add(candidate *model.SessionSlot, held []*model.SessionSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := CheckCandidate(candidate, held, s.slots); err != nil {
		return err
	}
	s.slots = append(s.slots, candidate.Clone())
	return nil
}

// Remove убирает слот из выбора
func (s *Selection) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, slot := range s.slots {
		if slot.ID == id {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}

// Slots возвращает копию выбранных слотов
func (s *Selection) Slots() []*model.SessionSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.SessionSlot, len(s.slots))
	copy(out, s.slots)
	return out
}

// IDs идентификаторы выбранных слотов
func (s *Selection) IDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(s.slots))
	for _, slot := range s.slots {
		ids = append(ids, slot.ID)
	}
	return ids
}

// Len количество выбранных слотов
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Clear очищает выбор после успешной отправки
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = nil
}
