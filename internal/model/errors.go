package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("slot was changed by another user")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrNotificationFailed = errors.New("notification failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("action not allowed for role")
)

// InvalidTransitionError переход, которого нет в таблице состояний
type InvalidTransitionError struct {
	From   SlotStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s slot in status %q", e.Action, e.From)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return "❌ Это действие недоступно для слота в текущем статусе"
	case errors.Is(err, ErrPreconditionFailed):
		return "❌ Не выполнены условия: " + err.Error()
	case errors.Is(err, ErrConflict):
		return "⚠️ Слот уже изменён другим пользователем. Обновите расписание и попробуйте снова"
	case errors.Is(err, ErrStoreUnavailable):
		return "❌ База данных недоступна, попробуйте позже"
	case errors.Is(err, ErrNotFound):
		return "❌ Не найдено"
	case errors.Is(err, ErrForbidden):
		return "❌ У вас нет прав на это действие"
	default:
		return "❌ Произошла ошибка"
	}
}
