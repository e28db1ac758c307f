// Package lifecycle описывает машину состояний слота: какие действия допустимы
// в каком статусе, кем, и к какому результату они приводят.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
)

type Action string

const (
	ActionClaim               Action = "claim"
	ActionApprove             Action = "approve"
	ActionReset               Action = "reset"
	ActionRequestCancellation Action = "request_cancellation"
	ActionWithdraw            Action = "withdraw"
	ActionSubmitFeedback      Action = "submit_feedback"
	ActionSendFeedback        Action = "send_feedback"
	ActionEdit                Action = "edit"
	ActionDelete              Action = "delete"
)

// allActions в порядке отображения
var allActions = []Action{
	ActionClaim,
	ActionApprove,
	ActionReset,
	ActionRequestCancellation,
	ActionWithdraw,
	ActionSubmitFeedback,
	ActionSendFeedback,
	ActionEdit,
	ActionDelete,
}

// roleActions какие действия вообще доступны роли
var roleActions = map[model.Role][]Action{
	model.RoleAdmin:    {ActionApprove, ActionReset, ActionSendFeedback, ActionEdit, ActionDelete},
	model.RoleTA:       {ActionRequestCancellation, ActionWithdraw, ActionSubmitFeedback},
	model.RoleStudent:  {ActionClaim},
	model.RoleParent:   nil,
	model.RoleLecturer: nil,
}

// Notification побочный эффект перехода
type Notification int

const (
	NotifyNone Notification = iota
	NotifyConfirmed
	NotifyFeedback
)

// Student данные студента при записи
type Student struct {
	Name          string
	Phone         string
	Topic         string
	QuestionRange string
}

// Input параметры действия; используются только поля, относящиеся к действию
type Input struct {
	Student      Student
	Classroom    string
	CancelReason string
	Feedback     string
	Edit         model.SlotPatch
}

// Outcome результат перехода: либо патч, либо удаление слота
type Outcome struct {
	Delete bool
	Patch  model.SlotPatch
	Notify Notification
}

// Permits проверяет, что роль может выполнять действие в принципе
func Permits(role model.Role, action Action) bool {
	for _, a := range roleActions[role] {
		if a == action {
			return true
		}
	}
	return false
}

// applicable проверяет, что действие определено для текущего состояния слота
func applicable(slot *model.SessionSlot, action Action) bool {
	switch action {
	case ActionClaim:
		return slot.Status == model.SlotStatusOpen
	case ActionApprove:
		return slot.Status == model.SlotStatusPending ||
			slot.Status == model.SlotStatusCancellationRequested ||
			slot.Status == model.SlotStatusAdditionRequested
	case ActionReset:
		return slot.Status == model.SlotStatusPending
	case ActionRequestCancellation:
		return slot.Status == model.SlotStatusOpen
	case ActionWithdraw:
		return slot.Status == model.SlotStatusCancellationRequested ||
			slot.Status == model.SlotStatusAdditionRequested
	case ActionSubmitFeedback:
		return (slot.Status == model.SlotStatusConfirmed || slot.Status == model.SlotStatusCompleted) &&
			slot.FeedbackStatus != model.FeedbackStatusSent
	case ActionSendFeedback:
		return slot.Status == model.SlotStatusCompleted &&
			slot.FeedbackStatus == model.FeedbackStatusSubmitted
	case ActionEdit, ActionDelete:
		return true
	}
	return false
}

// AllowedActions возвращает действия, которые роль может выполнить над слотом прямо сейчас
func AllowedActions(role model.Role, slot *model.SessionSlot) []Action {
	var out []Action
	for _, a := range allActions {
		if Permits(role, a) && applicable(slot, a) {
			out = append(out, a)
		}
	}
	return out
}

// Transition вычисляет результат действия над слотом. Слот не изменяется.
func Transition(slot *model.SessionSlot, action Action, in Input) (Outcome, error) {
	if !applicable(slot, action) {
		return Outcome{}, &model.InvalidTransitionError{From: slot.Status, Action: string(action)}
	}

	switch action {
	case ActionClaim:
		if strings.TrimSpace(in.Student.Name) == "" {
			return Outcome{}, fmt.Errorf("%w: student name is required", model.ErrPreconditionFailed)
		}
		return Outcome{Patch: model.SlotPatch{
			Status:        model.Ptr(model.SlotStatusPending),
			StudentName:   model.Ptr(in.Student.Name),
			StudentPhone:  model.Ptr(in.Student.Phone),
			Topic:         model.Ptr(in.Student.Topic),
			QuestionRange: model.Ptr(in.Student.QuestionRange),
		}}, nil

	case ActionApprove:
		return approve(slot, in)

	case ActionReset:
		return Outcome{Patch: model.SlotPatch{
			Status:        model.Ptr(model.SlotStatusOpen),
			StudentName:   model.Ptr(""),
			StudentPhone:  model.Ptr(""),
			Topic:         model.Ptr(""),
			QuestionRange: model.Ptr(""),
			Classroom:     model.Ptr(""),
		}}, nil

	case ActionRequestCancellation:
		reason := strings.TrimSpace(in.CancelReason)
		if reason == "" {
			return Outcome{}, fmt.Errorf("%w: cancel reason is required", model.ErrPreconditionFailed)
		}
		return Outcome{Patch: model.SlotPatch{
			Status:       model.Ptr(model.SlotStatusCancellationRequested),
			CancelReason: model.Ptr(reason),
		}}, nil

	case ActionWithdraw:
		if slot.Status == model.SlotStatusAdditionRequested {
			return Outcome{Delete: true}, nil
		}
		return Outcome{Patch: model.SlotPatch{
			Status:       model.Ptr(model.SlotStatusOpen),
			CancelReason: model.Ptr(""),
		}}, nil

	case ActionSubmitFeedback:
		text := strings.TrimSpace(in.Feedback)
		if text == "" {
			return Outcome{}, fmt.Errorf("%w: feedback text is required", model.ErrPreconditionFailed)
		}
		return Outcome{Patch: model.SlotPatch{
			Status:         model.Ptr(model.SlotStatusCompleted),
			Feedback:       model.Ptr(text),
			FeedbackStatus: model.Ptr(model.FeedbackStatusSubmitted),
		}}, nil

	case ActionSendFeedback:
		return Outcome{
			Patch:  model.SlotPatch{FeedbackStatus: model.Ptr(model.FeedbackStatusSent)},
			Notify: NotifyFeedback,
		}, nil

	case ActionEdit:
		return edit(slot, in.Edit), nil

	case ActionDelete:
		return Outcome{Delete: true}, nil
	}

	return Outcome{}, &model.InvalidTransitionError{From: slot.Status, Action: string(action)}
}

func approve(slot *model.SessionSlot, in Input) (Outcome, error) {
	switch slot.Status {
	case model.SlotStatusCancellationRequested:
		return Outcome{Delete: true}, nil

	case model.SlotStatusAdditionRequested:
		return Outcome{Patch: model.SlotPatch{Status: model.Ptr(model.SlotStatusOpen)}}, nil
	}

	classroom := strings.TrimSpace(in.Classroom)
	if classroom == "" {
		classroom = slot.Classroom
	}
	if classroom == "" {
		return Outcome{}, fmt.Errorf("%w: classroom must be assigned before approval", model.ErrPreconditionFailed)
	}

	return Outcome{
		Patch: model.SlotPatch{
			Status:    model.Ptr(model.SlotStatusConfirmed),
			Classroom: model.Ptr(classroom),
		},
		Notify: NotifyConfirmed,
	}, nil
}

// edit статус после правки админом выводится из наличия студента
func edit(slot *model.SessionSlot, patch model.SlotPatch) Outcome {
	patch.Status = nil
	edited := patch.Apply(slot)

	status := model.SlotStatusOpen
	if edited.StudentName != "" {
		status = model.SlotStatusConfirmed
	}
	patch.Status = model.Ptr(status)

	out := Outcome{Patch: patch}
	if status == model.SlotStatusConfirmed && slot.Status != model.SlotStatusConfirmed {
		out.Notify = NotifyConfirmed
	}
	return out
}
