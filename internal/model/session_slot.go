package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusOpen                  SlotStatus = "open"                   // Свободно, можно записаться
	SlotStatusPending               SlotStatus = "pending"                // Студент записался, ждёт одобрения админа
	SlotStatusConfirmed             SlotStatus = "confirmed"              // Подтверждено, аудитория назначена
	SlotStatusCompleted             SlotStatus = "completed"              // Занятие проведено, отзыв отправлен
	SlotStatusCancellationRequested SlotStatus = "cancellation_requested" // Ассистент просит снять слот
	SlotStatusAdditionRequested     SlotStatus = "addition_requested"     // Ассистент просит добавить слот
)

// IsHeld возвращает true, если слот удерживается студентом
func (s SlotStatus) IsHeld() bool {
	return s == SlotStatusPending || s == SlotStatusConfirmed
}

// IsWorked возвращает true для статусов, которые учитываются в зарплате
func (s SlotStatus) IsWorked() bool {
	return s == SlotStatusConfirmed || s == SlotStatusCompleted
}

type FeedbackStatus string

const (
	FeedbackStatusNone      FeedbackStatus = "none"
	FeedbackStatusSubmitted FeedbackStatus = "submitted"
	FeedbackStatusSent      FeedbackStatus = "sent"
)

type SlotSource string

const (
	SlotSourceSystem SlotSource = "system" // создан админом или ассистентом
	SlotSourceApp    SlotSource = "app"    // создан студентом из приложения
)

// SessionSlot часовой слот ассистента на конкретную дату
type SessionSlot struct {
	ID             uuid.UUID      `json:"id"`
	TAID           string         `json:"ta_id"`
	TAName         string         `json:"ta_name"`
	TASubject      string         `json:"ta_subject"`
	Date           string         `json:"date"`       // YYYY-MM-DD
	StartTime      string         `json:"start_time"` // HH:00
	EndTime        string         `json:"end_time"`   // HH:00
	Status         SlotStatus     `json:"status"`
	StudentName    string         `json:"student_name"`
	StudentPhone   string         `json:"student_phone"`
	Topic          string         `json:"topic"`
	QuestionRange  string         `json:"question_range"`
	Classroom      string         `json:"classroom"`
	Source         SlotSource     `json:"source"`
	CancelReason   string         `json:"cancel_reason"`
	Feedback       string         `json:"feedback"`
	FeedbackStatus FeedbackStatus `json:"feedback_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Clone возвращает независимую копию слота
func (s *SessionSlot) Clone() *SessionSlot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// SlotPatch частичное обновление слота; nil означает "не менять"
type SlotPatch struct {
	TAID           *string
	TAName         *string
	TASubject      *string
	Date           *string
	StartTime      *string
	EndTime        *string
	Status         *SlotStatus
	StudentName    *string
	StudentPhone   *string
	Topic          *string
	QuestionRange  *string
	Classroom      *string
	CancelReason   *string
	Feedback       *string
	FeedbackStatus *FeedbackStatus
}

// IsEmpty проверяет, что патч ничего не меняет
func (p SlotPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// PatchColumn пара колонка/значение для построения UPDATE
type PatchColumn struct {
	Name  string
	Value interface{}
}

// Columns возвращает изменяемые колонки в стабильном порядке
func (p SlotPatch) Columns() []PatchColumn {
	var cols []PatchColumn
	add := func(name string, v *string) {
		if v != nil {
			cols = append(cols, PatchColumn{Name: name, Value: *v})
		}
	}

	add("ta_id", p.TAID)
	add("ta_name", p.TAName)
	add("ta_subject", p.TASubject)
	add("date", p.Date)
	add("start_time", p.StartTime)
	add("end_time", p.EndTime)
	if p.Status != nil {
		cols = append(cols, PatchColumn{Name: "status", Value: string(*p.Status)})
	}
	add("student_name", p.StudentName)
	add("student_phone", p.StudentPhone)
	add("topic", p.Topic)
	add("question_range", p.QuestionRange)
	add("classroom", p.Classroom)
	add("cancel_reason", p.CancelReason)
	add("feedback", p.Feedback)
	if p.FeedbackStatus != nil {
		cols = append(cols, PatchColumn{Name: "feedback_status", Value: string(*p.FeedbackStatus)})
	}
	return cols
}

// Apply применяет патч к копии слота
func (p SlotPatch) Apply(slot *SessionSlot) *SessionSlot {
	out := slot.Clone()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	set(&out.TAID, p.TAID)
	set(&out.TAName, p.TAName)
	set(&out.TASubject, p.TASubject)
	set(&out.Date, p.Date)
	set(&out.StartTime, p.StartTime)
	set(&out.EndTime, p.EndTime)
	if p.Status != nil {
		out.Status = *p.Status
	}
	set(&out.StudentName, p.StudentName)
	set(&out.StudentPhone, p.StudentPhone)
	set(&out.Topic, p.Topic)
	set(&out.QuestionRange, p.QuestionRange)
	set(&out.Classroom, p.Classroom)
	set(&out.CancelReason, p.CancelReason)
	set(&out.Feedback, p.Feedback)
	if p.FeedbackStatus != nil {
		out.FeedbackStatus = *p.FeedbackStatus
	}
	return out
}

// SlotUpdate условное обновление: применяется, только если статус в базе равен Expect.
// Пустой Expect означает безусловное обновление.
type SlotUpdate struct {
	ID     uuid.UUID
	Expect SlotStatus
	Patch  SlotPatch
}

// Ptr хелпер для заполнения патчей
func Ptr[T any](v T) *T {
	return &v
}
