package model

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyTemplate шаблон регулярной доступности ассистента
type WeeklyTemplate struct {
	ID        int64     `json:"id"`
	GroupID   uuid.UUID `json:"group_id"` // идентификатор группы связанных шаблонов
	TAID      string    `json:"ta_id"`
	TAName    string    `json:"ta_name"`
	TASubject string    `json:"ta_subject"`
	Weekday   int       `json:"weekday"`    // 0 = Sunday, 6 = Saturday
	StartHour int       `json:"start_hour"` // 8-21
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
