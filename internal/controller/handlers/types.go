package handlers

import (
	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	slotService    *service.SlotService
	payrollService *service.PayrollService
	adminChatID    int64
	months         func() (string, string)
	logger         *zap.Logger
}

func NewHandlers(
	slotService *service.SlotService,
	payrollService *service.PayrollService,
	adminChatID int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		slotService:    slotService,
		payrollService: payrollService,
		adminChatID:    adminChatID,
		months:         currentAndNextMonth,
		logger:         logger,
	}
}

// adminActor от имени админа выполняются все команды бота
func adminActor(userID int64, name string) model.Actor {
	return model.Actor{
		Role:   model.RoleAdmin,
		UserID: formatUserID(userID),
		Name:   name,
	}
}
