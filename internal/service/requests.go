package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/go-playground/validator/v10"
)

// PublishRequest новый слот доступности
type PublishRequest struct {
	TAID      string `validate:"required"`
	TAName    string `validate:"required"`
	TASubject string
	Date      string `validate:"required,datetime=2006-01-02"`
	StartTime string `validate:"required,len=5"`
}

// ClaimRequest данные студента для заявки; имя берётся из Actor
type ClaimRequest struct {
	StudentName   string `validate:"required"`
	StudentPhone  string `validate:"omitempty,max=32"`
	Topic         string `validate:"max=200"`
	QuestionRange string `validate:"max=200"`
}

// EditRequest правка слота админом; nil — поле не меняется
type EditRequest struct {
	TAID          *string `validate:"omitempty,min=1"`
	TAName        *string `validate:"omitempty,min=1"`
	TASubject     *string
	Date          *string `validate:"omitempty,datetime=2006-01-02"`
	StartTime     *string `validate:"omitempty,len=5"`
	StudentName   *string
	StudentPhone  *string
	Topic         *string
	QuestionRange *string
	Classroom     *string
}

// TemplateGroupRequest группа недельных шаблонов: все дни x все часы
type TemplateGroupRequest struct {
	TAID      string `validate:"required"`
	TAName    string `validate:"required"`
	TASubject string
	Weekdays  []int `validate:"required,min=1,dive,min=0,max=6"`
	Hours     []int `validate:"required,min=1,dive,min=0,max=23"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationError переводит ошибки валидатора в ErrPreconditionFailed
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: invalid %s", model.ErrPreconditionFailed, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", model.ErrPreconditionFailed, err)
}
