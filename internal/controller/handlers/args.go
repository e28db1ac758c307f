package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/timegrid"
	"github.com/google/uuid"
)

// approveArgs /approve <id> [аудитория]
type approveArgs struct {
	ID        uuid.UUID
	Classroom string
}

func parseApproveArgs(text string) (approveArgs, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return approveArgs{}, fmt.Errorf("%w: usage /approve <id> [classroom]", model.ErrPreconditionFailed)
	}

	id, err := uuid.Parse(fields[1])
	if err != nil {
		return approveArgs{}, fmt.Errorf("%w: invalid slot id %q", model.ErrPreconditionFailed, fields[1])
	}

	return approveArgs{ID: id, Classroom: strings.Join(fields[2:], " ")}, nil
}

// parseSlotID /reset <id>, /delete <id>
func parseSlotID(text string) (uuid.UUID, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return uuid.Nil, fmt.Errorf("%w: slot id is required", model.ErrPreconditionFailed)
	}
	id, err := uuid.Parse(fields[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid slot id %q", model.ErrPreconditionFailed, fields[1])
	}
	return id, nil
}

// payrollArgs /payroll <taId> <YYYY-MM> [ставка]
type payrollArgs struct {
	TAID      string
	YearMonth string
	Rate      int64
}

func parsePayrollArgs(text string) (payrollArgs, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 || len(fields) > 4 {
		return payrollArgs{}, fmt.Errorf("%w: usage /payroll <taId> <YYYY-MM> [rate]", model.ErrPreconditionFailed)
	}

	args := payrollArgs{TAID: fields[1], YearMonth: fields[2]}
	if _, err := timegrid.ParseYearMonth(args.YearMonth); err != nil {
		return payrollArgs{}, fmt.Errorf("%w: month must be YYYY-MM", model.ErrPreconditionFailed)
	}

	if len(fields) == 4 {
		rate, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil || rate <= 0 {
			return payrollArgs{}, fmt.Errorf("%w: rate must be a positive number", model.ErrPreconditionFailed)
		}
		args.Rate = rate
	}

	return args, nil
}

func currentAndNextMonth() (string, string) {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(timegrid.MonthLayout), first.AddDate(0, 1, 0).Format(timegrid.MonthLayout)
}
