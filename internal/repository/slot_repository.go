package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `
	id, ta_id, ta_name, ta_subject, date::text, start_time, end_time, status,
	student_name, student_phone, topic, question_range, classroom, source,
	cancel_reason, feedback, feedback_status, created_at, updated_at
`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

func scanSlot(row pgx.Row) (*model.SessionSlot, error) {
	var slot model.SessionSlot
	err := row.Scan(
		&slot.ID,
		&slot.TAID,
		&slot.TAName,
		&slot.TASubject,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.Status,
		&slot.StudentName,
		&slot.StudentPhone,
		&slot.Topic,
		&slot.QuestionRange,
		&slot.Classroom,
		&slot.Source,
		&slot.CancelReason,
		&slot.Feedback,
		&slot.FeedbackStatus,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *SlotRepository) querySlots(ctx context.Context, op, query string, args ...interface{}) ([]*model.SessionSlot, error) {
	rows, err := r.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, base.StoreError(op, err)
	}
	defer rows.Close()

	var slots []*model.SessionSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, base.StoreError("scan slot", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, base.StoreError(op, err)
	}

	return slots, nil
}

func insertSlot(ctx context.Context, db base.DBTX, slot *model.SessionSlot, onConflictSkip bool) (bool, error) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.FeedbackStatus == "" {
		slot.FeedbackStatus = model.FeedbackStatusNone
	}

	query := `
		INSERT INTO session_slots (
			id, ta_id, ta_name, ta_subject, date, start_time, end_time, status,
			student_name, student_phone, topic, question_range, classroom, source,
			cancel_reason, feedback, feedback_status
		)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	if onConflictSkip {
		query += ` ON CONFLICT (ta_id, date, start_time) DO NOTHING`
	}
	query += ` RETURNING created_at, updated_at`

	err := db.QueryRow(
		ctx, query,
		slot.ID,
		slot.TAID,
		slot.TAName,
		slot.TASubject,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		string(slot.Status),
		slot.StudentName,
		slot.StudentPhone,
		slot.Topic,
		slot.QuestionRange,
		slot.Classroom,
		string(slot.Source),
		slot.CancelReason,
		slot.Feedback,
		string(slot.FeedbackStatus),
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		if onConflictSkip && base.IsNotFound(err) {
			return false, nil
		}
		if base.IsUniqueViolation(err) {
			return false, fmt.Errorf("create slot: %w: slot already exists for %s %s %s",
				model.ErrConflict, slot.TAID, slot.Date, slot.StartTime)
		}
		return false, base.StoreError("create slot", err)
	}

	return true, nil
}

// Create создаёт новый слот; id назначается здесь, если не задан
func (r *SlotRepository) Create(ctx context.Context, slot *model.SessionSlot) (uuid.UUID, error) {
	if _, err := insertSlot(ctx, r.Pool(), slot, false); err != nil {
		return uuid.Nil, err
	}
	return slot.ID, nil
}

// CreateBatch создаёт слоты одной транзакцией; уже существующие пропускаются
func (r *SlotRepository) CreateBatch(ctx context.Context, slots []*model.SessionSlot) (int, error) {
	created := 0
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		created = 0
		for _, slot := range slots {
			ok, err := insertSlot(ctx, tx, slot, true)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SessionSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM session_slots WHERE id = $1`

	slot, err := scanSlot(r.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, fmt.Errorf("get slot %s: %w", id, model.ErrNotFound)
		}
		return nil, base.StoreError("get slot by id", err)
	}

	return slot, nil
}

// QueryByDateRange все слоты с датой в [start, end]
func (r *SlotRepository) QueryByDateRange(ctx context.Context, start, end string) ([]*model.SessionSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM session_slots
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date, start_time, ta_name
	`
	return r.querySlots(ctx, "query slots by date range", query, start, end)
}

// QueryByTAAndDateRange слоты ассистента с датой в [start, end]
func (r *SlotRepository) QueryByTAAndDateRange(ctx context.Context, taID, start, end string) ([]*model.SessionSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM session_slots
		WHERE ta_id = $1
		  AND date BETWEEN $2::date AND $3::date
		ORDER BY date, start_time
	`
	return r.querySlots(ctx, "query slots by ta", query, taID, start, end)
}

// applyUpdate условный UPDATE: при несовпадении статуса ничего не меняет
func applyUpdate(ctx context.Context, db base.DBTX, upd model.SlotUpdate) error {
	cols := upd.Patch.Columns()
	if len(cols) == 0 {
		return nil
	}

	sets := make([]string, 0, len(cols)+1)
	args := []interface{}{upd.ID}
	for _, c := range cols {
		args = append(args, c.Value)
		if c.Name == "date" {
			sets = append(sets, fmt.Sprintf("date = $%d::date", len(args)))
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c.Name, len(args)))
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE session_slots SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	if upd.Expect != "" {
		args = append(args, string(upd.Expect))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("update slot %s: %w: slot already exists at that time", upd.ID, model.ErrConflict)
		}
		return base.StoreError("update slot", err)
	}

	if tag.RowsAffected() == 0 {
		return missOrStale(ctx, db, upd.ID, upd.Expect)
	}
	return nil
}

// missOrStale различает отсутствие слота и гонку со сменой статуса
func missOrStale(ctx context.Context, db base.DBTX, id uuid.UUID, expect model.SlotStatus) error {
	var current model.SlotStatus
	err := db.QueryRow(ctx, `SELECT status FROM session_slots WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("slot %s: %w", id, model.ErrNotFound)
		}
		return base.StoreError("check slot status", err)
	}
	return fmt.Errorf("slot %s is %s, expected %s: %w", id, current, expect, model.ErrConflict)
}

// Update применяет частичное обновление одного слота
func (r *SlotRepository) Update(ctx context.Context, upd model.SlotUpdate) error {
	return applyUpdate(ctx, r.Pool(), upd)
}

// BatchApply применяет все обновления одной транзакцией: либо все, либо ни одного
func (r *SlotRepository) BatchApply(ctx context.Context, updates []model.SlotUpdate) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		for _, upd := range updates {
			if err := applyUpdate(ctx, tx, upd); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete удаляет слот; при непустом expect только если статус совпадает
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID, expect model.SlotStatus) error {
	query := `DELETE FROM session_slots WHERE id = $1`
	args := []interface{}{id}
	if expect != "" {
		query += ` AND status = $2`
		args = append(args, string(expect))
	}

	tag, err := r.Pool().Exec(ctx, query, args...)
	if err != nil {
		return base.StoreError("delete slot", err)
	}

	if tag.RowsAffected() == 0 {
		return missOrStale(ctx, r.Pool(), id, expect)
	}
	return nil
}
