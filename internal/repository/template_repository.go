package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const templateColumns = `id, group_id, ta_id, ta_name, ta_subject, weekday, start_hour, is_active, created_at, updated_at`

// TemplateRepository управляет недельными шаблонами доступности
type TemplateRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTemplateRepository создаёт новый репозиторий
func NewTemplateRepository(pool *pgxpool.Pool, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{
		pool:   pool,
		logger: logger,
	}
}

func scanTemplate(row pgx.Row) (*model.WeeklyTemplate, error) {
	t := &model.WeeklyTemplate{}
	err := row.Scan(
		&t.ID,
		&t.GroupID,
		&t.TAID,
		&t.TAName,
		&t.TASubject,
		&t.Weekday,
		&t.StartHour,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *TemplateRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*model.WeeklyTemplate, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, base.StoreError(op, err)
	}
	defer rows.Close()

	var templates []*model.WeeklyTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, base.StoreError("scan weekly template", err)
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// Create создаёт новый шаблон
func (r *TemplateRepository) Create(ctx context.Context, t *model.WeeklyTemplate) error {
	query := `
		INSERT INTO weekly_templates (group_id, ta_id, ta_name, ta_subject, weekday, start_hour, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		t.GroupID,
		t.TAID,
		t.TAName,
		t.TASubject,
		t.Weekday,
		t.StartHour,
		t.IsActive,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return base.StoreError("create weekly template", err)
	}

	return nil
}

// GetAllActive получает все активные шаблоны
func (r *TemplateRepository) GetAllActive(ctx context.Context) ([]*model.WeeklyTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM weekly_templates
		WHERE is_active = true
		ORDER BY ta_id, weekday, start_hour
	`
	return r.list(ctx, "get all active weekly templates", query)
}

// GetByTAID получает все шаблоны ассистента
func (r *TemplateRepository) GetByTAID(ctx context.Context, taID string) ([]*model.WeeklyTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM weekly_templates
		WHERE ta_id = $1
		ORDER BY weekday, start_hour
	`
	return r.list(ctx, "get weekly templates by ta", query, taID)
}

// DeactivateByGroupID деактивирует всю группу шаблонов
func (r *TemplateRepository) DeactivateByGroupID(ctx context.Context, groupID uuid.UUID) error {
	query := `
		UPDATE weekly_templates
		SET is_active = false, updated_at = now()
		WHERE group_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, groupID)
	if err != nil {
		return base.StoreError("deactivate weekly template group", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("weekly template group %s: %w", groupID, model.ErrNotFound)
	}

	r.logger.Info("Weekly template group deactivated",
		zap.String("group_id", groupID.String()),
		zap.Int64("rows_affected", tag.RowsAffected()),
	)

	return nil
}
