package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/Freeeeeet/tutor_clinic/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PayrollRepository struct {
	pool *pgxpool.Pool
}

func NewPayrollRepository(pool *pgxpool.Pool) *PayrollRepository {
	return &PayrollRepository{pool: pool}
}

const payrollColumns = `
	user_id, year_month, hourly_rate, total_hours, weekly_holiday_pay, base_salary,
	meal_allowance, bonus, total_gross,
	national_pension, health_insurance, long_term_care, employment_insurance,
	income_tax, local_income_tax,
	net_salary, status, updated_at`

func scanPayroll(row pgx.Row) (*model.PayrollRecord, error) {
	var rec model.PayrollRecord
	err := row.Scan(
		&rec.UserID,
		&rec.YearMonth,
		&rec.HourlyRate,
		&rec.TotalHours,
		&rec.WeeklyHolidayPay,
		&rec.BaseSalary,
		&rec.MealAllowance,
		&rec.Bonus,
		&rec.TotalGross,
		&rec.Deductions.NationalPension,
		&rec.Deductions.HealthInsurance,
		&rec.Deductions.LongTermCare,
		&rec.Deductions.EmploymentInsurance,
		&rec.Deductions.IncomeTax,
		&rec.Deductions.LocalIncomeTax,
		&rec.NetSalary,
		&rec.Status,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get получает запись зарплаты; nil, если расчёта ещё не было
func (r *PayrollRepository) Get(ctx context.Context, userID, yearMonth string) (*model.PayrollRecord, error) {
	query := `SELECT ` + payrollColumns + ` FROM payroll_records WHERE id = $1`

	rec, err := scanPayroll(r.pool.QueryRow(ctx, query, model.PayrollKey(userID, yearMonth)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, base.StoreError("get payroll", err)
	}

	return rec, nil
}

// ListByMonth все записи месяца, по user_id
func (r *PayrollRepository) ListByMonth(ctx context.Context, yearMonth string) ([]*model.PayrollRecord, error) {
	query := `SELECT ` + payrollColumns + ` FROM payroll_records WHERE year_month = $1 ORDER BY user_id`

	rows, err := r.pool.Query(ctx, query, yearMonth)
	if err != nil {
		return nil, base.StoreError("list payroll", err)
	}
	defer rows.Close()

	var records []*model.PayrollRecord
	for rows.Next() {
		rec, err := scanPayroll(rows)
		if err != nil {
			return nil, base.StoreError("scan payroll", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, base.StoreError("list payroll", err)
	}

	return records, nil
}

// Put полностью перезаписывает запись по ключу userId_yearMonth
func (r *PayrollRepository) Put(ctx context.Context, rec *model.PayrollRecord) error {
	query := `
		INSERT INTO payroll_records (
			id, user_id, year_month, hourly_rate, total_hours, weekly_holiday_pay, base_salary,
			meal_allowance, bonus, total_gross,
			national_pension, health_insurance, long_term_care, employment_insurance,
			income_tax, local_income_tax,
			net_salary, status, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (id) DO UPDATE SET
			hourly_rate          = EXCLUDED.hourly_rate,
			total_hours          = EXCLUDED.total_hours,
			weekly_holiday_pay   = EXCLUDED.weekly_holiday_pay,
			base_salary          = EXCLUDED.base_salary,
			meal_allowance       = EXCLUDED.meal_allowance,
			bonus                = EXCLUDED.bonus,
			total_gross          = EXCLUDED.total_gross,
			national_pension     = EXCLUDED.national_pension,
			health_insurance     = EXCLUDED.health_insurance,
			long_term_care       = EXCLUDED.long_term_care,
			employment_insurance = EXCLUDED.employment_insurance,
			income_tax           = EXCLUDED.income_tax,
			local_income_tax     = EXCLUDED.local_income_tax,
			net_salary           = EXCLUDED.net_salary,
			status               = EXCLUDED.status,
			updated_at           = EXCLUDED.updated_at
		RETURNING updated_at
	`

	var updatedAt time.Time
	err := r.pool.QueryRow(
		ctx, query,
		rec.Key(),
		rec.UserID,
		rec.YearMonth,
		rec.HourlyRate,
		rec.TotalHours,
		rec.WeeklyHolidayPay,
		rec.BaseSalary,
		rec.MealAllowance,
		rec.Bonus,
		rec.TotalGross,
		rec.Deductions.NationalPension,
		rec.Deductions.HealthInsurance,
		rec.Deductions.LongTermCare,
		rec.Deductions.EmploymentInsurance,
		rec.Deductions.IncomeTax,
		rec.Deductions.LocalIncomeTax,
		rec.NetSalary,
		string(rec.Status),
	).Scan(&updatedAt)

	if err != nil {
		return base.StoreError("put payroll", err)
	}

	rec.UpdatedAt = updatedAt
	return nil
}
