package model

import (
	"fmt"
	"time"
)

type PayrollStatus string

const (
	PayrollStatusPending   PayrollStatus = "pending"
	PayrollStatusConfirmed PayrollStatus = "confirmed"
)

// Deductions фиксированный набор удержаний
type Deductions struct {
	NationalPension     int64 `json:"national_pension" validate:"gte=0"`
	HealthInsurance     int64 `json:"health_insurance" validate:"gte=0"`
	LongTermCare        int64 `json:"long_term_care" validate:"gte=0"`
	EmploymentInsurance int64 `json:"employment_insurance" validate:"gte=0"`
	IncomeTax           int64 `json:"income_tax" validate:"gte=0"`
	LocalIncomeTax      int64 `json:"local_income_tax" validate:"gte=0"`
}

// Total сумма всех удержаний
func (d Deductions) Total() int64 {
	return d.NationalPension +
		d.HealthInsurance +
		d.LongTermCare +
		d.EmploymentInsurance +
		d.IncomeTax +
		d.LocalIncomeTax
}

// PayrollRecord расчёт зарплаты ассистента за месяц
type PayrollRecord struct {
	UserID           string        `json:"user_id"`
	YearMonth        string        `json:"year_month"` // YYYY-MM
	HourlyRate       int64         `json:"hourly_rate"`
	TotalHours       float64       `json:"total_hours"`
	WeeklyHolidayPay int64         `json:"weekly_holiday_pay"`
	BaseSalary       int64         `json:"base_salary"`
	MealAllowance    int64         `json:"meal_allowance"`
	Bonus            int64         `json:"bonus"`
	TotalGross       int64         `json:"total_gross"`
	Deductions       Deductions    `json:"deductions"`
	NetSalary        int64         `json:"net_salary"`
	Status           PayrollStatus `json:"status"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Key ключ записи в хранилище: userId_yearMonth
func (r *PayrollRecord) Key() string {
	return PayrollKey(r.UserID, r.YearMonth)
}

// PayrollKey собирает ключ записи зарплаты
func PayrollKey(userID, yearMonth string) string {
	return fmt.Sprintf("%s_%s", userID, yearMonth)
}

// Recompute пересчитывает итоговые суммы из составляющих
func (r *PayrollRecord) Recompute() {
	r.TotalGross = r.BaseSalary + r.WeeklyHolidayPay + r.Bonus + r.MealAllowance
	r.NetSalary = r.TotalGross - r.Deductions.Total()
}
