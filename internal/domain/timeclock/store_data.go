package timeclock

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateEmployee(ctx context.Context, storeID string, emp Employee) (Employee, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (store_id, name, phone, hourly_wage, memo, clock_status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id, created_at, updated_at
  `, storeID, emp.Name, emp.Phone, emp.HourlyWage, emp.Memo, StatusOffDuty).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	emp.StoreID = storeID
	emp.Status = StatusOffDuty
	emp.ClockInAt = nil
	return emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, storeID, employeeID string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, store_id, name, phone, hourly_wage, memo, clock_status, clock_in_at, created_at, updated_at
    FROM employees
    WHERE store_id = $1 AND id = $2
  `, storeID, employeeID).Scan(
		&emp.ID, &emp.StoreID, &emp.Name, &emp.Phone, &emp.HourlyWage,
		&emp.Memo, &emp.Status, &emp.ClockInAt, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, storeID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, store_id, name, phone, hourly_wage, memo, clock_status, clock_in_at, created_at, updated_at
    FROM employees
    WHERE store_id = $1
    ORDER BY created_at
  `, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(
			&emp.ID, &emp.StoreID, &emp.Name, &emp.Phone, &emp.HourlyWage,
			&emp.Memo, &emp.Status, &emp.ClockInAt, &emp.CreatedAt, &emp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) UpdateMemo(ctx context.Context, storeID, employeeID, memo string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET memo = $1, updated_at = now()
    WHERE store_id = $2 AND id = $3
  `, memo, storeID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// UpdateWage changes the rate for future sessions only; existing ledger rows
// keep the rate frozen at creation time.
func (s *Store) UpdateWage(ctx context.Context, storeID, employeeID string, hourlyWage float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET hourly_wage = $1, updated_at = now()
    WHERE store_id = $2 AND id = $3
  `, hourlyWage, storeID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// DeleteEmployee removes the employee; work logs go with it through the
// ON DELETE CASCADE on work_logs.employee_id.
func (s *Store) DeleteEmployee(ctx context.Context, storeID, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE store_id = $1 AND id = $2", storeID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// SetClockIn flips an off-duty employee to on duty. The status predicate in
// the UPDATE makes the guard atomic under concurrent requests.
func (s *Store) SetClockIn(ctx context.Context, storeID, employeeID string, at time.Time) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET clock_status = $1, clock_in_at = $2, updated_at = now()
    WHERE store_id = $3 AND id = $4 AND clock_status = $5
  `, StatusOnDuty, at, storeID, employeeID, StatusOffDuty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClockOut closes the open session: it locks the employee row, appends the
// session ledger entry and resets the clock state in one transaction.
func (s *Store) ClockOut(ctx context.Context, storeID, employeeID string, now time.Time) (WorkLog, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return WorkLog{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	var clockInAt *time.Time
	var hourlyWage float64
	err = tx.QueryRow(ctx, `
    SELECT clock_status, clock_in_at, hourly_wage
    FROM employees
    WHERE store_id = $1 AND id = $2
    FOR UPDATE
  `, storeID, employeeID).Scan(&status, &clockInAt, &hourlyWage)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorkLog{}, ErrEmployeeNotFound
	}
	if err != nil {
		return WorkLog{}, err
	}
	if status != StatusOnDuty || clockInAt == nil {
		return WorkLog{}, ErrNotOnDuty
	}

	log := NewSessionLog(employeeID, *clockInAt, now, hourlyWage)
	if err := insertSessionLog(ctx, tx, &log, now); err != nil {
		return WorkLog{}, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE employees SET clock_status = $1, clock_in_at = NULL, updated_at = now()
    WHERE store_id = $2 AND id = $3
  `, StatusOffDuty, storeID, employeeID); err != nil {
		return WorkLog{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return WorkLog{}, err
	}
	return log, nil
}

func (s *Store) InsertManualLog(ctx context.Context, storeID string, log WorkLog) (WorkLog, error) {
	if _, err := s.GetEmployee(ctx, storeID, log.EmployeeID); err != nil {
		return WorkLog{}, err
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO work_logs (employee_id, start_time, end_time, duration_minutes, wage_rate, wage_amount, is_paid, paid_amount, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,false,0,$7)
    RETURNING id
  `, log.EmployeeID, log.StartTime, log.EndTime, log.DurationMinutes, log.WageRate, log.WageAmount, log.CreatedAt).Scan(&log.ID)
	if err != nil {
		return WorkLog{}, err
	}
	return log, nil
}

func (s *Store) ListLogs(ctx context.Context, storeID, employeeID string, pageSize int, cursor string) (LogPage, error) {
	if _, err := s.GetEmployee(ctx, storeID, employeeID); err != nil {
		return LogPage{}, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	query := `
    SELECT id, employee_id, start_time, end_time, duration_minutes, wage_rate, wage_amount,
           is_paid, paid_amount, paid_at, is_pay_marker, created_at
    FROM work_logs
    WHERE employee_id = $1
  `
	args := []any{employeeID}
	if cursor != "" {
		cursorAt, cursorID, err := decodeCursor(cursor)
		if err != nil {
			return LogPage{}, err
		}
		query += " AND (created_at, id) < ($2, $3)"
		args = append(args, cursorAt, cursorID)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + itoa(len(args)+1)
	args = append(args, pageSize+1)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return LogPage{}, err
	}
	defer rows.Close()

	var entries []WorkLog
	for rows.Next() {
		var log WorkLog
		if err := rows.Scan(
			&log.ID, &log.EmployeeID, &log.StartTime, &log.EndTime, &log.DurationMinutes,
			&log.WageRate, &log.WageAmount, &log.IsPaid, &log.PaidAmount, &log.PaidAt,
			&log.IsPayMarker, &log.CreatedAt,
		); err != nil {
			return LogPage{}, err
		}
		entries = append(entries, log)
	}
	if err := rows.Err(); err != nil {
		return LogPage{}, err
	}

	page := LogPage{Entries: entries}
	if len(entries) > pageSize {
		page.Entries = entries[:pageSize]
		page.HasMore = true
	}
	if n := len(page.Entries); n > 0 {
		last := page.Entries[n-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// ListAllLogs loads the complete ledger oldest-first, for exports.
func (s *Store) ListAllLogs(ctx context.Context, storeID, employeeID string) ([]WorkLog, error) {
	if _, err := s.GetEmployee(ctx, storeID, employeeID); err != nil {
		return nil, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, start_time, end_time, duration_minutes, wage_rate, wage_amount,
           is_paid, paid_amount, paid_at, is_pay_marker, created_at
    FROM work_logs
    WHERE employee_id = $1
    ORDER BY created_at, id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []WorkLog
	for rows.Next() {
		var log WorkLog
		if err := rows.Scan(
			&log.ID, &log.EmployeeID, &log.StartTime, &log.EndTime, &log.DurationMinutes,
			&log.WageRate, &log.WageAmount, &log.IsPaid, &log.PaidAmount, &log.PaidAt,
			&log.IsPayMarker, &log.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, log)
	}
	return entries, rows.Err()
}

// UnpaidTotal aggregates server-side with the same clamp as the pure
// calculator: markers excluded, no row contributes below zero.
func (s *Store) UnpaidTotal(ctx context.Context, storeID, employeeID string) (float64, error) {
	if _, err := s.GetEmployee(ctx, storeID, employeeID); err != nil {
		return 0, err
	}
	var total float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(GREATEST(wage_amount - paid_amount, 0)), 0)
    FROM work_logs
    WHERE employee_id = $1 AND NOT is_pay_marker
  `, employeeID).Scan(&total)
	return total, err
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
