package timeclock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SettlePayment runs one settlement as a single transaction: it locks the
// employee row so concurrent settlements for the same employee serialize,
// loads unpaid session rows oldest-first, applies the greedy allocation and
// appends the payment marker. Either every allocation and the marker commit,
// or nothing does.
func (s *Store) SettlePayment(ctx context.Context, storeID, employeeID string, amount float64, now time.Time) (PayResult, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PayResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists int
	err = tx.QueryRow(ctx, `
    SELECT 1 FROM employees WHERE store_id = $1 AND id = $2 FOR UPDATE
  `, storeID, employeeID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayResult{}, ErrEmployeeNotFound
	}
	if err != nil {
		return PayResult{}, mapConflict(err)
	}

	candidates, err := unpaidLogsForUpdate(ctx, tx, employeeID)
	if err != nil {
		return PayResult{}, mapConflict(err)
	}

	allocations, remaining := AllocatePayment(candidates, amount)
	for _, alloc := range allocations {
		if _, err := tx.Exec(ctx, `
      UPDATE work_logs
      SET paid_amount = $1, is_paid = $2, paid_at = $3
      WHERE id = $4
    `, alloc.NewPaid, alloc.FullySettled, now, alloc.LogID); err != nil {
			return PayResult{}, mapConflict(err)
		}
	}

	var markerID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO work_logs (employee_id, paid_amount, paid_at, is_pay_marker, is_paid, created_at)
    VALUES ($1,$2,$3,true,false,$4)
    RETURNING id
  `, employeeID, amount, now, now).Scan(&markerID); err != nil {
		return PayResult{}, mapConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return PayResult{}, mapConflict(err)
	}

	allocated := amount - remaining
	return PayResult{
		MarkerID:    markerID,
		Requested:   amount,
		Allocated:   allocated,
		Remaining:   remaining,
		Allocations: allocations,
		PaidAt:      now,
	}, nil
}

func unpaidLogsForUpdate(ctx context.Context, tx pgx.Tx, employeeID string) ([]WorkLog, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, employee_id, duration_minutes, wage_rate, wage_amount, is_paid, paid_amount, is_pay_marker, created_at
    FROM work_logs
    WHERE employee_id = $1 AND NOT is_pay_marker AND NOT is_paid
    ORDER BY created_at, id
    FOR UPDATE
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []WorkLog
	for rows.Next() {
		var log WorkLog
		if err := rows.Scan(
			&log.ID, &log.EmployeeID, &log.DurationMinutes, &log.WageRate, &log.WageAmount,
			&log.IsPaid, &log.PaidAmount, &log.IsPayMarker, &log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func insertSessionLog(ctx context.Context, tx pgx.Tx, log *WorkLog, createdAt time.Time) error {
	log.CreatedAt = createdAt
	return tx.QueryRow(ctx, `
    INSERT INTO work_logs (employee_id, start_time, end_time, duration_minutes, wage_rate, wage_amount, is_paid, paid_amount, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,false,0,$7)
    RETURNING id
  `, log.EmployeeID, log.StartTime, log.EndTime, log.DurationMinutes, log.WageRate, log.WageAmount, createdAt).Scan(&log.ID)
}

// mapConflict translates serialization and deadlock failures into the
// domain's conflict error so the service can retry the whole settlement.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}
