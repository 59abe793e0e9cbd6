package timeclock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidEmployee = errors.New("employee requires name, phone and a positive hourly wage")

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) AddEmployee(ctx context.Context, storeID, name, phone string, hourlyWage float64, memo string) (Employee, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" || hourlyWage <= 0 {
		return Employee{}, ErrInvalidEmployee
	}
	return s.store.CreateEmployee(ctx, storeID, Employee{
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		HourlyWage: hourlyWage,
		Memo:       memo,
		Status:     StatusOffDuty,
	})
}

func (s *Service) GetEmployee(ctx context.Context, storeID, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, storeID, employeeID)
}

func (s *Service) ListEmployees(ctx context.Context, storeID string) ([]Employee, error) {
	return s.store.ListEmployees(ctx, storeID)
}

func (s *Service) UpdateMemo(ctx context.Context, storeID, employeeID, memo string) error {
	return s.store.UpdateMemo(ctx, storeID, employeeID, memo)
}

func (s *Service) UpdateWage(ctx context.Context, storeID, employeeID string, hourlyWage float64) error {
	if hourlyWage <= 0 {
		return ErrInvalidEmployee
	}
	return s.store.UpdateWage(ctx, storeID, employeeID, hourlyWage)
}

func (s *Service) DeleteEmployee(ctx context.Context, storeID, employeeID string) error {
	return s.store.DeleteEmployee(ctx, storeID, employeeID)
}

// ClockIn opens a session. Clocking in while already on duty is rejected
// rather than silently overwriting the open session's start time.
func (s *Service) ClockIn(ctx context.Context, storeID, employeeID string) error {
	ok, err := s.store.SetClockIn(ctx, storeID, employeeID, s.now())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := s.store.GetEmployee(ctx, storeID, employeeID); err != nil {
		return err
	}
	return ErrAlreadyOnDuty
}

func (s *Service) ClockOut(ctx context.Context, storeID, employeeID string) (WorkLog, error) {
	return s.store.ClockOut(ctx, storeID, employeeID, s.now())
}

func (s *Service) AddManualLog(ctx context.Context, storeID, employeeID string, day time.Time, hours, hourlyWage float64) (WorkLog, error) {
	if hours <= 0 || hourlyWage <= 0 {
		return WorkLog{}, ErrInvalidManualLog
	}
	log := NewManualLog(employeeID, day, hours, hourlyWage, s.now())
	return s.store.InsertManualLog(ctx, storeID, log)
}

func (s *Service) ListLogs(ctx context.Context, storeID, employeeID string, pageSize int, cursor string) (LogPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return s.store.ListLogs(ctx, storeID, employeeID, pageSize, cursor)
}

func (s *Service) ListAllLogs(ctx context.Context, storeID, employeeID string) ([]WorkLog, error) {
	return s.store.ListAllLogs(ctx, storeID, employeeID)
}

func (s *Service) UnpaidBalance(ctx context.Context, storeID, employeeID string) (float64, error) {
	return s.store.UnpaidTotal(ctx, storeID, employeeID)
}

// Pay settles a wage payment against the employee's outstanding ledger.
// Conflicting concurrent settlements are retried a bounded number of times
// before the conflict surfaces to the caller.
func (s *Service) Pay(ctx context.Context, storeID, employeeID string, amount float64) (PayResult, error) {
	if amount <= 0 {
		return PayResult{}, fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}

	var lastErr error
	for attempt := 0; attempt < SettleRetryAttempts; attempt++ {
		result, err := s.store.SettlePayment(ctx, storeID, employeeID, amount, s.now())
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrConflict) {
			return PayResult{}, err
		}
		lastErr = err
	}
	return PayResult{}, lastErr
}
