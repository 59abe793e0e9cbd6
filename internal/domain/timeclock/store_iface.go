package timeclock

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateEmployee(ctx context.Context, storeID string, emp Employee) (Employee, error)
	GetEmployee(ctx context.Context, storeID, employeeID string) (Employee, error)
	ListEmployees(ctx context.Context, storeID string) ([]Employee, error)
	UpdateMemo(ctx context.Context, storeID, employeeID, memo string) error
	UpdateWage(ctx context.Context, storeID, employeeID string, hourlyWage float64) error
	DeleteEmployee(ctx context.Context, storeID, employeeID string) error
	SetClockIn(ctx context.Context, storeID, employeeID string, at time.Time) (bool, error)
	ClockOut(ctx context.Context, storeID, employeeID string, now time.Time) (WorkLog, error)
	InsertManualLog(ctx context.Context, storeID string, log WorkLog) (WorkLog, error)
	ListLogs(ctx context.Context, storeID, employeeID string, pageSize int, cursor string) (LogPage, error)
	ListAllLogs(ctx context.Context, storeID, employeeID string) ([]WorkLog, error)
	UnpaidTotal(ctx context.Context, storeID, employeeID string) (float64, error)
	SettlePayment(ctx context.Context, storeID, employeeID string, amount float64, now time.Time) (PayResult, error)
}
