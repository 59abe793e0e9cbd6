package timeclock

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"
)

// fakeStore is an in-memory StoreAPI with the same guard semantics as the
// SQL store, so Service behavior can be tested without a database.
type fakeStore struct {
	employees   map[string]Employee
	logs        map[string][]WorkLog
	nextID      int
	settleCalls int
	conflicts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: make(map[string]Employee),
		logs:      make(map[string][]WorkLog),
	}
}

func (f *fakeStore) id() string {
	f.nextID++
	return "id-" + strconv.Itoa(f.nextID)
}

func (f *fakeStore) CreateEmployee(_ context.Context, storeID string, emp Employee) (Employee, error) {
	emp.ID = f.id()
	emp.StoreID = storeID
	emp.Status = StatusOffDuty
	f.employees[emp.ID] = emp
	return emp, nil
}

func (f *fakeStore) GetEmployee(_ context.Context, storeID, employeeID string) (Employee, error) {
	emp, ok := f.employees[employeeID]
	if !ok || emp.StoreID != storeID {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeStore) ListEmployees(_ context.Context, storeID string) ([]Employee, error) {
	var out []Employee
	for _, emp := range f.employees {
		if emp.StoreID == storeID {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMemo(ctx context.Context, storeID, employeeID, memo string) error {
	emp, err := f.GetEmployee(ctx, storeID, employeeID)
	if err != nil {
		return err
	}
	emp.Memo = memo
	f.employees[employeeID] = emp
	return nil
}

func (f *fakeStore) UpdateWage(ctx context.Context, storeID, employeeID string, hourlyWage float64) error {
	emp, err := f.GetEmployee(ctx, storeID, employeeID)
	if err != nil {
		return err
	}
	emp.HourlyWage = hourlyWage
	f.employees[employeeID] = emp
	return nil
}

func (f *fakeStore) DeleteEmployee(ctx context.Context, storeID, employeeID string) error {
	if _, err := f.GetEmployee(ctx, storeID, employeeID); err != nil {
		return err
	}
	delete(f.employees, employeeID)
	delete(f.logs, employeeID)
	return nil
}

func (f *fakeStore) SetClockIn(ctx context.Context, storeID, employeeID string, at time.Time) (bool, error) {
	emp, err := f.GetEmployee(ctx, storeID, employeeID)
	if err != nil {
		return false, nil
	}
	if emp.Status == StatusOnDuty {
		return false, nil
	}
	emp.Status = StatusOnDuty
	emp.ClockInAt = &at
	f.employees[employeeID] = emp
	return true, nil
}

func (f *fakeStore) ClockOut(ctx context.Context, storeID, employeeID string, now time.Time) (WorkLog, error) {
	emp, err := f.GetEmployee(ctx, storeID, employeeID)
	if err != nil {
		return WorkLog{}, err
	}
	if emp.Status != StatusOnDuty || emp.ClockInAt == nil {
		return WorkLog{}, ErrNotOnDuty
	}
	log := NewSessionLog(employeeID, *emp.ClockInAt, now, emp.HourlyWage)
	log.ID = f.id()
	log.CreatedAt = now
	f.logs[employeeID] = append(f.logs[employeeID], log)
	emp.Status = StatusOffDuty
	emp.ClockInAt = nil
	f.employees[employeeID] = emp
	return log, nil
}

func (f *fakeStore) InsertManualLog(ctx context.Context, storeID string, log WorkLog) (WorkLog, error) {
	if _, err := f.GetEmployee(ctx, storeID, log.EmployeeID); err != nil {
		return WorkLog{}, err
	}
	log.ID = f.id()
	f.logs[log.EmployeeID] = append(f.logs[log.EmployeeID], log)
	return log, nil
}

func (f *fakeStore) ListLogs(ctx context.Context, storeID, employeeID string, pageSize int, cursor string) (LogPage, error) {
	entries, err := f.ListAllLogs(ctx, storeID, employeeID)
	if err != nil {
		return LogPage{}, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if len(entries) > pageSize {
		return LogPage{Entries: entries[:pageSize], HasMore: true}, nil
	}
	return LogPage{Entries: entries}, nil
}

func (f *fakeStore) ListAllLogs(ctx context.Context, storeID, employeeID string) ([]WorkLog, error) {
	if _, err := f.GetEmployee(ctx, storeID, employeeID); err != nil {
		return nil, err
	}
	out := make([]WorkLog, len(f.logs[employeeID]))
	copy(out, f.logs[employeeID])
	return out, nil
}

func (f *fakeStore) UnpaidTotal(ctx context.Context, storeID, employeeID string) (float64, error) {
	entries, err := f.ListAllLogs(ctx, storeID, employeeID)
	if err != nil {
		return 0, err
	}
	return UnpaidTotal(entries), nil
}

func (f *fakeStore) SettlePayment(ctx context.Context, storeID, employeeID string, amount float64, now time.Time) (PayResult, error) {
	f.settleCalls++
	if f.conflicts > 0 {
		f.conflicts--
		return PayResult{}, ErrConflict
	}
	if _, err := f.GetEmployee(ctx, storeID, employeeID); err != nil {
		return PayResult{}, err
	}

	candidates := make([]WorkLog, len(f.logs[employeeID]))
	copy(candidates, f.logs[employeeID])
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })

	allocations, remaining := AllocatePayment(candidates, amount)
	for _, alloc := range allocations {
		for i := range f.logs[employeeID] {
			if f.logs[employeeID][i].ID == alloc.LogID {
				f.logs[employeeID][i].PaidAmount = alloc.NewPaid
				f.logs[employeeID][i].IsPaid = alloc.FullySettled
				f.logs[employeeID][i].PaidAt = &now
			}
		}
	}

	marker := WorkLog{
		ID:          f.id(),
		EmployeeID:  employeeID,
		PaidAmount:  amount,
		PaidAt:      &now,
		IsPayMarker: true,
		CreatedAt:   now,
	}
	f.logs[employeeID] = append(f.logs[employeeID], marker)

	return PayResult{
		MarkerID:    marker.ID,
		Requested:   amount,
		Allocated:   amount - remaining,
		Remaining:   remaining,
		Allocations: allocations,
		PaidAt:      now,
	}, nil
}

func newTestService(store StoreAPI, at time.Time) *Service {
	return NewService(store).WithClock(func() time.Time { return at })
}

func TestAddEmployeeValidation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	cases := []struct {
		name, phone string
		wage        float64
	}{
		{"", "010-1234", 10000},
		{"Kim", "", 10000},
		{"Kim", "010-1234", 0},
		{"Kim", "010-1234", -500},
	}
	for _, tc := range cases {
		if _, err := svc.AddEmployee(ctx, "s1", tc.name, tc.phone, tc.wage, ""); !errors.Is(err, ErrInvalidEmployee) {
			t.Fatalf("expected ErrInvalidEmployee for %+v, got %v", tc, err)
		}
	}

	emp, err := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "weekend shift")
	if err != nil {
		t.Fatalf("add employee: %v", err)
	}
	if emp.Status != StatusOffDuty || emp.ClockInAt != nil {
		t.Fatalf("new employee must start off duty: %+v", emp)
	}
}

func TestClockInGuards(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.ClockIn(ctx, "s1", "missing"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if err := svc.ClockIn(ctx, "s1", emp.ID); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if err := svc.ClockIn(ctx, "s1", emp.ID); !errors.Is(err, ErrAlreadyOnDuty) {
		t.Fatalf("expected ErrAlreadyOnDuty, got %v", err)
	}
}

func TestClockOutProducesSessionEntry(t *testing.T) {
	store := newFakeStore()
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(store).WithClock(func() time.Time { return current })
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 15000, "")
	if err := svc.ClockIn(ctx, "s1", emp.ID); err != nil {
		t.Fatalf("clock in: %v", err)
	}

	current = current.Add(90 * time.Minute)
	log, err := svc.ClockOut(ctx, "s1", emp.ID)
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if log.DurationMinutes != 90 || log.WageAmount != 15000 {
		t.Fatalf("expected 90 minutes for 15000, got %+v", log)
	}

	refreshed, _ := svc.GetEmployee(ctx, "s1", emp.ID)
	if refreshed.Status != StatusOffDuty || refreshed.ClockInAt != nil {
		t.Fatalf("expected employee reset after clock out: %+v", refreshed)
	}
}

func TestClockOutWhileOffDuty(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if _, err := svc.ClockOut(ctx, "s1", emp.ID); !errors.Is(err, ErrNotOnDuty) {
		t.Fatalf("expected ErrNotOnDuty, got %v", err)
	}
}

func TestManualLogValidation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if _, err := svc.AddManualLog(ctx, "s1", emp.ID, day, 0, 10000); !errors.Is(err, ErrInvalidManualLog) {
		t.Fatalf("expected ErrInvalidManualLog for zero hours, got %v", err)
	}
	if _, err := svc.AddManualLog(ctx, "s1", emp.ID, day, 2, -1); !errors.Is(err, ErrInvalidManualLog) {
		t.Fatalf("expected ErrInvalidManualLog for negative wage, got %v", err)
	}

	log, err := svc.AddManualLog(ctx, "s1", emp.ID, day, 2.5, 10000)
	if err != nil {
		t.Fatalf("manual log: %v", err)
	}
	if log.WageAmount != 25000 {
		t.Fatalf("expected linear wage 25000, got %v", log.WageAmount)
	}
}

func TestPayRejectsNonPositiveAmounts(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	for _, amount := range []float64{0, -500} {
		if _, err := svc.Pay(ctx, "s1", "e1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %v, got %v", amount, err)
		}
	}
	if store.settleCalls != 0 {
		t.Fatalf("expected no settlement attempts, got %d", store.settleCalls)
	}
}

func TestPaySettlesOldestFirst(t *testing.T) {
	store := newFakeStore()
	current := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	svc := NewService(store).WithClock(func() time.Time { return current })
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	for i, hours := range []float64{1, 0.8, 0.5} {
		current = current.AddDate(0, 0, 1)
		if _, err := svc.AddManualLog(ctx, "s1", emp.ID, current, hours, 10000); err != nil {
			t.Fatalf("manual log %d: %v", i, err)
		}
	}

	before, _ := svc.UnpaidBalance(ctx, "s1", emp.ID)
	if before != 23000 {
		t.Fatalf("expected 23000 outstanding, got %v", before)
	}

	result, err := svc.Pay(ctx, "s1", emp.ID, 13000)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if result.Allocated != 13000 || result.Remaining != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Allocations) != 2 {
		t.Fatalf("expected 2 touched entries, got %d", len(result.Allocations))
	}

	after, _ := svc.UnpaidBalance(ctx, "s1", emp.ID)
	if after != 10000 {
		t.Fatalf("expected 10000 outstanding after pay, got %v", after)
	}
}

func TestPayOverpayDropsExcess(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if _, err := svc.AddManualLog(ctx, "s1", emp.ID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 1, 10000); err != nil {
		t.Fatalf("manual log: %v", err)
	}

	result, err := svc.Pay(ctx, "s1", emp.ID, 15000)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if result.Allocated != 10000 || result.Remaining != 5000 {
		t.Fatalf("expected 10000 allocated with 5000 surfaced as remainder, got %+v", result)
	}

	balance, _ := svc.UnpaidBalance(ctx, "s1", emp.ID)
	if balance != 0 {
		t.Fatalf("expected zero balance, got %v", balance)
	}

	// A second settlement finds nothing to pay: settled rows are never reused.
	again, err := svc.Pay(ctx, "s1", emp.ID, 4000)
	if err != nil {
		t.Fatalf("second pay: %v", err)
	}
	if again.Allocated != 0 || again.Remaining != 4000 {
		t.Fatalf("expected nothing allocated, got %+v", again)
	}
}

func TestPayRetriesOnConflict(t *testing.T) {
	store := newFakeStore()
	store.conflicts = 2
	svc := newTestService(store, time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if _, err := svc.Pay(ctx, "s1", emp.ID, 1000); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if store.settleCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", store.settleCalls)
	}
}

func TestPaySurfacesConflictAfterRetries(t *testing.T) {
	store := newFakeStore()
	store.conflicts = 10
	svc := newTestService(store, time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))

	_, err := svc.Pay(context.Background(), "s1", "e1", 1000)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after retries, got %v", err)
	}
	if store.settleCalls != SettleRetryAttempts {
		t.Fatalf("expected %d attempts, got %d", SettleRetryAttempts, store.settleCalls)
	}
}

func TestDeleteEmployeeCascades(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if _, err := svc.AddManualLog(ctx, "s1", emp.ID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 2, 10000); err != nil {
		t.Fatalf("manual log: %v", err)
	}

	if err := svc.DeleteEmployee(ctx, "s1", emp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.UnpaidBalance(ctx, "s1", emp.ID); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound after delete, got %v", err)
	}
	if len(store.logs[emp.ID]) != 0 {
		t.Fatalf("expected logs removed with employee")
	}
}

func TestWageChangeNotRetroactive(t *testing.T) {
	store := newFakeStore()
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(store).WithClock(func() time.Time { return current })
	ctx := context.Background()

	emp, _ := svc.AddEmployee(ctx, "s1", "Kim", "010-1234", 10000, "")
	if err := svc.ClockIn(ctx, "s1", emp.ID); err != nil {
		t.Fatalf("clock in: %v", err)
	}
	current = current.Add(2 * time.Hour)
	first, err := svc.ClockOut(ctx, "s1", emp.ID)
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}

	if err := svc.UpdateWage(ctx, "s1", emp.ID, 20000); err != nil {
		t.Fatalf("update wage: %v", err)
	}

	logs, _ := svc.ListAllLogs(ctx, "s1", emp.ID)
	if logs[0].WageRate != first.WageRate || logs[0].WageAmount != 20000 {
		t.Fatalf("existing entry must keep its frozen rate: %+v", logs[0])
	}

	current = current.Add(time.Hour)
	if err := svc.ClockIn(ctx, "s1", emp.ID); err != nil {
		t.Fatalf("second clock in: %v", err)
	}
	current = current.Add(time.Hour)
	second, err := svc.ClockOut(ctx, "s1", emp.ID)
	if err != nil {
		t.Fatalf("second clock out: %v", err)
	}
	if second.WageRate != 20000 || second.WageAmount != 20000 {
		t.Fatalf("new entry must use the updated rate: %+v", second)
	}
}
