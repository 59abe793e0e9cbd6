package timeclock

import "time"

type Employee struct {
	ID         string     `json:"id"`
	StoreID    string     `json:"storeId"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	HourlyWage float64    `json:"hourlyWage"`
	Memo       string     `json:"memo"`
	Status     string     `json:"status"`
	ClockInAt  *time.Time `json:"clockInAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// WorkLog is either a worked session or a payment marker. Session rows carry
// the wage fields; marker rows carry only PaidAmount/PaidAt and IsPayMarker.
type WorkLog struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
	WageRate        float64    `json:"wageRate"`
	WageAmount      float64    `json:"wageAmount"`
	IsPaid          bool       `json:"isPaid"`
	PaidAmount      float64    `json:"paidAmount"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	IsPayMarker     bool       `json:"isPayMarker"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Unpaid reports how much of a session row is still owed. Markers and
// overpaid rows (which the invariants forbid) contribute nothing.
func (l WorkLog) Unpaid() float64 {
	if l.IsPayMarker {
		return 0
	}
	unpaid := l.WageAmount - l.PaidAmount
	if unpaid < 0 {
		return 0
	}
	return unpaid
}

type LogPage struct {
	Entries    []WorkLog `json:"entries"`
	NextCursor string    `json:"nextCursor,omitempty"`
	HasMore    bool      `json:"hasMore"`
}

// Allocation records how much of one settlement went to one session row.
type Allocation struct {
	LogID        string  `json:"logId"`
	Amount       float64 `json:"amount"`
	NewPaid      float64 `json:"newPaid"`
	FullySettled bool    `json:"fullySettled"`
}

type PayResult struct {
	MarkerID    string       `json:"markerId"`
	Requested   float64      `json:"requested"`
	Allocated   float64      `json:"allocated"`
	Remaining   float64      `json:"remaining"`
	Allocations []Allocation `json:"allocations"`
	PaidAt      time.Time    `json:"paidAt"`
}
