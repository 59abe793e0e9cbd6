package timeclock

// AllocatePayment spreads a payment across unpaid session rows, oldest first.
// Callers pass candidates sorted by creation time ascending; markers and rows
// already settled in full are skipped. Each row absorbs at most its own
// outstanding balance, so no row ever ends up with paidAmount above
// wageAmount. The second return value is the part of the payment left after
// every candidate is satisfied; it is reported to the caller but never stored.
func AllocatePayment(candidates []WorkLog, amount float64) ([]Allocation, float64) {
	remaining := amount
	var allocations []Allocation
	for _, log := range candidates {
		if remaining <= 0 {
			break
		}
		if log.IsPayMarker || log.IsPaid {
			continue
		}
		unpaid := log.Unpaid()
		if unpaid <= 0 {
			continue
		}
		payThis := unpaid
		if remaining < payThis {
			payThis = remaining
		}
		newPaid := log.PaidAmount + payThis
		allocations = append(allocations, Allocation{
			LogID:        log.ID,
			Amount:       payThis,
			NewPaid:      newPaid,
			FullySettled: newPaid >= log.WageAmount,
		})
		remaining -= payThis
	}
	return allocations, remaining
}
