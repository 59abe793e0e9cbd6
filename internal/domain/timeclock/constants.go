package timeclock

const (
	StatusOffDuty = "off_duty"
	StatusOnDuty  = "on_duty"

	// Log listing filter kinds.
	FilterAll  = "all"
	FilterWork = "work"
	FilterPay  = "pay"

	// DefaultPageSize matches the dashboard's ledger page length.
	DefaultPageSize = 15

	// Manual back-dated entries carry a fixed placeholder shift start.
	ManualEntryHour = 9

	// SettleRetryAttempts bounds automatic retries on settlement conflicts.
	SettleRetryAttempts = 3
)
