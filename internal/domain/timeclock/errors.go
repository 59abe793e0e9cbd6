package timeclock

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrAlreadyOnDuty    = errors.New("employee is already on duty")
	ErrNotOnDuty        = errors.New("employee is not on duty")
	ErrInvalidAmount    = errors.New("payment amount must be positive")
	ErrInvalidManualLog = errors.New("manual log requires positive hours and wage")
	ErrConflict         = errors.New("concurrent settlement detected, please retry")
	ErrInvalidCursor    = errors.New("invalid pagination cursor")
)
