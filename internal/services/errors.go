package services

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
	ErrUnknownCategory   = errors.New("unknown transaction category")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrInvalidLookup     = errors.New("invalid lookup")
	ErrInvalidInput      = errors.New("invalid input")
)
