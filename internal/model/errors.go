package model

import "errors"

// Business errors surfaced by the pipeline. Callers can distinguish a
// rule-based no-op from a genuine failure by matching these with errors.Is.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotTaken is returned when a non-cancelled booking already occupies
	// the requested date/time slot.
	ErrSlotTaken = errors.New("booking slot already taken")

	// ErrAlreadyTransitioned is returned when a lifecycle transition has
	// already been applied to the persisted row.
	ErrAlreadyTransitioned = errors.New("status transition already applied")

	// ErrInvalidTransition is returned when the persisted state does not
	// permit the requested transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock is returned when a deduction would drive an
	// inventory quantity negative. No partial deduction is performed.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrSaleFinalized is returned when line items of a cancelled or
	// refunded sale are mutated.
	ErrSaleFinalized = errors.New("sale is finalized")

	// ErrInvalidAmount is returned for zero or negative payment amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)
