package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation                   = errors.New("validation failed")
	ErrInsufficientInventory        = errors.New("insufficient inventory")
	ErrInsufficientPurchasedTickets = errors.New("insufficient purchased tickets")

	// Raised by the persistence layer, never by the aggregate itself.
	ErrEventNotFound    = errors.New("event not found")
	ErrConcurrentUpdate = errors.New("event was modified concurrently")
)

// ValidationError reports an invalid field value. The aggregate is left
// unchanged whenever one is returned.
type ValidationError struct {
	EventID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Event with id: '%s' %s.", e.EventID, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type InsufficientInventoryError struct {
	Requested int
	Available int
	UserName  string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("Not enough available tickets to purchase (%d) by user: '%s'.", e.Requested, e.UserName)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

type InsufficientPurchasedTicketsError struct {
	Requested int
	Purchased int
	UserName  string
}

func (e *InsufficientPurchasedTicketsError) Error() string {
	return fmt.Sprintf("Not enough purchased tickets to be canceled (%d) by user: '%s'.", e.Requested, e.UserName)
}

func (e *InsufficientPurchasedTicketsError) Is(target error) bool {
	return target == ErrInsufficientPurchasedTickets
}
