package entity

import "errors"

var (
	// Registration errors
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrDuplicateMembers     = errors.New("one or more members already registered for this sport and category")
	ErrInvalidMember        = errors.New("member must have name, email and phone")

	// Ticket errors
	ErrTicketNotFound = errors.New("ticket not found")

	// Accommodation errors
	ErrAccommodationNotFound = errors.New("accommodation booking not found")

	// Settlement errors
	ErrNoCorrelatedRecord = errors.New("no record matches booking uid")
	ErrMissingBookingUID  = errors.New("missing booking_uid")
	ErrBookingUIDExists   = errors.New("booking uid already set")
	ErrMockModeDisabled   = errors.New("mock payment path disabled")

	// General errors
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrForbidden     = errors.New("forbidden operation")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabaseError = errors.New("database error")
)
