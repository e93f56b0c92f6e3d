package service

import "errors"

// Failure kinds surfaced to the transport layer. All are terminal for the
// request; nothing here is retried internally. Checked with errors.Is.
var (
	ErrUnknownUser      = errors.New("user not found")
	ErrUnknownItem      = errors.New("item not found")
	ErrUnknownRequest   = errors.New("item request not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrSelfBooking      = errors.New("owner cannot book own item")
	ErrItemUnavailable  = errors.New("item is unavailable")
	ErrInvalidTimeRange = errors.New("booking end must be after start")
	ErrAlreadyDecided   = errors.New("booking is already approved")
	ErrUnsupportedState = errors.New("unsupported listing state")
	ErrCommentForbidden = errors.New("commenting requires a finished approved booking")
)
