package service

import (
	"fmt"
	"time"

	"shareloop/internal/models"
)

// State classifies bookings for listing. ALL and the four status names
// resolve against the stored status; PAST, CURRENT and FUTURE are computed
// from the clock at read time and can change between two reads.
type State string

const (
	StateAll       State = "ALL"
	StateCurrent   State = "CURRENT"
	StatePast      State = "PAST"
	StateFuture    State = "FUTURE"
	StateWaiting   State = "WAITING"
	StateApproved  State = "APPROVED"
	StateRejected  State = "REJECTED"
	StateCancelled State = "CANCELLED"
)

var knownStates = map[State]bool{
	StateAll:       true,
	StateCurrent:   true,
	StatePast:      true,
	StateFuture:    true,
	StateWaiting:   true,
	StateApproved:  true,
	StateRejected:  true,
	StateCancelled: true,
}

// ParseState validates a caller-supplied state string. Matching is exact:
// anything outside the eight known names is rejected.
func ParseState(raw string) (State, error) {
	state := State(raw)
	if !knownStates[state] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedState, raw)
	}
	return state, nil
}

// temporalPredicate returns the time filter for PAST, CURRENT or FUTURE
// and reports whether the state is temporal at all. PAST and FUTURE look
// only at the time range, never at the stored status.
func temporalPredicate(state State, now time.Time) (func(*models.Booking) bool, bool) {
	switch state {
	case StatePast:
		return func(b *models.Booking) bool { return b.End.Before(now) }, true
	case StateCurrent:
		return func(b *models.Booking) bool { return !b.Start.After(now) && b.End.After(now) }, true
	case StateFuture:
		return func(b *models.Booking) bool { return b.Start.After(now) }, true
	}
	return nil, false
}

func filterByState(bookings []*models.Booking, state State, now time.Time) []*models.Booking {
	keep, ok := temporalPredicate(state, now)
	if !ok {
		return bookings
	}
	filtered := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if keep(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
