package service

import (
	"context"
	"errors"
	"fmt"

	"shareloop/internal/database"
	"shareloop/internal/domain"
	"shareloop/internal/events"
	"shareloop/internal/models"

	"github.com/rs/zerolog"
)

// BookingService runs the booking lifecycle: creation preconditions, the
// approve/reject transition, cancellation and state-classified listing.
// It is stateless between calls; everything durable lives in the store.
type BookingService struct {
	store    domain.Store
	clock    domain.Clock
	eventBus domain.EventPublisher
	exporter domain.SyncWorker
	logger   *zerolog.Logger
}

func NewBookingService(store domain.Store, clock domain.Clock, eventBus domain.EventPublisher, exporter domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	if clock == nil {
		clock = SystemClock()
	}
	return &BookingService{
		store:    store,
		clock:    clock,
		eventBus: eventBus,
		exporter: exporter,
		logger:   logger,
	}
}

// Create validates the candidate and persists it in WAITING status.
// Overlapping bookings for the same item are deliberately not rejected;
// see the package documentation for the reasoning.
func (s *BookingService) Create(ctx context.Context, booking *models.Booking, requesterID int64) (*models.Booking, error) {
	if _, err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	item, err := s.requireItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == requesterID {
		return nil, fmt.Errorf("%w: item %d", ErrSelfBooking, item.ID)
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: item %d", ErrItemUnavailable, item.ID)
	}

	// The transport layer validates the range already; re-checked here so
	// the engine holds its own invariant.
	if !booking.End.After(booking.Start) {
		return nil, ErrInvalidTimeRange
	}

	booking.BookerID = requesterID
	booking.Status = models.StatusWaiting
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	booking.ItemName = item.Name
	booking.ItemOwnerID = item.OwnerID

	s.publishEvent(events.EventBookingCreated, booking, requesterID)
	s.enqueueExport(ctx, booking, "upsert")

	return booking, nil
}

// Get returns the booking to its booker or to the owner of the booked
// item. Everyone else gets the same denial regardless of which check failed.
func (s *BookingService) Get(ctx context.Context, bookingID, requesterID int64) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canView(booking, requesterID) {
		return nil, fmt.Errorf("%w: user %d, booking %d", ErrAccessDenied, requesterID, bookingID)
	}
	return booking, nil
}

func (s *BookingService) Approve(ctx context.Context, bookingID, approverID int64) (*models.Booking, error) {
	return s.decide(ctx, bookingID, approverID, models.StatusApproved, events.EventBookingApproved)
}

func (s *BookingService) Reject(ctx context.Context, bookingID, approverID int64) (*models.Booking, error) {
	return s.decide(ctx, bookingID, approverID, models.StatusRejected, events.EventBookingRejected)
}

// decide applies the owner's verdict. An APPROVED booking is final: it can
// be neither re-approved nor rejected. Rejecting a REJECTED booking is a
// no-op update and allowed, matching the existing API contract.
func (s *BookingService) decide(ctx context.Context, bookingID, approverID int64, status, eventType string) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ItemOwnerID != approverID {
		return nil, fmt.Errorf("%w: user %d, booking %d", ErrAccessDenied, approverID, bookingID)
	}
	if booking.Status == models.StatusApproved {
		return nil, fmt.Errorf("%w: booking %d", ErrAlreadyDecided, bookingID)
	}

	if err := s.store.UpdateBookingStatusWithVersion(ctx, booking.ID, booking.Version, status); err != nil {
		return nil, err
	}
	booking.Status = status
	booking.Version++

	s.publishEvent(eventType, booking, approverID)
	s.enqueueExport(ctx, booking, "update_status")

	return booking, nil
}

// Cancel removes the booking entirely. Only the booker may cancel; the
// item owner's recourse is rejection.
func (s *BookingService) Cancel(ctx context.Context, bookingID, requesterID int64) error {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.BookerID != requesterID {
		return fmt.Errorf("%w: user %d, booking %d", ErrAccessDenied, requesterID, bookingID)
	}

	if err := s.store.DeleteBooking(ctx, booking.ID); err != nil {
		return err
	}
	booking.Status = models.StatusCancelled

	s.publishEvent(events.EventBookingCancelled, booking, requesterID)
	s.enqueueExport(ctx, booking, "delete")

	return nil
}

// ListForBooker lists the user's own bookings under the given state,
// sorted by start descending.
//
// For temporal states the page is cut by the store before the time filter
// runs, so a page can legitimately come back shorter than its size. Known
// limitation, kept for compatibility with existing consumers.
func (s *BookingService) ListForBooker(ctx context.Context, bookerID int64, state string, page *models.Page) ([]*models.Booking, error) {
	if _, err := s.requireUser(ctx, bookerID); err != nil {
		return nil, err
	}
	parsed, err := ParseState(state)
	if err != nil {
		return nil, err
	}

	switch parsed {
	case StateAll:
		return s.store.ListBookingsByBooker(ctx, bookerID, page)
	case StateWaiting, StateRejected, StateCancelled:
		return s.store.ListBookingsByBookerAndStatus(ctx, bookerID, string(parsed), page)
	case StatePast, StateCurrent, StateFuture:
		bookings, err := s.store.ListBookingsByBooker(ctx, bookerID, page)
		if err != nil {
			return nil, err
		}
		return filterByState(bookings, parsed, s.clock.Now()), nil
	}

	// APPROVED parses as a valid state name but no listing branch serves it.
	return []*models.Booking{}, nil
}

// ListForOwner lists bookings of every item the user owns, same state and
// pagination semantics as ListForBooker.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state string, page *models.Page) ([]*models.Booking, error) {
	if _, err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	parsed, err := ParseState(state)
	if err != nil {
		return nil, err
	}

	switch parsed {
	case StateAll:
		return s.store.ListBookingsByItemOwner(ctx, ownerID, page)
	case StateWaiting, StateRejected, StateCancelled:
		return s.store.ListBookingsByItemOwnerAndStatus(ctx, ownerID, string(parsed), page)
	case StatePast, StateCurrent, StateFuture:
		bookings, err := s.store.ListBookingsByItemOwner(ctx, ownerID, page)
		if err != nil {
			return nil, err
		}
		return filterByState(bookings, parsed, s.clock.Now()), nil
	}

	return []*models.Booking{}, nil
}

// canView is the single read-access decision: booker first, item owner as
// the fallback.
func canView(b *models.Booking, userID int64) bool {
	if b.BookerID == userID {
		return true
	}
	return b.ItemOwnerID == userID
}

func (s *BookingService) getBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %d", ErrBookingNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) requireUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrUnknownUser, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BookingService) requireItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: item %d", ErrUnknownItem, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		BookerID:  booking.BookerID,
		OwnerID:   booking.ItemOwnerID,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueExport(ctx context.Context, booking *models.Booking, taskType string) {
	if s.exporter == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = booking.Status
	}

	if err := s.exporter.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("export enqueue error")
	}
}
