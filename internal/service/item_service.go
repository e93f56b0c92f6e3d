package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareloop/internal/database"
	"shareloop/internal/domain"
	"shareloop/internal/models"

	"github.com/rs/zerolog"
)

// ItemService owns the item catalog: CRUD, availability flag, free-text
// search and comments. Reads go through the item cache when one is wired.
type ItemService struct {
	store  domain.Store
	cache  domain.ItemCache
	clock  domain.Clock
	logger *zerolog.Logger
}

func NewItemService(store domain.Store, cache domain.ItemCache, clock domain.Clock, logger *zerolog.Logger) *ItemService {
	if clock == nil {
		clock = SystemClock()
	}
	return &ItemService{
		store:  store,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

func (s *ItemService) Create(ctx context.Context, item *models.Item, ownerID int64) (*models.Item, error) {
	if _, err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	item.OwnerID = ownerID
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, item)
	return item, nil
}

// Get returns the item with its comments. The owner additionally sees the
// last and next approved bookings of the item.
func (s *ItemService) Get(ctx context.Context, itemID, requesterID int64) (*models.ItemDetails, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item, requesterID)
}

func (s *ItemService) Update(ctx context.Context, itemID int64, patch models.ItemPatch, requesterID int64) (*models.Item, error) {
	// Authoritative read: the cache may lag behind a concurrent update.
	item, err := s.requireItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: user %d is not owner of item %d", ErrAccessDenied, requesterID, itemID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, itemID)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, itemID, requesterID int64) error {
	item, err := s.requireItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != requesterID {
		return fmt.Errorf("%w: user %d is not owner of item %d", ErrAccessDenied, requesterID, itemID)
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, itemID)
	return nil
}

func (s *ItemService) ListForOwner(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error) {
	if _, err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.store.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item, ownerID)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// Search returns available items matching the text in name or description.
// Empty text matches nothing rather than everything.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.store.SearchItems(ctx, text)
}

// CreateComment lets a user review an item, gated on having actually used
// it: an APPROVED booking of this item whose end lies in the past.
func (s *ItemService) CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	author, err := s.requireUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireItem(ctx, itemID); err != nil {
		return nil, err
	}

	bookings, err := s.store.ListBookingsByBooker(ctx, authorID, nil)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	completed := false
	for _, b := range bookings {
		if b.ItemID == itemID && b.Status == models.StatusApproved && b.End.Before(now) {
			completed = true
			break
		}
	}
	if !completed {
		return nil, fmt.Errorf("%w: user %d, item %d", ErrCommentForbidden, authorID, itemID)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ItemService) details(ctx context.Context, item *models.Item, requesterID int64) (*models.ItemDetails, error) {
	comments, err := s.store.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	d := &models.ItemDetails{Item: *item, Comments: comments}

	if item.OwnerID == requesterID {
		bookings, err := s.store.ListBookingsByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now()
		d.LastBooking = lastApproved(bookings, now)
		d.NextBooking = nextApproved(bookings, now)
	}

	return d, nil
}

// lastApproved picks the latest approved booking already started; bookings
// must be sorted by start ascending.
func lastApproved(bookings []*models.Booking, now time.Time) *models.BookingStub {
	var last *models.Booking
	for _, b := range bookings {
		if b.Status == models.StatusApproved && b.Start.Before(now) {
			last = b
		}
	}
	return toStub(last)
}

// nextApproved picks the earliest approved booking still ahead.
func nextApproved(bookings []*models.Booking, now time.Time) *models.BookingStub {
	for _, b := range bookings {
		if b.Status == models.StatusApproved && b.Start.After(now) {
			return toStub(b)
		}
	}
	return nil
}

func toStub(b *models.Booking) *models.BookingStub {
	if b == nil {
		return nil
	}
	return &models.BookingStub{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

// getItem serves reads through the cache; misses and cache failures fall
// back to the store.
func (s *ItemService) getItem(ctx context.Context, id int64) (*models.Item, error) {
	if s.cache != nil {
		item, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache read error")
		} else if item != nil {
			return item, nil
		}
	}

	item, err := s.requireItem(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, item)
	return item, nil
}

func (s *ItemService) cacheSet(ctx context.Context, item *models.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, item); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", item.ID).Msg("item cache write error")
	}
}

func (s *ItemService) cacheInvalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache invalidate error")
	}
}

func (s *ItemService) requireUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrUnknownUser, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ItemService) requireItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: item %d", ErrUnknownItem, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}
