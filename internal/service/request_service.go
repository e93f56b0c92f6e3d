package service

import (
	"context"
	"errors"
	"fmt"

	"shareloop/internal/database"
	"shareloop/internal/domain"
	"shareloop/internal/models"

	"github.com/rs/zerolog"
)

// RequestService is the item-request board: users post what they need and
// see which items were listed in response.
type RequestService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewRequestService(store domain.Store, logger *zerolog.Logger) *RequestService {
	return &RequestService{store: store, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, request *models.ItemRequest, creatorID int64) (*models.ItemRequest, error) {
	if _, err := s.requireUser(ctx, creatorID); err != nil {
		return nil, err
	}

	request.CreatorID = creatorID
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RequestService) Get(ctx context.Context, requestID, requesterID int64) (*models.ItemRequest, error) {
	if _, err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: request %d", ErrUnknownRequest, requestID)
	}
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, request)
}

// ListOwn returns the caller's requests, newest first, with responses.
func (s *RequestService) ListOwn(ctx context.Context, creatorID int64) ([]*models.ItemRequest, error) {
	if _, err := s.requireUser(ctx, creatorID); err != nil {
		return nil, err
	}

	requests, err := s.store.ListRequestsByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return s.attachItemsAll(ctx, requests)
}

// ListOthers returns everyone else's requests, newest first, optionally
// paginated.
func (s *RequestService) ListOthers(ctx context.Context, requesterID int64, page *models.Page) ([]*models.ItemRequest, error) {
	if _, err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.store.ListOtherRequests(ctx, requesterID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItemsAll(ctx, requests)
}

func (s *RequestService) attachItems(ctx context.Context, request *models.ItemRequest) (*models.ItemRequest, error) {
	items, err := s.store.ListItemsByRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	request.Items = items
	return request, nil
}

func (s *RequestService) attachItemsAll(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequest, error) {
	for _, r := range requests {
		if _, err := s.attachItems(ctx, r); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *RequestService) requireUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrUnknownUser, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
