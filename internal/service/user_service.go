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

// UserService is the user directory: plain CRUD with explicit partial
// updates.
type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrUnknownUser, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update merges the patch field by field; absent fields keep their value.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: user %d", ErrUnknownUser, id)
	}
	return err
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
