package domain

import (
	"context"
	"time"

	"shareloop/internal/models"
)

// Store is the persistence boundary. The sqlite implementation lives in
// internal/database; services never see *sql.DB directly.
type Store interface {
	// bookings
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	ListBookingsByBooker(ctx context.Context, bookerID int64, page *models.Page) ([]*models.Booking, error)
	ListBookingsByBookerAndStatus(ctx context.Context, bookerID int64, status string, page *models.Page) ([]*models.Booking, error)
	ListBookingsByItemOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Booking, error)
	ListBookingsByItemOwnerAndStatus(ctx context.Context, ownerID int64, status string, page *models.Page) ([]*models.Booking, error)
	ListBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error)

	// users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// items
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)

	// comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)

	// item requests
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByCreator(ctx context.Context, creatorID int64) ([]*models.ItemRequest, error)
	ListOtherRequests(ctx context.Context, creatorID int64, page *models.Page) ([]*models.ItemRequest, error)

	// export queue
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
}

// Clock supplies "now" so temporal classification is testable.
type Clock interface {
	Now() time.Time
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ItemCache is a read-through cache in front of the item rows.
// Get returns (nil, nil) on a miss.
type ItemCache interface {
	Get(ctx context.Context, id int64) (*models.Item, error)
	Set(ctx context.Context, item *models.Item) error
	Invalidate(ctx context.Context, id int64) error
}

// SyncWorker queues booking changes for the out-of-band report export.
type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

type BookingService interface {
	Create(ctx context.Context, booking *models.Booking, requesterID int64) (*models.Booking, error)
	Get(ctx context.Context, bookingID, requesterID int64) (*models.Booking, error)
	Approve(ctx context.Context, bookingID, approverID int64) (*models.Booking, error)
	Reject(ctx context.Context, bookingID, approverID int64) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, requesterID int64) error
	ListForBooker(ctx context.Context, bookerID int64, state string, page *models.Page) ([]*models.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64, state string, page *models.Page) ([]*models.Booking, error)
}

type ItemService interface {
	Create(ctx context.Context, item *models.Item, ownerID int64) (*models.Item, error)
	Get(ctx context.Context, itemID, requesterID int64) (*models.ItemDetails, error)
	Update(ctx context.Context, itemID int64, patch models.ItemPatch, requesterID int64) (*models.Item, error)
	Delete(ctx context.Context, itemID, requesterID int64) error
	ListForOwner(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error)
	Search(ctx context.Context, text string) ([]*models.Item, error)
	CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.User, error)
}

type RequestService interface {
	Create(ctx context.Context, request *models.ItemRequest, creatorID int64) (*models.ItemRequest, error)
	Get(ctx context.Context, requestID, requesterID int64) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, creatorID int64) ([]*models.ItemRequest, error)
	ListOthers(ctx context.Context, requesterID int64, page *models.Page) ([]*models.ItemRequest, error)
}
