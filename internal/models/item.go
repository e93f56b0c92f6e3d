package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	RequestID   int64     `json:"request_id,omitempty"` // 0 when the item answers no request
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemPatch carries the fields a partial item update may touch.
// Nil means "leave as is".
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

/// ItemDetails is an item as seen by one caller: comments always, the
// neighbouring approved bookings only when the caller owns the item.
type ItemDetails struct {
	Item
	Comments    []*Comment   `json:"comments"`
	LastBooking *BookingStub `json:"last_booking,omitempty"`
	NextBooking *BookingStub `json:"next_booking,omitempty"`
}

// BookingStub is the short booking form embedded in item views.
type BookingStub struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}
