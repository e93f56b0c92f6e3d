package models

import "time"

// Booking is a time-bounded request by a booker for someone else's item.
// Item, booker and the time range are fixed at creation; only Status (and
// the Version counter guarding it) change afterwards.
type Booking struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`

	// Populated by the store from the items table; never written back.
	ItemName    string `json:"item_name"`
	ItemOwnerID int64  `json:"item_owner_id"`
}

// Page is an optional offset/limit pair for list queries.
type Page struct {
	From int
	Size int
}
