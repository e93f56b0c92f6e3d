package models

import "time"

// ItemRequest is a wish posted on the request board; items may be listed
// in response to it.
type ItemRequest struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// Items created in response; populated on reads only.
	Items []*Item `json:"items,omitempty"`
}
