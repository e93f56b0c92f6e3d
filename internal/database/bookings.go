package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareloop/internal/models"
)

// bookingColumns is the select list shared by every booking query; item
// name and owner come from the joined items row.
const bookingColumns = `b.id, b.item_id, b.booker_id, b.start_at, b.end_at, b.status,
                 b.version, b.created_at, b.updated_at, i.name, i.owner_id`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status,
		&b.Version, &b.CreatedAt, &b.UpdatedAt, &b.ItemName, &b.ItemOwnerID,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_at, end_at, status, version, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start,
		booking.End,
		booking.Status,
		1,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateBookingStatusWithVersion is a compare-and-swap on the version
// column; a stale version loses the race.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, page *models.Page) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.booker_id = ? ORDER BY b.start_at DESC`
	return db.listBookings(ctx, query, []any{bookerID}, page)
}

func (db *DB) ListBookingsByBookerAndStatus(ctx context.Context, bookerID int64, status string, page *models.Page) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.booker_id = ? AND b.status = ? ORDER BY b.start_at DESC`
	return db.listBookings(ctx, query, []any{bookerID, status}, page)
}

func (db *DB) ListBookingsByItemOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? ORDER BY b.start_at DESC`
	return db.listBookings(ctx, query, []any{ownerID}, page)
}

func (db *DB) ListBookingsByItemOwnerAndStatus(ctx context.Context, ownerID int64, status string, page *models.Page) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? AND b.status = ? ORDER BY b.start_at DESC`
	return db.listBookings(ctx, query, []any{ownerID, status}, page)
}

// ListBookingsByItem returns the item's bookings sorted by start ascending,
// the order the item views need for last/next computation.
func (db *DB) ListBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id = ? ORDER BY b.start_at ASC`
	return db.listBookings(ctx, query, []any{itemID}, nil)
}

func (db *DB) listBookings(ctx context.Context, query string, args []any, page *models.Page) ([]*models.Booking, error) {
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.From)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
