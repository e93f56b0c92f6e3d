package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareloop/internal/models"
)

const itemColumns = `id, owner_id, name, description, available, COALESCE(request_id, 0), created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Description,
		&item.Available, &item.RequestID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (owner_id, name, description, available, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()

	var requestID any
	if item.RequestID != 0 {
		requestID = item.RequestID
	}

	result, err := db.ExecContext(ctx, query,
		item.OwnerID, item.Name, item.Description, item.Available, requestID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}
	item.UpdatedAt = now
	return nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id ASC`
	return db.listItems(ctx, query, ownerID)
}

// SearchItems matches name or description case-insensitively and only
// returns items currently available for booking.
func (db *DB) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + `
              FROM items
              WHERE available = 1 AND (name LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)
              ORDER BY id ASC`
	pattern := "%" + text + "%"
	return db.listItems(ctx, query, pattern, pattern)
}

func (db *DB) ListItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id ASC`
	return db.listItems(ctx, query, requestID)
}

func (db *DB) listItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
