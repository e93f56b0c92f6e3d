package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareloop/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (creator_id, description, created_at) VALUES (?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, request.CreatorID, request.Description, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, creator_id, description, created_at FROM requests WHERE id = ?`

	var request models.ItemRequest
	err := db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.CreatorID, &request.Description, &request.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &request, nil
}

func (db *DB) ListRequestsByCreator(ctx context.Context, creatorID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, creator_id, description, created_at
              FROM requests WHERE creator_id = ? ORDER BY created_at DESC`
	return db.listRequests(ctx, query, creatorID)
}

// ListOtherRequests returns the board as seen by one user: everyone
// else's requests, newest first, optionally paginated.
func (db *DB) ListOtherRequests(ctx context.Context, creatorID int64, page *models.Page) ([]*models.ItemRequest, error) {
	query := `SELECT id, creator_id, description, created_at
              FROM requests WHERE creator_id != ? ORDER BY created_at DESC`
	args := []any{creatorID}
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.From)
	}
	return db.listRequests(ctx, query, args...)
}

func (db *DB) listRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		r := &models.ItemRequest{}
		if err := rows.Scan(&r.ID, &r.CreatorID, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
