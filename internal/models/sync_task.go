package models

import (
	"database/sql"
	"time"
)

// SyncTask is a persisted unit of export work for the report worker.
type SyncTask struct {
	ID          int64
	TaskType    string
	BookingID   int64
	Payload     string
	Status      string // pending, retry, completed, failed
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt sql.NullTime
	NextRetryAt sql.NullTime
}
