package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"shareloop/internal/database"
	"shareloop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReport records applied operations and can be told to fail.
type fakeReport struct {
	mu       sync.Mutex
	upserts  []int64
	removes  []int64
	statuses map[int64]string
	err      error
}

func newFakeReport() *fakeReport {
	return &fakeReport{statuses: make(map[int64]string)}
}

func (f *fakeReport) UpsertBooking(b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, b.ID)
	return nil
}

func (f *fakeReport) RemoveBooking(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.removes = append(f.removes, id)
	return nil
}

func (f *fakeReport) UpdateBookingStatus(id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.statuses[id] = status
	return nil
}

func newTestWorker(t *testing.T, report ReportWriter, retry RetryPolicy) (*ExportWorker, *database.DB) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewExportWorker(db, report, nil, retry, &logger), db
}

func TestEnqueueTask(t *testing.T) {
	report := newFakeReport()
	w, db := newTestWorker(t, report, RetryPolicy{})
	ctx := context.Background()

	t.Run("PersistsAndQueues", func(t *testing.T) {
		booking := &models.Booking{ID: 7, ItemID: 1, BookerID: 2, Status: models.StatusWaiting}
		require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, booking.ID, booking, ""))

		pending, err := db.GetPendingSyncTasks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, TaskUpsert, pending[0].TaskType)
		assert.Equal(t, int64(7), pending[0].BookingID)

		queued, ok := w.tryLocalQueue()
		require.True(t, ok)
		assert.Equal(t, pending[0].ID, queued.ID)
	})

	t.Run("RejectsEmptyType", func(t *testing.T) {
		err := w.EnqueueTask(ctx, "", 7, nil, "")
		assert.Error(t, err)
	})

	t.Run("RejectsMissingBookingID", func(t *testing.T) {
		err := w.EnqueueTask(ctx, TaskDelete, 0, nil, "")
		assert.Error(t, err)
	})

	t.Run("BookingIDTakenFromPayload", func(t *testing.T) {
		booking := &models.Booking{ID: 42}
		require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, 0, booking, ""))
		queued, ok := w.tryLocalQueue()
		require.True(t, ok)
		assert.Equal(t, int64(42), queued.BookingID)
	})
}

func TestProcessTask(t *testing.T) {
	ctx := context.Background()

	enqueue := func(t *testing.T, w *ExportWorker, taskType string, booking *models.Booking, status string) models.SyncTask {
		t.Helper()
		id := int64(0)
		if booking != nil {
			id = booking.ID
		}
		require.NoError(t, w.EnqueueTask(ctx, taskType, id, booking, status))
		task, ok := w.tryLocalQueue()
		require.True(t, ok)
		return task
	}

	t.Run("UpsertCompletes", func(t *testing.T) {
		report := newFakeReport()
		w, db := newTestWorker(t, report, RetryPolicy{})

		task := enqueue(t, w, TaskUpsert, &models.Booking{ID: 3, Status: models.StatusWaiting}, "")
		w.processTask(ctx, &task)

		assert.Equal(t, []int64{3}, report.upserts)
		pending, err := db.GetPendingSyncTasks(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("DeleteAndStatus", func(t *testing.T) {
		report := newFakeReport()
		w, _ := newTestWorker(t, report, RetryPolicy{})

		task := enqueue(t, w, TaskDelete, &models.Booking{ID: 5}, "")
		w.processTask(ctx, &task)
		assert.Equal(t, []int64{5}, report.removes)

		task = enqueue(t, w, TaskUpdateStatus, &models.Booking{ID: 5}, models.StatusApproved)
		w.processTask(ctx, &task)
		assert.Equal(t, models.StatusApproved, report.statuses[5])
	})

	t.Run("FailureSchedulesRetry", func(t *testing.T) {
		report := newFakeReport()
		report.err = assert.AnError
		w, db := newTestWorker(t, report, RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond})

		task := enqueue(t, w, TaskUpsert, &models.Booking{ID: 9}, "")
		w.processTask(ctx, &task)

		// Hidden until next_retry_at passes, then visible again.
		time.Sleep(5 * time.Millisecond)
		pending, err := db.GetPendingSyncTasks(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 1, pending[0].RetryCount)
		assert.Contains(t, pending[0].LastError, assert.AnError.Error())
	})

	t.Run("ExhaustedRetriesFail", func(t *testing.T) {
		report := newFakeReport()
		report.err = assert.AnError
		w, db := newTestWorker(t, report, RetryPolicy{MaxRetries: 1})

		task := enqueue(t, w, TaskUpsert, &models.Booking{ID: 11}, "")
		w.processTask(ctx, &task)

		failed, err := db.GetFailedSyncTasks(ctx)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, int64(11), failed[0].BookingID)
	})

	t.Run("BadPayloadFails", func(t *testing.T) {
		report := newFakeReport()
		w, db := newTestWorker(t, report, RetryPolicy{})

		task := models.SyncTask{TaskType: TaskUpsert, BookingID: 1, Payload: "{broken", Status: "pending", CreatedAt: time.Now()}
		require.NoError(t, db.CreateSyncTask(ctx, &task))
		w.processTask(ctx, &task)

		failed, err := db.GetFailedSyncTasks(ctx)
		require.NoError(t, err)
		require.Len(t, failed, 1)
	})

	t.Run("UnknownTypeErrors", func(t *testing.T) {
		report := newFakeReport()
		w, _ := newTestWorker(t, report, RetryPolicy{})
		err := w.applyTask("mystery", exportPayload{BookingID: 1})
		assert.Error(t, err)
	})
}

func TestStartDrainsPending(t *testing.T) {
	report := newFakeReport()
	w, _ := newTestWorker(t, report, RetryPolicy{})
	w.SetPollInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.EnqueueTask(ctx, TaskUpsert, 21, &models.Booking{ID: 21}, ""))

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		report.mu.Lock()
		defer report.mu.Unlock()
		return len(report.upserts) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(0))
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 8*time.Second, p.NextDelay(4))
	assert.Equal(t, 10*time.Second, p.NextDelay(5))
	assert.Equal(t, 10*time.Second, p.NextDelay(8))
}
