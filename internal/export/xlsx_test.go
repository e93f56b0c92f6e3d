package export

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"shareloop/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestReport(t *testing.T) *XLSXReport {
	t.Helper()
	logger := zerolog.New(io.Discard)
	return NewXLSXReport(filepath.Join(t.TempDir(), "reports", "bookings.xlsx"), &logger)
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

func sampleBooking(id int64) *models.Booking {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:       id,
		ItemID:   3,
		ItemName: "drill",
		BookerID: 5,
		Start:    start,
		End:      start.Add(2 * time.Hour),
		Status:   models.StatusWaiting,
	}
}

func TestUpsertBooking(t *testing.T) {
	report := newTestReport(t)

	t.Run("CreatesWorkbookWithHeader", func(t *testing.T) {
		require.NoError(t, report.UpsertBooking(sampleBooking(1)))

		rows := readRows(t, report.path)
		require.Len(t, rows, 2)
		assert.Equal(t, headers, rows[0])
		assert.Equal(t, "1", rows[1][0])
		assert.Equal(t, "drill", rows[1][1])
		assert.Equal(t, "01.04.2026 10:00", rows[1][4])
		assert.Equal(t, models.StatusWaiting, rows[1][6])
	})

	t.Run("AppendsNewID", func(t *testing.T) {
		require.NoError(t, report.UpsertBooking(sampleBooking(2)))

		rows := readRows(t, report.path)
		require.Len(t, rows, 3)
		assert.Equal(t, "2", rows[2][0])
	})

	t.Run("RewritesExistingRow", func(t *testing.T) {
		changed := sampleBooking(1)
		changed.ItemName = "hammer"
		require.NoError(t, report.UpsertBooking(changed))

		rows := readRows(t, report.path)
		require.Len(t, rows, 3)
		assert.Equal(t, "hammer", rows[1][1])
	})

	t.Run("RejectsEmptyBooking", func(t *testing.T) {
		assert.Error(t, report.UpsertBooking(nil))
		assert.Error(t, report.UpsertBooking(&models.Booking{}))
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	report := newTestReport(t)
	require.NoError(t, report.UpsertBooking(sampleBooking(1)))

	require.NoError(t, report.UpdateBookingStatus(1, models.StatusApproved))

	rows := readRows(t, report.path)
	assert.Equal(t, models.StatusApproved, rows[1][6])
	assert.Equal(t, "drill", rows[1][1])

	assert.Error(t, report.UpdateBookingStatus(99, models.StatusApproved))
}

func TestRemoveBooking(t *testing.T) {
	report := newTestReport(t)
	require.NoError(t, report.UpsertBooking(sampleBooking(1)))
	require.NoError(t, report.UpsertBooking(sampleBooking(2)))

	require.NoError(t, report.RemoveBooking(1))

	rows := readRows(t, report.path)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1][0])

	// Removing an absent id is a no-op.
	require.NoError(t, report.RemoveBooking(1))
}
