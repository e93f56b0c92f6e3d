package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"shareloop/internal/models"
)

const (
	sheetName  = "Bookings"
	timeLayout = "02.01.2006 15:04"
)

var headers = []string{"ID", "Item", "Item ID", "Booker ID", "Start", "End", "Status"}

// XLSXReport maintains a workbook with one row per booking. Rows are keyed
// by the booking id in column A.
type XLSXReport struct {
	path   string
	mu     sync.Mutex
	logger *zerolog.Logger
}

func NewXLSXReport(path string, logger *zerolog.Logger) *XLSXReport {
	return &XLSXReport{path: path, logger: logger}
}

// UpsertBooking writes the booking into its row, appending a new one if the
// id is not present yet.
func (r *XLSXReport) UpsertBooking(booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return fmt.Errorf("booking is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	row, err := r.findRow(f, booking.ID)
	if err != nil {
		return err
	}
	if row == 0 {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return fmt.Errorf("read sheet: %w", err)
		}
		row = len(rows) + 1
	}

	values := []interface{}{
		booking.ID,
		booking.ItemName,
		booking.ItemID,
		booking.BookerID,
		booking.Start.Format(timeLayout),
		booking.End.Format(timeLayout),
		booking.Status,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}

	return r.save(f)
}

// RemoveBooking deletes the booking's row if present.
func (r *XLSXReport) RemoveBooking(bookingID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	row, err := r.findRow(f, bookingID)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}
	if err := f.RemoveRow(sheetName, row); err != nil {
		return fmt.Errorf("remove row %d: %w", row, err)
	}

	return r.save(f)
}

// UpdateBookingStatus rewrites only the status column for the booking's row.
func (r *XLSXReport) UpdateBookingStatus(bookingID int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	row, err := r.findRow(f, bookingID)
	if err != nil {
		return err
	}
	if row == 0 {
		return fmt.Errorf("booking %d not in report", bookingID)
	}

	cell, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := f.SetCellValue(sheetName, cell, status); err != nil {
		return fmt.Errorf("write cell %s: %w", cell, err)
	}

	return r.save(f)
}

// open loads the workbook, creating it with a header row on first use.
func (r *XLSXReport) open() (*excelize.File, error) {
	if _, err := os.Stat(r.path); err == nil {
		f, err := excelize.OpenFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("open report: %w", err)
		}
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, first, last, style)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "B", 25)
	_ = f.SetColWidth(sheetName, "C", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "F", 20)
	_ = f.SetColWidth(sheetName, "G", "G", 12)

	return f, nil
}

// findRow returns the 1-based row holding the booking id, or 0 if absent.
func (r *XLSXReport) findRow(f *excelize.File, bookingID int64) (int, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, fmt.Errorf("read sheet: %w", err)
	}
	want := fmt.Sprintf("%d", bookingID)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && row[0] == want {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (r *XLSXReport) save(f *excelize.File) error {
	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	r.logger.Debug().Str("file_path", r.path).Msg("report saved")
	return nil
}
