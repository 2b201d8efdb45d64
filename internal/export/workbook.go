// Package export turns review lists into spreadsheets and back.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/juveboxd-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Reviews"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	createdAtLayout = "2006-01-02 15:04:05"
)

// Header is the first row of every exported workbook.
var Header = []string{"ID", "Nickname", "Rating", "Comment", "Timestamp", "Created At"}

// WriteWorkbook writes reviews as one sheet, in the given order.
func WriteWorkbook(w io.Writer, reviews []model.Review) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range reviews {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.Nickname,
			r.Rating,
			r.Comment,
			r.Timestamp,
			time.UnixMilli(r.Timestamp).UTC().Format(createdAtLayout),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 38)
	f.SetColWidth(SheetName, "D", "D", 60)
	f.SetColWidth(SheetName, "E", "F", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadWorkbook parses the first sheet of a workbook laid out like WriteWorkbook's.
// The header row is skipped and blank rows are ignored. ID and Timestamp may be
// empty; Created At is never read.
func ReadWorkbook(r io.Reader) ([]model.Review, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var reviews []model.Review
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}

		review := model.Review{
			ID:       cell(row, 0),
			Nickname: cell(row, 1),
			Comment:  cell(row, 3),
		}
		if v := cell(row, 2); v != "" {
			rating, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid rating %q", i+1, v)
			}
			review.Rating = rating
		}
		if v := cell(row, 4); v != "" {
			ts, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid timestamp %q", i+1, v)
			}
			review.Timestamp = int64(ts)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
