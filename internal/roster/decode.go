package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawRow is one decoded roster line, prior to any validation.
type RawRow struct {
	Line         int
	StudentID    string
	StudentName  string
	StudentBatch string
	CourseCode   string
}

var (
	ErrUnsupportedFormat = errors.New("unsupported_file_format")
	ErrNoRows            = errors.New("empty_roster")
)

var requiredColumns = []string{"student_id", "student_name", "student_batch", "course_code"}

type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// DecodeRows reads an uploaded roster file into raw rows. The format is
// chosen from the file extension; header columns may appear in any order
// and are matched case-insensitively.
func DecodeRows(filename string, r io.Reader) ([]RawRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return decodeCSV(r)
	case ".xlsx", ".xls":
		return decodeExcel(r)
	}
	return nil, ErrUnsupportedFormat
}

func decodeCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsFromRecords(records)
}

func decodeExcel(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoRows
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rowsFromRecords(records)
}

func rowsFromRecords(records [][]string) ([]RawRow, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	index := map[string]int{}
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	rows := make([]RawRow, 0, len(records)-1)
	for i, record := range records[1:] {
		row := RawRow{
			Line:         i + 2, // 1-based, after the header
			StudentID:    cell(record, index["student_id"]),
			StudentName:  cell(record, index["student_name"]),
			StudentBatch: cell(record, index["student_batch"]),
			CourseCode:   cell(record, index["course_code"]),
		}
		if row.StudentID == "" && row.StudentName == "" && row.CourseCode == "" {
			continue // trailing blank line
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
