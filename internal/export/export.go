package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"examdesk/seating/internal/catalog"
	"examdesk/seating/internal/model"
	"examdesk/seating/internal/store"
)

var ErrNoAllocation = errors.New("no_allocation")

// Exporter renders the committed allocation for a slot into per-room
// seating sheets and packages them into one zip archive. It only reads
// the store; rooms that received no seats are left out of the archive.
type Exporter struct {
	store   store.Store
	catalog catalog.Catalog
}

func NewExporter(st store.Store, cat catalog.Catalog) *Exporter {
	return &Exporter{store: st, catalog: cat}
}

// Export is a pure function of the committed allocation: rendering the
// same version twice yields the same room documents.
func (e *Exporter) Export(ctx context.Context, slot model.Slot) ([]byte, error) {
	version, err := e.store.CurrentVersion(ctx, slot)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, ErrNoAllocation
	}

	rooms, err := e.catalog.GetRoomsOrderedByNumber(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	for _, room := range rooms {
		assignments, err := e.store.Lookup(ctx, room.RoomNo, slot)
		if err != nil {
			return nil, err
		}
		if len(assignments) == 0 {
			continue
		}
		sheet, err := renderRoomSheet(room.RoomNo, slot, assignments)
		if err != nil {
			return nil, err
		}
		entry, err := archive.Create(fmt.Sprintf("Room_%s.xlsx", room.RoomNo))
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(sheet); err != nil {
			return nil, err
		}
	}
	if err := archive.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ArchiveName is the suggested download filename for a slot's archive.
func ArchiveName(slot model.Slot) string {
	return fmt.Sprintf("seating_%s.zip", slot)
}

func renderRoomSheet(roomNo string, slot model.Slot, assignments []model.Assignment) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Seating"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Room %s (%s)", roomNo, slot)
	header := []interface{}{"Seat", "Student ID", "Student Name", "Batch", "Course"}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{title}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return nil, err
	}
	for i, a := range assignments {
		row := []interface{}{a.SeatNo, a.StudentID, a.StudentName, a.StudentBatch, a.CourseCode}
		if err := f.SetSheetRow(sheet, "A"+strconv.Itoa(i+3), &row); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := f.Write(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
