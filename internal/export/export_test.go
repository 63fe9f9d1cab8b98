package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"examdesk/seating/internal/catalog"
	"examdesk/seating/internal/model"
	"examdesk/seating/internal/store"
)

func TestExportOmitsEmptyRooms(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cat := &catalog.Memory{Rooms: []model.Room{
		{RoomNo: "R1", Capacity: 3},
		{RoomNo: "R2", Capacity: 3},
		{RoomNo: "R3", Capacity: 3},
	}}

	assignments := []model.Assignment{
		{StudentID: "S1", StudentName: "Adam", StudentBatch: "2024", ExamID: "E1", CourseCode: "CS101", RoomNo: "R1", SeatNo: 1, Slot: model.SlotMorning},
		{StudentID: "S2", StudentName: "Beth", StudentBatch: "2024", ExamID: "E1", CourseCode: "CS101", RoomNo: "R1", SeatNo: 2, Slot: model.SlotMorning},
		{StudentID: "S3", StudentName: "Cara", StudentBatch: "2023", ExamID: "E2", CourseCode: "MA201", RoomNo: "R3", SeatNo: 1, Slot: model.SlotMorning},
	}
	if _, err := st.Commit(ctx, model.SlotMorning, assignments); err != nil {
		t.Fatalf("commit error: %v", err)
	}

	archive, err := NewExporter(st, cat).Export(ctx, model.SlotMorning)
	if err != nil {
		t.Fatalf("export error: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("zip open error: %v", err)
	}
	names := map[string]bool{}
	for _, file := range reader.File {
		names[file.Name] = true
	}
	if !names["Room_R1.xlsx"] || !names["Room_R3.xlsx"] {
		t.Fatalf("expected R1 and R3 documents, got %v", names)
	}
	if names["Room_R2.xlsx"] {
		t.Fatalf("empty room R2 must be omitted, got %v", names)
	}
	if len(reader.File) != 2 {
		t.Fatalf("expected exactly 2 documents, got %d", len(reader.File))
	}
}

func TestExportSheetContents(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	cat := &catalog.Memory{Rooms: []model.Room{{RoomNo: "R1", Capacity: 2}}}

	assignments := []model.Assignment{
		{StudentID: "S1", StudentName: "Adam", StudentBatch: "2024", ExamID: "E1", CourseCode: "CS101", RoomNo: "R1", SeatNo: 1, Slot: model.SlotMidday},
		{StudentID: "S2", StudentName: "Beth", StudentBatch: "2023", ExamID: "E2", CourseCode: "MA201", RoomNo: "R1", SeatNo: 2, Slot: model.SlotMidday},
	}
	if _, err := st.Commit(ctx, model.SlotMidday, assignments); err != nil {
		t.Fatalf("commit error: %v", err)
	}

	archive, err := NewExporter(st, cat).Export(ctx, model.SlotMidday)
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("zip open error: %v", err)
	}
	if len(reader.File) != 1 {
		t.Fatalf("expected 1 document, got %d", len(reader.File))
	}

	entry, err := reader.File[0].Open()
	if err != nil {
		t.Fatalf("entry open error: %v", err)
	}
	defer entry.Close()

	f, err := excelize.OpenReader(entry)
	if err != nil {
		t.Fatalf("xlsx open error: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Seating")
	if err != nil {
		t.Fatalf("sheet read error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected title, header and 2 seats, got %d rows", len(rows))
	}
	if rows[1][0] != "Seat" || rows[1][1] != "Student ID" {
		t.Fatalf("unexpected header row: %v", rows[1])
	}
	if rows[2][0] != "1" || rows[2][1] != "S1" || rows[2][2] != "Adam" || rows[2][4] != "CS101" {
		t.Fatalf("unexpected first seat row: %v", rows[2])
	}
	if rows[3][1] != "S2" || rows[3][4] != "MA201" {
		t.Fatalf("unexpected second seat row: %v", rows[3])
	}
}

func TestExportNoAllocation(t *testing.T) {
	ctx := context.Background()
	exporter := NewExporter(store.NewMemory(), &catalog.Memory{Rooms: []model.Room{{RoomNo: "R1", Capacity: 2}}})

	_, err := exporter.Export(ctx, model.SlotAfternoon)
	if !errors.Is(err, ErrNoAllocation) {
		t.Fatalf("expected ErrNoAllocation, got %v", err)
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName(model.SlotMorning); got != "seating_MORNING.zip" {
		t.Fatalf("unexpected archive name %s", got)
	}
}
