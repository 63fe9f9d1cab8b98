package attendance

import (
	"context"
	"testing"

	"examdesk/seating/internal/model"
)

func TestMemorySeedAndList(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()

	assignments := []model.Assignment{
		{StudentID: "S2", ExamID: "E1", RoomNo: "R1", SeatNo: 2, Slot: model.SlotMorning},
		{StudentID: "S1", ExamID: "E1", RoomNo: "R1", SeatNo: 1, Slot: model.SlotMorning},
		{StudentID: "S3", ExamID: "E2", RoomNo: "R2", SeatNo: 1, Slot: model.SlotMorning},
	}
	if err := r.Seed(ctx, model.SlotMorning, assignments); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	records, err := r.ListByRoom(ctx, "R1", model.SlotMorning)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].StudentID != "S1" || records[1].StudentID != "S2" {
		t.Fatalf("expected seat order, got %v", records)
	}
	for _, record := range records {
		if record.Present {
			t.Fatalf("expected records seeded absent, got %+v", record)
		}
		if record.ID == "" {
			t.Fatalf("expected generated record id")
		}
	}
}

func TestMemorySeedReplaces(t *testing.T) {
	ctx := context.Background()
	r := NewMemory()

	first := []model.Assignment{{StudentID: "S1", ExamID: "E1", RoomNo: "R1", SeatNo: 1, Slot: model.SlotMidday}}
	second := []model.Assignment{{StudentID: "S2", ExamID: "E1", RoomNo: "R2", SeatNo: 1, Slot: model.SlotMidday}}
	if err := r.Seed(ctx, model.SlotMidday, first); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	if err := r.Seed(ctx, model.SlotMidday, second); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	records, err := r.ListByRoom(ctx, "R1", model.SlotMidday)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected replaced records gone, got %v/%v", records, err)
	}
	records, err = r.ListByRoom(ctx, "R2", model.SlotMidday)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected new records, got %v/%v", records, err)
	}
}
