package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/seating/internal/model"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (c *Postgres) GetRoomsOrderedByNumber(ctx context.Context) ([]model.Room, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT room_no, capacity
		FROM rooms
		ORDER BY room_no
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.RoomNo, &room.Capacity); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (c *Postgres) GetExamsInSlot(ctx context.Context, slot model.Slot) ([]model.Exam, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, course_code, exam_date, start_time, duration_minutes, exam_type, slot
		FROM exams
		WHERE slot = $1
		ORDER BY course_code
	`, string(slot))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var exam model.Exam
		var examType, slotValue string
		if err := rows.Scan(&exam.ID, &exam.CourseCode, &exam.Date, &exam.StartTime, &exam.DurationMinutes, &examType, &slotValue); err != nil {
			return nil, err
		}
		exam.Type = model.ExamType(examType)
		exam.Slot = model.Slot(slotValue)
		exams = append(exams, exam)
	}
	return exams, rows.Err()
}
