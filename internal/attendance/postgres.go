package attendance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/seating/internal/model"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Seed(ctx context.Context, slot model.Slot, assignments []model.Assignment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM attendance_records WHERE slot = $1`, string(slot)); err != nil {
		return err
	}
	if len(assignments) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"attendance_records"},
			[]string{"id", "slot", "room_no", "seat_no", "student_id", "exam_id", "present"},
			pgx.CopyFromSlice(len(assignments), func(i int) ([]interface{}, error) {
				a := assignments[i]
				return []interface{}{uuid.New(), string(a.Slot), a.RoomNo, a.SeatNo, a.StudentID, a.ExamID, false}, nil
			}),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Postgres) ListByRoom(ctx context.Context, roomNo string, slot model.Slot) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, slot, room_no, seat_no, student_id, exam_id, present
		FROM attendance_records
		WHERE slot = $1 AND room_no = $2
		ORDER BY seat_no
	`, string(slot), roomNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var record model.AttendanceRecord
		var slotValue string
		if err := rows.Scan(&record.ID, &slotValue, &record.RoomNo, &record.SeatNo, &record.StudentID, &record.ExamID, &record.Present); err != nil {
			return nil, err
		}
		record.Slot = model.Slot(slotValue)
		records = append(records, record)
	}
	return records, rows.Err()
}
