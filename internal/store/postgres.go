package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk/seating/internal/model"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Postgres persists allocations in two tables: seat_allocations carries
// the per-slot version row, seat_assignments the seats themselves. Commit
// replaces a slot's seats inside one transaction; the version-row upsert
// takes a row lock, so commits for the same slot serialize on the database
// while other slots proceed untouched.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Commit(ctx context.Context, slot model.Slot, assignments []model.Assignment) (int64, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int64
	err = tx.QueryRow(ctx, `
		INSERT INTO seat_allocations (slot, version, created_at)
		VALUES ($1, 1, now())
		ON CONFLICT (slot) DO UPDATE
		SET version = seat_allocations.version + 1, created_at = now()
		RETURNING version
	`, string(slot)).Scan(&version)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM seat_assignments WHERE slot = $1`, string(slot)); err != nil {
		return 0, err
	}

	if len(assignments) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"seat_assignments"},
			[]string{"slot", "room_no", "seat_no", "student_id", "student_name", "student_batch", "exam_id", "course_code"},
			pgx.CopyFromSlice(len(assignments), func(i int) ([]interface{}, error) {
				a := assignments[i]
				return []interface{}{string(a.Slot), a.RoomNo, a.SeatNo, a.StudentID, a.StudentName, a.StudentBatch, a.ExamID, a.CourseCode}, nil
			}),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return version, nil
}

func (s *Postgres) Lookup(ctx context.Context, roomNo string, slot model.Slot) ([]model.Assignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT slot, room_no, seat_no, student_id, student_name, student_batch, exam_id, course_code
		FROM seat_assignments
		WHERE slot = $1 AND room_no = $2
		ORDER BY seat_no
	`, string(slot), roomNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var slotValue string
		if err := rows.Scan(&slotValue, &a.RoomNo, &a.SeatNo, &a.StudentID, &a.StudentName, &a.StudentBatch, &a.ExamID, &a.CourseCode); err != nil {
			return nil, err
		}
		a.Slot = model.Slot(slotValue)
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *Postgres) CurrentVersion(ctx context.Context, slot model.Slot) (int64, error) {
	var version int64
	err := s.pool.QueryRow(ctx, `SELECT version FROM seat_allocations WHERE slot = $1`, string(slot)).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}
