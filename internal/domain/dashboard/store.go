package dashboard

import (
	"context"
	"time"

	"paydesk/internal/platform/querier"
)

type StoreAPI interface {
	ActiveEmployees(ctx context.Context) (int, error)
	AttendanceCounts(ctx context.Context, day time.Time) (AttendanceCounts, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ActiveEmployees(ctx context.Context) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE is_active = true`).Scan(&total)
	return total, err
}

// AttendanceCounts counts rows for active employees only.
func (s *Store) AttendanceCounts(ctx context.Context, day time.Time) (AttendanceCounts, error) {
	var counts AttendanceCounts
	err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE a.status = 'Present'),
			COUNT(*) FILTER (WHERE a.status = 'Absent')
		FROM attendance_records a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.date = $1 AND e.is_active = true
	`, day).Scan(&counts.Present, &counts.Absent)
	return counts, err
}
