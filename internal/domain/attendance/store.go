package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"paydesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListForDate(ctx context.Context, date time.Time) ([]Row, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT e.id, e.full_name, a.status, a.check_in, a.check_out
		FROM employees e
		LEFT JOIN attendance_records a ON a.employee_id = e.id AND a.date = $1
		WHERE e.is_active = true
		ORDER BY e.id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.EmployeeID, &row.FullName, &row.Status, &row.CheckIn, &row.CheckOut); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MarkBatch upserts every entry in one transaction; any failure rolls back the batch.
func (s *Store) MarkBatch(ctx context.Context, date time.Time, entries []Entry) (err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("attendance rollback failed", "err", rbErr)
		}
	}()

	for i, entry := range entries {
		var active bool
		scanErr := tx.QueryRow(ctx, `SELECT is_active FROM employees WHERE id = $1 FOR SHARE`, entry.EmployeeID).Scan(&active)
		if errors.Is(scanErr, pgx.ErrNoRows) || (scanErr == nil && !active) {
			return &EntryError{Index: i, EmployeeID: entry.EmployeeID, Err: ErrEmployeeUnavailable}
		}
		if scanErr != nil {
			return scanErr
		}

		if _, err = tx.Exec(ctx, `
			INSERT INTO attendance_records (employee_id, date, status, check_in, check_out)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (employee_id, date) DO UPDATE
			SET status = EXCLUDED.status,
				check_in = EXCLUDED.check_in,
				check_out = EXCLUDED.check_out,
				updated_at = now()
		`, entry.EmployeeID, date, entry.Status, entry.CheckIn, entry.CheckOut); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT employee_id, date, status, check_in, check_out
		FROM attendance_records
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC
	`, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var day time.Time
		if err := rows.Scan(&rec.EmployeeID, &day, &rec.Status, &rec.CheckIn, &rec.CheckOut); err != nil {
			return nil, err
		}
		rec.Date = day.Format(dayLayout)
		out = append(out, rec)
	}
	return out, rows.Err()
}
