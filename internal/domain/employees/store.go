package employees

import (
	"context"
	"errors"
	"fmt"
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

const employeeSelect = `
	SELECT e.id, e.full_name, e.email, e.phone, e.date_of_birth, e.gender,
		e.department_id, d.name, e.designation_id, g.name,
		e.date_of_joining, e.work_location, e.is_active, e.status, e.created_at, e.updated_at
	FROM employees e
	JOIN departments d ON d.id = e.department_id
	JOIN designations g ON g.id = e.designation_id
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var dob, joined time.Time
	err := row.Scan(
		&emp.ID, &emp.FullName, &emp.Email, &emp.Phone, &dob, &emp.Gender,
		&emp.DepartmentID, &emp.DepartmentName, &emp.DesignationID, &emp.DesignationName,
		&joined, &emp.WorkLocation, &emp.IsActive, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return emp, err
	}
	emp.DateOfBirth = dob.Format(dayLayout)
	emp.DateOfJoining = joined.Format(dayLayout)
	return emp, nil
}

func (s *Store) list(ctx context.Context, where string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, employeeSelect+where+" ORDER BY e.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) ListActive(ctx context.Context) ([]Employee, error) {
	return s.list(ctx, " WHERE e.is_active = true")
}

func (s *Store) ListAll(ctx context.Context) ([]Employee, error) {
	return s.list(ctx, "")
}

func (s *Store) ListActiveSummaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, full_name FROM employees WHERE is_active = true ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.FullName); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, employeeSelect+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return emp, ErrNotFound
	}
	return emp, err
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case querier.IsUniqueViolation(err):
		return ErrDuplicate
	case querier.IsForeignKeyViolation(err):
		return ErrInvalidReference
	default:
		return err
	}
}

func (s *Store) Create(ctx context.Context, in Input, enroll Enroll) (err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				slog.Warn("employee create rollback failed", "employeeId", in.ID, "err", rbErr)
			}
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO employees (id, full_name, email, phone, date_of_birth, gender,
			department_id, designation_id, date_of_joining, work_location, is_active, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11)
	`, in.ID, in.FullName, in.Email, in.Phone, in.DateOfBirth, in.Gender,
		in.DepartmentID, in.DesignationID, in.DateOfJoining, in.WorkLocation, StatusActive)
	if err != nil {
		return mapWriteError(err)
	}
	if enroll != nil {
		if err = enroll(ctx, tx); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, id string, in Input) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE employees
		SET full_name = $2, email = $3, phone = $4, date_of_birth = $5, gender = $6,
			department_id = $7, designation_id = $8, date_of_joining = $9, work_location = $10,
			updated_at = now()
		WHERE id = $1
	`, id, in.FullName, in.Email, in.Phone, in.DateOfBirth, in.Gender,
		in.DepartmentID, in.DesignationID, in.DateOfJoining, in.WorkLocation)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive keeps is_active and status in step.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	status := StatusInactive
	if active {
		status = StatusActive
	}
	tag, err := s.DB.Exec(ctx, `
		UPDATE employees SET is_active = $2, status = $3, updated_at = now() WHERE id = $1
	`, id, active, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) History(ctx context.Context, id string) (History, error) {
	basic, err := s.Get(ctx, id)
	if err != nil {
		return History{}, err
	}
	out := History{Basic: basic, Attendance: []AttendanceHistory{}, Leaves: []LeaveHistory{}, Salary: []SalaryHistory{}}

	attRows, err := s.DB.Query(ctx, `
		SELECT date, status, check_in, check_out
		FROM attendance_records
		WHERE employee_id = $1
		ORDER BY date DESC
	`, id)
	if err != nil {
		return History{}, fmt.Errorf("attendance history: %w", err)
	}
	for attRows.Next() {
		var a AttendanceHistory
		var day time.Time
		if err := attRows.Scan(&day, &a.Status, &a.CheckIn, &a.CheckOut); err != nil {
			attRows.Close()
			return History{}, err
		}
		a.Date = day.Format(dayLayout)
		out.Attendance = append(out.Attendance, a)
	}
	attRows.Close()
	if err := attRows.Err(); err != nil {
		return History{}, err
	}

	leaveRows, err := s.DB.Query(ctx, `
		SELECT id, leave_type, from_date, to_date, reason, status, created_at
		FROM leave_transactions
		WHERE employee_id = $1
		ORDER BY created_at DESC, id DESC
	`, id)
	if err != nil {
		return History{}, fmt.Errorf("leave history: %w", err)
	}
	for leaveRows.Next() {
		var l LeaveHistory
		var from, to time.Time
		if err := leaveRows.Scan(&l.ID, &l.LeaveType, &from, &to, &l.Reason, &l.Status, &l.CreatedAt); err != nil {
			leaveRows.Close()
			return History{}, err
		}
		l.FromDate = from.Format(dayLayout)
		l.ToDate = to.Format(dayLayout)
		out.Leaves = append(out.Leaves, l)
	}
	leaveRows.Close()
	if err := leaveRows.Err(); err != nil {
		return History{}, err
	}

	salaryRows, err := s.DB.Query(ctx, `
		SELECT month_year, gross, net, status
		FROM salary_transactions
		WHERE employee_id = $1
		ORDER BY month_year DESC
	`, id)
	if err != nil {
		return History{}, fmt.Errorf("salary history: %w", err)
	}
	defer salaryRows.Close()
	for salaryRows.Next() {
		var sh SalaryHistory
		if err := salaryRows.Scan(&sh.MonthYear, &sh.Gross, &sh.Net, &sh.Status); err != nil {
			return History{}, err
		}
		out.Salary = append(out.Salary, sh)
	}
	return out, salaryRows.Err()
}
