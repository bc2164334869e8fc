package leave

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

const balanceColumnsSQL = `employee_id, year, cl_remaining, pl_remaining, sl_remaining, cl_taken, pl_taken, sl_taken`

const transactionColumnsSQL = `t.id, t.employee_id, e.full_name, t.leave_type, t.from_date, t.from_time, t.to_date, t.to_time,
	t.reason, t.status, t.reviewed_by::text, t.reviewed_at, t.created_at`

func scanBalance(row pgx.Row) (Balance, error) {
	var b Balance
	err := row.Scan(&b.EmployeeID, &b.Year, &b.CL, &b.PL, &b.SL, &b.CLTaken, &b.PLTaken, &b.SLTaken)
	return b, err
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var from, to time.Time
	err := row.Scan(&t.ID, &t.EmployeeID, &t.FullName, &t.LeaveType, &from, &t.FromTime, &to, &t.ToTime,
		&t.Reason, &t.Status, &t.ReviewedBy, &t.ReviewedAt, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	t.FromDate = from.Format(dayLayout)
	t.ToDate = to.Format(dayLayout)
	if days, dErr := CalculateDays(from, to); dErr == nil {
		t.Days = days
	}
	return t, nil
}

// employeeActive refuses balance rows for unknown or deactivated employees.
func (s *Store) employeeActive(ctx context.Context, q querier.Querier, employeeID string) error {
	var active bool
	err := q.QueryRow(ctx, `SELECT is_active FROM employees WHERE id = $1`, employeeID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return err
	}
	if !active {
		return ErrEmployeeInactive
	}
	return nil
}

func insertDefaultBalance(ctx context.Context, q querier.Querier, employeeID string, year int) (int64, error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO leave_balances (employee_id, year, cl_remaining, pl_remaining, sl_remaining)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, year) DO NOTHING
	`, employeeID, year, DefaultCL, DefaultPL, DefaultSL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetOrCreateBalance inserts the default row when missing and returns the stored row.
func (s *Store) GetOrCreateBalance(ctx context.Context, employeeID string, year int) (Balance, error) {
	if err := s.employeeActive(ctx, s.DB, employeeID); err != nil {
		return Balance{}, err
	}
	if _, err := insertDefaultBalance(ctx, s.DB, employeeID, year); err != nil {
		return Balance{}, err
	}
	return scanBalance(s.DB.QueryRow(ctx, `SELECT `+balanceColumnsSQL+` FROM leave_balances WHERE employee_id = $1 AND year = $2`, employeeID, year))
}

func (s *Store) InitBalance(ctx context.Context, employeeID string, year int) (Balance, error) {
	if err := s.employeeActive(ctx, s.DB, employeeID); err != nil {
		return Balance{}, err
	}
	inserted, err := insertDefaultBalance(ctx, s.DB, employeeID, year)
	if err != nil {
		return Balance{}, err
	}
	if inserted == 0 {
		return Balance{}, ErrAlreadyInitialized
	}
	return scanBalance(s.DB.QueryRow(ctx, `SELECT `+balanceColumnsSQL+` FROM leave_balances WHERE employee_id = $1 AND year = $2`, employeeID, year))
}

func (s *Store) ResetBalance(ctx context.Context, employeeID string, year int) (Balance, error) {
	b, err := scanBalance(s.DB.QueryRow(ctx, `
		UPDATE leave_balances
		SET cl_remaining = $3, pl_remaining = $4, sl_remaining = $5,
			cl_taken = 0, pl_taken = 0, sl_taken = 0, updated_at = now()
		WHERE employee_id = $1 AND year = $2
		RETURNING `+balanceColumnsSQL, employeeID, year, DefaultCL, DefaultPL, DefaultSL))
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{}, ErrBalanceNotFound
	}
	return b, err
}

// Apply serializes applications per employee by locking the employee row,
// then runs the pending and overlap checks before inserting.
func (s *Store) Apply(ctx context.Context, input ApplyInput) (id int64, err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("leave apply rollback failed", "err", rbErr)
		}
	}()

	var active bool
	err = tx.QueryRow(ctx, `SELECT is_active FROM employees WHERE id = $1 FOR UPDATE`, input.EmployeeID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrEmployeeNotFound
	}
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, ErrEmployeeInactive
	}

	var pending bool
	if err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leave_transactions WHERE employee_id = $1 AND status = $2)
	`, input.EmployeeID, StatusPending).Scan(&pending); err != nil {
		return 0, err
	}
	if pending {
		return 0, ErrPendingExists
	}

	spans, err := approvedSpans(ctx, tx, input.EmployeeID)
	if err != nil {
		return 0, err
	}
	if OverlapsApproved(spans, input.FromDate, input.ToDate) {
		return 0, ErrApprovedOverlap
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO leave_transactions (employee_id, leave_type, from_date, from_time, to_date, to_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, input.EmployeeID, input.LeaveType, input.FromDate, input.FromTime, input.ToDate, input.ToTime, input.Reason, StatusPending).Scan(&id)
	if err != nil {
		if querier.IsUniqueViolation(err) {
			return 0, ErrPendingExists
		}
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func approvedSpans(ctx context.Context, q querier.Querier, employeeID string) ([]Span, error) {
	rows, err := q.Query(ctx, `
		SELECT from_date, to_date FROM leave_transactions
		WHERE employee_id = $1 AND status = $2
	`, employeeID, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spans []Span
	for rows.Next() {
		var span Span
		if err := rows.Scan(&span.From, &span.To); err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, rows.Err()
}

// Decide applies a reviewer decision. The status change and the balance
// adjustment commit together.
func (s *Store) Decide(ctx context.Context, decision Decision, year int) (txn Transaction, err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Transaction{}, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("leave decision rollback failed", "err", rbErr)
		}
	}()

	var employeeID, leaveType, status string
	err = tx.QueryRow(ctx, `
		SELECT employee_id, leave_type, status FROM leave_transactions WHERE id = $1 FOR UPDATE
	`, decision.TransactionID).Scan(&employeeID, &leaveType, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		return Transaction{}, err
	}
	if status != StatusPending {
		return Transaction{}, ErrAlreadyProcessed
	}
	if decision.LeaveType != "" {
		leaveType = decision.LeaveType
	}
	remainingCol, takenCol, ok := balanceColumns(leaveType)
	if !ok {
		return Transaction{}, ErrInvalidLeaveType
	}

	var reviewer *string
	if decision.ReviewerID != "" {
		reviewer = &decision.ReviewerID
	}
	if _, err = tx.Exec(ctx, `
		UPDATE leave_transactions
		SET status = $2, leave_type = $3, reviewed_by = $4, reviewed_at = now()
		WHERE id = $1
	`, decision.TransactionID, decision.Action, leaveType, reviewer); err != nil {
		return Transaction{}, err
	}

	if decision.Action == StatusApproved {
		if _, err = insertDefaultBalance(ctx, tx, employeeID, year); err != nil {
			return Transaction{}, err
		}
		query := fmt.Sprintf(`
			UPDATE leave_balances
			SET %s = %s - 1, %s = %s + 1, updated_at = now()
			WHERE employee_id = $1 AND year = $2
		`, remainingCol, remainingCol, takenCol, takenCol)
		if _, err = tx.Exec(ctx, query, employeeID, year); err != nil {
			return Transaction{}, err
		}
	}

	txn, err = scanTransaction(tx.QueryRow(ctx, `
		SELECT `+transactionColumnsSQL+`
		FROM leave_transactions t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.id = $1
	`, decision.TransactionID))
	if err != nil {
		return Transaction{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func (s *Store) listTransactions(ctx context.Context, where, orderBy string, args ...any) ([]Transaction, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+transactionColumnsSQL+`
		FROM leave_transactions t
		JOIN employees e ON e.id = t.employee_id
		WHERE `+where+`
		ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) History(ctx context.Context, employeeID string) ([]Transaction, error) {
	return s.listTransactions(ctx, "t.employee_id = $1", "t.created_at DESC, t.id DESC", employeeID)
}

func (s *Store) HistoryByFromDate(ctx context.Context, employeeID string) ([]Transaction, error) {
	return s.listTransactions(ctx, "t.employee_id = $1", "t.from_date DESC, t.id DESC", employeeID)
}

func (s *Store) ListPending(ctx context.Context) ([]Transaction, error) {
	return s.listTransactions(ctx, "t.status = $1", "t.created_at ASC, t.id ASC", StatusPending)
}
