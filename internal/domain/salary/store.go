package salary

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paydesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const transactionColumnsSQL = `t.id, t.employee_id, e.full_name, t.month_year, t.basic, t.hra, t.other_allow,
	t.gross, t.deductions, t.net, t.status, t.created_at`

func scanTransaction(row pgx.Row, t *Transaction, extra ...any) error {
	dest := []any{&t.ID, &t.EmployeeID, &t.FullName, &t.MonthYear, &t.Basic, &t.HRA, &t.OtherAllow,
		&t.Gross, &t.Deductions, &t.Net, &t.Status, &t.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

// UpsertStructure reports whether the row was inserted rather than updated.
func (s *Store) UpsertStructure(ctx context.Context, input StructureInput) (Structure, bool, error) {
	var out Structure
	var created bool
	err := s.DB.QueryRow(ctx, `
		INSERT INTO salary_structures (employee_id, basic, hra, other_allow)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id) DO UPDATE
		SET basic = EXCLUDED.basic,
			hra = EXCLUDED.hra,
			other_allow = EXCLUDED.other_allow,
			updated_at = now()
		RETURNING employee_id, basic, hra, other_allow, updated_at, (xmax = 0)
	`, input.EmployeeID, input.Basic, input.HRA, input.OtherAllow).Scan(&out.EmployeeID, &out.Basic, &out.HRA, &out.OtherAllow, &out.UpdatedAt, &created)
	if err != nil {
		if querier.IsForeignKeyViolation(err) {
			return Structure{}, false, ErrEmployeeNotFound
		}
		return Structure{}, false, err
	}
	return out, created, nil
}

func (s *Store) GetStructure(ctx context.Context, employeeID string) (Structure, error) {
	var out Structure
	err := s.DB.QueryRow(ctx, `
		SELECT s.employee_id, e.full_name, s.basic, s.hra, s.other_allow, s.updated_at
		FROM salary_structures s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.employee_id = $1
	`, employeeID).Scan(&out.EmployeeID, &out.FullName, &out.Basic, &out.HRA, &out.OtherAllow, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Structure{}, ErrStructureNotFound
	}
	return out, err
}

// Generate materializes the month for every active employee with a
// structure. The whole run commits or rolls back together; rows that
// already exist for the month are reported as skipped.
func (s *Store) Generate(ctx context.Context, monthYear string) (result GenerateResult, err error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return GenerateResult{}, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("salary generation rollback failed", "month", monthYear, "err", rbErr)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT s.employee_id, s.basic, s.hra, s.other_allow
		FROM salary_structures s
		JOIN employees e ON e.id = s.employee_id
		WHERE e.is_active = true
		ORDER BY s.employee_id
		FOR SHARE OF s
	`)
	if err != nil {
		return GenerateResult{}, err
	}
	var structures []Structure
	for rows.Next() {
		var st Structure
		if err = rows.Scan(&st.EmployeeID, &st.Basic, &st.HRA, &st.OtherAllow); err != nil {
			rows.Close()
			return GenerateResult{}, err
		}
		structures = append(structures, st)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return GenerateResult{}, err
	}
	if len(structures) == 0 {
		err = ErrNoEligibleEmployees
		return GenerateResult{}, err
	}

	result = GenerateResult{MonthYear: monthYear, Generated: []string{}, Skipped: []string{}}
	for _, st := range structures {
		amounts := ComputeStructure(st)
		tag, execErr := tx.Exec(ctx, `
			INSERT INTO salary_transactions (employee_id, month_year, basic, hra, other_allow, gross, deductions, net, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (employee_id, month_year) DO NOTHING
		`, st.EmployeeID, monthYear, st.Basic, st.HRA, st.OtherAllow, amounts.Gross, amounts.Deductions, amounts.Net, StatusGenerated)
		if execErr != nil {
			err = execErr
			return GenerateResult{}, err
		}
		if tag.RowsAffected() == 0 {
			result.Skipped = append(result.Skipped, st.EmployeeID)
		} else {
			result.Generated = append(result.Generated, st.EmployeeID)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return GenerateResult{}, err
	}
	return result, nil
}

func (s *Store) listTransactions(ctx context.Context, where, orderBy string, args ...any) ([]Transaction, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT `+transactionColumnsSQL+`
		FROM salary_transactions t
		JOIN employees e ON e.id = t.employee_id
		WHERE `+where+`
		ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) History(ctx context.Context, employeeID string) ([]Transaction, error) {
	return s.listTransactions(ctx, "t.employee_id = $1", "t.month_year DESC", employeeID)
}

func (s *Store) MonthTransactions(ctx context.Context, monthYear string) ([]Transaction, error) {
	return s.listTransactions(ctx, "t.month_year = $1", "t.employee_id", monthYear)
}

func (s *Store) HistoryEmployees(ctx context.Context) ([]EmployeeRef, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT DISTINCT e.id, e.full_name
		FROM salary_transactions t
		JOIN employees e ON e.id = t.employee_id
		ORDER BY e.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []EmployeeRef{}
	for rows.Next() {
		var ref EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.FullName); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Store) StructureEmployees(ctx context.Context) ([]Structure, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT s.employee_id, e.full_name, s.basic, s.hra, s.other_allow, s.updated_at
		FROM salary_structures s
		JOIN employees e ON e.id = s.employee_id
		ORDER BY s.employee_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Structure{}
	for rows.Next() {
		var st Structure
		if err := rows.Scan(&st.EmployeeID, &st.FullName, &st.Basic, &st.HRA, &st.OtherAllow, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// MonthTotal sums net pay of every transaction for the month.
func (s *Store) MonthTotal(ctx context.Context, monthYear string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(net), 0) FROM salary_transactions WHERE month_year = $1
	`, monthYear).Scan(&total)
	return total, err
}

func (s *Store) PayslipData(ctx context.Context, employeeID, monthYear string) (PayslipData, error) {
	var data PayslipData
	err := scanTransaction(s.DB.QueryRow(ctx, `
		SELECT `+transactionColumnsSQL+`, e.email, d.name, g.name
		FROM salary_transactions t
		JOIN employees e ON e.id = t.employee_id
		JOIN departments d ON d.id = e.department_id
		JOIN designations g ON g.id = e.designation_id
		WHERE t.employee_id = $1 AND t.month_year = $2
	`, employeeID, monthYear), &data.Transaction, &data.Email, &data.Department, &data.Designation)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayslipData{}, ErrTransactionNotFound
	}
	return data, err
}
