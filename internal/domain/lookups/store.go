package lookups

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"paydesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case querier.IsUniqueViolation(err):
		return ErrDuplicate
	case querier.IsForeignKeyViolation(err):
		return ErrInvalidReference
	}
	return err
}

func queryList[T any](ctx context.Context, q querier.Querier, scan func(pgx.Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, q querier.Querier, scan func(pgx.Row) (T, error), sql string, args ...any) (T, error) {
	item, err := scan(q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return item, ErrNotFound
	}
	return item, err
}

// deleteRow removes one row from a fixed table name.
func (s *Store) deleteRow(ctx context.Context, table string, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		if querier.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Departments

func scanDepartment(row pgx.Row) (Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.CreatedAt)
	return d, err
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	return queryList(ctx, s.DB, scanDepartment, `SELECT id, name, created_at FROM departments ORDER BY name`)
}

func (s *Store) CreateDepartment(ctx context.Context, d Department) (Department, error) {
	out, err := scanDepartment(s.DB.QueryRow(ctx, `
		INSERT INTO departments (name) VALUES ($1) RETURNING id, name, created_at
	`, d.Name))
	return out, mapWriteError(err)
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, d Department) (Department, error) {
	out, err := scanDepartment(s.DB.QueryRow(ctx, `
		UPDATE departments SET name = $2 WHERE id = $1 RETURNING id, name, created_at
	`, id, d.Name))
	return out, mapWriteError(err)
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "departments", id)
}

// Designations

func scanDesignation(row pgx.Row) (Designation, error) {
	var d Designation
	err := row.Scan(&d.ID, &d.DepartmentID, &d.Name, &d.CreatedAt)
	return d, err
}

func (s *Store) ListDesignations(ctx context.Context) ([]Designation, error) {
	return queryList(ctx, s.DB, scanDesignation, `SELECT id, department_id, name, created_at FROM designations ORDER BY name`)
}

func (s *Store) ListDesignationsByDepartment(ctx context.Context, departmentID int64) ([]Designation, error) {
	return queryList(ctx, s.DB, scanDesignation, `
		SELECT id, department_id, name, created_at FROM designations WHERE department_id = $1 ORDER BY name
	`, departmentID)
}

func (s *Store) CreateDesignation(ctx context.Context, d Designation) (Designation, error) {
	out, err := scanDesignation(s.DB.QueryRow(ctx, `
		INSERT INTO designations (department_id, name) VALUES ($1, $2)
		RETURNING id, department_id, name, created_at
	`, d.DepartmentID, d.Name))
	return out, mapWriteError(err)
}

func (s *Store) UpdateDesignation(ctx context.Context, id int64, d Designation) (Designation, error) {
	out, err := scanDesignation(s.DB.QueryRow(ctx, `
		UPDATE designations SET department_id = $2, name = $3 WHERE id = $1
		RETURNING id, department_id, name, created_at
	`, id, d.DepartmentID, d.Name))
	return out, mapWriteError(err)
}

func (s *Store) DeleteDesignation(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "designations", id)
}

// Pay components

const payComponentColumns = `id, employee_id, name, amount, type, created_at`

func scanPayComponent(row pgx.Row) (PayComponent, error) {
	var p PayComponent
	err := row.Scan(&p.ID, &p.EmployeeID, &p.Name, &p.Amount, &p.Type, &p.CreatedAt)
	return p, err
}

func (s *Store) ListPayComponents(ctx context.Context) ([]PayComponent, error) {
	return queryList(ctx, s.DB, scanPayComponent, `SELECT `+payComponentColumns+` FROM pay_components ORDER BY id`)
}

func (s *Store) GetPayComponent(ctx context.Context, id int64) (PayComponent, error) {
	return queryOne(ctx, s.DB, scanPayComponent, `SELECT `+payComponentColumns+` FROM pay_components WHERE id = $1`, id)
}

func (s *Store) CreatePayComponent(ctx context.Context, p PayComponent) (PayComponent, error) {
	out, err := scanPayComponent(s.DB.QueryRow(ctx, `
		INSERT INTO pay_components (employee_id, name, amount, type) VALUES ($1, $2, $3, $4)
		RETURNING `+payComponentColumns, p.EmployeeID, p.Name, p.Amount, p.Type))
	return out, mapWriteError(err)
}

func (s *Store) UpdatePayComponent(ctx context.Context, id int64, p PayComponent) (PayComponent, error) {
	out, err := scanPayComponent(s.DB.QueryRow(ctx, `
		UPDATE pay_components SET employee_id = $2, name = $3, amount = $4, type = $5 WHERE id = $1
		RETURNING `+payComponentColumns, id, p.EmployeeID, p.Name, p.Amount, p.Type))
	return out, mapWriteError(err)
}

func (s *Store) DeletePayComponent(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "pay_components", id)
}

// Tax slabs

const taxSlabColumns = `id, from_salary, to_salary, tax_percentage, created_at`

func scanTaxSlab(row pgx.Row) (TaxSlab, error) {
	var t TaxSlab
	err := row.Scan(&t.ID, &t.FromSalary, &t.ToSalary, &t.TaxPercentage, &t.CreatedAt)
	return t, err
}

func (s *Store) ListTaxSlabs(ctx context.Context) ([]TaxSlab, error) {
	return queryList(ctx, s.DB, scanTaxSlab, `SELECT `+taxSlabColumns+` FROM tax_slabs ORDER BY from_salary`)
}

func (s *Store) GetTaxSlab(ctx context.Context, id int64) (TaxSlab, error) {
	return queryOne(ctx, s.DB, scanTaxSlab, `SELECT `+taxSlabColumns+` FROM tax_slabs WHERE id = $1`, id)
}

func (s *Store) CreateTaxSlab(ctx context.Context, t TaxSlab) (TaxSlab, error) {
	out, err := scanTaxSlab(s.DB.QueryRow(ctx, `
		INSERT INTO tax_slabs (from_salary, to_salary, tax_percentage) VALUES ($1, $2, $3)
		RETURNING `+taxSlabColumns, t.FromSalary, t.ToSalary, t.TaxPercentage))
	return out, mapWriteError(err)
}

func (s *Store) UpdateTaxSlab(ctx context.Context, id int64, t TaxSlab) (TaxSlab, error) {
	out, err := scanTaxSlab(s.DB.QueryRow(ctx, `
		UPDATE tax_slabs SET from_salary = $2, to_salary = $3, tax_percentage = $4 WHERE id = $1
		RETURNING `+taxSlabColumns, id, t.FromSalary, t.ToSalary, t.TaxPercentage))
	return out, mapWriteError(err)
}

func (s *Store) DeleteTaxSlab(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "tax_slabs", id)
}

// Leave types

func scanLeaveType(row pgx.Row) (LeaveType, error) {
	var l LeaveType
	err := row.Scan(&l.ID, &l.Name, &l.MaxDays, &l.CreatedAt)
	return l, err
}

func (s *Store) ListLeaveTypes(ctx context.Context) ([]LeaveType, error) {
	return queryList(ctx, s.DB, scanLeaveType, `SELECT id, name, max_days, created_at FROM leave_types ORDER BY name`)
}

func (s *Store) GetLeaveType(ctx context.Context, id int64) (LeaveType, error) {
	return queryOne(ctx, s.DB, scanLeaveType, `SELECT id, name, max_days, created_at FROM leave_types WHERE id = $1`, id)
}

func (s *Store) CreateLeaveType(ctx context.Context, l LeaveType) (LeaveType, error) {
	out, err := scanLeaveType(s.DB.QueryRow(ctx, `
		INSERT INTO leave_types (name, max_days) VALUES ($1, $2) RETURNING id, name, max_days, created_at
	`, l.Name, l.MaxDays))
	return out, mapWriteError(err)
}

func (s *Store) UpdateLeaveType(ctx context.Context, id int64, l LeaveType) (LeaveType, error) {
	out, err := scanLeaveType(s.DB.QueryRow(ctx, `
		UPDATE leave_types SET name = $2, max_days = $3 WHERE id = $1 RETURNING id, name, max_days, created_at
	`, id, l.Name, l.MaxDays))
	return out, mapWriteError(err)
}

func (s *Store) DeleteLeaveType(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "leave_types", id)
}

// Bank details

const bankDetailColumns = `id, employee_id, bank_name, account_last4, ifsc_code, created_at`

func scanBankDetail(row pgx.Row) (BankDetail, error) {
	var b BankDetail
	var last4 string
	err := row.Scan(&b.ID, &b.EmployeeID, &b.BankName, &last4, &b.IFSCCode, &b.CreatedAt)
	b.AccountMasked = maskLast4(last4)
	return b, err
}

func (s *Store) ListBankDetails(ctx context.Context) ([]BankDetail, error) {
	return queryList(ctx, s.DB, scanBankDetail, `SELECT `+bankDetailColumns+` FROM bank_details ORDER BY employee_id, id`)
}

func (s *Store) GetBankDetail(ctx context.Context, id int64) (BankDetail, error) {
	return queryOne(ctx, s.DB, scanBankDetail, `SELECT `+bankDetailColumns+` FROM bank_details WHERE id = $1`, id)
}

func (s *Store) CreateBankDetail(ctx context.Context, b BankDetail, accountEnc []byte, last4 string) (BankDetail, error) {
	out, err := scanBankDetail(s.DB.QueryRow(ctx, `
		INSERT INTO bank_details (employee_id, bank_name, account_number_enc, account_last4, ifsc_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bankDetailColumns, b.EmployeeID, b.BankName, accountEnc, last4, b.IFSCCode))
	return out, mapWriteError(err)
}

func (s *Store) UpdateBankDetail(ctx context.Context, id int64, b BankDetail, accountEnc []byte, last4 string) (BankDetail, error) {
	out, err := scanBankDetail(s.DB.QueryRow(ctx, `
		UPDATE bank_details
		SET employee_id = $2, bank_name = $3, account_number_enc = $4, account_last4 = $5, ifsc_code = $6
		WHERE id = $1
		RETURNING `+bankDetailColumns, id, b.EmployeeID, b.BankName, accountEnc, last4, b.IFSCCode))
	return out, mapWriteError(err)
}

func (s *Store) DeleteBankDetail(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "bank_details", id)
}

// Work locations

func scanWorkLocation(row pgx.Row) (WorkLocation, error) {
	var w WorkLocation
	err := row.Scan(&w.ID, &w.Name, &w.Address, &w.CreatedAt)
	return w, err
}

func (s *Store) ListWorkLocations(ctx context.Context) ([]WorkLocation, error) {
	return queryList(ctx, s.DB, scanWorkLocation, `SELECT id, name, address, created_at FROM work_locations ORDER BY name`)
}

func (s *Store) GetWorkLocation(ctx context.Context, id int64) (WorkLocation, error) {
	return queryOne(ctx, s.DB, scanWorkLocation, `SELECT id, name, address, created_at FROM work_locations WHERE id = $1`, id)
}

func (s *Store) CreateWorkLocation(ctx context.Context, w WorkLocation) (WorkLocation, error) {
	out, err := scanWorkLocation(s.DB.QueryRow(ctx, `
		INSERT INTO work_locations (name, address) VALUES ($1, $2) RETURNING id, name, address, created_at
	`, w.Name, w.Address))
	return out, mapWriteError(err)
}

func (s *Store) UpdateWorkLocation(ctx context.Context, id int64, w WorkLocation) (WorkLocation, error) {
	out, err := scanWorkLocation(s.DB.QueryRow(ctx, `
		UPDATE work_locations SET name = $2, address = $3 WHERE id = $1 RETURNING id, name, address, created_at
	`, id, w.Name, w.Address))
	return out, mapWriteError(err)
}

func (s *Store) DeleteWorkLocation(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "work_locations", id)
}

// Payroll settings

const payrollSettingColumns = `id, salary_day, overtime_rate, tax_enabled, created_at`

func scanPayrollSetting(row pgx.Row) (PayrollSetting, error) {
	var p PayrollSetting
	err := row.Scan(&p.ID, &p.SalaryDay, &p.OvertimeRate, &p.TaxEnabled, &p.CreatedAt)
	return p, err
}

func (s *Store) ListPayrollSettings(ctx context.Context) ([]PayrollSetting, error) {
	return queryList(ctx, s.DB, scanPayrollSetting, `SELECT `+payrollSettingColumns+` FROM payroll_settings ORDER BY id`)
}

func (s *Store) GetPayrollSetting(ctx context.Context, id int64) (PayrollSetting, error) {
	return queryOne(ctx, s.DB, scanPayrollSetting, `SELECT `+payrollSettingColumns+` FROM payroll_settings WHERE id = $1`, id)
}

func (s *Store) CreatePayrollSetting(ctx context.Context, p PayrollSetting) (PayrollSetting, error) {
	out, err := scanPayrollSetting(s.DB.QueryRow(ctx, `
		INSERT INTO payroll_settings (salary_day, overtime_rate, tax_enabled) VALUES ($1, $2, $3)
		RETURNING `+payrollSettingColumns, p.SalaryDay, p.OvertimeRate, p.TaxEnabled))
	return out, mapWriteError(err)
}

func (s *Store) UpdatePayrollSetting(ctx context.Context, id int64, p PayrollSetting) (PayrollSetting, error) {
	out, err := scanPayrollSetting(s.DB.QueryRow(ctx, `
		UPDATE payroll_settings SET salary_day = $2, overtime_rate = $3, tax_enabled = $4 WHERE id = $1
		RETURNING `+payrollSettingColumns, id, p.SalaryDay, p.OvertimeRate, p.TaxEnabled))
	return out, mapWriteError(err)
}

func (s *Store) DeletePayrollSetting(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "payroll_settings", id)
}
