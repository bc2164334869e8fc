package auth

const (
	RoleAdmin          = "Admin"
	RolePayrollOfficer = "PayrollOfficer"
	RoleEmployee       = "Employee"
)

const (
	PermEmployeesRead     = "employees.read"
	PermEmployeesWrite    = "employees.write"
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermLeaveRead         = "leave.read"
	PermLeaveApply        = "leave.apply"
	PermLeaveApprove      = "leave.approve"
	PermLeaveAdmin        = "leave.admin"
	PermSalaryRead        = "salary.read"
	PermSalaryWrite       = "salary.write"
	PermSalaryRun         = "salary.run"
	PermDashboardRead     = "dashboard.read"
	PermLookupsRead       = "lookups.read"
	PermLookupsWrite      = "lookups.write"
	PermCredentialsManage = "credentials.manage"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermLeaveRead,
	PermLeaveApply,
	PermLeaveApprove,
	PermLeaveAdmin,
	PermSalaryRead,
	PermSalaryWrite,
	PermSalaryRun,
	PermDashboardRead,
	PermLookupsRead,
	PermLookupsWrite,
	PermCredentialsManage,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermAttendanceRead,
		PermLeaveRead,
		PermLeaveApply,
		PermSalaryRead,
		PermLookupsRead,
	},
	RolePayrollOfficer: {
		PermEmployeesRead,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermLeaveRead,
		PermLeaveApply,
		PermLeaveApprove,
		PermSalaryRead,
		PermSalaryWrite,
		PermSalaryRun,
		PermDashboardRead,
		PermLookupsRead,
	},
	RoleAdmin: DefaultPermissions,
}

// IsSelfScoped reports whether the role may only act on its own employee record.
func IsSelfScoped(roleName string) bool {
	return roleName == RoleEmployee
}
