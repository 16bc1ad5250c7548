package auth

const (
	RoleHR          = "HR"
	RoleManager     = "Manager"
	RoleEmployee    = "Employee"
	RoleSystemAdmin = "SystemAdmin"
)

const (
	PermEmployeesRead    = "core.employees.read"
	PermEmployeesMigrate = "core.employees.migrate"
	PermMetricsRead      = "system.metrics.read"
	PermAuditRead        = "system.audit.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesMigrate,
	PermMetricsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {},
	RoleManager: {
		PermEmployeesRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesMigrate,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermEmployeesRead,
		PermMetricsRead,
		PermAuditRead,
	},
}

// RoleHasPermission answers from the built-in role table, without a database.
func RoleHasPermission(roleName, permission string) bool {
	for _, perm := range RolePermissions[roleName] {
		if perm == permission {
			return true
		}
	}
	return false
}
