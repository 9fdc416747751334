package user

type Permission string

const (
	// Punches
	PermissionPunchOwn      Permission = "punch.own"
	PermissionPunchOnBehalf Permission = "punch.on_behalf"
	PermissionPunchViewAll  Permission = "punch.view_all"

	// Incidents
	PermissionIncidentCreate  Permission = "incident.create"
	PermissionIncidentProcess Permission = "incident.process"

	// Schedules
	PermissionScheduleManage Permission = "schedule.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermissionPunchOwn,
		PermissionIncidentCreate,
	},
	RoleRegistrar: {
		PermissionPunchOwn,
		PermissionPunchOnBehalf,
		PermissionPunchViewAll,
		PermissionIncidentCreate,
	},
	RoleSupervisor: {
		PermissionPunchOwn,
		PermissionPunchOnBehalf,
		PermissionPunchViewAll,
		PermissionIncidentCreate,
		PermissionIncidentProcess,
	},
	RoleAdmin: {
		// Admin has all permissions
		PermissionPunchOwn,
		PermissionPunchOnBehalf,
		PermissionPunchViewAll,
		PermissionIncidentCreate,
		PermissionIncidentProcess,
		PermissionScheduleManage,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
