package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"manager role", RoleManager, true},
		{"technician role", RoleTechnician, true},
		{"viewer role", RoleViewer, true},
		{"retired operator role", "operator", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	manager := &User{Role: RoleManager}
	technician := &User{Role: RoleTechnician}
	viewer := &User{Role: RoleViewer}
	unknown := &User{Role: "guest"}

	tests := []struct {
		name     string
		user     *User
		action   Permission
		expected bool
	}{
		{"admin can delete user", admin, PermDeleteUser, true},
		{"admin can delete maintenance", admin, PermDeleteMaintenance, true},

		{"manager cannot manage users", manager, PermManageUsers, false},
		{"manager can delete maintenance", manager, PermDeleteMaintenance, true},
		{"manager can manage controllers", manager, PermManageControllers, true},

		{"technician can log maintenance", technician, PermCreateMaintenance, true},
		{"technician can edit maintenance notes", technician, PermUpdateMaintenance, true},
		{"technician cannot delete maintenance", technician, PermDeleteMaintenance, false},
		{"technician cannot manage controllers", technician, PermManageControllers, false},
		{"technician can push telemetry", technician, PermIngestTelemetry, true},

		{"viewer can view controllers", viewer, PermViewControllers, true},
		{"viewer can export reports", viewer, PermExportReports, true},
		{"viewer cannot log maintenance", viewer, PermCreateMaintenance, false},
		{"viewer cannot push telemetry", viewer, PermIngestTelemetry, false},

		{"unknown role has nothing", unknown, PermViewControllers, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
