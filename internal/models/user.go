package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

// Permission names an action guarded by RequirePermission.
type Permission string

const (
	PermViewControllers   Permission = "view_controllers"
	PermManageControllers Permission = "manage_controllers"
	PermViewMaintenance   Permission = "view_maintenance"
	PermCreateMaintenance Permission = "create_maintenance"
	PermUpdateMaintenance Permission = "update_maintenance"
	PermDeleteMaintenance Permission = "delete_maintenance"
	PermViewTelemetry     Permission = "view_telemetry"
	PermIngestTelemetry   Permission = "ingest_telemetry"
	PermExportReports     Permission = "export_reports"
	PermManageUsers       Permission = "manage_users"
	PermDeleteUser        Permission = "delete_user"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleTechnician, RoleViewer:
		return true
	default:
		return false
	}
}

// Can reports whether the role grants the given permission.
func (r Role) Can(p Permission) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleManager:
		return p != PermDeleteUser && p != PermManageUsers
	case RoleTechnician:
		switch p {
		case PermViewControllers, PermViewMaintenance, PermViewTelemetry,
			PermCreateMaintenance, PermUpdateMaintenance, PermIngestTelemetry,
			PermExportReports:
			return true
		}
		return false
	case RoleViewer:
		switch p {
		case PermViewControllers, PermViewMaintenance, PermViewTelemetry, PermExportReports:
			return true
		}
		return false
	default:
		return false
	}
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(p Permission) bool {
	return u.Role.Can(p)
}
