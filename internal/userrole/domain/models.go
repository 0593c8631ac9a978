// Package domain contains the user-role rows used for display and
// store-level policy. The alert and metric engines never read these.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleFinanceAdmin Role = "finance_admin"
	RoleDevops       Role = "devops"
	RoleViewer       Role = "viewer"
)

type UserRole struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    string       `gorm:"not null;uniqueIndex" json:"user_id"`
	Role      Role         `gorm:"not null;default:viewer" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (UserRole) TableName() string { return "user_roles" }

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleFinanceAdmin, RoleDevops, RoleViewer:
		return true
	}
	return false
}
