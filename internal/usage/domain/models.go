// Package domain contains persistence models for monthly usage spend.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// UsageLog stores one tool's spend for one calendar month. Month is
// always the first of the month; (tool_id, month) is unique and
// re-logging a month replaces the row.
type UsageLog struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	ToolID           snowflake.ID   `gorm:"not null;uniqueIndex:ux_usage_logs_tool_month" json:"tool_id"`
	Month            datatypes.Date `gorm:"not null;uniqueIndex:ux_usage_logs_tool_month" json:"month"`
	UsageAmountCents int64          `gorm:"not null;default:0" json:"usage_amount_cents"`
	Currency         string         `gorm:"not null;default:USD" json:"currency"`
	BudgetLimitCents *int64         `json:"budget_limit_cents,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (UsageLog) TableName() string { return "usage_logs" }

// MonthStart normalizes t to the first of its calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
