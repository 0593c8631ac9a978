// Package domain contains persistence models for subscription billing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type PaymentFrequency string

const (
	FrequencyMonthly   PaymentFrequency = "monthly"
	FrequencyQuarterly PaymentFrequency = "quarterly"
	FrequencyAnnual    PaymentFrequency = "annual"
)

// Subscription stores a tool's recurring billing arrangement.
// MonthlyCostCents is the operator-entered monthly-equivalent figure;
// quarterly and annual frequencies are never pro-rated anywhere.
type Subscription struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	ToolID           snowflake.ID     `gorm:"not null;index" json:"tool_id"`
	PlanName         string           `json:"plan_name,omitempty"`
	MonthlyCostCents int64            `gorm:"not null;default:0" json:"monthly_cost_cents"`
	Currency         string           `gorm:"not null;default:USD" json:"currency"`
	PaymentFrequency PaymentFrequency `gorm:"not null;default:monthly" json:"payment_frequency"`
	RenewalDate      *datatypes.Date  `json:"renewal_date,omitempty"`
	BillingOwner     string           `json:"billing_owner,omitempty"`
	CreatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "billing_subscriptions" }

func (f PaymentFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return true
	}
	return false
}
