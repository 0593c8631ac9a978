// Package domain contains persistence models for tracked tools.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type BillingType string

const (
	BillingTypeSubscription BillingType = "subscription"
	BillingTypeWallet       BillingType = "wallet"
	BillingTypeUsage        BillingType = "usage"
	BillingTypeFree         BillingType = "free"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusDeprecated Status = "deprecated"
)

// Tool is the root entity every billing, credential and incident record
// hangs off. BillingType decides which child billing entity applies.
type Tool struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Category    string       `json:"category,omitempty"`
	BillingType BillingType  `gorm:"not null" json:"billing_type"`
	Vendor      string       `json:"vendor,omitempty"`
	Owner       string       `json:"owner,omitempty"`
	Environment string       `json:"environment,omitempty"`
	Critical    bool         `gorm:"not null;default:false" json:"critical"`
	RiskLevel   RiskLevel    `gorm:"not null;default:low" json:"risk_level"`
	Status      Status       `gorm:"not null;default:active" json:"status"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tool) TableName() string { return "tools" }

func (b BillingType) Valid() bool {
	switch b {
	case BillingTypeSubscription, BillingTypeWallet, BillingTypeUsage, BillingTypeFree:
		return true
	}
	return false
}

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeprecated:
		return true
	}
	return false
}
