// Package domain contains persistence models for incident logs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Type string

const (
	TypeOutage    Type = "outage"
	TypeCostSpike Type = "cost_spike"
	TypeSecurity  Type = "security"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

// IncidentLog records an operational event against a tool. The
// open/investigating -> resolved transition is one-way; resolution
// stamps resolved_by and resolved_at.
type IncidentLog struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	ToolID               snowflake.ID `gorm:"not null;index" json:"tool_id"`
	Type                 Type         `gorm:"not null" json:"type"`
	Severity             Severity     `gorm:"not null" json:"severity"`
	Description          string       `json:"description,omitempty"`
	RootCause            string       `json:"root_cause,omitempty"`
	FinancialImpactCents *int64       `json:"financial_impact_cents,omitempty"`
	ResolutionSteps      string       `json:"resolution_steps,omitempty"`
	PreventiveMeasures   string       `json:"preventive_measures,omitempty"`
	Status               Status       `gorm:"not null;default:open;index" json:"status"`
	ResolvedBy           string       `json:"resolved_by,omitempty"`
	OccurredAt           time.Time    `gorm:"not null" json:"occurred_at"`
	ResolvedAt           *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (IncidentLog) TableName() string { return "incident_logs" }

func (t Type) Valid() bool {
	switch t {
	case TypeOutage, TypeCostSpike, TypeSecurity:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved:
		return true
	}
	return false
}
