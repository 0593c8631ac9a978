package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type LogIncidentRequest struct {
	ToolID               snowflake.ID `json:"tool_id"`
	Type                 Type         `json:"type"`
	Severity             Severity     `json:"severity"`
	Description          string       `json:"description"`
	RootCause            string       `json:"root_cause"`
	FinancialImpactCents *int64       `json:"financial_impact_cents"`
	ResolutionSteps      string       `json:"resolution_steps"`
	PreventiveMeasures   string       `json:"preventive_measures"`
	Status               Status       `json:"status"`
	OccurredAt           *time.Time   `json:"occurred_at"`
}

type ListIncidentFilter struct {
	ToolID   snowflake.ID `form:"tool_id"`
	Status   Status       `form:"status"`
	Severity Severity     `form:"severity"`
	// Unresolved selects open and investigating rows in one query.
	Unresolved bool `form:"unresolved"`
}

type Service interface {
	Log(context.Context, LogIncidentRequest) (IncidentLog, error)
	List(context.Context, ListIncidentFilter) ([]IncidentLog, error)
	GetByID(ctx context.Context, id snowflake.ID) (IncidentLog, error)
	Resolve(ctx context.Context, id snowflake.ID, resolvedBy string) (IncidentLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, incident *IncidentLog) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*IncidentLog, error)
	List(ctx context.Context, db *gorm.DB, filter ListIncidentFilter) ([]IncidentLog, error)
	MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, resolvedBy string, resolvedAt time.Time) error
}

var (
	ErrNotFound        = errors.New("incident_not_found")
	ErrInvalidTool     = errors.New("invalid_tool")
	ErrInvalidType     = errors.New("invalid_incident_type")
	ErrInvalidSeverity = errors.New("invalid_incident_severity")
	ErrInvalidStatus   = errors.New("invalid_incident_status")
	ErrAlreadyResolved = errors.New("incident_already_resolved")
)
