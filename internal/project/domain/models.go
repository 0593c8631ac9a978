// Package domain contains persistence models for projects and their
// tool mappings.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Stage string

const (
	StagePlanning    Stage = "planning"
	StageActive      Stage = "active"
	StageMaintenance Stage = "maintenance"
	StageArchived    Stage = "archived"
)

type Project struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Owner       string       `json:"owner,omitempty"`
	Stage       Stage        `gorm:"not null;default:planning" json:"stage"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

// ToolMapping joins a tool to a project, optionally with the role the
// tool plays there.
type ToolMapping struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ToolID    snowflake.ID `gorm:"not null;uniqueIndex:ux_tool_project" json:"tool_id"`
	ProjectID snowflake.ID `gorm:"not null;uniqueIndex:ux_tool_project" json:"project_id"`
	Role      string       `json:"role,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ToolMapping) TableName() string { return "tool_project_mapping" }

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Stage       Stage  `json:"stage"`
	Description string `json:"description"`
}

type MapToolRequest struct {
	ToolID snowflake.ID `json:"tool_id"`
	Role   string       `json:"role"`
}

type Service interface {
	Create(context.Context, CreateProjectRequest) (Project, error)
	List(context.Context) ([]Project, error)
	GetByID(ctx context.Context, id snowflake.ID) (Project, error)
	MapTool(ctx context.Context, projectID snowflake.ID, req MapToolRequest) (ToolMapping, error)
	ListMappingsByTool(ctx context.Context, toolID snowflake.ID) ([]ToolMapping, error)
}

var (
	ErrNotFound      = errors.New("project_not_found")
	ErrInvalidName   = errors.New("invalid_project_name")
	ErrInvalidStage  = errors.New("invalid_project_stage")
	ErrInvalidTool   = errors.New("invalid_tool")
	ErrAlreadyMapped = errors.New("tool_already_mapped")
)

func (s Stage) Valid() bool {
	switch s {
	case StagePlanning, StageActive, StageMaintenance, StageArchived:
		return true
	}
	return false
}
