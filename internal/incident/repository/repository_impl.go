package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsdeck/opsdeck/internal/incident/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, incident *domain.IncidentLog) error {
	return db.WithContext(ctx).Create(incident).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.IncidentLog, error) {
	var incident domain.IncidentLog
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM incident_logs WHERE id = ?`, id,
	).Scan(&incident).Error
	if err != nil {
		return nil, err
	}
	if incident.ID == 0 {
		return nil, nil
	}
	return &incident, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListIncidentFilter) ([]domain.IncidentLog, error) {
	var incidents []domain.IncidentLog
	stmt := db.WithContext(ctx).Model(&domain.IncidentLog{})
	if filter.ToolID != 0 {
		stmt = stmt.Where("tool_id = ?", filter.ToolID)
	}
	if filter.Unresolved {
		stmt = stmt.Where("status IN ?", []domain.Status{domain.StatusOpen, domain.StatusInvestigating})
	} else if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		stmt = stmt.Where("severity = ?", filter.Severity)
	}
	err := stmt.Order("occurred_at desc, id desc").Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *repo) MarkResolved(ctx context.Context, db *gorm.DB, id snowflake.ID, resolvedBy string, resolvedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE incident_logs
		 SET status = ?, resolved_by = ?, resolved_at = ?
		 WHERE id = ? AND status <> ?`,
		domain.StatusResolved,
		resolvedBy,
		resolvedAt,
		id,
		domain.StatusResolved,
	).Error
}
