package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck/internal/identity"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
)

type logIncidentRequest struct {
	ToolID               snowflake.ID `json:"tool_id"`
	Type                 string       `json:"type"`
	Severity             string       `json:"severity"`
	Description          string       `json:"description"`
	RootCause            string       `json:"root_cause"`
	FinancialImpactCents *int64       `json:"financial_impact_cents"`
	ResolutionSteps      string       `json:"resolution_steps"`
	PreventiveMeasures   string       `json:"preventive_measures"`
	Status               string       `json:"status"`
	OccurredAt           *time.Time   `json:"occurred_at"`
}

func (s *Server) LogIncident(c *gin.Context) {
	var req logIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.incidentSvc.Log(c.Request.Context(), incidentdomain.LogIncidentRequest{
		ToolID:               req.ToolID,
		Type:                 incidentdomain.Type(strings.TrimSpace(req.Type)),
		Severity:             incidentdomain.Severity(strings.TrimSpace(req.Severity)),
		Description:          strings.TrimSpace(req.Description),
		RootCause:            strings.TrimSpace(req.RootCause),
		FinancialImpactCents: req.FinancialImpactCents,
		ResolutionSteps:      strings.TrimSpace(req.ResolutionSteps),
		PreventiveMeasures:   strings.TrimSpace(req.PreventiveMeasures),
		Status:               incidentdomain.Status(strings.TrimSpace(req.Status)),
		OccurredAt:           req.OccurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListIncidents(c *gin.Context) {
	var query struct {
		Status     string `form:"status"`
		Severity   string `form:"severity"`
		Unresolved bool   `form:"unresolved"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.incidentSvc.List(c.Request.Context(), incidentdomain.ListIncidentFilter{
		Status:     incidentdomain.Status(strings.TrimSpace(query.Status)),
		Severity:   incidentdomain.Severity(strings.TrimSpace(query.Severity)),
		Unresolved: query.Unresolved,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResolveIncident(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resolvedBy := "system"
	if principal, ok := identity.PrincipalFromContext(c.Request.Context()); ok && principal.Email != "" {
		resolvedBy = principal.Email
	}

	resp, err := s.incidentSvc.Resolve(c.Request.Context(), id, resolvedBy)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
