package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
)

type logUsageRequest struct {
	ToolID           snowflake.ID `json:"tool_id"`
	Month            time.Time    `json:"month"`
	UsageAmountCents int64        `json:"usage_amount_cents"`
	Currency         string       `json:"currency"`
	BudgetLimitCents *int64       `json:"budget_limit_cents"`
}

// LogUsage upserts by (tool, month); re-logging a month replaces the
// row in place.
func (s *Server) LogUsage(c *gin.Context) {
	var req logUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.usageSvc.Log(c.Request.Context(), usagedomain.LogUsageRequest{
		ToolID:           req.ToolID,
		Month:            req.Month,
		UsageAmountCents: req.UsageAmountCents,
		Currency:         strings.TrimSpace(req.Currency),
		BudgetLimitCents: req.BudgetLimitCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUsage(c *gin.Context) {
	resp, err := s.usageSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
