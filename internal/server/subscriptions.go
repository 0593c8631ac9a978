package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
)

type createSubscriptionRequest struct {
	ToolID           snowflake.ID `json:"tool_id"`
	PlanName         string       `json:"plan_name"`
	MonthlyCostCents int64        `json:"monthly_cost_cents"`
	Currency         string       `json:"currency"`
	PaymentFrequency string       `json:"payment_frequency"`
	RenewalDate      *time.Time   `json:"renewal_date"`
	BillingOwner     string       `json:"billing_owner"`
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.Create(c.Request.Context(), subscriptiondomain.CreateSubscriptionRequest{
		ToolID:           req.ToolID,
		PlanName:         strings.TrimSpace(req.PlanName),
		MonthlyCostCents: req.MonthlyCostCents,
		Currency:         strings.TrimSpace(req.Currency),
		PaymentFrequency: subscriptiondomain.PaymentFrequency(strings.TrimSpace(req.PaymentFrequency)),
		RenewalDate:      req.RenewalDate,
		BillingOwner:     strings.TrimSpace(req.BillingOwner),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	resp, err := s.subscriptionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
