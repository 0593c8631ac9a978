package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck/internal/identity"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

type createWalletRequest struct {
	ToolID              snowflake.ID `json:"tool_id"`
	CurrentBalanceCents int64        `json:"current_balance_cents"`
	Currency            string       `json:"currency"`
	LowThresholdCents   int64        `json:"low_threshold_cents"`
}

type addTopupRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Notes       string `json:"notes"`
}

type updateThresholdRequest struct {
	LowThresholdCents *int64 `json:"low_threshold_cents"`
}

func (s *Server) CreateWallet(c *gin.Context) {
	var req createWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.walletSvc.Create(c.Request.Context(), walletdomain.CreateWalletRequest{
		ToolID:              req.ToolID,
		CurrentBalanceCents: req.CurrentBalanceCents,
		Currency:            strings.TrimSpace(req.Currency),
		LowThresholdCents:   req.LowThresholdCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWallets(c *gin.Context) {
	resp, err := s.walletSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetWalletDetail(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.walletSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddTopup(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addTopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// The acting principal is recorded on the ledger row for display.
	toppedUpBy := ""
	if principal, ok := identity.PrincipalFromContext(c.Request.Context()); ok {
		toppedUpBy = principal.Email
	}

	resp, err := s.walletSvc.AddTopup(c.Request.Context(), id, walletdomain.AddTopupRequest{
		AmountCents: req.AmountCents,
		Currency:    strings.TrimSpace(req.Currency),
		ToppedUpBy:  toppedUpBy,
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.RecordTopup()

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateWalletThreshold(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LowThresholdCents == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.walletSvc.UpdateThreshold(c.Request.Context(), id, *req.LowThresholdCents)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
