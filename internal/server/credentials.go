package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
)

// createCredentialRequest carries a location pointer only; secret
// material never reaches this service.
type createCredentialRequest struct {
	ToolID             snowflake.ID `json:"tool_id"`
	LoginType          string       `json:"login_type"`
	CredentialLocation string       `json:"credential_location"`
	LastRotated        *time.Time   `json:"last_rotated"`
	RotationPolicy     string       `json:"rotation_policy"`
	Owner              string       `json:"owner"`
	ComplianceNotes    string       `json:"compliance_notes"`
}

type markRotatedRequest struct {
	RotatedAt *time.Time `json:"rotated_at"`
}

func (s *Server) CreateCredential(c *gin.Context) {
	var req createCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.credentialSvc.Create(c.Request.Context(), credentialdomain.CreateCredentialRequest{
		ToolID:             req.ToolID,
		LoginType:          strings.TrimSpace(req.LoginType),
		CredentialLocation: strings.TrimSpace(req.CredentialLocation),
		LastRotated:        req.LastRotated,
		RotationPolicy:     strings.TrimSpace(req.RotationPolicy),
		Owner:              strings.TrimSpace(req.Owner),
		ComplianceNotes:    strings.TrimSpace(req.ComplianceNotes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCredentials(c *gin.Context) {
	resp, err := s.credentialSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkCredentialRotated(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req markRotatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	rotatedAt := time.Now().UTC()
	if req.RotatedAt != nil {
		rotatedAt = req.RotatedAt.UTC()
	}

	resp, err := s.credentialSvc.MarkRotated(c.Request.Context(), id, rotatedAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
