package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck/internal/identity"
	userroledomain "github.com/opsdeck/opsdeck/internal/userrole/domain"
)

type assignRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Me returns the proxy-authenticated principal and their stored role.
func (s *Server) Me(c *gin.Context) {
	principal, _ := identity.PrincipalFromContext(c.Request.Context())

	role, err := s.userRoleSvc.RoleFor(c.Request.Context(), principal.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user_id": principal.UserID,
		"email":   principal.Email,
		"role":    role,
	}})
}

func (s *Server) ListRoles(c *gin.Context) {
	resp, err := s.userRoleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AssignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userRoleSvc.Assign(c.Request.Context(),
		strings.TrimSpace(req.UserID),
		userroledomain.Role(strings.TrimSpace(req.Role)),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
