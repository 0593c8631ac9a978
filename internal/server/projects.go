package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	projectdomain "github.com/opsdeck/opsdeck/internal/project/domain"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Stage       string `json:"stage"`
	Description string `json:"description"`
}

type mapToolRequest struct {
	ToolID snowflake.ID `json:"tool_id"`
	Role   string       `json:"role"`
}

func (s *Server) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.Create(c.Request.Context(), projectdomain.CreateProjectRequest{
		Name:        strings.TrimSpace(req.Name),
		Owner:       strings.TrimSpace(req.Owner),
		Stage:       projectdomain.Stage(strings.TrimSpace(req.Stage)),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProjects(c *gin.Context) {
	resp, err := s.projectSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MapProjectTool(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req mapToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.MapTool(c.Request.Context(), id, projectdomain.MapToolRequest{
		ToolID: req.ToolID,
		Role:   strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
