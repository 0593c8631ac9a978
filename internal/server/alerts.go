package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAlerts evaluates every rule against the current data and returns
// the list most-severe-first. Nothing is persisted between calls.
func (s *Server) ListAlerts(c *gin.Context) {
	alerts, err := s.alertSvc.Evaluate(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	for _, a := range alerts {
		s.metrics.RecordAlert(string(a.Type))
	}

	c.JSON(http.StatusOK, gin.H{"data": alerts})
}
