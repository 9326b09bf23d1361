package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/leadfuel/internal/authorization"
)

func (s *Server) GetUsageStats(c *gin.Context) {
	user, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.usageStatsSvc.Aggregate(c.Request.Context(), user.ID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetUserUsageStats serves another user's statistics to an actor allowed to
// see them.
func (s *Server) GetUserUsageStats(c *gin.Context) {
	targetID := strings.TrimSpace(c.Param("id"))
	if targetID == "" {
		AbortWithError(c, newValidationError("id", "required", "id is required"))
		return
	}

	actor, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.authzSvc.AuthorizeUserAccess(ctx, actor, targetID, authorization.ObjectUsageStats); err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.usageStatsSvc.Aggregate(ctx, targetID, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
