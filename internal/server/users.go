package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
)

// Me returns the caller's account, provisioning it on first sight.
func (s *Server) Me(c *gin.Context) {
	user, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) currentUser(c *gin.Context) (userdomain.User, error) {
	identity, ok := identityFromContext(c)
	if !ok {
		return userdomain.User{}, ErrUnauthorized
	}
	return s.userSvc.GetOrProvision(c.Request.Context(), identity)
}
