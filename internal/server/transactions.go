package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/leadfuel/internal/authorization"
	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
	"github.com/smallbiznis/leadfuel/pkg/db/pagination"
)

// ListTransactions returns the caller's recent activity, newest first.
func (s *Server) ListTransactions(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid", "page_size must be an integer"))
		return
	}

	user, err := s.currentUser(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.authzSvc.AuthorizeUserAccess(ctx, user, user.ID, authorization.ObjectTransactions); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.transactionSvc.ListRecent(ctx, transactiondomain.ListRecentRequest{
		UserID:    user.ID,
		PageSize:  page.PageSize,
		PageToken: page.PageToken,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Transactions,
		"page_info": resp.PageInfo,
	})
}
