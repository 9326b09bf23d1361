package server

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/leadfuel/internal/observability/context"
	"github.com/smallbiznis/leadfuel/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/leadfuel/internal/observability/metrics"
	userdomain "github.com/smallbiznis/leadfuel/internal/user/domain"
	"go.uber.org/zap"
)

// Identity headers set by the upstream identity provider proxy.
const (
	HeaderUserID    = "X-Auth-User-Id"
	HeaderEmail     = "X-Auth-Email"
	HeaderFirstName = "X-Auth-First-Name"
	HeaderLastName  = "X-Auth-Last-Name"
)

const (
	contextIdentityKey = "identity"

	rateLimitReasonUserRate = "user-rate"
)

// IdentityRequired rejects requests that arrive without an authenticated
// identity and stores the identity on the request.
func (s *Server) IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := userdomain.Identity{
			ID:        strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Email:     strings.TrimSpace(c.GetHeader(HeaderEmail)),
			FirstName: strings.TrimSpace(c.GetHeader(HeaderFirstName)),
			LastName:  strings.TrimSpace(c.GetHeader(HeaderLastName)),
		}
		if identity.ID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextIdentityKey, identity)
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), identity.ID))
		c.Next()
	}
}

func identityFromContext(c *gin.Context) (userdomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return userdomain.Identity{}, false
	}
	identity, ok := value.(userdomain.Identity)
	if !ok || identity.ID == "" {
		return userdomain.Identity{}, false
	}
	return identity, true
}

// DashboardRateLimit throttles each identity with its own token bucket.
func (s *Server) DashboardRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.dashboardLimit.Enabled() {
			c.Next()
			return
		}

		identity, ok := identityFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		endpoint := normalizeRateLimitEndpoint(c)
		ctx := c.Request.Context()

		res, err := s.dashboardLimit.AllowUser(ctx, identity.ID)
		if err != nil {
			logger.FromContext(ctx).Warn("dashboard rate limit check failed", zap.Error(err))
		}
		if res != nil && !res.Allowed {
			denyDashboardRateLimit(c, endpoint, rateLimitReasonUserRate, res.RetryAfter.Seconds(), s.obsMetrics)
			return
		}

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Next()
	}
}

func denyDashboardRateLimit(c *gin.Context, endpoint, reason string, retryAfterSeconds float64, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("dashboard rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, reason, metrics)

	retryAfter := int(retryAfterSeconds + 0.999)
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
