// middleware/throttle.go

package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/throttle"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// Throttle applies one or more throttle scopes to an endpoint. A request is
// allowed only if every applicable scope allows it; scopes the principal
// does not belong to never count.
func Throttle(throttles ...throttle.Throttle) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := util.PrincipalFromContext(c)

		for _, t := range throttles {
			if t.AllowRequest(c.Request.Context(), principal, c.ClientIP()) {
				continue
			}

			id := c.ClientIP()
			if principal != nil {
				id = principal.ID
			}
			logger.Warn("Rate limit exceeded",
				zap.String("scope", t.Scope()),
				zap.String("principal", id),
				zap.Int("limit", t.Limit()))
			c.Header("X-RateLimit-Limit", strconv.Itoa(t.Limit()))
			c.Header("X-RateLimit-Scope", t.Scope())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
