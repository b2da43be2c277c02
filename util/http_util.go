// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

// PrincipalKey is where the auth middleware stores the request principal.
const PrincipalKey = "principal"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// PrincipalFromContext returns the authenticated user, or nil for anonymous
// requests.
func PrincipalFromContext(c *gin.Context) *model.User {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	principal, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return principal
}
