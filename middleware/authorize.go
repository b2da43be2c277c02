// middleware/authorize.go

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// Authorize applies request-level policies to an endpoint. Throttling runs
// before this in the chain; object-level checks happen in the controllers
// once the resource is loaded. Denials are recorded to the audit trail
// without blocking the response.
func Authorize(auditSvc audit.Service, policies ...policy.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := util.PrincipalFromContext(c)

		for _, p := range policies {
			d := p.Check(c.Request.Method, principal)
			if d.Allowed {
				continue
			}

			id := ""
			if principal != nil {
				id = principal.ID
			}
			logger.Warn("Request denied by policy",
				zap.String("policy", p.Name()),
				zap.String("principal", id),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))

			recordDenial(auditSvc, id, c.Request.Method+" "+c.Request.URL.Path, p.Name(), d.Reason)

			status := http.StatusForbidden
			if principal == nil {
				status = http.StatusUnauthorized
			}
			c.JSON(status, gin.H{"error": d.Reason})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RecordObjectDenial audits an object-level deny from a controller.
func RecordObjectDenial(auditSvc audit.Service, principalID, action, policyName, reason string) {
	recordDenial(auditSvc, principalID, action, policyName, reason)
}

func recordDenial(auditSvc audit.Service, principalID, action, policyName, reason string) {
	if auditSvc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entry := audit.Entry{
			UserID:        principalID,
			Action:        action,
			Policy:        policyName,
			Reason:        reason,
			AccessGranted: false,
		}
		if err := auditSvc.Record(ctx, entry); err != nil {
			logger.Warn("Failed to record audit entry", zap.Error(err))
		}
	}()
}
