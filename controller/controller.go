// Package controller exposes the HTTP API. Each controller composes its
// routes with the throttle and request-level policy middleware; object-level
// policy checks run in the handlers once the resource is loaded.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
)

// checkObject evaluates object-level policies against a loaded resource,
// writing the denial response and audit entry itself. Returns true when the
// request may proceed.
func checkObject(c *gin.Context, auditSvc audit.Service, principal *model.User,
	resource any, policies ...policy.Policy) bool {
	for _, p := range policies {
		d := p.CheckObject(c.Request.Method, principal, resource)
		if d.Allowed {
			continue
		}

		id := ""
		if principal != nil {
			id = principal.ID
		}
		middleware.RecordObjectDenial(auditSvc, id,
			c.Request.Method+" "+c.Request.URL.Path, p.Name(), d.Reason)

		status := http.StatusForbidden
		if principal == nil {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": d.Reason})
		return false
	}
	return true
}
