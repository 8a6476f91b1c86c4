// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/api/audit"
	"github.com/taskhive/taskhive/api/util"
	helper_util "github.com/taskhive/taskhive/api/util/helper"
)

// AuditController exposes the decision trail to operators.
type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit/logs", ac.QueryLogs)
}

// QueryLogs returns decision records in a time range, optionally filtered by
// user and resource. Defaults to the last 24 hours.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if v := c.Query("from"); v != "" {
		t, err := helper_util.ParseTime(v)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp", err)
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := helper_util.ParseTime(v)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp", err)
			return
		}
		to = t
	}

	logs, err := ac.auditService.QueryLogs(c.Request.Context(), from, to, c.Query("userId"), c.Query("resourceId"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
