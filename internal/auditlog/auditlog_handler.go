package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"fieldstock/internal/middleware"
	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"
	"fieldstock/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResourceLogReader returns the audit history of one resource, oldest first.
type ResourceLogReader interface {
	GetResourceLog(ctx context.Context, id int64, resourceType string) ([]models.AuditLog, error)
}

type AuditLogHandler struct {
	reader ResourceLogReader
	logger *zap.Logger
}

func NewHandler(reader ResourceLogReader, logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{reader: reader, logger: logger}
}

func (h *AuditLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs/:type/:id", security.Authorize(roles.Supervisor), h.GetResourceLog)
}

func (h *AuditLogHandler) GetResourceLog(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Resource ID is required"})
		return
	}

	logs, err := h.reader.GetResourceLog(c.Request.Context(), id, c.Param("type"))
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get audit log", err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, logs)
}
