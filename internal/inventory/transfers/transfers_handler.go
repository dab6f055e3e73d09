package transfers

import (
	"net/http"

	"fieldstock/internal/middleware"
	"fieldstock/pkg/metadata"
	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"
	"fieldstock/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TransferHandler struct {
	Service *TransferService
	logger  *zap.Logger
}

func NewHandler(s *TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{Service: s, logger: logger}
}

func (h *TransferHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/warehouse-transfers", security.Authorize(roles.Technician), h.GetTransferBatches)
	router.POST("/warehouse-transfers/accept", security.Authorize(roles.Technician), h.AcceptTransfers)
	router.POST("/warehouse-transfers/reject", security.Authorize(roles.Technician), h.RejectTransfers)
	router.POST("/warehouse-transfers/bulk-accept", security.Authorize(roles.Technician), h.BulkAcceptTransfers)
	router.POST("/warehouse-transfers/bulk-reject", security.Authorize(roles.Technician), h.BulkRejectTransfers)
}

func (h *TransferHandler) GetTransferBatches(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status := c.Query("status")
	if status != "" && status != string(metadata.TransferMixed) {
		if _, err := metadata.NewTransferStatus(status); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status", "details": err.Error()})
			return
		}
	}

	batches, err := h.Service.ListBatches(c.Request.Context(), actor.ID, status)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get transfers", err)
		return
	}

	c.JSON(http.StatusOK, batches)
}

func (h *TransferHandler) AcceptTransfers(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.TransferBatchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rows, err := h.Service.AcceptBatch(c.Request.Context(), req.TransferIDs, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to accept transfers", err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *TransferHandler) RejectTransfers(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.TransferBatchInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rows, err := h.Service.RejectBatch(c.Request.Context(), req.TransferIDs, req.Reason, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to reject transfers", err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *TransferHandler) BulkAcceptTransfers(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.BulkTransferInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rows, err := h.Service.BulkAccept(c.Request.Context(), req.RequestIDs, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to accept transfer batches", err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *TransferHandler) BulkRejectTransfers(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.BulkTransferInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rows, err := h.Service.BulkReject(c.Request.Context(), req.RequestIDs, req.Reason, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to reject transfer batches", err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
