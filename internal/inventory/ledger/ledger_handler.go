package ledger

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

type LedgerHandler struct {
	service *LedgerService
	logger  *zap.Logger
}

func NewHandler(s *LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{service: s, logger: logger}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/items/:id/add", security.Authorize(roles.Supervisor), h.AddStock)
	router.POST("/items/:id/withdraw", security.Authorize(roles.Supervisor), h.WithdrawStock)
	router.GET("/items/:id/transactions", security.Authorize(roles.Supervisor), h.GetTransactions)
	router.POST("/warehouses/:id/stock", security.Authorize(roles.Supervisor), h.ReceiveStock)
	router.POST("/technicians/:id/stock-movements", security.AuthorizeOwnerOr("id", roles.Supervisor), h.TransferStock)
	router.GET("/technicians/:id/stock-movements", security.AuthorizeOwnerOr("id", roles.Supervisor), h.GetStockMovements)
}

type stockChangeFunc func(ctx context.Context, itemID int64, quantity int, reason *string, actorID *int64) (*models.CentralItem, error)

func (h *LedgerHandler) AddStock(c *gin.Context) {
	h.changeStock(c, h.service.AddStock, "Unable to add stock")
}

func (h *LedgerHandler) WithdrawStock(c *gin.Context) {
	h.changeStock(c, h.service.WithdrawStock, "Unable to withdraw stock")
}

func (h *LedgerHandler) changeStock(c *gin.Context, change stockChangeFunc, message string) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Item ID is required"})
		return
	}
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.StockChangeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	item, err := change(c.Request.Context(), itemID, req.Quantity, req.Reason, &actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, message, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Item ID is required"})
		return
	}

	transactions, err := h.service.ListTransactions(c.Request.Context(), itemID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get transactions", err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func (h *LedgerHandler) ReceiveStock(c *gin.Context) {
	warehouseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Warehouse ID is required"})
		return
	}
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ReceiveStockInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	item, err := h.service.ReceiveStock(c.Request.Context(), warehouseID, req.ItemType, req.Packaging, req.Quantity, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to receive stock", err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *LedgerHandler) TransferStock(c *gin.Context) {
	technicianID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Technician ID is required"})
		return
	}
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.TransferStockInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.service.TransferStock(c.Request.Context(), TransferStockCommand{
		TechnicianID: technicianID,
		ItemType:     req.ItemType,
		Packaging:    req.Packaging,
		Quantity:     req.Quantity,
		From:         req.From,
		To:           req.To,
		Reason:       req.Reason,
		Notes:        req.Notes,
	}, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to transfer stock", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *LedgerHandler) GetStockMovements(c *gin.Context) {
	technicianID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Technician ID is required"})
		return
	}

	movements, err := h.service.ListStockMovements(c.Request.Context(), technicianID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get stock movements", err)
		return
	}

	c.JSON(http.StatusOK, movements)
}
