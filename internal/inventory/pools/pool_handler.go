package pools

import (
	"net/http"
	"strconv"

	"fieldstock/internal/middleware"
	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"
	"fieldstock/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PoolHandler struct {
	service *PoolService
	logger  *zap.Logger
}

func NewHandler(s *PoolService, logger *zap.Logger) *PoolHandler {
	return &PoolHandler{service: s, logger: logger}
}

func (h *PoolHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/items", security.Authorize(roles.Technician), h.GetCentralItems)
	router.GET("/items/:id", security.Authorize(roles.Technician), h.GetCentralItem)
	router.POST("/items", security.Authorize(roles.Admin), h.CreateCentralItem)
	router.GET("/warehouses", security.Authorize(roles.Supervisor), h.GetWarehouses)
	router.POST("/warehouses", security.Authorize(roles.Admin), h.CreateWarehouse)
	router.GET("/warehouses/:id/inventory", security.Authorize(roles.Supervisor), h.GetWarehouseInventory)
	router.GET("/technicians/:id/inventory", security.AuthorizeOwnerOr("id", roles.Supervisor), h.GetTechnicianInventory)
}

func (h *PoolHandler) GetCentralItems(c *gin.Context) {
	var regionID *int64
	if raw := c.Query("region_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid region_id"})
			return
		}
		regionID = &id
	}

	items, err := h.service.ListCentralItems(c.Request.Context(), regionID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get items", err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *PoolHandler) GetCentralItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Item ID is required"})
		return
	}

	item, err := h.service.GetCentralItem(c.Request.Context(), itemID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get item", err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *PoolHandler) CreateCentralItem(c *gin.Context) {
	var req models.CreateCentralItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	item, err := h.service.CreateCentralItem(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to create item", err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *PoolHandler) GetWarehouses(c *gin.Context) {
	warehouses, err := h.service.ListWarehouses(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get warehouses", err)
		return
	}

	c.JSON(http.StatusOK, warehouses)
}

func (h *PoolHandler) CreateWarehouse(c *gin.Context) {
	var req models.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	warehouse, err := h.service.CreateWarehouse(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to create warehouse", err)
		return
	}

	c.JSON(http.StatusCreated, warehouse)
}

func (h *PoolHandler) GetWarehouseInventory(c *gin.Context) {
	warehouseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Warehouse ID is required"})
		return
	}

	snapshot, err := h.service.WarehouseInventory(c.Request.Context(), warehouseID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get warehouse inventory", err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *PoolHandler) GetTechnicianInventory(c *gin.Context) {
	technicianID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Technician ID is required"})
		return
	}

	inventory, err := h.service.TechnicianInventory(c.Request.Context(), technicianID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get technician inventory", err)
		return
	}

	c.JSON(http.StatusOK, inventory)
}
