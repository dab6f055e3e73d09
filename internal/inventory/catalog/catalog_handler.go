package catalog

import (
	"net/http"

	"fieldstock/internal/middleware"
	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"
	"fieldstock/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *Catalog
	logger  *zap.Logger
}

func NewHandler(c *Catalog, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/item-types", security.Authorize(roles.Technician), h.GetItemTypes)
	router.POST("/item-types", security.Authorize(roles.Admin), h.CreateItemType)
}

func (h *CatalogHandler) GetItemTypes(c *gin.Context) {
	itemTypes, err := h.catalog.List(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get item types", err)
		return
	}

	c.JSON(http.StatusOK, itemTypes)
}

func (h *CatalogHandler) CreateItemType(c *gin.Context) {
	var req models.CreateItemTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	itemType, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to create item type", err)
		return
	}

	c.JSON(http.StatusCreated, itemType)
}
