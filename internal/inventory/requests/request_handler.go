package requests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"fieldstock/internal/middleware"
	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"
	"fieldstock/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequestHandler struct {
	service *RequestService
	logger  *zap.Logger
}

func NewHandler(s *RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{service: s, logger: logger}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/inventory-requests", security.Authorize(roles.Technician), h.SubmitRequest)
	router.GET("/inventory-requests", security.Authorize(roles.Technician), h.GetRequests)
	router.GET("/inventory-requests/:id", security.Authorize(roles.Technician), h.GetRequest)
	router.PATCH("/inventory-requests/:id/approve", security.RequireApprover(), h.ApproveRequest)
	router.PATCH("/inventory-requests/:id/reject", security.RequireApprover(), h.RejectRequest)
}

// parseSubmitBody accepts {"entries": [...], "notes": "..."} as well as
// legacy per-item fields at the top level, e.g. {"n950Boxes": 3}.
func parseSubmitBody(body map[string]json.RawMessage) (models.SubmitRequestInput, error) {
	input := models.SubmitRequestInput{Legacy: map[string]int{}}

	for key, raw := range body {
		switch key {
		case "entries":
			if err := json.Unmarshal(raw, &input.Entries); err != nil {
				return input, fmt.Errorf("entries: %w", err)
			}
		case "notes":
			if err := json.Unmarshal(raw, &input.Notes); err != nil {
				return input, fmt.Errorf("notes: %w", err)
			}
		case "legacy":
			legacy := map[string]int{}
			if err := json.Unmarshal(raw, &legacy); err != nil {
				return input, fmt.Errorf("legacy: %w", err)
			}
			for k, v := range legacy {
				input.Legacy[k] += v
			}
		default:
			var quantity int
			if err := json.Unmarshal(raw, &quantity); err != nil {
				return input, fmt.Errorf("%s must be an integer quantity", key)
			}
			input.Legacy[key] += quantity
		}
	}

	return input, nil
}

func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	input, err := parseSubmitBody(body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	req, err := h.service.Submit(c.Request.Context(), actor.ID, input)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to submit inventory request", err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

func (h *RequestHandler) GetRequests(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var technicianID *int64
	if roles.CanApprove(actor.Role) {
		if raw := c.Query("technician_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid technician_id"})
				return
			}
			technicianID = &id
		}
	} else {
		technicianID = &actor.ID
	}

	requests, err := h.service.List(c.Request.Context(), c.Query("status"), technicianID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get inventory requests", err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request ID is required"})
		return
	}

	req, err := h.service.Get(c.Request.Context(), requestID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to get inventory request", err)
		return
	}
	if req.TechnicianID != actor.ID && !roles.CanApprove(actor.Role) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request ID is required"})
		return
	}

	var input models.ApproveRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	req, transfers, err := h.service.Approve(c.Request.Context(), requestID, input.WarehouseID, actor.ID)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to approve inventory request", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req, "transfers": transfers})
}

func (h *RequestHandler) RejectRequest(c *gin.Context) {
	actor, err := security.CurrentActor(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request ID is required"})
		return
	}

	var input models.RejectRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Admin notes are required", "details": err.Error(), "code": "validation_error"})
		return
	}

	req, err := h.service.Reject(c.Request.Context(), requestID, actor.ID, input.AdminNotes)
	if err != nil {
		middleware.AbortWithError(c, h.logger, "Unable to reject inventory request", err)
		return
	}

	c.JSON(http.StatusOK, req)
}
