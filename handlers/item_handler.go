package handlers

import (
	"context"
	"net/http"
	"strconv"

	"storefront-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ItemStore is the catalog persistence surface.
type ItemStore interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, itemID int64) (models.Item, bool, error)
	CreateItem(ctx context.Context, req models.CreateItemRequest) (int64, error)
	UpdateItem(ctx context.Context, itemID int64, req models.CreateItemRequest) (bool, error)
	DeleteItem(ctx context.Context, itemID int64) (bool, error)
}

type ItemHandler struct {
	store  ItemStore
	logger *zap.Logger
}

func NewItemHandler(store ItemStore, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		store:  store,
		logger: logger,
	}
}

// GetAllItems handles GET /items
func (h *ItemHandler) GetAllItems(c *gin.Context) {
	items, err := h.store.ListItems(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch items", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to fetch items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// GetSingleItem handles GET /items/:id
func (h *ItemHandler) GetSingleItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid item ID",
			Details: "Item ID must be a positive integer",
		})
		return
	}

	item, found, err := h.store.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.logger.Error("Failed to fetch item", zap.Int64("item_id", itemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to fetch item",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Item not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": item})
}

// CreateItem handles POST /items (admin)
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Missing required fields: name, description, category",
			Details: err.Error(),
		})
		return
	}

	itemID, err := h.store.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to create item",
		})
		return
	}

	h.logger.Info("Created item", zap.Int64("item_id", itemID))
	c.JSON(http.StatusCreated, models.CreateItemResponse{
		Success: true,
		ItemID:  itemID,
		Message: "Item created successfully",
	})
}

// UpdateItem handles PUT /items/:id (admin)
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid item ID",
			Details: "Item ID must be a positive integer",
		})
		return
	}

	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Missing required fields: name, description, category",
			Details: err.Error(),
		})
		return
	}

	found, err := h.store.UpdateItem(c.Request.Context(), itemID, req)
	if err != nil {
		h.logger.Error("Failed to update item", zap.Int64("item_id", itemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to update item",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Item not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item updated successfully"})
}

// DeleteItem handles DELETE /items/:id (admin)
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid item ID",
			Details: "Item ID must be a positive integer",
		})
		return
	}

	found, err := h.store.DeleteItem(c.Request.Context(), itemID)
	if err != nil {
		h.logger.Error("Failed to delete item", zap.Int64("item_id", itemID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to delete item",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Item not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item deleted successfully"})
}
