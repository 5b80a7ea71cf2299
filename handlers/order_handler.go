package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/orders"
	"storefront-service/receipts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptPublisher hands a committed order to the notification pipeline.
type ReceiptPublisher interface {
	PublishReceiptRequest(req models.ReceiptRequest) error
}

// OrderStore covers the lifecycle operations outside the placement engine.
type OrderStore interface {
	AllOrders(ctx context.Context) ([]models.OrderWithLines, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (bool, error)
	DeleteOrder(ctx context.Context, orderID int64) (bool, error)
	ReceiptData(ctx context.Context, orderID int64) (*models.ReceiptData, bool, error)
}

type OrderHandler struct {
	engine    *orders.Engine
	store     OrderStore
	publisher ReceiptPublisher
	serverURL string
	logger    *zap.Logger
}

func NewOrderHandler(engine *orders.Engine, store OrderStore, publisher ReceiptPublisher, serverURL string, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		engine:    engine,
		store:     store,
		publisher: publisher,
		serverURL: serverURL,
		logger:    logger,
	}
}

type stockConflictResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	ItemID  int64  `json:"item_id"`
}

// CreateOrder handles POST /create-order
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Missing user or cart is empty",
			Details: err.Error(),
		})
		return
	}

	userID := middleware.UserID(c)
	confirmation, err := h.engine.PlaceOrder(c.Request.Context(), userID, req.Cart)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	// The order is committed; a notification failure must not undo that.
	if h.publisher != nil {
		receiptReq := models.ReceiptRequest{
			MessageID: uuid.New().String(),
			OrderID:   confirmation.OrderID,
			Email:     confirmation.CustomerEmail,
		}
		if err := h.publisher.PublishReceiptRequest(receiptReq); err != nil {
			h.logger.Error("Failed to publish receipt request",
				zap.Int64("order_id", confirmation.OrderID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, confirmation)
}

func (h *OrderHandler) respondOrderError(c *gin.Context, err error) {
	var (
		entryErr  *orders.InvalidCartEntryError
		dupErr    *orders.DuplicateCartItemError
		stockErr  *orders.InsufficientStockError
		commitErr *orders.CommitError
	)
	switch {
	case errors.Is(err, orders.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Missing user or cart is empty",
		})
	case errors.As(err, &entryErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_CART_ENTRY",
			Message: "Cart item missing item_id or quantity",
			Details: entryErr.Error(),
		})
	case errors.As(err, &dupErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_CART_ENTRY",
			Message: "Cart lists the same item more than once",
			Details: dupErr.Error(),
		})
	case errors.Is(err, orders.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "CUSTOMER_NOT_FOUND",
			Message: "Customer not found",
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, stockConflictResponse{
			Error:   "INSUFFICIENT_STOCK",
			Message: "Insufficient stock or item does not exist",
			ItemID:  stockErr.ItemID,
		})
	case errors.As(err, &commitErr):
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "COMMIT_ERROR",
			Message: "Failed to commit order",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to place order",
		})
	}
}

// GetUserOrders handles GET /orders/user/:userId
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid user ID",
			Details: "User ID must be a positive integer",
		})
		return
	}

	userOrders, err := h.engine.OrdersForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to fetch user orders", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to fetch orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": userOrders})
}

// GetAllOrders handles GET /orders (admin)
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	allOrders, err := h.store.AllOrders(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to fetch orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": allOrders})
}

// UpdateOrderStatus handles PUT /orders/:orderId (admin)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid order ID",
			Details: "Order ID must be a positive integer",
		})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	found, err := h.store.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.logger.Error("Failed to update order status", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to update order",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Order not found",
		})
		return
	}

	h.logger.Info("Updated order status", zap.Int64("order_id", orderID), zap.String("status", req.Status))
	c.JSON(http.StatusOK, gin.H{"success": true, "order_id": orderID, "status": req.Status})
}

// DeleteOrder handles DELETE /orders/:orderId (admin)
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid order ID",
			Details: "Order ID must be a positive integer",
		})
		return
	}

	found, err := h.store.DeleteOrder(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Error("Failed to delete order", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to delete order",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Order not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order deleted successfully"})
}

// GetOrderReceiptHTML handles GET /orders/:orderId/receipt-html
func (h *OrderHandler) GetOrderReceiptHTML(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid order ID",
			Details: "Order ID must be a positive integer",
		})
		return
	}

	data, found, err := h.store.ReceiptData(c.Request.Context(), orderID)
	if err != nil {
		h.logger.Error("Failed to load receipt data", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Failed to load receipt",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "Order not found",
		})
		return
	}

	html, err := receipts.Render(data, h.serverURL)
	if err != nil {
		h.logger.Error("Failed to render receipt", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "RENDER_ERROR",
			Message: "Failed to render receipt",
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
