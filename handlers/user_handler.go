package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront-service/database"
	"storefront-service/middleware"
	"storefront-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the account and customer-profile persistence surface.
type UserStore interface {
	CreateUserWithCustomer(ctx context.Context, email, hashedPassword, lastName, firstName string) (int64, int64, error)
	CredentialsByEmail(ctx context.Context, email string) (database.Credentials, bool, error)
	SaveAPIToken(ctx context.Context, userID int64, token string) error
	CustomerByUserID(ctx context.Context, userID int64) (models.Customer, bool, error)
	UpdateCustomerProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (bool, error)
	DeactivateUser(ctx context.Context, email string, when time.Time) (bool, error)
	DeleteUserAndCustomer(ctx context.Context, userID int64) error
}

type UserHandler struct {
	store     UserStore
	jwtSecret string
	logger    *zap.Logger
}

func NewUserHandler(store UserStore, jwtSecret string, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		store:     store,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register handles POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "All fields are required",
			Details: err.Error(),
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "SERVER_ERROR",
			Message: "Error creating user",
		})
		return
	}

	userID, customerID, err := h.store.CreateUserWithCustomer(c.Request.Context(), req.Email, string(hashed), req.LastName, req.FirstName)
	if err != nil {
		h.logger.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error creating user",
		})
		return
	}

	h.logger.Info("Registered user", zap.Int64("user_id", userID), zap.Int64("customer_id", customerID))
	c.JSON(http.StatusCreated, models.RegisterResponse{
		Success:    true,
		UserID:     userID,
		CustomerID: customerID,
	})
}

// Login handles POST /login
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Email and password are required",
			Details: err.Error(),
		})
		return
	}

	creds, found, err := h.store.CredentialsByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("Failed to look up user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error logging in",
		})
		return
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(creds.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "UNAUTHORIZED",
			Message: "Invalid email or password",
		})
		return
	}

	token, err := middleware.SignToken(h.jwtSecret, creds.UserID, creds.Role)
	if err != nil {
		h.logger.Error("Failed to sign token", zap.Int64("user_id", creds.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "SERVER_ERROR",
			Message: "Error logging in",
		})
		return
	}

	if err := h.store.SaveAPIToken(c.Request.Context(), creds.UserID, token); err != nil {
		h.logger.Error("Failed to save token", zap.Int64("user_id", creds.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error saving token",
		})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Success:  "welcome back",
		Customer: creds.Customer,
		Token:    token,
	})
}

// GetCustomerByUserID handles GET /customer-by-userid/:user_id
func (h *UserHandler) GetCustomerByUserID(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "user_id is required",
		})
		return
	}

	customer, found, err := h.store.CustomerByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to fetch customer", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error fetching customer",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "No customer found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
}

// UpdateProfile handles POST /update-profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	userID := middleware.UserID(c)
	found, err := h.store.UpdateCustomerProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Error("Failed to update profile", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error updating profile",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "No customer found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

// Deactivate handles DELETE /deactivate (admin)
func (h *UserHandler) Deactivate(c *gin.Context) {
	var req models.DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "Email is required",
			Details: err.Error(),
		})
		return
	}

	timestamp := time.Now().UTC()
	found, err := h.store.DeactivateUser(c.Request.Context(), req.Email, timestamp)
	if err != nil {
		h.logger.Error("Failed to deactivate user", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error deactivating user",
		})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "User deactivated successfully",
		"email":      req.Email,
		"deleted_at": timestamp,
	})
}

// DeleteUser handles DELETE /delete-user/:user_id (admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "INVALID_INPUT",
			Message: "user_id is required",
		})
		return
	}

	if err := h.store.DeleteUserAndCustomer(c.Request.Context(), userID); err != nil {
		h.logger.Error("Failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "DATABASE_ERROR",
			Message: "Error deleting user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User and customer deleted", "user_id": userID})
}
