package api

import (
	"context"
	"errors"
	"net/http"

	"perdami-store/internal/models"
	"perdami-store/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationStore lists admin notifications. *store.Store satisfies it.
type NotificationStore interface {
	GetNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

type bankRequest struct {
	Name          string `json:"name" binding:"required"`
	Code          string `json:"code" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`
	IsActive      *bool  `json:"is_active"`
}

type settingsRequest struct {
	SingleBankMode bool   `json:"single_bank_mode"`
	DefaultBankID  *int64 `json:"default_bank_id"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type visibilityRequest struct {
	IsActive       bool `json:"is_active"`
	ShowToCustomer bool `json:"show_to_customer"`
}

// adminListBundles returns all bundles including hidden ones
func (h *Handler) adminListBundles(c *gin.Context) {
	bundles, err := h.catalogService.GetAllBundles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load bundles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bundles": bundles})
}

// adminSetBundleVisibility updates a bundle's customer visibility
func (h *Handler) adminSetBundleVisibility(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.catalogService.SetBundleVisibility(c.Request.Context(), id, req.IsActive, req.ShowToCustomer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update bundle",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// adminCreateBank registers a new payment destination
func (h *Handler) adminCreateBank(c *gin.Context) {
	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	bank := &models.Bank{
		Name:          req.Name,
		Code:          req.Code,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
		IsActive:      true,
	}
	if req.IsActive != nil {
		bank.IsActive = *req.IsActive
	}

	if err := h.bankService.CreateBank(c.Request.Context(), bank); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create bank",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, bank)
}

// adminUpdateBank updates an existing bank
func (h *Handler) adminUpdateBank(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	bank := &models.Bank{
		ID:            id,
		Name:          req.Name,
		Code:          req.Code,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
		IsActive:      true,
	}
	if req.IsActive != nil {
		bank.IsActive = *req.IsActive
	}

	if err := h.bankService.UpdateBank(c.Request.Context(), bank); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update bank",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, bank)
}

// adminDeactivateBank soft-deactivates a bank
func (h *Handler) adminDeactivateBank(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	if err := h.bankService.DeactivateBank(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to deactivate bank",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// adminUpdateSettings writes the single-bank-mode configuration
func (h *Handler) adminUpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	settings, err := h.bankService.UpdateSettings(c.Request.Context(), req.SingleBankMode, req.DefaultBankID)
	if err != nil {
		if errors.Is(err, service.ErrInactiveDefaultBank) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Default bank must be an active bank",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// adminUpdateOrderStatus moves an order through its lifecycle
func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, service.ErrInvalidStatusTransition) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Invalid status transition",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update order status",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// adminUpdatePaymentStatus moves an order's payment through its lifecycle
func (h *Handler) adminUpdatePaymentStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.paymentService.UpdatePaymentStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, service.ErrInvalidStatusTransition) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Invalid payment status transition",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update payment status",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// adminListNotifications returns recent admin notifications
func (h *Handler) adminListNotifications(c *gin.Context) {
	notifications, err := h.notifications.GetNotifications(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// adminMarkNotificationRead marks one notification as read
func (h *Handler) adminMarkNotificationRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	if err := h.notifications.MarkNotificationRead(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to mark notification read",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
