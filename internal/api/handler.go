package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"perdami-store/internal/models"
	"perdami-store/internal/service"
	"perdami-store/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService   *service.OrderService
	bankService    *service.BankService
	paymentService *service.PaymentService
	catalogService *service.CatalogService
	notifications  NotificationStore
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	bankService *service.BankService,
	paymentService *service.PaymentService,
	catalogService *service.CatalogService,
	notifications NotificationStore,
) *Handler {
	return &Handler{
		orderService:   orderService,
		bankService:    bankService,
		paymentService: paymentService,
		catalogService: catalogService,
		notifications:  notifications,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/banks", h.getAvailableBanks)
		v1.GET("/bundles", h.listBundles)
		v1.GET("/bundles/:id", h.getBundle)
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
	}

	admin := v1.Group("/admin")
	{
		admin.GET("/bundles", h.adminListBundles)
		admin.PATCH("/bundles/:id/visibility", h.adminSetBundleVisibility)
		admin.POST("/banks", h.adminCreateBank)
		admin.PUT("/banks/:id", h.adminUpdateBank)
		admin.DELETE("/banks/:id", h.adminDeactivateBank)
		admin.PUT("/settings", h.adminUpdateSettings)
		admin.PATCH("/orders/:id/status", h.adminUpdateOrderStatus)
		admin.PATCH("/orders/:id/payment", h.adminUpdatePaymentStatus)
		admin.GET("/notifications", h.adminListNotifications)
		admin.PATCH("/notifications/:id/read", h.adminMarkNotificationRead)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getAvailableBanks returns the valid payment destinations for checkout
func (h *Handler) getAvailableBanks(c *gin.Context) {
	availability, err := h.bankService.GetAvailableBanks(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoBankAvailable) {
			// storefront renders "no payment method configured"; checkout
			// is refused separately at order creation
			c.JSON(http.StatusOK, gin.H{
				"banks":            []models.Bank{},
				"single_bank_mode": false,
				"message":          "no payment method configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to resolve banks",
		})
		return
	}

	c.JSON(http.StatusOK, availability)
}

// listBundles returns customer-visible bundles
func (h *Handler) listBundles(c *gin.Context) {
	bundles, err := h.catalogService.GetVisibleBundles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load bundles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bundles": bundles})
}

// getBundle returns one customer-visible bundle
func (h *Handler) getBundle(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	bundle, err := h.catalogService.GetVisibleBundle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Bundle not found",
		})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// createOrder handles pre-order checkout
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		status, message := checkoutErrorResponse(err)
		c.JSON(status, gin.H{
			"error":   message,
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	order, items, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// checkoutErrorResponse maps checkout failures to HTTP responses
func checkoutErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNoBankAvailable):
		return http.StatusConflict, "no payment method configured"
	case errors.Is(err, service.ErrBankNotAvailable):
		return http.StatusUnprocessableEntity, "Selected bank is not available"
	case errors.Is(err, service.ErrBundleNotAvailable):
		return http.StatusUnprocessableEntity, "One or more bundles are not available"
	case errors.Is(err, service.ErrBankResolutionFailed),
		errors.Is(err, service.ErrOrderPersistenceFailed):
		return http.StatusInternalServerError, "Failed to create order"
	default:
		return http.StatusBadRequest, "Failed to create order"
	}
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
	}
	return id, err
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
