package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of pre-orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creation attempts",
	}, []string{"reason"})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of order status transitions",
	}, []string{"to"})

	PaymentStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_transitions_total",
		Help: "Total number of payment status transitions",
	}, []string{"to"})

	BankResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_resolutions_total",
		Help: "Total number of bank availability resolutions",
	}, []string{"mode"})

	BankResolutionsEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bank_resolutions_empty_total",
		Help: "Total number of resolutions that found no active bank",
	})

	ServiceFeeChargedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "service_fee_charged_total",
		Help: "Sum of service fees charged, in smallest currency unit",
	})

	CatalogCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of bundle catalog cache hits",
	})

	CatalogCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of bundle catalog cache misses",
	})

	NotificationsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_written_total",
		Help: "Total number of admin notifications written by the worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
