package handler

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/segyhp/installment-service/pkg/logger"
	"github.com/segyhp/installment-service/pkg/metrics"
	"github.com/segyhp/installment-service/pkg/response"
)

// NewRouter wires the installment, health and metrics endpoints
func NewRouter(installments *InstallmentHandler, health *HealthHandler, log *logger.Logger, httpMetrics *metrics.HTTPMetrics) *mux.Router {
	router := mux.NewRouter()
	router.Use(httpMetrics.Middleware)

	router.HandleFunc("/health", health.Health).Methods("GET")
	router.HandleFunc("/health/ready", health.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(LoggingMiddleware(log), response.CORSMiddleware, response.JSONMiddleware)

	api.HandleFunc("/installments", installments.CreatePlan).Methods("POST", "OPTIONS")
	api.HandleFunc("/installments/{no:[0-9]+}", installments.GetPlan).Methods("GET", "OPTIONS")
	api.HandleFunc("/installments/{no:[0-9]+}/payments", installments.PayNextItem).Methods("POST", "OPTIONS")
	api.HandleFunc("/installments/{no:[0-9]+}/items/{sequence:[0-9]+}/refund", installments.HandleItemRefund).Methods("POST", "OPTIONS")
	api.HandleFunc("/installments/{no:[0-9]+}/refund-status", installments.RefreshRefundStatus).Methods("POST", "OPTIONS")
	api.HandleFunc("/installment-statuses", installments.StatusLabels).Methods("GET", "OPTIONS")

	return router
}
