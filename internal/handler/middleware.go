package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/installment-service/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware tags every request with a request id and logs its outcome
func LoggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := log.WithRequestID(r.Context(), requestID)
			if no, ok := mux.Vars(r)["no"]; ok {
				ctx = log.WithInstallmentNo(ctx, no)
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			ctx = log.WithField(ctx, "method", r.Method)
			ctx = log.WithField(ctx, "path", r.URL.Path)
			ctx = log.WithField(ctx, "status", rec.status)
			ctx = log.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
			log.Info(ctx, "request completed")
		})
	}
}
