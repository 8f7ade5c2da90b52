package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/taskmatch/pkg/logger"
	"github.com/okian/taskmatch/pkg/metrics"
)

// RequestIDHeader is echoed back, or generated when the client sends none.
const RequestIDHeader = "X-Request-ID"

// slowRequest is the latency above which a request is logged at warn.
const slowRequest = 500 * time.Millisecond

// MetricsMiddleware records latency and status per endpoint, tags the
// response with a request ID and logs failed or slow requests.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(rec.status), float64(elapsed.Microseconds())/1000)

		if rec.status < http.StatusBadRequest && elapsed < slowRequest {
			return
		}
		log := logger.Named("http")
		fields := []logger.Field{
			logger.String("requestID", reqID),
			logger.String("endpoint", endpoint),
			logger.String("method", r.Method),
			logger.Int("status", rec.status),
			logger.Duration("elapsed", elapsed),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorClass(rec.status))
			log.Error(r.Context(), "request failed", fields...)
		case rec.status >= http.StatusBadRequest:
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorClass(rec.status))
			log.Debug(r.Context(), "request rejected", fields...)
		default:
			log.Warn(r.Context(), "slow request", fields...)
		}
	}
}

// errorClass buckets a failure status for the errors-by-endpoint counter.
func errorClass(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "backpressure"
	}
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return "client_error"
}

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
