package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fd1az/synthetic-orderbook/internal/health"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id stored by the request id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware reuses an incoming X-Request-ID or mints a uuid.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func accessLogMiddleware(log logger.LoggerInterface) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", RequestID(r.Context()),
			)
		})
	}
}

// RouterOptions assembles the full API surface.
type RouterOptions struct {
	Handler *Handler
	Health  *health.Checker
	// Metrics serves /metrics when set.
	Metrics     http.Handler
	Log         logger.LoggerInterface
	ServiceName string
}

// NewRouter mounts the API, health and metrics routes behind the request id,
// access log and otelhttp middleware.
func NewRouter(opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, accessLogMiddleware(opts.Log))

	if opts.Handler != nil {
		opts.Handler.Register(r)
	}
	if opts.Health != nil {
		opts.Health.Mount(r)
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	return otelhttp.NewHandler(r, opts.ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			var match mux.RouteMatch
			if r.Match(req, &match) && match.Route != nil {
				if tpl, err := match.Route.GetPathTemplate(); err == nil {
					return req.Method + " " + tpl
				}
			}
			return req.Method + " " + req.URL.Path
		}),
	)
}
