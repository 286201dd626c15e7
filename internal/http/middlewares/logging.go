package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/tokend/internal/observability/logger"
)

// HTTPObserver recibe cada request terminado (métricas).
type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, d time.Duration)
	InflightInc()
	InflightDec()
}

// WithAccessLog loguea cada request y, si obs no es nil, lo registra en métricas.
// path es el patrón de la ruta chi para no explotar la cardinalidad.
func WithAccessLog(obs HTTPObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			if obs != nil {
				obs.InflightInc()
				defer obs.InflightDec()
			}

			next.ServeHTTP(ww, r)

			d := time.Since(start)
			path := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				path = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if obs != nil {
				obs.ObserveHTTP(r.Method, path, status, d)
			}

			entry := logger.From(r.Context()).With(
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Status(status),
				logger.Duration(d),
				logger.ClientIP(clientIP(r, false)),
			)
			switch {
			case status >= 500:
				entry.Error("http request")
			case status >= 400:
				entry.Info("http request")
			default:
				entry.Debug("http request")
			}
		})
	}
}
