// Package router arma el chi.Router del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/tokend/internal/http/controllers"
	httperrors "github.com/dropDatabas3/tokend/internal/http/errors"
	mw "github.com/dropDatabas3/tokend/internal/http/middlewares"
)

// Deps contiene todo lo que necesita el router.
type Deps struct {
	Token  *controllers.TokenController
	Health *controllers.HealthController

	// TokenPaths: default /connect/token
	TokenPaths []string

	// Opcionales
	Metrics     http.Handler
	HTTPMetrics mw.HTTPObserver
	RateLimit   *mw.RateLimitConfig
}

func New(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.WithRequestID())
	r.Use(mw.WithAccessLog(d.HTTPMetrics))
	r.Use(mw.WithRecover())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.Health != nil {
		r.Get("/healthz", d.Health.Healthz)
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	paths := d.TokenPaths
	if len(paths) == 0 {
		paths = []string{"/connect/token"}
	}
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		if d.RateLimit != nil {
			r.Use(mw.WithRateLimit(*d.RateLimit))
		}
		for _, p := range paths {
			r.Post(p, d.Token.Token)
		}
	})
	return r
}
