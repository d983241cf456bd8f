// Package httptransport assembles the public HTTP surface. Handlers stay in
// their domain packages; this file only mounts them and the shared middleware.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	leadhandler "tradegate/internal/lead/handler"
	"tradegate/internal/platform/middleware"
	rfqhandler "tradegate/internal/rfq/handler"
	verificationhandler "tradegate/internal/verification/handler"
	"tradegate/pkg/platform/httputil"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries the wired handlers and the auth middleware.
type Deps struct {
	Lead         *leadhandler.Handler
	RFQ          *rfqhandler.Handler
	Verification *verificationhandler.Handler
	Auth         func(http.Handler) http.Handler
	Health       func() map[string]string
}

// NewRouter mounts all endpoints. Authenticated routes sit behind the JWT
// middleware; health and metrics stay open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestMetadata)
	r.Use(middleware.HTTPMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, deps.Health())
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth)
		}
		for _, h := range []Registrar{deps.Lead, deps.RFQ, deps.Verification} {
			h.Register(r)
		}
	})

	return r
}
