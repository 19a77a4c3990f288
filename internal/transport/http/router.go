// Package httptransport assembles the HTTP surface: the middleware chain,
// every feature handler and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docproof/internal/platform/metrics"
	"docproof/internal/platform/middleware"
	"docproof/pkg/platform/httputil"
)

// Registrar mounts a handler's routes on a router group.
type Registrar interface {
	RegisterProtected(r chi.Router)
}

// PublicRegistrar additionally mounts unauthenticated routes.
type PublicRegistrar interface {
	Registrar
	RegisterPublic(r chi.Router)
}

// OwnerRegistrar additionally mounts owner-only routes.
type OwnerRegistrar interface {
	RegisterOwner(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router needs.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Sessions    middleware.SessionValidator
	OwnerWallet string

	Auth         PublicRegistrar
	Organization interface {
		PublicRegistrar
		OwnerRegistrar
	}
	Verifier PublicRegistrar
	Document PublicRegistrar
	Artifact Registrar
	Identity *IdentityHandler

	HealthChecks map[string]HealthCheck
}

// NewRouter builds the full route tree. Public routes come first, then the
// session-protected group, then the owner-only group nested inside it.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}
	r.Use(middleware.Timeout(60 * time.Second))

	// Public surface.
	deps.Auth.RegisterPublic(r)
	deps.Organization.RegisterPublic(r)
	deps.Verifier.RegisterPublic(r)
	deps.Document.RegisterPublic(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(deps.HealthChecks))

	// Session-protected surface.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(deps.Sessions, deps.Logger))

		deps.Auth.RegisterProtected(pr)
		deps.Organization.RegisterProtected(pr)
		deps.Verifier.RegisterProtected(pr)
		deps.Document.RegisterProtected(pr)
		deps.Artifact.RegisterProtected(pr)
		pr.Get("/check-user-type", deps.Identity.HandleCheckUserType)

		// Owner-only review surface.
		pr.Group(func(or chi.Router) {
			or.Use(middleware.RequireOwner(deps.OwnerWallet, deps.Logger))
			deps.Organization.RegisterOwner(or)
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": results,
		})
	}
}
