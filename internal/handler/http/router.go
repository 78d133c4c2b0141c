// Package http wires the storefront's public, auth, admin, and ops routes.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamaffandi/gloam-storefront/internal/auth"
	"github.com/imamaffandi/gloam-storefront/internal/health"
	"github.com/imamaffandi/gloam-storefront/internal/middleware"
)

// RouterConfig carries the knobs the router needs from app config. The
// login limiter is owned by the caller, which stops it on shutdown.
type RouterConfig struct {
	CORSAllowedOrigins []string
	LoginLimiter       *middleware.RateLimiter
}

// NewRouter creates the chi router with all storefront routes registered.
func NewRouter(
	public *PublicHandler,
	authHandler *AuthHandler,
	admin *AdminHandler,
	sessions *auth.SessionManager,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront.
		r.Get("/home", public.Home)
		r.Get("/catalog", public.Catalog)
		r.Get("/products/{id}", public.ProductDetail)
		r.Get("/blogs", public.Blogs)
		r.Get("/blogs/{id}", public.BlogDetail)
		r.Post("/contact", public.Contact)

		// Login, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(cfg.LoginLimiter.Middleware())
			r.Post("/auth/login", authHandler.Login)
		})

		// Admin panel, behind the session gate.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(sessions, logger))

			r.Get("/state", admin.State)
			r.Get("/products", admin.Products)
			r.Get("/blogs", admin.Blogs)

			r.Post("/form/product", admin.OpenProductCreate)
			r.Post("/form/product/{id}", admin.OpenProductEdit)
			r.Post("/form/blog", admin.OpenBlogCreate)
			r.Post("/form/blog/{id}", admin.OpenBlogEdit)
			r.Get("/form", admin.CurrentForm)
			r.Patch("/form/product", admin.PatchProduct)
			r.Patch("/form/blog", admin.PatchBlog)
			r.Post("/form/images", admin.IngestImages)
			r.Delete("/form/images/{index}", admin.RemoveImage)
			r.Post("/form/submit", admin.Submit)
			r.Delete("/form", admin.Cancel)

			r.Delete("/products/{id}", admin.DeleteProduct)
			r.Delete("/blogs/{id}", admin.DeleteBlog)
			r.Post("/products/{id}/images", admin.UploadProductImages)
		})
	})

	return r
}
