package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artiqmind/Lookali/internal/catalog"
	"github.com/artiqmind/Lookali/internal/search"
	"github.com/artiqmind/Lookali/pkg/health"
	"github.com/artiqmind/Lookali/pkg/middleware"
)

// RouterConfig carries the router's cross-cutting settings.
type RouterConfig struct {
	Environment        string
	JWTSecret          string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// NewRouter creates a chi router with all search service routes registered.
// Listing mutations require an admin JWT; search and suggest are public.
func NewRouter(
	searchService *search.Service,
	catalogService *catalog.Service,
	reindexer *catalog.Reindexer,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment

	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("search"))
	if cfg.RateLimitPerSecond > 0 {
		r.Use(middleware.RateLimit(int(cfg.RateLimitPerSecond), cfg.RateLimitBurst, logger))
	}

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	searchHandler := NewSearchHandler(searchService, logger)
	listingHandler := NewListingHandler(catalogService, reindexer, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/search", func(r chi.Router) {
			r.Get("/suggest", searchHandler.Suggest)
			r.Get("/", searchHandler.Search)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/{id}", listingHandler.Get)

			// Catalog mutations come from the catalog management service,
			// authenticated as admin.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(middleware.HMACValidator([]byte(cfg.JWTSecret))))
				r.Use(middleware.RequireRole("admin"))
				r.Put("/{id}", listingHandler.Upsert)
				r.Post("/bulk", listingHandler.BulkUpsert)
				r.Post("/reindex", listingHandler.Reindex)
				r.Delete("/{id}", listingHandler.Delete)
			})
		})
	})

	return r
}
