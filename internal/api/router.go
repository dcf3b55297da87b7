package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/middleware"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/config"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/metrics"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
)

// Services bundles the services the router exposes.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Calculation *service.CalculationService
	Price       *service.PriceCurveService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, m *metrics.Metrics, log *slog.Logger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(m.Middleware(routePattern))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Method(http.MethodGet, "/metrics", m.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Calculation)
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/validate", portfolioHandler.ValidatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Put("/", portfolioHandler.SavePortfolio)
				r.Post("/timeseries", portfolioHandler.TimeSeries)
			})
		})

		calculationHandler := handlers.NewCalculationHandler(svc.Calculation)
		r.Route("/calculation/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", calculationHandler.GetCalculation)
		})
		r.Get("/export/{token}", calculationHandler.Export)

		r.Route("/prices", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(svc.Price)
			r.Post("/import", priceHandler.ImportPrices)
			r.Post("/spreads/import", priceHandler.ImportSpreads)
			r.Get("/{region}/{assetType}", priceHandler.PriceData)
		})
	})

	return r
}

// routePattern labels metrics with the matched route rather than the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
