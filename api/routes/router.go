package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/varejolabs/pdv-terminal/api/controllers"
	"github.com/varejolabs/pdv-terminal/api/middleware"
	"github.com/varejolabs/pdv-terminal/internal/receipts"
	"github.com/varejolabs/pdv-terminal/pkg/config"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
)

// NewRouter assembles the diagnostics surface: health probes, metrics, and
// read-only session and journal views for supervisor tooling. It never exposes
// anything that mutates a sale; the operator's input path is the only writer.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	view controllers.TerminalView,
	receiptService receipts.Service,
	pingers map[string]controllers.Pinger,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/session", controllers.SessionSnapshot(view))
		r.Get("/session/totals", controllers.SessionTotals(view))
		r.Get("/receipts", controllers.RecentReceipts(receiptService, cfg.Register.LocalID, logg))
		r.Get("/receipts/last", controllers.LastReceipt(receiptService, cfg.Register.LocalID, logg))
	})

	return r
}
