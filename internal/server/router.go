package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	catH "github.com/fekuna/omnipos-sales-service/internal/catalog/handler"
	checkoutH "github.com/fekuna/omnipos-sales-service/internal/checkout/handler"
	financeH "github.com/fekuna/omnipos-sales-service/internal/finance/handler"
	"github.com/fekuna/omnipos-sales-service/internal/httpx"
	invH "github.com/fekuna/omnipos-sales-service/internal/inventory/handler"
	profileH "github.com/fekuna/omnipos-sales-service/internal/profile/handler"
	"github.com/fekuna/omnipos-sales-service/pkg/i18n"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/fekuna/omnipos-sales-service/pkg/metrics"
	"github.com/fekuna/omnipos-sales-service/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type Options struct {
	Logger         logger.ZapLogger
	Translator     *i18n.Translator
	ServerMetrics  *metrics.ServerMetrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	FilesRoot      string
	Health         map[string]Pinger

	Catalog   *catH.CatalogHandler
	Profiles  *profileH.ProfileHandler
	Checkout  *checkoutH.CheckoutHandler
	Inventory *invH.InventoryHandler
	Finance   *financeH.FinanceHandler
}

func NewRouter(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestLogger(o.Logger, o.ServerMetrics))
	r.Use(httpx.Locale(o.Translator))

	r.Get("/health", health(o.Health))
	if o.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(o.Gatherer))
	}
	if o.FilesRoot != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(o.FilesRoot))))
	}

	r.Route("/api/v1", func(api chi.Router) {
		if o.RequestTimeout > 0 {
			api.Use(chimw.Timeout(o.RequestTimeout))
		}
		api.Use(auth.HTTPMiddleware, httpx.RequireSession)

		api.Route("/catalog", o.Catalog.Routes)
		api.Route("/members", o.Profiles.Routes)
		api.Route("/inventory", o.Inventory.Routes)
		api.Route("/finance", o.Finance.Routes)
		o.Checkout.Routes(api)
	})
	return r
}

func health(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{}
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				result[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		httpx.JSON(w, status, map[string]interface{}{"status": http.StatusText(status), "checks": result})
	}
}
