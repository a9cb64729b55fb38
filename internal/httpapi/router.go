package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bookingflow/internal/api"
	"bookingflow/internal/audit"
	"bookingflow/internal/booking"
	"bookingflow/internal/mutation"
	"bookingflow/internal/payment"
	"bookingflow/internal/query"
	"bookingflow/internal/querycache"
	"bookingflow/internal/quotation"
	"bookingflow/internal/status"
	"bookingflow/internal/wallet"
	"bookingflow/pkg/config"
	"bookingflow/pkg/decorapi"
	"bookingflow/pkg/session"
)

type Dependencies struct {
	Cfg     config.Config
	Backend decorapi.Client
	Cache   querycache.Store
	// Audit receives every dispatched mutation. AuditLog serves the admin
	// view and may be nil when no database is configured.
	Audit    audit.Recorder
	AuditLog audit.Lister
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	cache := deps.Cache
	if cache == nil {
		cache = querycache.NewMemory()
	}
	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}
	ttl := deps.Cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	depositPercent := deps.Cfg.DepositPercent
	if depositPercent.IsZero() {
		depositPercent = decimal.NewFromInt(config.DefaultDepositPercent)
	}

	trackingTTL := deps.Cfg.TrackingCacheTTL
	if trackingTTL <= 0 || trackingTTL > ttl {
		trackingTTL = 5 * time.Second
	}
	reader := &query.Reader{Client: deps.Backend, Loader: querycache.NewLoader(cache, ttl), TrackingTTL: trackingTTL}
	dispatcher := &mutation.Dispatcher{Client: deps.Backend, Cache: cache, Audit: recorder}

	bookingHandlers := booking.Handlers{
		Reader:         reader,
		DepositPercent: depositPercent,
		CurrencyScale:  payment.CurrencyScale(deps.Cfg.CurrencyScale),
	}
	quotationHandlers := quotation.Handlers{Reader: reader}
	walletHandlers := wallet.Handlers{Reader: reader}
	mutationHandlers := mutation.Handlers{Dispatcher: dispatcher}
	auditHandlers := audit.Handlers{Repo: deps.AuditLog}

	// v1
	r.Route("/v1", func(r chi.Router) {
		// The web UI runs on its own origin.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.WebAllowedOrigins,
			MaxAgeSeconds:  600,
		}))

		// Status display metadata is static and public.
		r.Get("/status/{kind}", status.Table)
		r.Get("/status/{kind}/{code}", status.Lookup)

		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg.SessionSecret))

			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(session.RoleProvider, session.RoleCustomer))

				r.Get("/bookings", bookingHandlers.List)
				r.Post("/bookings", mutationHandlers.Create)
				r.Get("/bookings/{code}", bookingHandlers.Get)
				r.Get("/bookings/{code}/presentation", bookingHandlers.Presentation)
				r.Get("/bookings/{code}/tracking", bookingHandlers.Tracking)

				r.Get("/quotations", quotationHandlers.List)
				r.Get("/quotations/{code}", quotationHandlers.Get)
				r.Get("/quotations/{code}/contract", quotationHandlers.Contract)

				r.Get("/wallet", walletHandlers.Transactions)

				r.Post("/mutations/{kind}/{code}", mutationHandlers.Submit)
			})

			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(session.RoleAdmin))
				r.Get("/admin/audit", auditHandlers.List)
			})
		})
	})

	return r
}
