package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i20tominaga/resident-app/internal/auth"
	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/faq"
	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/notification"
	"github.com/i20tominaga/resident-app/internal/preference"
	"github.com/i20tominaga/resident-app/internal/relevance"
)

// RouterConfig bundles the dependencies the route table needs.
type RouterConfig struct {
	Users         building.UserRepository
	Events        event.Repository
	Notifications notification.Repository
	FAQs          faq.Repository
	Prefs         preference.Store
	Weights       *relevance.Weights
	JWT           *auth.JWTService
	Notifier      *notification.Service
	Metrics       *middleware.Metrics
	Registry      *prometheus.Registry
	Health        HealthHandlersConfig

	RateLimitStore middleware.RateLimitStore
	GlobalLimit    middleware.RateLimitConfig
	AuthLimit      middleware.RateLimitConfig

	CORS   middleware.CORSConfig
	Logger *slog.Logger
}

// NewRouter builds the full HTTP handler: route table plus the middleware
// chain (request ID, logging, metrics, CORS, global rate limit).
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Weights == nil {
		cfg.Weights = relevance.DefaultWeights()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	userHandlers := NewUserHandlers(cfg.Users, cfg.JWT)
	eventHandlers := NewEventHandlers(cfg.Events, cfg.Notifier, cfg.Metrics)
	dashboardHandlers := NewDashboardHandlers(cfg.Users, cfg.Events, cfg.Prefs, cfg.Weights)
	preferenceHandlers := NewPreferenceHandlers(cfg.Users, cfg.Prefs)
	notificationHandlers := NewNotificationHandlers(cfg.Notifications)
	faqHandlers := NewFAQHandlers(cfg.FAQs)
	healthHandlers := NewHealthHandlers(cfg.Health)

	authed := middleware.Authenticate(cfg.JWT)
	staff := func(h http.Handler) http.Handler {
		return authed(middleware.RequireStaff(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandlers.Health)

	if cfg.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	loginHandler := http.Handler(http.HandlerFunc(userHandlers.Login))
	if cfg.RateLimitStore != nil {
		loginHandler = middleware.RateLimiter(cfg.RateLimitStore, cfg.AuthLimit, middleware.IPKeyFunc())(loginHandler)
	}
	mux.Handle("/auth/login", loginHandler)

	// Registration is open; the user listing is staff only.
	mux.Handle("/users", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			userHandlers.CreateUser(w, r)
		case http.MethodGet:
			staff(http.HandlerFunc(userHandlers.ListUsers)).ServeHTTP(w, r)
		default:
			WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		}
	}))

	mux.Handle("/events", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			authed(http.HandlerFunc(eventHandlers.ListEvents)).ServeHTTP(w, r)
		case http.MethodPost:
			staff(http.HandlerFunc(eventHandlers.CreateEvent)).ServeHTTP(w, r)
		default:
			WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		}
	}))

	// Cancel and notify mutate schedule state; reads stay resident-visible.
	mux.Handle("/events/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/events/")
		if strings.HasSuffix(rest, "/cancel") || strings.HasSuffix(rest, "/notify") {
			staff(http.HandlerFunc(eventHandlers.HandleEventByID)).ServeHTTP(w, r)
			return
		}
		authed(http.HandlerFunc(eventHandlers.HandleEventByID)).ServeHTTP(w, r)
	}))

	mux.Handle("/dashboard", authed(http.HandlerFunc(dashboardHandlers.GetDashboard)))
	mux.Handle("/preferences", authed(http.HandlerFunc(preferenceHandlers.HandlePreferences)))
	mux.Handle("/notifications", authed(http.HandlerFunc(notificationHandlers.ListNotifications)))
	mux.Handle("/notifications/", authed(http.HandlerFunc(notificationHandlers.HandleNotificationByID)))
	mux.Handle("/faqs", authed(http.HandlerFunc(faqHandlers.ListFAQs)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
			return
		}
		WriteJSON(w, r.Context(), http.StatusOK, map[string]string{
			"service": "resident-portal-api",
			"version": "0.1.0",
		})
	})

	// Outermost first: RequestID -> Logging -> Metrics -> CORS -> RateLimiter.
	var handler http.Handler = mux
	if cfg.RateLimitStore != nil {
		handler = middleware.RateLimiter(cfg.RateLimitStore, cfg.GlobalLimit, middleware.UserKeyFunc())(handler)
	}
	handler = middleware.CORS(cfg.CORS)(handler)
	if cfg.Metrics != nil {
		handler = middleware.HTTPMetrics(cfg.Metrics)(handler)
	}
	handler = middleware.Logging(cfg.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
