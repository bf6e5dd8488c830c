package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/barbearia-labs/barber-ai-platform/internal/conversation"
	httpmiddleware "github.com/barbearia-labs/barber-ai-platform/internal/http/middleware"
	"github.com/barbearia-labs/barber-ai-platform/internal/tenancy"
	"github.com/barbearia-labs/barber-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	MetricsHandler      http.Handler
	AdminJWTSecret      string
	CORSAllowedOrigins  []string

	// Requests per second allowed on the chat endpoint, per client IP.
	// Zero disables rate limiting.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// The chat surface: tenant resolved from X-Barbershop-Id, rate limited
	// per client IP since it fans out to the LLM.
	r.Group(func(chat chi.Router) {
		chat.Use(tenancy.Middleware)
		if cfg.ChatRateLimit > 0 {
			chat.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
		}
		chat.Post("/chat", cfg.ConversationHandler.Chat)
	})

	// Support surface, JWT-protected.
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
		admin.Get("/admin/sessions/{sessionID}", cfg.ConversationHandler.Session)
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
