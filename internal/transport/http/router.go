package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-verification-api/internal/config"
	"github.com/go-verification-api/internal/transport/http/handler"
	appmiddleware "github.com/go-verification-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := func(next http.Handler) http.Handler { return next }
	if deps.TokenVerifier != nil {
		authMw = appmiddleware.Auth(deps.TokenVerifier)
	}
	limitMw := func(next http.Handler) http.Handler { return next }
	if deps.RateLimiter != nil {
		limitMw = deps.RateLimiter.Limit
	}

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerificationHandler(deps.Verification)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/api/verification", func(r chi.Router) {
		r.Use(authMw)

		r.With(limitMw).Post("/send", verifyH.Send)
		r.Post("/verify", verifyH.Verify)
		r.Get("/verify", verifyH.VerifyLink)
	})

	return r
}
