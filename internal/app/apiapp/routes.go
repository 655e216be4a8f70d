package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harborexpo/backend/internal/config"
	accountssvc "github.com/harborexpo/backend/internal/services/accounts"
	authsvc "github.com/harborexpo/backend/internal/services/auth"
	moderationsvc "github.com/harborexpo/backend/internal/services/moderation"
	ratesvc "github.com/harborexpo/backend/internal/services/rate"
	statssvc "github.com/harborexpo/backend/internal/services/stats"
	"github.com/harborexpo/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	AccountsService   *accountssvc.Service
	ModerationService *moderationsvc.Service
	StatsService      *statssvc.Service
	LoginLimiter      *ratesvc.Limiter
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.LoginLimiter)
	adminUsersHandler := handlers.NewAdminUsersHandler(deps.AccountsService)
	reportsHandler := handlers.NewReportsHandler(deps.ModerationService)
	dashboardHandler := handlers.NewDashboardHandler(deps.StatsService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminRoleMW := RequireRole("ADMIN", "MODERATOR")
	accountsRoleMW := RequireRole("ADMIN")

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW)

		r.With(adminRoleMW).Get("/dashboard/stats", dashboardHandler.Stats)

		r.Route("/users", func(r chi.Router) {
			r.Use(accountsRoleMW)
			r.Get("/pending", adminUsersHandler.ListPending)
			r.Get("/", adminUsersHandler.List)
			r.Get("/export", adminUsersHandler.Export)
			r.Get("/reject-reasons", adminUsersHandler.RejectReasons)
			r.Get("/{id}", adminUsersHandler.Get)
			r.Post("/{id}/validate", adminUsersHandler.Validate)
			r.Post("/{id}/reject", adminUsersHandler.Reject)
			r.Post("/{id}/remind", adminUsersHandler.Remind)
			r.Post("/{id}/deactivate", adminUsersHandler.Deactivate)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(adminRoleMW)
			r.Get("/", reportsHandler.List)
			r.Get("/{id}", reportsHandler.Get)
			r.Post("/{id}/resolve", reportsHandler.Resolve)
		})
	})
}
