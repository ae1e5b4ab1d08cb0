// Package planmanager предоставляет маршруты для основного приложения.
package planmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sstepanets/plan-manager/internal/http/handlers/admin/plancreate"
	"github.com/sstepanets/plan-manager/internal/http/handlers/admin/planupdate"
	alertlist "github.com/sstepanets/plan-manager/internal/http/handlers/alert/list"
	"github.com/sstepanets/plan-manager/internal/http/handlers/alert/markread"
	"github.com/sstepanets/plan-manager/internal/http/handlers/auth/login"
	"github.com/sstepanets/plan-manager/internal/http/handlers/auth/signup"
	planlist "github.com/sstepanets/plan-manager/internal/http/handlers/plan/list"
	planread "github.com/sstepanets/plan-manager/internal/http/handlers/plan/read"
	"github.com/sstepanets/plan-manager/internal/http/handlers/subscription/cancel"
	"github.com/sstepanets/plan-manager/internal/http/handlers/subscription/myplan"
	"github.com/sstepanets/plan-manager/internal/http/handlers/subscription/purchase"
	"github.com/sstepanets/plan-manager/internal/http/middlewarectx"
	"github.com/sstepanets/plan-manager/internal/lib/jwt"
	alertsservice "github.com/sstepanets/plan-manager/internal/services/alerts"
	authservice "github.com/sstepanets/plan-manager/internal/services/auth"
	lifecycleservice "github.com/sstepanets/plan-manager/internal/services/lifecycle"
	plansservice "github.com/sstepanets/plan-manager/internal/services/plans"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	jwtMaker jwt.Maker,
	authService *authservice.Service,
	lifecycleService *lifecycleservice.Service,
	plansService *plansservice.Service,
	alertsService *alertsservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/signup", signup.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger, plansService).ServeHTTP)
		r.Get("/plans/{id}", planread.New(logger, plansService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/my-plan", myplan.New(logger, lifecycleService).ServeHTTP)
			r.Post("/purchase-plan", purchase.New(logger, lifecycleService).ServeHTTP)
			r.Post("/cancel-plan", cancel.New(logger, lifecycleService).ServeHTTP)
			r.Get("/alerts", alertlist.New(logger, alertsService).ServeHTTP)
			r.Put("/alerts/{id}/read", markread.New(logger, alertsService).ServeHTTP)
		})

		// Административная группа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Post("/admin/plans", plancreate.New(logger, plansService).ServeHTTP)
			r.Put("/admin/plans/{id}", planupdate.New(logger, plansService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
