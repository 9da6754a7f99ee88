package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/http/handlers"
	"github.com/spec-kit/report-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reports        *handlers.ReportsHandler
	AdminReports   *handlers.AdminReportsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Check)

	api := app.Group("/api")
	api.Post("/register", cfg.Auth.Register)
	api.Post("/login", cfg.Auth.Login)

	session := api.Group("", cfg.AuthMiddleware.Handle)
	session.Get("/logout", cfg.Auth.Logout)
	session.Get("/user_info", cfg.Auth.UserInfo)
	session.Post("/submit_report", cfg.Reports.Submit)
	session.Get("/user_reports", cfg.Reports.ListOwn)
	session.Get("/report_details/:id", cfg.Reports.Detail)
	session.Post("/delete_user_report", cfg.Reports.DeleteOwn)
	session.Post("/delete_report", cfg.AdminReports.Delete)
	session.Get("/notifications", cfg.Notifications.List)
	session.Get("/notifications_count", cfg.Notifications.Count)
	session.Get("/stats", cfg.Reports.Stats)

	admin := session.Group("", auth.RequireAdmin())
	admin.Get("/all_reports", cfg.AdminReports.ListAll)
	admin.Post("/update_report_status", cfg.AdminReports.UpdateStatus)
	admin.Post("/update_report_with_resolution", cfg.AdminReports.UpdateWithResolution)
	admin.Get("/users", cfg.Auth.ListUsers)
}
