package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/Yaroslav326/TaskManagement/internal/auth"
	"github.com/Yaroslav326/TaskManagement/internal/chat"
	"github.com/Yaroslav326/TaskManagement/internal/company"
	"github.com/Yaroslav326/TaskManagement/internal/task"
	"github.com/Yaroslav326/TaskManagement/internal/transport/middleware"
	"github.com/Yaroslav326/TaskManagement/internal/transport/swagger"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"github.com/go-chi/chi"
)

// RegisterAllRoutes wires every HTTP and websocket endpoint onto the
// router. The chat endpoint sits outside /api/v1: it authenticates during
// its own handshake and reports failures through close codes, not HTTP
// statuses.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, companyHandler *company.Handler, taskHandler *task.Handler, gateway *chat.Gateway, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	if gateway != nil {
		router.Get("/chat/{room}", gateway.HandleRoom)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/register", authHandler.Register)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
					pr.Patch("/users/me", userHandler.UpdateAccount)
				}

				if companyHandler != nil {
					pr.Route("/company", func(cr chi.Router) {
						cr.Post("/", companyHandler.CreateCompany)
						cr.Get("/", companyHandler.Profile)
						cr.Patch("/", companyHandler.EditCompany)
					})

					pr.Route("/departments", func(dr chi.Router) {
						dr.Get("/", companyHandler.ListDepartments)
						dr.Post("/", companyHandler.CreateDepartment)
						dr.Get("/{id}", companyHandler.ViewDepartment)
						dr.Patch("/{id}", companyHandler.EditDepartment)
						dr.Delete("/{id}", companyHandler.DeleteDepartment)
						dr.Post("/{id}/personnel", companyHandler.AddPersonnel)
						dr.Delete("/{id}/personnel/{userID}", companyHandler.RemovePersonnel)
					})
				}

				if taskHandler != nil {
					pr.Route("/tasks", func(tr chi.Router) {
						tr.Post("/", taskHandler.CreateTask)
						tr.Get("/", taskHandler.ListTasks)
						tr.Get("/{id}", taskHandler.GetTask)
						tr.Patch("/{id}", taskHandler.EditTask)
						tr.Delete("/{id}", taskHandler.DeleteTask)
						tr.Post("/{id}/take", taskHandler.TakeTask)
						tr.Patch("/{id}/status", taskHandler.UpdateStatus)
						tr.Post("/{id}/subtasks", taskHandler.CreateSubtask)
					})

					pr.Route("/subtasks", func(sr chi.Router) {
						sr.Patch("/{id}", taskHandler.EditSubtask)
						sr.Patch("/{id}/toggle", taskHandler.ToggleSubtask)
						sr.Delete("/{id}", taskHandler.DeleteSubtask)
					})
				}
			})
		}
	})
}
