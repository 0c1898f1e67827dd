package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/todo-service/internal/api/http/handlers"
	"github.com/spec-kit/todo-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Todos          *handlers.TodosHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every todo route passes through the
// credential pipeline and the ownership guard, in that order, before any
// handler runs.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	owner := app.Group("/api/users/:userID", cfg.AuthMiddleware.Handle, auth.RequireOwner("userID"))
	owner.Post("/todos", cfg.Todos.CreateTodo)
	owner.Get("/todos", cfg.Todos.ListTodos)
	owner.Get("/todos/:todoID", cfg.Todos.GetTodo)
	owner.Put("/todos/:todoID", cfg.Todos.UpdateTodo)
	owner.Delete("/todos/:todoID", cfg.Todos.DeleteTodo)
}
