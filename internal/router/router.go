package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/aula-go-api/internal/config"
	"github.com/noah-isme/aula-go-api/internal/handler"
	"github.com/noah-isme/aula-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler        *handler.ClassHandler
	EnrollmentHandler   *handler.EnrollmentHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	GradeHandler        *handler.GradeHandler
	NotificationHandler *handler.NotificationHandler
	AuthMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided auth middleware, or a no-op if nil.
	auth := deps.AuthMiddleware
	if auth == nil {
		auth = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", auth)
		deps.ClassHandler.Register(classes)
	}

	if deps.EnrollmentHandler != nil {
		enrollments := api.Group("/enrollments", auth)
		deps.EnrollmentHandler.Register(enrollments)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", auth)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", auth)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.GradeHandler != nil {
		grades := api.Group("/grades", auth)
		deps.GradeHandler.Register(grades)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", auth)
		deps.NotificationHandler.Register(notifications)
	}
}
