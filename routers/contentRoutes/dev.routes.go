package contentRoutes

import (
	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"
	validators "github.com/Sean-Brix/RiderMind-sub003/validators/content"

	"github.com/gofiber/fiber/v2"
)

// SetupDevRoutes registers the bulk maintenance endpoints.
func SetupDevRoutes(app *fiber.App, ctrl *controllers.Controller, enabled bool) {
	dev := app.Group("/dev", middleware.DevOnly(enabled))

	dev.Post("/seed-modules", validators.Seed(), ctrl.SeedModules)
	dev.Post("/reseed-modules", validators.Seed(), ctrl.ReseedModules)
	dev.Delete("/clear-modules", ctrl.ClearModules)
	dev.Delete("/clear-quizzes", ctrl.ClearQuizzes)
	dev.Delete("/clear-student-progress", ctrl.ClearStudentProgress)
	dev.Get("/runs", validators.Runs(), ctrl.RecentRuns)
	dev.Get("/integrity", validators.Audit(), ctrl.Integrity)
}
