package contentRoutes

import (
	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	validators "github.com/Sean-Brix/RiderMind-sub003/validators/content"

	"github.com/gofiber/fiber/v2"
)

// SetupProgressRoutes registers student progress tracking.
func SetupProgressRoutes(app *fiber.App, ctrl *controllers.Controller) {
	students := app.Group("/students")
	pair := validators.Params("student_id", "module_id")

	students.Post("/:student_id/modules/:module_id/visit", pair, ctrl.MarkVisited)
	students.Post("/:student_id/modules/:module_id/complete", pair, ctrl.MarkCompleted)
	students.Get("/:student_id/progress", validators.Params("student_id"), ctrl.StudentProgress)
}
