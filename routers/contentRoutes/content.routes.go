package contentRoutes

import (
	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	validators "github.com/Sean-Brix/RiderMind-sub003/validators/content"

	"github.com/gofiber/fiber/v2"
)

// SetupContentRoutes registers modules, slides, objectives and categories.
func SetupContentRoutes(app *fiber.App, ctrl *controllers.Controller) {
	id := validators.Params("id")

	modules := app.Group("/modules")
	modules.Post("/", validators.CreateModule(), ctrl.CreateModule)
	modules.Get("/", validators.List(), ctrl.ListModules)
	modules.Get("/:id", id, ctrl.GetModule)
	modules.Patch("/:id", id, validators.UpdateModule(), ctrl.UpdateModule)
	modules.Delete("/:id", id, ctrl.DeleteModule)

	// Slides
	modules.Post("/:id/slides", id, validators.CreateSlide(), ctrl.AddSlide)
	modules.Post("/:id/slides/upload", id, ctrl.UploadImageSlide)
	modules.Get("/:id/slides", id, ctrl.ListSlides)
	modules.Put("/:id/slides/order", id, validators.Reorder(), ctrl.ReorderSlides)

	slides := app.Group("/slides")
	slides.Get("/:id", id, ctrl.GetSlide)
	slides.Patch("/:id", id, validators.UpdateSlide(), ctrl.UpdateSlide)
	slides.Delete("/:id", id, ctrl.DeleteSlide)
	slides.Patch("/:id/position", id, validators.Position(), ctrl.MoveSlide)

	// Objectives
	modules.Post("/:id/objectives", id, validators.CreateObjective(), ctrl.AddObjective)
	objectives := app.Group("/objectives")
	objectives.Patch("/:id/position", id, validators.Position(), ctrl.MoveObjective)
	objectives.Delete("/:id", id, ctrl.DeleteObjective)

	// Categories and memberships
	member := validators.Params("id", "module_id")
	categories := app.Group("/categories")
	categories.Post("/", validators.CreateCategory(), ctrl.CreateCategory)
	categories.Get("/", validators.List(), ctrl.ListCategories)
	categories.Get("/:id", id, ctrl.GetCategory)
	categories.Patch("/:id", id, validators.UpdateCategory(), ctrl.UpdateCategory)
	categories.Delete("/:id", id, ctrl.DeleteCategory)
	categories.Post("/:id/modules", id, validators.AddMembership(), ctrl.AddModuleToCategory)
	categories.Put("/:id/modules/order", id, validators.Reorder(), ctrl.ReorderCategoryModules)
	categories.Delete("/:id/modules/:module_id", member, ctrl.RemoveModuleFromCategory)
	categories.Patch("/:id/modules/:module_id/position", member, validators.Position(), ctrl.MoveModuleInCategory)
}
