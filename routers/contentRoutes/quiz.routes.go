package contentRoutes

import (
	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	validators "github.com/Sean-Brix/RiderMind-sub003/validators/content"

	"github.com/gofiber/fiber/v2"
)

// SetupQuizRoutes registers quizzes, questions and options.
func SetupQuizRoutes(app *fiber.App, ctrl *controllers.Controller) {
	id := validators.Params("id")

	quizzes := app.Group("/quizzes")
	quizzes.Post("/", validators.CreateQuiz(), ctrl.CreateQuiz)
	quizzes.Get("/", validators.List(), ctrl.ListQuizzes)
	quizzes.Get("/:id", id, ctrl.GetQuiz)
	quizzes.Patch("/:id", id, validators.UpdateQuiz(), ctrl.UpdateQuiz)
	quizzes.Delete("/:id", id, ctrl.DeleteQuiz)
	quizzes.Post("/:id/questions", id, validators.CreateQuestion(), ctrl.AddQuestion)
	quizzes.Put("/:id/questions/order", id, validators.Reorder(), ctrl.ReorderQuestions)

	questions := app.Group("/questions")
	questions.Patch("/:id", id, validators.UpdateQuestion(), ctrl.UpdateQuestion)
	questions.Delete("/:id", id, ctrl.DeleteQuestion)
	questions.Patch("/:id/position", id, validators.Position(), ctrl.MoveQuestion)
	questions.Post("/:id/options", id, validators.CreateOption(), ctrl.AddOption)
	questions.Put("/:id/options/order", id, validators.Reorder(), ctrl.ReorderOptions)

	options := app.Group("/options")
	options.Patch("/:id", id, validators.UpdateOption(), ctrl.UpdateOption)
	options.Delete("/:id", id, ctrl.DeleteOption)
	options.Patch("/:id/position", id, validators.Position(), ctrl.MoveOption)
}
