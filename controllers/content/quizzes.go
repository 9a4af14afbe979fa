package controllers

import (
	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"

	"github.com/gofiber/fiber/v2"
)

func (ctrl *Controller) CreateQuiz(c *fiber.Ctx) error {
	req := reqBody[dto.QuizRequest](c)
	quiz, err := ctrl.Graph.CreateQuiz(c.UserContext(), graph.QuizInput{Title: req.Title, Description: req.Description})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

func (ctrl *Controller) ListQuizzes(c *fiber.Ctx) error {
	list, err := ctrl.Graph.ListQuizzes(c.UserContext(), page(c))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", list)
}

func (ctrl *Controller) GetQuiz(c *fiber.Ctx) error {
	quiz, err := ctrl.Graph.GetQuiz(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", quiz)
}

func (ctrl *Controller) UpdateQuiz(c *fiber.Ctx) error {
	req := reqBody[dto.QuizUpdateRequest](c)
	quiz, err := ctrl.Graph.UpdateQuiz(c.UserContext(), param(c, "id"), graph.QuizPatch{Title: req.Title, Description: req.Description})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

func (ctrl *Controller) DeleteQuiz(c *fiber.Ctx) error {
	counts, err := ctrl.Graph.DeleteQuiz(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", fiber.Map{"countsBySubEntity": counts})
}

func (ctrl *Controller) ReorderQuestions(c *fiber.Ctx) error {
	req := reqBody[dto.ReorderRequest](c)
	quiz, err := ctrl.Graph.ReorderQuestions(c.UserContext(), param(c, "id"), parseIDs(req.IDs))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions reordered successfully!", quiz)
}

func (ctrl *Controller) AddQuestion(c *fiber.Ctx) error {
	req := reqBody[dto.QuestionRequest](c)
	media, err := content.NewQuestionMedia(req.ImageData, req.ImageMime, req.VideoPath)
	if err != nil {
		return ctrl.fail(c, payloadError("question", nil, err))
	}
	q, err := ctrl.Graph.AddQuestion(c.UserContext(), param(c, "id"), content.QuestionSpec{Text: req.Text, Media: media}, indexOr(req.Index.Index))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", q)
}

func (ctrl *Controller) UpdateQuestion(c *fiber.Ctx) error {
	id := param(c, "id")
	req := reqBody[dto.QuestionUpdateRequest](c)

	patch := graph.QuestionPatch{Text: req.Text}
	if req.Media != nil {
		media, err := content.NewQuestionMedia(req.Media.ImageData, req.Media.ImageMime, req.Media.VideoPath)
		if err != nil {
			return ctrl.fail(c, payloadError("question", id, err))
		}
		patch.Media = &media
	}

	q, err := ctrl.Graph.UpdateQuestion(c.UserContext(), id, patch)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", q)
}

func (ctrl *Controller) MoveQuestion(c *fiber.Ctx) error {
	req := reqBody[dto.PositionRequest](c)
	q, err := ctrl.Graph.MoveQuestion(c.UserContext(), param(c, "id"), *req.Position)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question moved successfully!", q)
}

func (ctrl *Controller) DeleteQuestion(c *fiber.Ctx) error {
	counts, err := ctrl.Graph.DeleteQuestion(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", fiber.Map{"countsBySubEntity": counts})
}

func (ctrl *Controller) AddOption(c *fiber.Ctx) error {
	req := reqBody[dto.OptionRequest](c)
	opt, err := ctrl.Graph.AddOption(c.UserContext(), param(c, "id"), content.OptionSpec{Text: req.Text, IsCorrect: req.IsCorrect}, indexOr(req.Index.Index))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Option added successfully!", opt)
}

func (ctrl *Controller) ReorderOptions(c *fiber.Ctx) error {
	req := reqBody[dto.ReorderRequest](c)
	opts, err := ctrl.Graph.ReorderOptions(c.UserContext(), param(c, "id"), parseIDs(req.IDs))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Options reordered successfully!", opts)
}

func (ctrl *Controller) UpdateOption(c *fiber.Ctx) error {
	req := reqBody[dto.OptionUpdateRequest](c)
	opt, err := ctrl.Graph.UpdateOption(c.UserContext(), param(c, "id"), graph.OptionPatch{Text: req.Text, IsCorrect: req.IsCorrect})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Option updated successfully!", opt)
}

func (ctrl *Controller) MoveOption(c *fiber.Ctx) error {
	req := reqBody[dto.PositionRequest](c)
	opt, err := ctrl.Graph.MoveOption(c.UserContext(), param(c, "id"), *req.Position)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Option moved successfully!", opt)
}

func (ctrl *Controller) DeleteOption(c *fiber.Ctx) error {
	if err := ctrl.Graph.DeleteOption(c.UserContext(), param(c, "id")); err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Option deleted successfully!", nil)
}
