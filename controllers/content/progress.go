package controllers

import (
	"github.com/Sean-Brix/RiderMind-sub003/middleware"

	"github.com/gofiber/fiber/v2"
)

func (ctrl *Controller) MarkVisited(c *fiber.Ctx) error {
	p, err := ctrl.Progress.MarkVisited(c.UserContext(), param(c, "student_id"), param(c, "module_id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module visit recorded!", p)
}

func (ctrl *Controller) MarkCompleted(c *fiber.Ctx) error {
	p, err := ctrl.Progress.MarkCompleted(c.UserContext(), param(c, "student_id"), param(c, "module_id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module completion recorded!", p)
}

func (ctrl *Controller) StudentProgress(c *fiber.Ctx) error {
	studentID := param(c, "student_id")
	rows, err := ctrl.Progress.ListForStudent(c.UserContext(), studentID)
	if err != nil {
		return ctrl.fail(c, err)
	}
	summary, err := ctrl.Progress.Summary(c.UserContext(), studentID)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"summary": summary,
		"modules": rows,
	})
}
