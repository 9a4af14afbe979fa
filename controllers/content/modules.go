package controllers

import (
	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"

	"github.com/gofiber/fiber/v2"
)

func (ctrl *Controller) CreateModule(c *fiber.Ctx) error {
	req := reqBody[dto.ModuleRequest](c)
	mod, err := ctrl.Graph.CreateModule(c.UserContext(), graph.ModuleInput{Title: req.Title, Description: req.Description})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", mod)
}

func (ctrl *Controller) ListModules(c *fiber.Ctx) error {
	list, err := ctrl.Graph.ListModules(c.UserContext(), page(c))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", list)
}

func (ctrl *Controller) GetModule(c *fiber.Ctx) error {
	mod, err := ctrl.Graph.GetModule(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully!", mod)
}

func (ctrl *Controller) UpdateModule(c *fiber.Ctx) error {
	req := reqBody[dto.ModuleUpdateRequest](c)
	mod, err := ctrl.Graph.UpdateModule(c.UserContext(), param(c, "id"), graph.ModulePatch{Title: req.Title, Description: req.Description})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", mod)
}

func (ctrl *Controller) DeleteModule(c *fiber.Ctx) error {
	counts, err := ctrl.Graph.DeleteModule(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", fiber.Map{"countsBySubEntity": counts})
}

func (ctrl *Controller) AddObjective(c *fiber.Ctx) error {
	req := reqBody[dto.ObjectiveRequest](c)
	obj, err := ctrl.Graph.AddObjective(c.UserContext(), param(c, "id"), req.Text, indexOr(req.Index.Index))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Objective added successfully!", obj)
}

func (ctrl *Controller) MoveObjective(c *fiber.Ctx) error {
	req := reqBody[dto.PositionRequest](c)
	obj, err := ctrl.Graph.MoveObjective(c.UserContext(), param(c, "id"), *req.Position)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Objective moved successfully!", obj)
}

func (ctrl *Controller) DeleteObjective(c *fiber.Ctx) error {
	if err := ctrl.Graph.DeleteObjective(c.UserContext(), param(c, "id")); err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Objective deleted successfully!", nil)
}
