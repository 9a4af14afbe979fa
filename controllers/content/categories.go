package controllers

import (
	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (ctrl *Controller) CreateCategory(c *fiber.Ctx) error {
	req := reqBody[dto.CategoryRequest](c)
	cat, err := ctrl.Graph.CreateCategory(c.UserContext(), graph.CategoryInput{Title: req.Title, Description: req.Description})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", cat)
}

func (ctrl *Controller) ListCategories(c *fiber.Ctx) error {
	list, err := ctrl.Graph.ListCategories(c.UserContext(), page(c))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", list)
}

func (ctrl *Controller) GetCategory(c *fiber.Ctx) error {
	cat, err := ctrl.Graph.GetCategory(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category fetched successfully!", cat)
}

func (ctrl *Controller) UpdateCategory(c *fiber.Ctx) error {
	req := reqBody[dto.CategoryUpdateRequest](c)
	cat, err := ctrl.Graph.UpdateCategory(c.UserContext(), param(c, "id"), graph.CategoryPatch{Title: req.Title, Description: req.Description})
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category updated successfully!", cat)
}

func (ctrl *Controller) DeleteCategory(c *fiber.Ctx) error {
	counts, err := ctrl.Graph.DeleteCategory(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category deleted successfully!", fiber.Map{"countsBySubEntity": counts})
}

func (ctrl *Controller) AddModuleToCategory(c *fiber.Ctx) error {
	req := reqBody[dto.MembershipRequest](c)
	cm, err := ctrl.Graph.AddModuleToCategory(c.UserContext(), param(c, "id"), uuid.MustParse(req.ModuleID), indexOr(req.Index.Index))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module added to category!", cm)
}

func (ctrl *Controller) RemoveModuleFromCategory(c *fiber.Ctx) error {
	if err := ctrl.Graph.RemoveModuleFromCategory(c.UserContext(), param(c, "id"), param(c, "module_id")); err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module removed from category!", nil)
}

func (ctrl *Controller) MoveModuleInCategory(c *fiber.Ctx) error {
	req := reqBody[dto.PositionRequest](c)
	cm, err := ctrl.Graph.MoveModuleInCategory(c.UserContext(), param(c, "id"), param(c, "module_id"), *req.Position)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module moved successfully!", cm)
}

func (ctrl *Controller) ReorderCategoryModules(c *fiber.Ctx) error {
	req := reqBody[dto.ReorderRequest](c)
	cat, err := ctrl.Graph.ReorderCategoryModules(c.UserContext(), param(c, "id"), parseIDs(req.IDs))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category modules reordered successfully!", cat)
}
