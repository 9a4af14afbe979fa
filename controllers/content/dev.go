package controllers

import (
	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"

	"github.com/gofiber/fiber/v2"
)

func generator(req *dto.SeedRequest) (lifecycle.Generator, error) {
	if req.Generator == "fixtures" {
		return lifecycle.NewFixtureGenerator()
	}
	return lifecycle.TemplateGenerator{Prefix: req.Prefix}, nil
}

func summary(c *fiber.Ctx, message string, res *lifecycle.Result) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, res)
}

func (ctrl *Controller) SeedModules(c *fiber.Ctx) error {
	req := reqBody[dto.SeedRequest](c)
	gen, err := generator(req)
	if err != nil {
		return ctrl.fail(c, err)
	}
	res, err := ctrl.Lifecycle.SeedModules(c.UserContext(), req.Count, gen)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Modules seeded successfully!", res)
}

func (ctrl *Controller) ReseedModules(c *fiber.Ctx) error {
	req := reqBody[dto.SeedRequest](c)
	gen, err := generator(req)
	if err != nil {
		return ctrl.fail(c, err)
	}
	res, err := ctrl.Lifecycle.ReseedModules(c.UserContext(), req.Count, gen)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return summary(c, "Modules reseeded successfully!", res)
}

func (ctrl *Controller) ClearModules(c *fiber.Ctx) error {
	res, err := ctrl.Lifecycle.ClearModules(c.UserContext())
	if err != nil {
		return ctrl.fail(c, err)
	}
	return summary(c, "Modules cleared successfully!", res)
}

func (ctrl *Controller) ClearQuizzes(c *fiber.Ctx) error {
	res, err := ctrl.Lifecycle.ClearQuizzes(c.UserContext())
	if err != nil {
		return ctrl.fail(c, err)
	}
	return summary(c, "Quizzes cleared successfully!", res)
}

func (ctrl *Controller) ClearStudentProgress(c *fiber.Ctx) error {
	res, err := ctrl.Lifecycle.ClearStudentProgress(c.UserContext())
	if err != nil {
		return ctrl.fail(c, err)
	}
	return summary(c, "Student progress cleared successfully!", res)
}

func (ctrl *Controller) RecentRuns(c *fiber.Ctx) error {
	q := reqBody[dto.RunsQuery](c)
	runs, err := ctrl.Lifecycle.RecentRuns(c.UserContext(), q.Limit)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Maintenance runs fetched successfully!", runs)
}

func (ctrl *Controller) Integrity(c *fiber.Ctx) error {
	q := reqBody[dto.AuditQuery](c)
	report, err := ctrl.Lifecycle.Audit(c.UserContext(), q.Repair)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Integrity audit finished!", report)
}
