package controllers

import (
	"errors"

	"github.com/Sean-Brix/RiderMind-sub003/apperr"
	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"
	validators "github.com/Sean-Brix/RiderMind-sub003/validators/content"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Controller serves the content API on top of the engine components.
type Controller struct {
	Graph     *graph.Manager
	Lifecycle *lifecycle.Operator
	Progress  *progress.Tracker
	Log       *logger.Logger
}

func New(g *graph.Manager, ops *lifecycle.Operator, tracker *progress.Tracker, log *logger.Logger) *Controller {
	return &Controller{Graph: g, Lifecycle: ops, Progress: tracker, Log: log.With("component", "ContentController")}
}

func (ctrl *Controller) fail(c *fiber.Ctx, err error) error {
	return middleware.ErrorResponse(c, ctrl.Log, err)
}

func reqBody[T any](c *fiber.Ctx) *T {
	v, _ := c.Locals(validators.BodyKey).(*T)
	if v == nil {
		v = new(T)
	}
	return v
}

func param(c *fiber.Ctx, name string) uuid.UUID {
	id, _ := c.Locals(name).(uuid.UUID)
	return id
}

func indexOr(idx *int) int {
	if idx == nil {
		return sequencer.Append
	}
	return *idx
}

func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		ids = append(ids, uuid.MustParse(s))
	}
	return ids
}

func page(c *fiber.Ctx) graph.Page {
	q := reqBody[dto.ListQuery](c)
	return graph.Page{Page: q.Page, Limit: q.Limit}
}

// payloadError turns a payload construction failure into InvalidPayload.
func payloadError(entity string, id any, err error) error {
	var pe *content.PayloadError
	if errors.As(err, &pe) {
		return apperr.InvalidPayload(entity, id, pe.Reason)
	}
	return err
}
