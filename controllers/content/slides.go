package controllers

import (
	"strconv"

	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"
	"github.com/Sean-Brix/RiderMind-sub003/utils"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 8 << 20

func (ctrl *Controller) AddSlide(c *fiber.Ctx) error {
	req := reqBody[dto.SlideRequest](c)
	p, err := content.NewSlidePayload(content.SlideType(req.Type), req.Body, req.ImageData, req.ImageMime, req.VideoPath)
	if err != nil {
		return ctrl.fail(c, payloadError("slide", nil, err))
	}
	slide, err := ctrl.Graph.AddSlide(c.UserContext(), param(c, "id"), content.SlideSpec{Title: req.Title, Payload: p}, indexOr(req.Index.Index))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Slide added successfully!", slide)
}

func (ctrl *Controller) ListSlides(c *fiber.Ctx) error {
	slides, err := ctrl.Graph.ListSlides(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slides fetched successfully!", slides)
}

func (ctrl *Controller) GetSlide(c *fiber.Ctx) error {
	slide, err := ctrl.Graph.GetSlide(c.UserContext(), param(c, "id"))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slide fetched successfully!", slide)
}

func (ctrl *Controller) UpdateSlide(c *fiber.Ctx) error {
	id := param(c, "id")
	req := reqBody[dto.SlideUpdateRequest](c)

	patch := graph.SlidePatch{Title: req.Title}
	if req.Type != nil {
		p, err := content.NewSlidePayload(content.SlideType(*req.Type), req.Body, req.ImageData, req.ImageMime, req.VideoPath)
		if err != nil {
			return ctrl.fail(c, payloadError("slide", id, err))
		}
		patch.Payload = p
	}

	slide, err := ctrl.Graph.UpdateSlide(c.UserContext(), id, patch)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slide updated successfully!", slide)
}

func (ctrl *Controller) MoveSlide(c *fiber.Ctx) error {
	req := reqBody[dto.PositionRequest](c)
	slide, err := ctrl.Graph.MoveSlide(c.UserContext(), param(c, "id"), *req.Position)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slide moved successfully!", slide)
}

func (ctrl *Controller) DeleteSlide(c *fiber.Ctx) error {
	if err := ctrl.Graph.DeleteSlide(c.UserContext(), param(c, "id")); err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slide deleted successfully!", nil)
}

func (ctrl *Controller) ReorderSlides(c *fiber.Ctx) error {
	req := reqBody[dto.ReorderRequest](c)
	slides, err := ctrl.Graph.ReorderSlides(c.UserContext(), param(c, "id"), parseIDs(req.IDs))
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Slides reordered successfully!", slides)
}

// UploadImageSlide creates an image slide from a multipart upload. The mime
// type is taken from the file contents.
func (ctrl *Controller) UploadImageSlide(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"file": "Image file is required!"})
	}
	data, mime, err := utils.ReadUploadedImage(file, maxImageBytes)
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"file": err.Error()})
	}

	index := sequencer.Append
	if raw := c.FormValue("index"); raw != "" {
		if index, err = strconv.Atoi(raw); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"index": "Index must be a number!"})
		}
	}

	spec := content.SlideSpec{Title: c.FormValue("title"), Payload: content.ImagePayload{Data: data, MimeType: mime}}
	slide, err := ctrl.Graph.AddSlide(c.UserContext(), param(c, "id"), spec, index)
	if err != nil {
		return ctrl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Slide uploaded successfully!", slide)
}
