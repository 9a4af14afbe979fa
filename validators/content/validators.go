package contentValidator

import (
	"strings"

	"github.com/Sean-Brix/RiderMind-sub003/dto"
	"github.com/Sean-Brix/RiderMind-sub003/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BodyKey is the Locals key holding the validated request body.
const BodyKey = "validatedBody"

var validate = validator.New()

func fieldErrors(err error) map[string]string {
	errs := make(map[string]string)
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["body"] = err.Error()
		return errs
	}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs[field] = fe.Field() + " is required!"
		case "oneof":
			errs[field] = fe.Field() + " must be one of: " + fe.Param()
		case "uuid":
			errs[field] = fe.Field() + " must be a valid UUID!"
		default:
			errs[field] = fe.Field() + " failed on " + fe.Tag() + " " + fe.Param()
		}
	}
	return errs
}

// body parses the JSON body into T, validates it and stores it under BodyKey.
func body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}
		c.Locals(BodyKey, reqData)
		return c.Next()
	}
}

// query parses and validates the query string into T.
func query[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}
		c.Locals(BodyKey, reqData)
		return c.Next()
	}
}

// Params checks that every named route parameter is a UUID and stores the
// parsed value in Locals under the parameter name.
func Params(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := make(map[string]string)
		for _, name := range names {
			id, err := uuid.Parse(c.Params(name))
			if err != nil {
				errs[name] = "Invalid " + name + "!"
				continue
			}
			c.Locals(name, id)
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		return c.Next()
	}
}

func CreateModule() fiber.Handler { return body[dto.ModuleRequest]() }
func UpdateModule() fiber.Handler { return body[dto.ModuleUpdateRequest]() }
func CreateCategory() fiber.Handler { return body[dto.CategoryRequest]() }
func UpdateCategory() fiber.Handler { return body[dto.CategoryUpdateRequest]() }
func CreateQuiz() fiber.Handler { return body[dto.QuizRequest]() }
func UpdateQuiz() fiber.Handler { return body[dto.QuizUpdateRequest]() }
func CreateSlide() fiber.Handler { return body[dto.SlideRequest]() }
func UpdateSlide() fiber.Handler { return body[dto.SlideUpdateRequest]() }
func CreateObjective() fiber.Handler { return body[dto.ObjectiveRequest]() }
func AddMembership() fiber.Handler { return body[dto.MembershipRequest]() }
func CreateQuestion() fiber.Handler { return body[dto.QuestionRequest]() }
func UpdateQuestion() fiber.Handler { return body[dto.QuestionUpdateRequest]() }
func CreateOption() fiber.Handler { return body[dto.OptionRequest]() }
func UpdateOption() fiber.Handler { return body[dto.OptionUpdateRequest]() }
func Position() fiber.Handler { return body[dto.PositionRequest]() }
func Reorder() fiber.Handler { return body[dto.ReorderRequest]() }
func Seed() fiber.Handler { return body[dto.SeedRequest]() }
func List() fiber.Handler { return query[dto.ListQuery]() }
func Runs() fiber.Handler { return query[dto.RunsQuery]() }
func Audit() fiber.Handler { return query[dto.AuditQuery]() }
