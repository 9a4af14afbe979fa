package routers

import (
	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	"github.com/Sean-Brix/RiderMind-sub003/routers/contentRoutes"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

type Options struct {
	DevEndpoints bool
	AccessLog    bool
}

// NewApp builds the Fiber application with every route registered.
func NewApp(ctrl *controllers.Controller, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,X-Request-ID",
	}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	contentRoutes.SetupContentRoutes(app, ctrl)
	contentRoutes.SetupQuizRoutes(app, ctrl)
	contentRoutes.SetupProgressRoutes(app, ctrl)
	contentRoutes.SetupDevRoutes(app, ctrl, opts.DevEndpoints)
	return app
}
